package server

import (
	"time"

	"github.com/promptartclash/arena/cmd/arenaapi/internal/db/models"
	"github.com/promptartclash/arena/cmd/arenaapi/internal/services/identity"
)

type sessionResponse struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	SessionID string    `json:"session_id"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
	Token     string    `json:"token,omitempty"`
}

func toSessionResponse(sess *identity.Session) sessionResponse {
	return sessionResponse{
		UserID:    sess.UserID,
		Email:     sess.Email,
		SessionID: sess.ID,
		ExpiresAt: sess.ExpiresAt,
		Token:     sess.Token,
	}
}

type profileResponse struct {
	UserID           string    `json:"user_id"`
	Username         string    `json:"username"`
	FullName         string    `json:"full_name"`
	InstituteName    string    `json:"institute_name"`
	Bio              string    `json:"bio"`
	Role             *string   `json:"role"`
	AvatarURL        string    `json:"avatar_url"`
	SubmissionsCount int       `json:"submissions_count"`
	VotesCount       int       `json:"votes_count"`
	Streak           int       `json:"streak"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func toProfileResponse(p *models.Profile) profileResponse {
	return profileResponse{
		UserID:           p.UserID,
		Username:         p.Username,
		FullName:         p.FullName,
		InstituteName:    p.InstituteName,
		Bio:              p.Bio,
		Role:             p.Role,
		AvatarURL:        p.AvatarURL,
		SubmissionsCount: p.SubmissionsCount,
		VotesCount:       p.VotesCount,
		Streak:           p.Streak,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

type submissionResponse struct {
	ID            string    `json:"id"`
	CompetitionID *string   `json:"competition_id"`
	UserID        string    `json:"user_id"`
	Username      string    `json:"username,omitempty"`
	Prompt        string    `json:"prompt"`
	ImageURL      string    `json:"image_url"`
	VotesCount    int       `json:"votes_count"`
	CreatedAt     time.Time `json:"created_at"`
}

func toSubmissionResponse(s *models.Submission) submissionResponse {
	out := submissionResponse{
		ID:            s.ID,
		CompetitionID: s.CompetitionID,
		UserID:        s.UserID,
		Prompt:        s.Prompt,
		ImageURL:      s.ImageURL,
		VotesCount:    s.VotesCount,
		CreatedAt:     s.CreatedAt,
	}
	if s.Author != nil {
		out.Username = s.Author.Username
	}
	return out
}

type competitionResponse struct {
	ID                  string    `json:"id"`
	Title               string    `json:"title"`
	Description         string    `json:"description"`
	Theme               string    `json:"theme"`
	StartTime           time.Time `json:"start_time"`
	EndTime             time.Time `json:"end_time"`
	MaxParticipants     int       `json:"max_participants"`
	CurrentParticipants int       `json:"current_participants"`
	Status              string    `json:"status"`
	CreatedBy           string    `json:"created_by"`
	CreatedAt           time.Time `json:"created_at"`
}

func toCompetitionResponse(c *models.Competition) competitionResponse {
	return competitionResponse{
		ID:                  c.ID,
		Title:               c.Title,
		Description:         c.Description,
		Theme:               c.Theme,
		StartTime:           c.StartTime,
		EndTime:             c.EndTime,
		MaxParticipants:     c.MaxParticipants,
		CurrentParticipants: c.CurrentParticipants,
		Status:              c.StatusAt(time.Now()),
		CreatedBy:           c.CreatedBy,
		CreatedAt:           c.CreatedAt,
	}
}

type participantResponse struct {
	ID            string               `json:"id"`
	CompetitionID string               `json:"competition_id"`
	UserID        string               `json:"user_id"`
	JoinedAt      time.Time            `json:"joined_at"`
	Competition   *competitionResponse `json:"competition,omitempty"`
}

func toParticipantResponse(p *models.CompetitionParticipant) participantResponse {
	out := participantResponse{
		ID:            p.ID,
		CompetitionID: p.CompetitionID,
		UserID:        p.UserID,
		JoinedAt:      p.JoinedAt,
	}
	if p.Competition != nil {
		c := toCompetitionResponse(p.Competition)
		out.Competition = &c
	}
	return out
}
