package models

import (
	"errors"
	"strings"
	"time"

	"github.com/uptrace/bun"
)

// Competition statuses.
const (
	CompetitionUpcoming = "upcoming"
	CompetitionActive   = "active"
	CompetitionVoting   = "voting"
	CompetitionEnded    = "ended"
)

// Participant limits for a competition.
const (
	DefaultMaxParticipants = 50
	MinParticipants        = 1
	MaxParticipantsLimit   = 1000
)

// Competition is a themed art battle created by a host.
type Competition struct {
	bun.BaseModel `bun:"table:competitions,alias:c"`

	ID                  string    `bun:"id,pk,type:uuid"`
	Title               string    `bun:"title,notnull"`
	Description         string    `bun:"description,notnull"`
	Theme               string    `bun:"theme,notnull"`
	StartTime           time.Time `bun:"start_time,notnull"`
	EndTime             time.Time `bun:"end_time,notnull"`
	MaxParticipants     int       `bun:"max_participants,notnull,default:50"`
	CurrentParticipants int       `bun:"current_participants,notnull,default:0"`
	Status              string    `bun:"status,notnull,default:'upcoming'"`
	CreatedBy           string    `bun:"created_by,notnull,type:uuid"` // FK to users(id)
	CreatedAt           time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

// ValidateForCreate verifies the record is well formed before insertion.
func (c *Competition) ValidateForCreate() error {
	if strings.TrimSpace(c.Title) == "" {
		return errors.New("title is required")
	}
	if strings.TrimSpace(c.Description) == "" {
		return errors.New("description is required")
	}
	if strings.TrimSpace(c.Theme) == "" {
		return errors.New("theme is required")
	}
	if c.StartTime.IsZero() || c.EndTime.IsZero() {
		return errors.New("start_time and end_time are required")
	}
	if !c.EndTime.After(c.StartTime) {
		return errors.New("end_time must be after start_time")
	}
	if c.MaxParticipants < MinParticipants || c.MaxParticipants > MaxParticipantsLimit {
		return errors.New("max_participants must be between 1 and 1000")
	}
	if c.CreatedBy == "" {
		return errors.New("created_by is required")
	}
	return nil
}

// Full reports whether no more participants can join.
func (c *Competition) Full() bool {
	return c.CurrentParticipants >= c.MaxParticipants
}

// Open reports whether joining is allowed at now: the window includes both
// its start and its end.
func (c *Competition) Open(now time.Time) bool {
	return !now.Before(c.StartTime) && !now.After(c.EndTime)
}

// StatusAt derives the displayed status from the schedule. The stored Status
// column is only the value written at creation.
func (c *Competition) StatusAt(now time.Time) string {
	switch {
	case now.Before(c.StartTime):
		return CompetitionUpcoming
	case now.After(c.EndTime):
		return CompetitionEnded
	default:
		return CompetitionActive
	}
}

// CompetitionParticipant records that a user joined a competition.
type CompetitionParticipant struct {
	bun.BaseModel `bun:"table:competition_participants,alias:cp"`

	ID            string    `bun:"id,pk,type:uuid"`
	CompetitionID string    `bun:"competition_id,notnull,type:uuid"` // FK to competitions(id)
	UserID        string    `bun:"user_id,notnull,type:uuid"`        // FK to users(id)
	JoinedAt      time.Time `bun:"joined_at,notnull,default:current_timestamp"`

	Competition *Competition `bun:"rel:belongs-to,join:competition_id=id"`
}
