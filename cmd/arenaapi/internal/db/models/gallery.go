package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Submission is an image entered into the gallery, optionally for a competition.
type Submission struct {
	bun.BaseModel `bun:"table:submissions,alias:sub"`

	ID            string    `bun:"id,pk,type:uuid"`
	CompetitionID *string   `bun:"competition_id,type:uuid"` // FK to competitions(id), nullable
	UserID        string    `bun:"user_id,notnull,type:uuid"`
	Prompt        string    `bun:"prompt,notnull"`
	ImageURL      string    `bun:"image_url,notnull"`
	VotesCount    int       `bun:"votes_count,notnull,default:0"`
	CreatedAt     time.Time `bun:"created_at,notnull,default:current_timestamp"`

	Author *Profile `bun:"rel:belongs-to,join:user_id=user_id"`
}

// Vote is one user's vote on one submission.
type Vote struct {
	bun.BaseModel `bun:"table:votes,alias:v"`

	ID           string    `bun:"id,pk,type:uuid"`
	SubmissionID string    `bun:"submission_id,notnull,type:uuid"` // FK to submissions(id)
	VoterID      string    `bun:"voter_id,notnull,type:uuid"`      // FK to users(id)
	CreatedAt    time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

// GeneratedImage caches an image returned by the generation backend.
type GeneratedImage struct {
	bun.BaseModel `bun:"table:generated_images,alias:gi"`

	ID        string    `bun:"id,pk,type:uuid"`
	UserID    *string   `bun:"user_id,type:uuid"`
	Prompt    string    `bun:"prompt,notnull"`
	ImageData string    `bun:"image_data,type:text,notnull"` // base64 PNG
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
}
