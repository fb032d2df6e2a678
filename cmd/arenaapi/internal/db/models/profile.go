package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Profile holds the public attributes of a user, including the durable role
// string consulted by access control. Role is stored as written; readers
// normalise it.
type Profile struct {
	bun.BaseModel `bun:"table:profiles,alias:p"`

	ID               string    `bun:"id,pk,type:uuid"`
	UserID           string    `bun:"user_id,notnull,unique,type:uuid"` // FK to users(id)
	Username         string    `bun:"username,notnull"`
	FullName         string    `bun:"full_name"`
	InstituteName    string    `bun:"institute_name"`
	Bio              string    `bun:"bio"`
	Role             *string   `bun:"role"`
	AvatarURL        string    `bun:"avatar_url"`
	SubmissionsCount int       `bun:"submissions_count,notnull,default:0"`
	VotesCount       int       `bun:"votes_count,notnull,default:0"`
	Streak           int       `bun:"streak,notnull,default:0"`
	CreatedAt        time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt        time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

// RoleValue returns the stored role string, or "" when the column is null.
func (p *Profile) RoleValue() string {
	if p == nil || p.Role == nil {
		return ""
	}
	return *p.Role
}
