package bunx

import "github.com/google/uuid"

// NewUUIDv7 generates a time-ordered UUIDv7 string for primary keys.
// Ordering by id therefore follows creation order on both dialects.
// It panics only if the entropy source fails.
func NewUUIDv7() string {
	return uuid.Must(uuid.NewV7()).String()
}

// IsUUID reports whether s parses as a UUID. Handlers use it to reject
// malformed path parameters before they reach the database.
func IsUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
