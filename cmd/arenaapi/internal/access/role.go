package access

import "strings"

// Role is the canonical effective role used for gating views.
// The zero value is RoleParticipant so that missing role information never
// grants host access.
type Role uint8

const (
	// RoleParticipant covers "participant", "user", absent and unrecognised role strings.
	RoleParticipant Role = iota
	// RoleHost covers "host" and "institute".
	RoleHost
)

// String returns the canonical wire name of the role.
func (r Role) String() string {
	if r == RoleHost {
		return "host"
	}
	return "participant"
}

// Subject returns the casbin subject identifier for the role.
func (r Role) Subject() string {
	return "role:" + r.String()
}

// Normalize maps an external role string onto the canonical enumeration.
// Matching is case-insensitive and ignores surrounding whitespace. The second
// return value reports whether the string belonged to a known vocabulary.
func Normalize(raw string) (Role, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "host", "institute":
		return RoleHost, true
	case "participant", "user":
		return RoleParticipant, true
	default:
		return RoleParticipant, false
	}
}

// ParseSelection parses a Role Selector choice. Only the two canonical names are
// accepted; legacy vocabulary is normalised on read, never written.
func ParseSelection(raw string) (Role, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "host":
		return RoleHost, true
	case "participant":
		return RoleParticipant, true
	default:
		return RoleParticipant, false
	}
}

// Claim is a normalised role observation from a single source (the local role
// flag or the profile record). The zero value is an absent claim.
type Claim struct {
	role    Role
	present bool
	raw     string
}

// ClaimOf normalises a raw role string. Blank input yields an absent claim;
// any other string is present, with unrecognised values classified as
// RoleParticipant.
func ClaimOf(raw string) Claim {
	if strings.TrimSpace(raw) == "" {
		return Claim{}
	}
	role, _ := Normalize(raw)
	return Claim{role: role, present: true, raw: raw}
}

// ClaimFor builds a present claim from an already canonical role.
func ClaimFor(role Role) Claim {
	return Claim{role: role, present: true, raw: role.String()}
}

// Present reports whether the source carried any role information.
func (c Claim) Present() bool { return c.present }

// Role returns the normalised role. Absent claims report RoleParticipant.
func (c Claim) Role() Role { return c.role }

// Raw returns the original string the claim was built from, for logging.
func (c Claim) Raw() string { return c.raw }

// Recognized reports whether the raw value belonged to a known vocabulary.
func (c Claim) Recognized() bool {
	if !c.present {
		return false
	}
	_, ok := Normalize(c.raw)
	return ok
}
