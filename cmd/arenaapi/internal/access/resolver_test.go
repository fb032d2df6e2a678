package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		raw        string
		want       Role
		recognized bool
	}{
		{"host", RoleHost, true},
		{"institute", RoleHost, true},
		{"  Institute ", RoleHost, true},
		{"HOST", RoleHost, true},
		{"participant", RoleParticipant, true},
		{"user", RoleParticipant, true},
		{"", RoleParticipant, false},
		{"admin", RoleParticipant, false},
		{"hostess", RoleParticipant, false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := Normalize(tt.raw)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.recognized, ok)
		})
	}
}

func TestResolve_AllPairs(t *testing.T) {
	// nil stands in for an absent value.
	vocabulary := []*string{nil, ptr(""), ptr("institute"), ptr("host"), ptr("participant"), ptr("user"), ptr("moderator")}

	expectedFor := func(raw *string) (Role, bool) {
		if raw == nil || *raw == "" {
			return RoleParticipant, false
		}
		switch *raw {
		case "institute", "host":
			return RoleHost, true
		default:
			return RoleParticipant, true
		}
	}

	claim := func(raw *string) Claim {
		if raw == nil {
			return Claim{}
		}
		return ClaimOf(*raw)
	}

	for _, flag := range vocabulary {
		for _, profile := range vocabulary {
			flagRole, _ := expectedFor(flag)
			profileRole, profilePresent := expectedFor(profile)
			want := flagRole
			if profilePresent {
				want = profileRole
			}

			got := Resolve(claim(flag), claim(profile))
			assert.Equal(t, want, got, "flag=%v profile=%v", deref(flag), deref(profile))

			// Deterministic: same inputs, same answer.
			assert.Equal(t, got, Resolve(claim(flag), claim(profile)))
		}
	}
}

func TestResolve_ProfileOverridesFlag(t *testing.T) {
	assert.Equal(t, RoleParticipant, Resolve(ClaimOf("host"), ClaimOf("participant")))
	assert.Equal(t, RoleHost, Resolve(ClaimOf("participant"), ClaimOf("institute")))
}

func TestResolve_UnrecognisedProfileIsParticipant(t *testing.T) {
	// A present but unknown profile role still wins over the flag and maps to participant.
	assert.Equal(t, RoleParticipant, Resolve(ClaimOf("host"), ClaimOf("curator")))
}

func TestResolve_NoInformationIsParticipant(t *testing.T) {
	assert.Equal(t, RoleParticipant, Resolve(Claim{}, Claim{}))
}

func TestClaim(t *testing.T) {
	c := ClaimOf("Institute")
	assert.True(t, c.Present())
	assert.True(t, c.Recognized())
	assert.Equal(t, RoleHost, c.Role())
	assert.Equal(t, "Institute", c.Raw())

	unknown := ClaimOf("judge")
	assert.True(t, unknown.Present())
	assert.False(t, unknown.Recognized())
	assert.Equal(t, RoleParticipant, unknown.Role())

	blank := ClaimOf("   ")
	assert.False(t, blank.Present())
	assert.False(t, blank.Recognized())
}

func TestParseSelection(t *testing.T) {
	role, ok := ParseSelection("host")
	assert.True(t, ok)
	assert.Equal(t, RoleHost, role)

	role, ok = ParseSelection("participant")
	assert.True(t, ok)
	assert.Equal(t, RoleParticipant, role)

	_, ok = ParseSelection("institute")
	assert.False(t, ok, "legacy names are not offered by the selector")

	_, ok = ParseSelection("")
	assert.False(t, ok)
}

func ptr(s string) *string { return &s }

func deref(s *string) string {
	if s == nil {
		return "<absent>"
	}
	return *s
}
