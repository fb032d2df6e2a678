package access

// Phase is the combined route guard and navigation shell state.
type Phase uint8

const (
	PhaseNoFlag Phase = iota
	PhaseFlagSet
	PhaseAuthenticating
	PhaseProfileLoading
	PhaseProfileResolved
)

func (p Phase) String() string {
	switch p {
	case PhaseNoFlag:
		return "unauthenticated/no-flag"
	case PhaseFlagSet:
		return "unauthenticated/flag-set"
	case PhaseAuthenticating:
		return "authenticating"
	case PhaseProfileLoading:
		return "authenticated/profile-loading"
	case PhaseProfileResolved:
		return "authenticated/profile-resolved"
	default:
		return "unknown"
	}
}

// Authenticated reports whether an identity has been established.
func (p Phase) Authenticated() bool {
	return p == PhaseProfileLoading || p == PhaseProfileResolved
}

// View is an immutable snapshot of everything the guard and the shell need to
// know about the current visitor. Every transition returns a new View; the
// effective role is recomputed from the two claims on demand and never stored.
type View struct {
	phase   Phase
	flag    Claim
	profile Claim
	userID  string
}

// NewView starts a visitor with the given local role flag and no identity.
func NewView(flag Claim) View {
	v := View{flag: flag}
	v.phase = v.anonymousPhase()
	return v
}

func (v View) anonymousPhase() Phase {
	if v.flag.Present() {
		return PhaseFlagSet
	}
	return PhaseNoFlag
}

// IdentityIssued records that a session credential was presented and is
// being verified.
func (v View) IdentityIssued() View {
	if v.phase.Authenticated() {
		return v
	}
	v.phase = PhaseAuthenticating
	return v
}

// SessionEstablished records a verified identity. The profile has not been
// fetched yet, so the flag still governs.
func (v View) SessionEstablished(userID string) View {
	v.userID = userID
	v.profile = Claim{}
	v.phase = PhaseProfileLoading
	return v
}

// ProfileLoaded applies a fetched profile role. Calls outside an established
// session are ignored, mirroring a fetch that resolves after unmount.
func (v View) ProfileLoaded(role Claim) View {
	if !v.phase.Authenticated() {
		return v
	}
	v.profile = role
	v.phase = PhaseProfileResolved
	return v
}

// ProfileUnavailable records a failed or empty profile lookup. The effective
// role stays pinned to the local role flag.
func (v View) ProfileUnavailable() View {
	if !v.phase.Authenticated() {
		return v
	}
	v.profile = Claim{}
	v.phase = PhaseProfileLoading
	return v
}

// SignedOut drops identity and profile. The local role flag survives.
func (v View) SignedOut() View {
	v.userID = ""
	v.profile = Claim{}
	v.phase = v.anonymousPhase()
	return v
}

// FlagSelected overwrites the local role flag (last write wins).
func (v View) FlagSelected(role Role) View {
	v.flag = ClaimFor(role)
	if !v.phase.Authenticated() && v.phase != PhaseAuthenticating {
		v.phase = PhaseFlagSet
	}
	return v
}

// Phase returns the current state.
func (v View) Phase() Phase { return v.phase }

// UserID returns the authenticated identity, or "" when anonymous.
func (v View) UserID() string { return v.userID }

// Authenticated reports whether an identity is attached.
func (v View) Authenticated() bool { return v.phase.Authenticated() }

// Flag returns the local role flag claim.
func (v View) Flag() Claim { return v.flag }

// Profile returns the profile role claim (absent until ProfileResolved).
func (v View) Profile() Claim { return v.profile }

// Role returns the effective role for this snapshot.
func (v View) Role() Role {
	return Resolve(v.flag, v.profile)
}
