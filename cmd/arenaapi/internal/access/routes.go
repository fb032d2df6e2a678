package access

import "net/http"

// Page paths served by the arena.
const (
	PathLanding           = "/"
	PathLogin             = "/login"
	PathSignup            = "/signup"
	PathLogout            = "/logout"
	PathProfile           = "/profile"
	PathDemo              = "/demo"
	PathSelectRole        = "/select-role"
	PathGenerate          = "/generate"
	PathGallery           = "/gallery"
	PathLeaderboard       = "/leaderboard"
	PathJoinCompetition   = "/join-competition"
	PathCreateBattle      = "/create-battle"
	PathCreateCompetition = "/create-competition"
)

// Requirement is the effective role a route demands.
type Requirement uint8

const (
	// Open routes render for every visitor.
	Open Requirement = iota
	// ParticipantOnly routes render for RoleParticipant, which includes visitors
	// with no role information at all.
	ParticipantOnly
	// HostOnly routes render for RoleHost.
	HostOnly
)

func (q Requirement) String() string {
	switch q {
	case ParticipantOnly:
		return "participant"
	case HostOnly:
		return "host"
	default:
		return "open"
	}
}

// Route is one row of the route-permission table. Pattern uses casbin keyMatch2
// syntax (":id" segments). An empty Method matches any method.
type Route struct {
	Pattern     string
	Method      string
	Requirement Requirement
}

func (rt Route) action() string {
	if rt.Method == "" {
		return "*"
	}
	return rt.Method
}

// DefaultRoutes is the route-permission table for pages and the API behind them.
var DefaultRoutes = []Route{
	// Pages
	{Pattern: PathLanding, Requirement: Open},
	{Pattern: PathLogin, Requirement: Open},
	{Pattern: PathSignup, Requirement: Open},
	{Pattern: PathLogout, Requirement: Open},
	{Pattern: PathProfile, Requirement: Open},
	{Pattern: PathDemo, Requirement: Open},
	{Pattern: PathSelectRole, Requirement: Open},
	{Pattern: PathGenerate, Requirement: ParticipantOnly},
	{Pattern: PathGallery, Requirement: ParticipantOnly},
	{Pattern: PathLeaderboard, Requirement: ParticipantOnly},
	{Pattern: PathJoinCompetition, Requirement: ParticipantOnly},
	{Pattern: PathCreateBattle, Requirement: HostOnly},
	{Pattern: PathCreateCompetition, Requirement: HostOnly},

	// Operational
	{Pattern: "/health", Requirement: Open},
	{Pattern: "/metrics", Requirement: Open},

	// Session and profile API
	{Pattern: "/api/auth/*", Requirement: Open},
	{Pattern: "/api/shell", Requirement: Open},
	{Pattern: "/api/profile", Requirement: Open},

	// Gallery and voting
	{Pattern: "/api/submissions", Requirement: ParticipantOnly},
	{Pattern: "/api/submissions/:id/vote", Requirement: ParticipantOnly},

	// Leaderboard
	{Pattern: "/api/leaderboard", Requirement: ParticipantOnly},
	{Pattern: "/api/leaderboard/stream", Requirement: ParticipantOnly},

	// Competitions: listing is open, creation is host-only, joining is participant-only.
	{Pattern: "/api/competitions", Method: http.MethodGet, Requirement: Open},
	{Pattern: "/api/competitions", Method: http.MethodPost, Requirement: HostOnly},
	{Pattern: "/api/competitions/joined", Requirement: ParticipantOnly},
	{Pattern: "/api/competitions/:id/join", Requirement: ParticipantOnly},

	// Image generation and the prompt catalog
	{Pattern: "/api/generate", Requirement: ParticipantOnly},
	{Pattern: "/api/generate/random", Requirement: ParticipantOnly},
	{Pattern: "/api/images/:id", Requirement: Open},
	{Pattern: "/api/prompts", Requirement: Open},
	{Pattern: "/api/prompts/:id", Requirement: Open},
	{Pattern: "/api/prompts/category/:category", Requirement: Open},
}

// LandingFor returns the entry route for a freshly selected role.
func LandingFor(role Role) string {
	if role == RoleHost {
		return PathCreateBattle
	}
	return PathGenerate
}
