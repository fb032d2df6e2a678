// Package web renders the arena's HTML pages and the navigation shell with
// templ components.
package web

import (
	"github.com/promptartclash/arena/cmd/arenaapi/internal/access"
)

// Link is one navigation entry.
type Link struct {
	Label  string `json:"label"`
	Href   string `json:"href"`
	Active bool   `json:"active"`
}

// Shell is the navigation state for one request: the links for the effective
// role plus the account links for the current identity.
type Shell struct {
	Role          string `json:"role"`
	Phase         string `json:"phase"`
	Authenticated bool   `json:"authenticated"`
	Links         []Link `json:"links"`
	Account       []Link `json:"account"`
	CurrentPath   string `json:"current_path"`
}

var (
	participantLinks = []Link{
		{Label: "Generate", Href: access.PathGenerate},
		{Label: "Gallery", Href: access.PathGallery},
		{Label: "Leaderboard", Href: access.PathLeaderboard},
		{Label: "Competitions", Href: access.PathJoinCompetition},
	}
	hostLinks = []Link{
		{Label: "Create Competition", Href: access.PathCreateBattle},
	}
	signedInLinks = []Link{
		{Label: "Profile", Href: access.PathProfile},
		{Label: "Sign out", Href: access.PathLogout},
	}
	signedOutLinks = []Link{
		{Label: "Login", Href: access.PathLogin},
		{Label: "Sign up", Href: access.PathSignup},
	}
)

// BuildShell derives the navigation for a view at currentPath. It never
// blocks on the profile: a view still loading its profile resolves from the
// role flag.
func BuildShell(view access.View, currentPath string) Shell {
	role := view.Role()
	roleLinks := participantLinks
	if role == access.RoleHost {
		roleLinks = hostLinks
	}
	account := signedOutLinks
	if view.Authenticated() {
		account = signedInLinks
	}
	return Shell{
		Role:          role.String(),
		Phase:         view.Phase().String(),
		Authenticated: view.Authenticated(),
		Links:         markActive(roleLinks, currentPath),
		Account:       markActive(account, currentPath),
		CurrentPath:   currentPath,
	}
}

func markActive(links []Link, currentPath string) []Link {
	out := make([]Link, len(links))
	for i, l := range links {
		l.Active = l.Href == currentPath
		out[i] = l
	}
	return out
}
