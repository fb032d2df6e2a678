package access

import (
	_ "embed"
	"fmt"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"github.com/casbin/casbin/v2/util"
)

//go:embed model.conf
var casbinModelContent string

// Outcome is the result of guarding a request.
type Outcome uint8

const (
	// Render lets the request through to its handler.
	Render Outcome = iota
	// Redirect sends the visitor to the role selection page.
	Redirect
	// NotFound means no route in the table matches the path.
	NotFound
)

func (o Outcome) String() string {
	switch o {
	case Render:
		return "render"
	case Redirect:
		return "redirect"
	default:
		return "not_found"
	}
}

// Decision is what the guard tells the transport layer to do.
type Decision struct {
	Outcome  Outcome
	Location string
}

// Guard evaluates the route-permission table. It holds no per-visitor state:
// every call is decided from its arguments alone.
type Guard struct {
	routes   []Route
	enforcer *casbin.SyncedEnforcer
}

// NewGuard compiles the route table into a casbin enforcer.
func NewGuard(routes []Route) (*Guard, error) {
	m, err := model.NewModelFromString(casbinModelContent)
	if err != nil {
		return nil, fmt.Errorf("parse casbin model: %w", err)
	}

	enforcer, err := casbin.NewSyncedEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("create casbin enforcer: %w", err)
	}

	rules := make([][]string, 0, len(routes)*2)
	for _, rt := range routes {
		rules = append(rules, policiesFor(rt)...)
	}
	if len(rules) > 0 {
		if _, err := enforcer.AddPolicies(rules); err != nil {
			return nil, fmt.Errorf("load route policies: %w", err)
		}
	}

	return &Guard{
		routes:   append([]Route(nil), routes...),
		enforcer: enforcer,
	}, nil
}

// MustNewGuard is NewGuard for package-level tables known to be valid.
func MustNewGuard(routes []Route) *Guard {
	g, err := NewGuard(routes)
	if err != nil {
		panic(err)
	}
	return g
}

func policiesFor(rt Route) [][]string {
	act := rt.action()
	switch rt.Requirement {
	case HostOnly:
		return [][]string{{RoleHost.Subject(), rt.Pattern, act}}
	case ParticipantOnly:
		return [][]string{{RoleParticipant.Subject(), rt.Pattern, act}}
	default:
		return [][]string{{"*", rt.Pattern, act}}
	}
}

// Decide returns the decision for a method and path under the given effective role.
func (g *Guard) Decide(method, path string, role Role) Decision {
	if !g.Known(path) {
		return Decision{Outcome: NotFound}
	}

	allowed, err := g.enforcer.Enforce(role.Subject(), path, method)
	if err != nil || !allowed {
		return Decision{Outcome: Redirect, Location: PathSelectRole}
	}
	return Decision{Outcome: Render}
}

// Known reports whether any route in the table matches path, regardless of method.
func (g *Guard) Known(path string) bool {
	for _, rt := range g.routes {
		if util.KeyMatch2(path, rt.Pattern) {
			return true
		}
	}
	return false
}

// Allows is a convenience for shell rendering: may role open path with GET?
func (g *Guard) Allows(path string, role Role) bool {
	return g.Decide("GET", path, role).Outcome == Render
}

// Routes returns a copy of the compiled table.
func (g *Guard) Routes() []Route {
	return append([]Route(nil), g.routes...)
}
