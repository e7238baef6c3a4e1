package auth

import (
	"context"
	"strconv"
)

// Role is the capability a caller holds.
type Role int

const (
	// RoleAnonymous callers carry no credential.
	RoleAnonymous Role = iota
	// RoleTeam callers act for exactly one team.
	RoleTeam
	// RoleAdmin callers see every team and disabled services.
	RoleAdmin
)

func (r Role) String() string {
	switch r {
	case RoleTeam:
		return "team"
	case RoleAdmin:
		return "admin"
	default:
		return "anonymous"
	}
}

// Caller is the authenticated identity of a request.
type Caller struct {
	Role   Role
	TeamID int // set only for RoleTeam
}

// Admin returns the administrator caller.
func Admin() Caller { return Caller{Role: RoleAdmin} }

// TeamMember returns a caller acting for teamID.
func TeamMember(teamID int) Caller { return Caller{Role: RoleTeam, TeamID: teamID} }

// IsAdmin reports whether c holds the admin capability.
func (c Caller) IsAdmin() bool { return c.Role == RoleAdmin }

// CanSeeTeam reports whether c may read teamID's private data.
func (c Caller) CanSeeTeam(teamID int) bool {
	return c.IsAdmin() || (c.Role == RoleTeam && c.TeamID == teamID)
}

// String renders the caller for access logs, e.g. "team:3".
func (c Caller) String() string {
	if c.Role == RoleTeam {
		return "team:" + strconv.Itoa(c.TeamID)
	}
	return c.Role.String()
}

type ctxKey struct{}

// WithCaller returns a copy of ctx carrying c.
func WithCaller(ctx context.Context, c Caller) context.Context {
	return context.WithValue(ctx, ctxKey{}, c)
}

// FromContext returns the caller stored in ctx, or an anonymous caller.
func FromContext(ctx context.Context) Caller {
	c, _ := ctx.Value(ctxKey{}).(Caller)
	return c
}

type holderKey struct{}

// Track returns a copy of ctx with a slot that Require fills with the
// resolved caller, so outer middleware can read it after the handler ran.
func Track(ctx context.Context) (context.Context, *Caller) {
	holder := &Caller{}
	return context.WithValue(ctx, holderKey{}, holder), holder
}
