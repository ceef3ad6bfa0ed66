package service

import (
	"taskpoints-service/internal/model"
)

// GuardAction is what the caller should do with a routing request
type GuardAction int

const (
	// GuardWait means session resolution is still in flight; render nothing.
	GuardWait GuardAction = iota
	// GuardRedirect means the principal may not see the route; Target holds
	// where to send them instead.
	GuardRedirect
	// GuardAllow means the protected content may render.
	GuardAllow
)

// GuardInput are the facts the route guard decides on
type GuardInput struct {
	Loading           bool
	Authenticated     bool
	Profile           *model.UserProfile
	RequiredRoles     []string
	RequireSuperAdmin bool
	RouteTenantID     string
}

// GuardDecision is the outcome of a guard evaluation
type GuardDecision struct {
	Action GuardAction
	Target string
}

// Guard decides whether a role-scoped view may render, first match wins:
//
//  1. still loading: wait
//  2. no identity: tenant-scoped login when the route names a tenant
//  3. identity without profile: profile completion
//  4. super-admin route without the flag: home
//  5. role not in the required set: the principal's own dashboard, computed
//     from their profile, never from the attempted route's tenant
//  6. otherwise: allow
//
// Every redirect target re-validates under the same rules, and a computed
// dashboard always matches the principal's own role, so no redirect loop can
// form.
func Guard(in GuardInput) GuardDecision {
	if in.Loading {
		return GuardDecision{Action: GuardWait}
	}

	if !in.Authenticated {
		target := "/login"
		if in.RouteTenantID != "" {
			target = "/" + in.RouteTenantID + "/login"
		}
		return GuardDecision{Action: GuardRedirect, Target: target}
	}

	if in.Profile == nil {
		return GuardDecision{Action: GuardRedirect, Target: "/complete-profile"}
	}

	if in.RequireSuperAdmin && !in.Profile.IsSuperAdmin {
		return GuardDecision{Action: GuardRedirect, Target: "/"}
	}

	if len(in.RequiredRoles) > 0 && !roleAllowed(in.Profile, in.RequiredRoles) {
		return GuardDecision{Action: GuardRedirect, Target: in.Profile.DashboardPath()}
	}

	return GuardDecision{Action: GuardAllow}
}

func roleAllowed(p *model.UserProfile, roles []string) bool {
	for _, role := range roles {
		if p.Role == role {
			return true
		}
	}
	return false
}
