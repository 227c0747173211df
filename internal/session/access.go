package session

import "github.com/vikrantan5/FitSphere-sub000/internal/domain"

// LoginPath is where every failed access check sends the browser.
const LoginPath = "/login"

// Access is the outcome of a client-side role check. It only shapes what the
// dashboard shows; the backend authorizes every request on its own.
type Access struct {
	Allowed    bool
	RedirectTo string
}

// Allow is the positive outcome.
var Allow = Access{Allowed: true}

// RedirectTo builds a denial that navigates to path.
func RedirectTo(path string) Access {
	return Access{RedirectTo: path}
}

// ResolveAccess checks that a valid session exists and carries the required
// role. An empty required role means "any signed-in user".
func ResolveAccess(s domain.Session, required domain.Role) Access {
	if !s.Valid() {
		return RedirectTo(LoginPath)
	}
	if required != "" && s.Role != required {
		return RedirectTo(LoginPath)
	}
	return Allow
}
