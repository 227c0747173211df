package service

import (
	"github.com/vikrantan5/FitSphere-sub000/internal/apiclient"
	"github.com/vikrantan5/FitSphere-sub000/internal/session"
)

// Backends binds the shared REST client to one browser session, so every
// call carries that session's bearer token and a 401 clears that session.
type Backends struct {
	api      *apiclient.Client
	sessions *session.Manager
}

// NewBackends wires the REST client to the session manager.
func NewBackends(api *apiclient.Client, sessions *session.Manager) Backends {
	return Backends{api: api, sessions: sessions}
}

// For returns the client acting for sid.
func (b Backends) For(sid string) *apiclient.Client {
	return b.api.For(b.sessions.Scope(sid))
}

// Anonymous returns the client without credentials.
func (b Backends) Anonymous() *apiclient.Client {
	return b.api
}

// Sessions exposes the session manager.
func (b Backends) Sessions() *session.Manager {
	return b.sessions
}
