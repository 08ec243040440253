// Package httpapi assembles the process-wide router. Each module handler
// registers its own routes and middleware; this package owns the one chi mux
// they all share.
package httpapi

import (
	"github.com/go-chi/chi/v5"
)

// Registrar is the registration surface of a module handler.
type Registrar interface {
	Register(r chi.Router)
}

// NewRouter builds the shared router and registers every module on it. Module
// routes must not overlap; chi panics at startup if they do.
func NewRouter(modules ...Registrar) chi.Router {
	r := chi.NewRouter()
	for _, module := range modules {
		module.Register(r)
	}
	return r
}
