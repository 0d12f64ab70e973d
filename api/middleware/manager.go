package middleware

import "github.com/MonkyMars/gecho"

// Middleware bundles the catalog API's HTTP middleware: CORS, security
// headers, body limits and request metrics.
type Middleware struct {
	logger gecho.Logger
}

func NewMiddleware() *Middleware {
	return &Middleware{
		logger: *gecho.NewDefaultLogger(),
	}
}
