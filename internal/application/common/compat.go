package common

import (
	"github.com/andrescamacho/remoteminer-go/internal/application/mediator"
)

// Mediator types re-exported for handler packages
type (
	Request        = mediator.Request
	Response       = mediator.Response
	RequestHandler = mediator.RequestHandler
	HandlerFunc    = mediator.HandlerFunc
	Middleware     = mediator.Middleware
	Mediator       = mediator.Mediator
)

var (
	NewMediator = mediator.NewMediator
)

// RegisterHandler is generic and must be called from the mediator package:
// mediator.RegisterHandler[MyCommand](m, handler)
