package observability

import "go.uber.org/zap"

// Re-exported zap field constructors so call sites outside the HTTP layer
// do not need to import zap directly.
var (
	String  = zap.String
	Int     = zap.Int
	Float64 = zap.Float64
	Error   = zap.Error
)
