// Package router decodes device frames and dispatches them by kind.
package router

import (
	"go.uber.org/zap"

	"github.com/verte-zerg/morselive/internal/protocol"
)

// HandlerFunc handles one decoded frame.
type HandlerFunc func(protocol.Inbound)

// Router dispatches each frame to exactly one handler. Frames that fail to
// decode, and kinds without a handler, are dropped without side effects.
type Router struct {
	handlers map[string]HandlerFunc
	log      *zap.Logger
	dropped  int
}

// New returns an empty Router.
func New(logger *zap.Logger) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{handlers: map[string]HandlerFunc{}, log: logger}
}

// Handle registers fn for kind, replacing any earlier handler.
func (r *Router) Handle(kind string, fn HandlerFunc) {
	r.handlers[kind] = fn
}

// Dispatch decodes frame and runs its handler. It reports whether a handler ran.
func (r *Router) Dispatch(frame []byte) bool {
	msg, err := protocol.Decode(frame)
	if err != nil {
		r.dropped++
		r.log.Debug("frame dropped", zap.Error(err), zap.ByteString("frame", frame))
		return false
	}
	fn, ok := r.handlers[msg.Kind()]
	if !ok {
		r.dropped++
		r.log.Debug("no handler", zap.String("kind", msg.Kind()))
		return false
	}
	fn(msg)
	return true
}

// Dropped returns the number of frames discarded so far.
func (r *Router) Dropped() int {
	return r.dropped
}
