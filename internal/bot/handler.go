// Package bot provides the classification and dispatch core of the VK bot:
// the per-callback Context, the ordered handler Registry and the Dispatcher
// that ties them together.
package bot

import (
	"context"
)

// HandlerFunc is user handling logic bound to a registration.
// It returns at most one reply; a nil reply means nothing is sent.
//
// The context carries request tracing values and the processing deadline.
// Handlers must not retain c after returning.
type HandlerFunc func(ctx context.Context, c *Context) (*Reply, error)

// Respond returns a HandlerFunc that always answers with text.
func Respond(text string) HandlerFunc {
	return func(context.Context, *Context) (*Reply, error) {
		return Text(text), nil
	}
}
