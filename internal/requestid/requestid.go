// Package requestid carries a per-request correlation id between the HTTP
// layer, the logs and outgoing UMS API calls.
package requestid

import (
	"context"

	"github.com/google/uuid"
)

// Header is the header used both on incoming requests and on calls to the API.
const Header = "X-Request-ID"

type contextKey struct{}

func New() string {
	return uuid.NewString()
}

func NewContext(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// FromContext returns the request id or "" when none was set.
func FromContext(ctx context.Context) string {
	id, _ := ctx.Value(contextKey{}).(string)
	return id
}
