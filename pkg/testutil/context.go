package testutil

import (
	"net/http"

	"rollcall/pkg/requestcontext"
)

// WithOrigin sets the client address the metadata middleware would resolve,
// for handlers exercised without the router.
func WithOrigin(req *http.Request, ip string) *http.Request {
	ctx := requestcontext.WithClientMetadata(req.Context(), ip, req.UserAgent())
	return req.WithContext(ctx)
}
