package testutil

import (
	"net/http"

	id "precheck/pkg/domain"
	"precheck/pkg/requestcontext"
)

// WithSessionID adds an entitled session ID to the request context.
// This simulates what the entitlement middleware would do for paid sessions.
// If the sessionID is not a valid UUID, it will not be added to the context.
func WithSessionID(req *http.Request, sessionID string) *http.Request {
	if parsedSessionID, err := id.ParseSessionID(sessionID); err == nil {
		return req.WithContext(requestcontext.WithSessionID(req.Context(), parsedSessionID))
	}
	return req
}

// WithLocale sets the resolved response locale on the request context.
func WithLocale(req *http.Request, locale string) *http.Request {
	return req.WithContext(requestcontext.WithLocale(req.Context(), locale))
}
