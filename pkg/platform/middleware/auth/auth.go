package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	id "precheck/pkg/domain"
	dErrors "precheck/pkg/domain-errors"
	"precheck/pkg/platform/httputil"
	"precheck/pkg/requestcontext"
)

// EntitlementValidator validates bearer entitlement tokens.
type EntitlementValidator interface {
	ValidateToken(tokenString string) (*EntitlementClaims, error)
}

// TokenRevocationChecker reports whether a still-valid token was superseded,
// e.g. by an upgrade, or belongs to a session that no longer exists.
type TokenRevocationChecker interface {
	IsTokenRevoked(ctx context.Context, sessionID id.SessionID, jti string) (bool, error)
}

// EntitlementClaims are the claims the middleware needs from a token.
type EntitlementClaims struct {
	SessionID string
	Tier      string
	JTI       string // token ID for revocation tracking
}

type contextKeyTier struct{}

// ContextKeyTier is exported for tests that build contexts by hand.
var ContextKeyTier = contextKeyTier{}

// GetTier returns the tier carried by the request's entitlement token.
func GetTier(ctx context.Context) string {
	tier, ok := ctx.Value(ContextKeyTier).(string)
	if !ok {
		return ""
	}
	return tier
}

// RequireEntitlement rejects requests without a valid, unrevoked bearer token
// and puts the entitled session ID into the request context.
func RequireEntitlement(validator EntitlementValidator, revocationChecker TokenRevocationChecker, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := requestcontext.RequestID(ctx)

			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || token == "" {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", requestID,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "Missing or invalid Authorization header"))
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", requestID,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "Invalid or expired token"))
				return
			}

			sessionID, err := id.ParseSessionID(claims.SessionID)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - token without session",
					"request_id", requestID,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "Invalid or expired token"))
				return
			}

			if revocationChecker != nil {
				revoked, err := revocationChecker.IsTokenRevoked(ctx, sessionID, claims.JTI)
				if err != nil {
					logger.ErrorContext(ctx, "failed to check token revocation",
						"error", err,
						"request_id", requestID,
					)
					httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "Failed to validate token"))
					return
				}
				if revoked {
					logger.WarnContext(ctx, "unauthorized access - token revoked",
						"jti", claims.JTI,
						"request_id", requestID,
					)
					httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "Token has been revoked"))
					return
				}
			}

			ctx = requestcontext.WithSessionID(ctx, sessionID)
			ctx = context.WithValue(ctx, ContextKeyTier, claims.Tier)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
