// Package entitlement issues and validates the signed tokens that prove a
// session was paid for at a given tier.
package entitlement

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"precheck/internal/eligibility/models"
	id "precheck/pkg/domain"
	dErrors "precheck/pkg/domain-errors"
	authmw "precheck/pkg/platform/middleware/auth"
)

// Claims are the entitlement token claims.
type Claims struct {
	SessionID string `json:"sid"`
	Route     string `json:"route"`
	Tier      string `json:"tier"`
	jwt.RegisteredClaims
}

// Token is a signed entitlement and the claims it carries.
type Token struct {
	Value     string      `json:"token"`
	ID        string      `json:"-"`
	Tier      models.Tier `json:"tier"`
	ExpiresAt time.Time   `json:"expires_at"`
}

// Service signs entitlements with HS256.
type Service struct {
	signingKey []byte
	issuer     string
	audience   string
}

func NewService(signingKey, issuer, audience string) *Service {
	return &Service{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		audience:   audience,
	}
}

// Issue signs an entitlement for a paid session.
func (s *Service) Issue(sessionID id.SessionID, route models.Route, tier models.Tier, now time.Time, expiresIn time.Duration) (*Token, error) {
	jti := uuid.NewString()
	expiresAt := now.Add(expiresIn)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		SessionID: sessionID.String(),
		Route:     string(route),
		Tier:      string(tier),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.issuer,
			Audience:  []string{s.audience},
			ID:        jti,
		},
	})

	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to sign entitlement")
	}
	return &Token{Value: signed, ID: jti, Tier: tier, ExpiresAt: expiresAt}, nil
}

// Validate verifies the signature, expiry, issuer and audience of a token.
func (s *Service) Validate(tokenString string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	}, jwt.WithIssuer(s.issuer), jwt.WithAudience(s.audience))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "token has expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	if _, err := id.ParseSessionID(claims.SessionID); err != nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	return claims, nil
}

// ValidateToken satisfies the entitlement middleware's validator.
func (s *Service) ValidateToken(tokenString string) (*authmw.EntitlementClaims, error) {
	claims, err := s.Validate(tokenString)
	if err != nil {
		return nil, err
	}
	return &authmw.EntitlementClaims{
		SessionID: claims.SessionID,
		Tier:      claims.Tier,
		JTI:       claims.ID,
	}, nil
}
