package handler

import (
	"time"

	"precheck/internal/checkout"
	"precheck/internal/eligibility/models"
	"precheck/internal/i18n"
	sessionModels "precheck/internal/session/models"
)

// SessionResponse describes a session's commercial state.
type SessionResponse struct {
	SessionID  string    `json:"session_id"`
	Status     string    `json:"status"`
	Route      string    `json:"route"`
	Tier       string    `json:"tier"`
	PricePence int64     `json:"price_pence"`
	Currency   string    `json:"currency"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// CheckoutResponse is returned by checkout and upgrade.
type CheckoutResponse struct {
	SessionResponse
	AccessToken string           `json:"access_token"`
	TokenType   string           `json:"token_type"`
	Receipt     checkout.Receipt `json:"receipt"`
}

// TierResponse is one entry of GET /v1/tiers.
type TierResponse struct {
	models.TierInfo
	Label string `json:"label"`
}

// LanguageResponse confirms a stored language preference.
type LanguageResponse struct {
	Language string `json:"language"`
	Message  string `json:"message"`
}

func toSessionResponse(s *sessionModels.Session) SessionResponse {
	return SessionResponse{
		SessionID:  s.ID.String(),
		Status:     string(s.Status()),
		Route:      string(s.Route),
		Tier:       string(s.Tier),
		PricePence: s.Tier.PricePence(),
		Currency:   "GBP",
		ExpiresAt:  s.ExpiresAt,
	}
}

func toCheckoutResponse(result *sessionModels.CheckoutResult) CheckoutResponse {
	return CheckoutResponse{
		SessionResponse: toSessionResponse(result.Session),
		AccessToken:     result.Token,
		TokenType:       "Bearer",
		Receipt:         result.Receipt,
	}
}

func toTierResponses(locale string) []TierResponse {
	tiers := models.Tiers()
	out := make([]TierResponse, 0, len(tiers))
	for _, info := range tiers {
		out = append(out, TierResponse{
			TierInfo: info,
			Label:    i18n.T(locale, "tier."+string(info.Tier)),
		})
	}
	return out
}
