package handler

import (
	"encoding/json"
	"strings"

	"precheck/internal/eligibility/models"
	"precheck/internal/i18n"
	dErrors "precheck/pkg/domain-errors"
)

const maxRouteLength = 64

// StartRequest is the HTTP request body for POST /v1/sessions.
type StartRequest struct {
	Route string `json:"route"`
	Tier  string `json:"tier"`
}

// Validate implements httputil.Validatable.
func (r *StartRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if len(r.Route) > maxRouteLength {
		return dErrors.New(dErrors.CodeValidation, "route must be at most 64 characters")
	}
	r.Route = strings.TrimSpace(r.Route)
	if r.Route == "" {
		return dErrors.New(dErrors.CodeValidation, "route is required")
	}
	tier, err := models.ParseTier(r.Tier)
	if err != nil {
		return err
	}
	r.Tier = string(tier)
	return nil
}

// AnswerRequest is the HTTP request body for PUT /v1/sessions/{id}/answer.
// A null value clears the current answer.
type AnswerRequest struct {
	Value json.RawMessage `json:"value"`

	parsed any
}

// Validate implements httputil.Validatable.
func (r *AnswerRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if len(r.Value) == 0 {
		return dErrors.New(dErrors.CodeValidation, "value is required")
	}
	if err := json.Unmarshal(r.Value, &r.parsed); err != nil {
		return dErrors.New(dErrors.CodeBadRequest, "value must be valid JSON")
	}
	if _, isObject := r.parsed.(map[string]any); isObject {
		return dErrors.New(dErrors.CodeValidation, "value must be a scalar or a list")
	}
	return nil
}

// ParsedValue returns the decoded answer value.
func (r *AnswerRequest) ParsedValue() any {
	return r.parsed
}

// UpgradeRequest is the HTTP request body for POST /v1/sessions/{id}/upgrade.
type UpgradeRequest struct {
	Tier string `json:"tier"`
}

// Validate implements httputil.Validatable.
func (r *UpgradeRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	tier, err := models.ParseTier(r.Tier)
	if err != nil {
		return err
	}
	r.Tier = string(tier)
	return nil
}

// LanguageRequest is the HTTP request body for POST /v1/preferences/language.
type LanguageRequest struct {
	Language string `json:"language"`
}

// Validate implements httputil.Validatable.
func (r *LanguageRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	locale, ok := i18n.Normalize(r.Language)
	if !ok {
		return dErrors.New(dErrors.CodeValidation, "language must be one of "+strings.Join(i18n.Supported, ", "))
	}
	r.Language = locale
	return nil
}
