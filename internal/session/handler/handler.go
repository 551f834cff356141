package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"precheck/internal/i18n"
	rlmodels "precheck/internal/ratelimit/models"
	"precheck/internal/report"
	"precheck/internal/session/models"
	id "precheck/pkg/domain"
	dErrors "precheck/pkg/domain-errors"
	"precheck/pkg/platform/httputil"
	"precheck/pkg/requestcontext"
)

const languageCookieMaxAge = 365 * 24 * 60 * 60

// Service defines the pre-check session operations the handler needs.
type Service interface {
	Start(ctx context.Context, route, tier string) (*models.Session, error)
	Checkout(ctx context.Context, sessionID id.SessionID) (*models.CheckoutResult, error)
	Current(ctx context.Context, sessionID id.SessionID) (*models.QuestionView, error)
	Answer(ctx context.Context, sessionID id.SessionID, value any) (*models.QuestionView, error)
	Next(ctx context.Context, sessionID id.SessionID) (*models.QuestionView, error)
	Back(ctx context.Context, sessionID id.SessionID) (*models.QuestionView, error)
	Upgrade(ctx context.Context, sessionID id.SessionID, tier string) (*models.CheckoutResult, error)
	Cancel(ctx context.Context, sessionID id.SessionID) error
	Report(ctx context.Context, sessionID id.SessionID, locale string) (*report.Report, error)
}

// RateLimiter builds per-IP limiting middleware for an endpoint class.
type RateLimiter interface {
	RateLimit(class rlmodels.EndpointClass) func(http.Handler) http.Handler
}

// Handler wires pre-check endpoints to the session service.
type Handler struct {
	service     Service
	logger      *slog.Logger
	entitlement func(http.Handler) http.Handler
	limiter     RateLimiter
}

type Option func(*Handler)

// WithRateLimiter limits checkout, write and read endpoints by client IP.
func WithRateLimiter(limiter RateLimiter) Option {
	return func(h *Handler) {
		h.limiter = limiter
	}
}

// New constructs a handler. requireEntitlement guards every endpoint that
// needs a paid session; it must put the entitled session ID in the context.
func New(service Service, logger *slog.Logger, requireEntitlement func(http.Handler) http.Handler, opts ...Option) *Handler {
	h := &Handler{
		service:     service,
		logger:      logger,
		entitlement: requireEntitlement,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register mounts pre-check endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	read := h.limit(rlmodels.ClassRead)
	write := h.limit(rlmodels.ClassWrite)
	payment := h.limit(rlmodels.ClassCheckout)

	r.With(read).Get("/v1/tiers", h.HandleTiers)
	r.With(write).Post("/v1/preferences/language", h.HandleSetLanguage)
	r.With(payment).Post("/v1/sessions", h.HandleStart)
	r.With(payment).Post("/v1/sessions/{id}/checkout", h.HandleCheckout)

	r.Group(func(r chi.Router) {
		if h.entitlement != nil {
			r.Use(h.entitlement)
		}
		r.With(read).Get("/v1/sessions/{id}/question", h.HandleCurrent)
		r.With(write).Put("/v1/sessions/{id}/answer", h.HandleAnswer)
		r.With(write).Post("/v1/sessions/{id}/next", h.HandleNext)
		r.With(write).Post("/v1/sessions/{id}/back", h.HandleBack)
		r.With(payment).Post("/v1/sessions/{id}/upgrade", h.HandleUpgrade)
		r.With(write).Delete("/v1/sessions/{id}", h.HandleCancel)
		r.With(read).Get("/v1/sessions/{id}/report", h.HandleReport)
	})
}

func (h *Handler) limit(class rlmodels.EndpointClass) func(http.Handler) http.Handler {
	if h.limiter == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return h.limiter.RateLimit(class)
}

// HandleTiers handles GET /v1/tiers.
func (h *Handler) HandleTiers(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"tiers": toTierResponses(requestcontext.Locale(r.Context())),
	})
}

// HandleSetLanguage handles POST /v1/preferences/language.
func (h *Handler) HandleSetLanguage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[LanguageRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     i18n.CookieName,
		Value:    req.Language,
		Path:     "/",
		MaxAge:   languageCookieMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	httputil.WriteJSON(w, http.StatusOK, LanguageResponse{
		Language: req.Language,
		Message:  i18n.T(req.Language, "preferences.updated"),
	})
}

// HandleStart handles POST /v1/sessions.
func (h *Handler) HandleStart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[StartRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	session, err := h.service.Start(ctx, req.Route, req.Tier)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to start precheck session",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toSessionResponse(session))
}

// HandleCheckout handles POST /v1/sessions/{id}/checkout.
func (h *Handler) HandleCheckout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	sessionID, err := id.ParseSessionID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	result, err := h.service.Checkout(ctx, sessionID)
	if err != nil {
		h.logCheckoutFailure(ctx, "checkout failed", sessionID, requestID, err)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "checkout completed",
		"request_id", requestID,
		"session_id", sessionID.String(),
		"tier", string(result.Session.Tier),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, toCheckoutResponse(result))
}

// HandleCurrent handles GET /v1/sessions/{id}/question.
func (h *Handler) HandleCurrent(w http.ResponseWriter, r *http.Request) {
	h.handleStep(w, r, h.service.Current)
}

// HandleAnswer handles PUT /v1/sessions/{id}/answer.
func (h *Handler) HandleAnswer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID, ok := h.entitledSession(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[AnswerRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	view, err := h.service.Answer(ctx, sessionID, req.ParsedValue())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, view)
}

// HandleNext handles POST /v1/sessions/{id}/next.
func (h *Handler) HandleNext(w http.ResponseWriter, r *http.Request) {
	h.handleStep(w, r, h.service.Next)
}

// HandleBack handles POST /v1/sessions/{id}/back.
func (h *Handler) HandleBack(w http.ResponseWriter, r *http.Request) {
	h.handleStep(w, r, h.service.Back)
}

// HandleUpgrade handles POST /v1/sessions/{id}/upgrade.
func (h *Handler) HandleUpgrade(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	sessionID, ok := h.entitledSession(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[UpgradeRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	result, err := h.service.Upgrade(ctx, sessionID, req.Tier)
	if err != nil {
		h.logCheckoutFailure(ctx, "upgrade failed", sessionID, requestID, err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toCheckoutResponse(result))
}

// HandleCancel handles DELETE /v1/sessions/{id}.
func (h *Handler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID, ok := h.entitledSession(w, r)
	if !ok {
		return
	}
	if err := h.service.Cancel(ctx, sessionID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleReport handles GET /v1/sessions/{id}/report.
func (h *Handler) HandleReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	sessionID, ok := h.entitledSession(w, r)
	if !ok {
		return
	}

	result, err := h.service.Report(ctx, sessionID, requestcontext.Locale(ctx))
	if err != nil {
		if dErrors.CodeOf(err) == dErrors.CodeInternal {
			h.logger.ErrorContext(ctx, "report generation failed",
				"request_id", requestID,
				"session_id", sessionID.String(),
				"error", err,
			)
		}
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) handleStep(w http.ResponseWriter, r *http.Request, fn func(context.Context, id.SessionID) (*models.QuestionView, error)) {
	sessionID, ok := h.entitledSession(w, r)
	if !ok {
		return
	}
	view, err := fn(r.Context(), sessionID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, view)
}

// entitledSession parses the path session and checks it is the one the
// bearer token was issued for.
func (h *Handler) entitledSession(w http.ResponseWriter, r *http.Request) (id.SessionID, bool) {
	ctx := r.Context()
	sessionID, err := id.ParseSessionID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return id.SessionID{}, false
	}
	entitled := requestcontext.SessionID(ctx)
	if entitled.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "entitlement required"))
		return id.SessionID{}, false
	}
	if entitled != sessionID {
		h.logger.WarnContext(ctx, "entitlement does not match session",
			"request_id", requestcontext.RequestID(ctx),
			"session_id", sessionID.String(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "token is not valid for this session"))
		return id.SessionID{}, false
	}
	return sessionID, true
}

func (h *Handler) logCheckoutFailure(ctx context.Context, msg string, sessionID id.SessionID, requestID string, err error) {
	level := slog.LevelWarn
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		level = slog.LevelError
	}
	h.logger.Log(ctx, level, msg,
		"request_id", requestID,
		"session_id", sessionID.String(),
		"error", err,
	)
}
