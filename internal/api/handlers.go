package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"partner-intake/internal/common/logger"
	"partner-intake/internal/invitations"
	"partner-intake/internal/sessions"
)

// SessionService is implemented by sessions.Manager.
type SessionService interface {
	Start(ctx context.Context, marketType, targetMarket, contactID string) (*sessions.View, error)
	Get(ctx context.Context, id string) (*sessions.View, error)
	Apply(ctx context.Context, id string, mutations []sessions.Mutation) (*sessions.View, error)
	Next(ctx context.Context, id string) (*sessions.Outcome, error)
	Previous(ctx context.Context, id string) (*sessions.View, error)
	Submit(ctx context.Context, id string) (*sessions.Outcome, error)
	Discard(ctx context.Context, id string) error
}

// Inviter is implemented by invitations.Service.
type Inviter interface {
	Invite(ctx context.Context, contactID string) (*invitations.Result, error)
}

type SessionHandler struct {
	svc       SessionService
	validator *requestValidator
	logger    logger.Logger
}

func NewSessionHandler(svc SessionService, log logger.Logger) *SessionHandler {
	return &SessionHandler{svc: svc, validator: newRequestValidator(), logger: log.Component("api")}
}

func (h *SessionHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req startSessionRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := h.validator.check(req); err != nil {
		writeError(w, err)
		return
	}
	v, err := h.svc.Start(r.Context(), req.MarketType, req.TargetMarket, req.ContactID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, v)
}

func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	v, err := h.svc.Get(r.Context(), chi.URLParam(r, "sessionId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *SessionHandler) Apply(w http.ResponseWriter, r *http.Request) {
	var req applyAnswersRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := h.validator.check(req); err != nil {
		writeError(w, err)
		return
	}
	v, err := h.svc.Apply(r.Context(), chi.URLParam(r, "sessionId"), req.toMutations())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *SessionHandler) Next(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.Next(r.Context(), chi.URLParam(r, "sessionId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeOutcome(w, out)
}

func (h *SessionHandler) Previous(w http.ResponseWriter, r *http.Request) {
	v, err := h.svc.Previous(r.Context(), chi.URLParam(r, "sessionId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *SessionHandler) Submit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionId")
	out, err := h.svc.Submit(r.Context(), id)
	if err != nil {
		h.logger.Warn("submit rejected", map[string]interface{}{"sessionId": id, "error": err})
		writeError(w, err)
		return
	}
	writeOutcome(w, out)
}

func (h *SessionHandler) Discard(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Discard(r.Context(), chi.URLParam(r, "sessionId")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// writeOutcome answers 422 when validation refused the transition; the body
// still carries the unchanged view so the client can redraw.
func writeOutcome(w http.ResponseWriter, out *sessions.Outcome) {
	if len(out.Messages) > 0 {
		writeJSON(w, http.StatusUnprocessableEntity, out)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

type InvitationHandler struct {
	svc Inviter
}

func NewInvitationHandler(svc Inviter) *InvitationHandler {
	return &InvitationHandler{svc: svc}
}

func (h *InvitationHandler) Send(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Invite(r.Context(), chi.URLParam(r, "contactId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, res)
}
