// Package httpapi expõe os formulários de feedback e lista de espera como
// endpoints JSON.
package httpapi

import (
	"errors"
	"net/http"
	"runtime/debug"

	"form-intake/intake/application"
	"form-intake/intake/domain"
	"form-intake/logger"
	"form-intake/middleware/ratelimit"

	"go.uber.org/zap"
)

type Handlers struct {
	feedback *application.FeedbackService
	waitlist *application.WaitlistService
	count    *application.CountService
	log      *zap.Logger
}

// NewHandlers aceita serviços nil: sem serviço o endpoint responde como
// "não configurado" (ou contagem 0) em vez de falhar.
func NewHandlers(fb *application.FeedbackService, wl *application.WaitlistService, cnt *application.CountService, log *zap.Logger) *Handlers {
	if log == nil {
		log = zap.NewNop()
	}
	if fb == nil {
		fb = &application.FeedbackService{Logger: log}
	}
	if wl == nil {
		wl = &application.WaitlistService{Logger: log}
	}
	if cnt == nil {
		cnt = &application.CountService{Logger: log}
	}
	return &Handlers{feedback: fb, waitlist: wl, count: cnt, log: log}
}

// Feedback trata POST /api/feedback.
func (h *Handlers) Feedback(w http.ResponseWriter, r *http.Request) {
	defer h.recoverWith(w, r, func() { writeError(w, http.StatusInternalServerError, msgFeedbackFailed) })

	var in application.FeedbackInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	if err := h.feedback.Submit(r.Context(), in, ratelimit.ClientIP(r.Header)); err != nil {
		h.fail(w, r, err, msgFeedbackFailed)
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true, Message: msgFeedbackThanks})
}

// Waitlist trata POST /api/waitlist.
func (h *Handlers) Waitlist(w http.ResponseWriter, r *http.Request) {
	defer h.recoverWith(w, r, func() { writeError(w, http.StatusInternalServerError, msgWaitlistFailed) })

	var in application.WaitlistInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	if err := h.waitlist.Join(r.Context(), in); err != nil {
		h.fail(w, r, err, msgWaitlistFailed)
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true, Message: msgWaitlistJoined})
}

// WaitlistCount trata GET /api/waitlist-count. Nunca responde erro.
func (h *Handlers) WaitlistCount(w http.ResponseWriter, r *http.Request) {
	defer h.recoverWith(w, r, func() { writeJSON(w, http.StatusOK, countResponse{}) })

	res := h.count.Count(r.Context())
	writeJSON(w, http.StatusOK, countResponse{Count: res.Count, Cached: res.Cached})
}

func (h *Handlers) fail(w http.ResponseWriter, r *http.Request, err error, generic string) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Message)
	case errors.Is(err, domain.ErrNotConfigured):
		writeError(w, http.StatusInternalServerError, msgNotConfigured)
	default:
		logger.FromContextOr(r.Context(), h.log).Error("request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, generic)
	}
}

func (h *Handlers) recoverWith(w http.ResponseWriter, r *http.Request, respond func()) {
	rec := recover()
	if rec == nil {
		return
	}
	logger.FromContextOr(r.Context(), h.log).Error("handler panic",
		zap.Any("panic", rec),
		zap.ByteString("stack", debug.Stack()),
	)
	respond()
}
