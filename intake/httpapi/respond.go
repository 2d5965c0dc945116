package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
)

// limite do corpo aceito pelos formulários
const maxBodyBytes = 64 << 10

const (
	msgInvalidBody      = "Invalid request body"
	msgMethodNotAllowed = "Method not allowed"
	msgNotFound         = "Not found"
	msgNotConfigured    = "Service is temporarily unavailable. Please try again later."
	msgFeedbackThanks   = "Thank you for your feedback!"
	msgFeedbackFailed   = "Failed to submit feedback. Please try again later."
	msgWaitlistJoined   = "You're on the waitlist! We'll be in touch soon."
	msgWaitlistFailed   = "Failed to join the waitlist. Please try again later."
)

type errorResponse struct {
	Error string `json:"error"`
}

type successResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type countResponse struct {
	Count  int  `json:"count"`
	Cached bool `json:"cached,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// decodeJSON lê um único objeto JSON do corpo, limitado a maxBodyBytes.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("trailing data after JSON body")
	}
	return nil
}

func methodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, msgMethodNotAllowed)
}

func notFound(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusNotFound, msgNotFound)
}
