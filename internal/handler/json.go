package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/hirehub-dev/hirehub/backend/internal/utils"
	"github.com/sirupsen/logrus"
)

const maxJSONBodySize = 1 << 20

type ErrorCode string

const (
	ErrCodeValidation       ErrorCode = "VALIDATION_ERROR"
	ErrCodeUnauthenticated  ErrorCode = "UNAUTHENTICATED"
	ErrCodeForbidden        ErrorCode = "FORBIDDEN"
	ErrCodeAccountBlocked   ErrorCode = "ACCOUNT_BLOCKED"
	ErrCodeNotFound         ErrorCode = "NOT_FOUND"
	ErrCodeMethodNotAllowed ErrorCode = "METHOD_NOT_ALLOWED"
	ErrCodeConflict         ErrorCode = "CONFLICT"
	ErrCodePayloadTooLarge  ErrorCode = "PAYLOAD_TOO_LARGE"
	ErrCodeInternal         ErrorCode = "INTERNAL"
	ErrCodeUnavailable      ErrorCode = "UNAVAILABLE"
)

type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

func (h *Handler) logInternalServerError(r *http.Request, err error) {
	entry := h.logger.WithFields(logrus.Fields{
		"method": r.Method,
		"path":   r.URL.Path,
	})
	if info := requestInfoFrom(r); info != nil {
		entry = entry.WithField("request_id", info.ID)
	}
	entry.WithError(err).Error("internal server error")
}

func (h *Handler) readJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodySize)

	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		var maxBytesErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxBytesErr):
			return err
		case errors.Is(err, io.EOF):
			return errors.New("request body must not be empty")
		case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
			return errors.New("request body contains malformed JSON")
		case errors.As(err, &typeErr) && typeErr.Field != "":
			return fmt.Errorf("%s has an invalid type", typeErr.Field)
		default:
			return err
		}
	}
	return nil
}

func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	js, err := json.Marshal(v)
	if err != nil {
		h.logInternalServerError(r, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(js)
}

func (h *Handler) messageResponse(w http.ResponseWriter, r *http.Request, status int, msg string) {
	h.writeJSON(w, r, status, MessageResponse{Message: msg})
}

func (h *Handler) errorResponse(w http.ResponseWriter, r *http.Request, status int, code ErrorCode, msg string) {
	h.writeJSON(w, r, status, ErrorResponse{Code: code, Message: msg})
}

// badRequest reports err as a validation failure. Validator errors are
// translated and only the first one is reported.
func (h *Handler) badRequest(w http.ResponseWriter, r *http.Request, err error) {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		h.payloadTooLarge(w, r, fmt.Sprintf("Request body must not exceed %d bytes", maxBytesErr.Limit))
		return
	}

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		h.errorResponse(w, r, http.StatusBadRequest, ErrCodeValidation, validationErrors[0].Translate(h.translator))
		return
	}

	h.errorResponse(w, r, http.StatusBadRequest, ErrCodeValidation, err.Error())
}

func (h *Handler) badRequestMessage(w http.ResponseWriter, r *http.Request, msg string) {
	h.errorResponse(w, r, http.StatusBadRequest, ErrCodeValidation, msg)
}

func (h *Handler) unauthorized(w http.ResponseWriter, r *http.Request, msg string) {
	h.errorResponse(w, r, http.StatusUnauthorized, ErrCodeUnauthenticated, msg)
}

func (h *Handler) forbidden(w http.ResponseWriter, r *http.Request, msg string) {
	h.errorResponse(w, r, http.StatusForbidden, ErrCodeForbidden, msg)
}

func (h *Handler) accountBlocked(w http.ResponseWriter, r *http.Request) {
	h.errorResponse(w, r, http.StatusForbidden, ErrCodeAccountBlocked, "Your account has been blocked")
}

func (h *Handler) notFound(w http.ResponseWriter, r *http.Request, msg string) {
	h.errorResponse(w, r, http.StatusNotFound, ErrCodeNotFound, msg)
}

func (h *Handler) conflict(w http.ResponseWriter, r *http.Request, msg string) {
	h.errorResponse(w, r, http.StatusConflict, ErrCodeConflict, msg)
}

func (h *Handler) payloadTooLarge(w http.ResponseWriter, r *http.Request, msg string) {
	h.errorResponse(w, r, http.StatusRequestEntityTooLarge, ErrCodePayloadTooLarge, msg)
}

func (h *Handler) internalServerError(w http.ResponseWriter, r *http.Request, err error) {
	h.logInternalServerError(r, err)
	h.errorResponse(w, r, http.StatusInternalServerError, ErrCodeInternal, "Internal server error")
}

// skillList accepts either a JSON array or a comma separated string.
type skillList []string

func (s *skillList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*s = utils.CleanSkills(list)
		return nil
	}

	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return errors.New("skills must be an array or a comma separated string")
	}
	*s = utils.ParseSkills(raw)
	return nil
}

func (s *skillList) slice() *[]string {
	if s == nil {
		return nil
	}
	list := []string(*s)
	return &list
}
