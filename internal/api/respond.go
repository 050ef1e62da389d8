// FleetIDS - Log-based Intrusion Detection for Simulated Vehicle Fleets
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetids

package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/fleetids/internal/classifier"
	"github.com/tomtom215/fleetids/internal/features"
	"github.com/tomtom215/fleetids/internal/logging"
	"github.com/tomtom215/fleetids/internal/models"
	"github.com/tomtom215/fleetids/internal/validation"
)

// Error codes
const (
	ErrCodeValidation         = "VALIDATION_ERROR"
	ErrCodeBadRequest         = "BAD_REQUEST"
	ErrCodeBodyTooLarge       = "BODY_TOO_LARGE"
	ErrCodeEncoding           = "ENCODING_ERROR"
	ErrCodePrecondition       = "PRECONDITION_FAILED"
	ErrCodeTrainingInProgress = "TRAINING_IN_PROGRESS"
	ErrCodeNotImplemented     = "NOT_IMPLEMENTED"
	ErrCodeIntegrity          = "INTEGRITY_ERROR"
	ErrCodeUnavailable        = "SERVICE_UNAVAILABLE"
	ErrCodeInternal           = "INTERNAL_ERROR"
)

// sanitizeLogValue escapes control characters so request data cannot forge
// log lines.
func sanitizeLogValue(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			fmt.Fprintf(&b, "\\x%02x", r)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// respondJSON writes response with status.
func respondJSON(w http.ResponseWriter, status int, response *models.APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")

	data, err := json.Marshal(response)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}

func respondSuccess(w http.ResponseWriter, status int, data interface{}, start time.Time) {
	respondJSON(w, status, &models.APIResponse{
		Status: "success",
		Data:   data,
		Metadata: models.Metadata{
			Timestamp:  time.Now(),
			DurationMS: time.Since(start).Milliseconds(),
		},
	})
}

func respondError(w http.ResponseWriter, r *http.Request, status int, apiErr *models.APIError, err error) {
	if err != nil {
		ev := logging.Ctx(r.Context()).Warn()
		if status >= http.StatusInternalServerError {
			ev = logging.Ctx(r.Context()).Error()
		}
		ev.Str("code", apiErr.Code).
			Str("path", r.URL.Path).
			Str("error", sanitizeLogValue(err.Error())).
			Msg("API error")
	}

	respondJSON(w, status, &models.APIResponse{
		Status:   "error",
		Metadata: models.Metadata{Timestamp: time.Now()},
		Error:    apiErr,
	})
}

// respondFailure maps err onto a status code and error code.
func respondFailure(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classifyError(err)
	msg := err.Error()
	if status == http.StatusInternalServerError && code == ErrCodeInternal {
		msg = "internal error"
	}
	respondError(w, r, status, &models.APIError{Code: code, Message: msg}, err)
}

func classifyError(err error) (int, string) {
	var maxBytes *http.MaxBytesError
	switch {
	case errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge, ErrCodeBodyTooLarge
	case errors.Is(err, classifier.ErrTrainingInProgress):
		return http.StatusConflict, ErrCodeTrainingInProgress
	case errors.Is(err, classifier.ErrPrecondition):
		return http.StatusConflict, ErrCodePrecondition
	case errors.Is(err, features.ErrEncoding):
		return http.StatusUnprocessableEntity, ErrCodeEncoding
	case errors.Is(err, classifier.ErrNotImplemented):
		return http.StatusNotImplemented, ErrCodeNotImplemented
	case errors.Is(err, classifier.ErrIntegrity):
		return http.StatusInternalServerError, ErrCodeIntegrity
	default:
		return http.StatusInternalServerError, ErrCodeInternal
	}
}

// decodeBody parses a JSON body into dst and validates it.
func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			respondFailure(w, r, err)
			return false
		}
		respondError(w, r, http.StatusBadRequest, &models.APIError{
			Code:    ErrCodeBadRequest,
			Message: "invalid JSON body",
		}, err)
		return false
	}
	if verr := validation.ValidateStruct(dst); verr != nil {
		apiErr := verr.ToAPIError()
		respondError(w, r, http.StatusBadRequest, &models.APIError{
			Code:    apiErr.Code,
			Message: apiErr.Message,
			Details: apiErr.Details,
		}, verr)
		return false
	}
	return true
}
