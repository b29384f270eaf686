package response

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/shashiranjanraj/catalog/pkg/apperr"
	"github.com/shashiranjanraj/catalog/pkg/logger"
)

type envelope struct {
	Success    bool        `json:"success"`
	Message    string      `json:"message"`
	Data       interface{} `json:"data,omitempty"`
	Pagination interface{} `json:"pagination,omitempty"`
	Error      *errorBody  `json:"error,omitempty"`
}

type errorBody struct {
	Code    string      `json:"code"`
	Details interface{} `json:"details"`
}

// Pagination is the page metadata attached to list responses.
type Pagination struct {
	CurrentPage     int   `json:"currentPage"`
	TotalPages      int   `json:"totalPages"`
	TotalItems      int64 `json:"totalItems"`
	ItemsPerPage    int   `json:"itemsPerPage"`
	HasNextPage     bool  `json:"hasNextPage"`
	HasPreviousPage bool  `json:"hasPreviousPage"`
}

func write(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body) //nolint:errcheck
}

// Success sends a 200 envelope with a message and data.
func Success(w http.ResponseWriter, message string, data interface{}) {
	write(w, http.StatusOK, envelope{Success: true, Message: message, Data: data})
}

// Created sends a 201 envelope.
func Created(w http.ResponseWriter, message string, data interface{}) {
	write(w, http.StatusCreated, envelope{Success: true, Message: message, Data: data})
}

// Paginated sends a 200 envelope with data and pagination metadata.
func Paginated(w http.ResponseWriter, message string, data interface{}, pagination Pagination) {
	write(w, http.StatusOK, envelope{Success: true, Message: message, Data: data, Pagination: pagination})
}

// Error sends a failure envelope for a classified error.
func Error(w http.ResponseWriter, err *apperr.Error) {
	write(w, err.Status, envelope{
		Message: err.Message,
		Error:   &errorBody{Code: err.Code, Details: err.Details},
	})
}

// Fail answers any error. Unclassified errors are logged with the request
// logger and become a generic 500.
func Fail(ctx context.Context, w http.ResponseWriter, err error) {
	appErr, ok := apperr.As(err)
	if !ok {
		appErr = apperr.Internal(err)
	}
	if appErr.Status >= http.StatusInternalServerError {
		logger.WithCtx(ctx).Error("request failed", "code", appErr.Code, "error", err)
	}
	Error(w, appErr)
}

func Unauthorized(w http.ResponseWriter, details string) { Error(w, apperr.Unauthorized(details)) }

func Forbidden(w http.ResponseWriter, details string) { Error(w, apperr.Forbidden(details)) }

func NotFound(w http.ResponseWriter, message string) { Error(w, apperr.NotFound(message)) }
