package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/woodcraft-atelier/api/internal/platform/httpx"
	"github.com/woodcraft-atelier/api/internal/platform/pagination"
	"github.com/woodcraft-atelier/api/internal/platform/requestctx"
	"github.com/woodcraft-atelier/api/internal/query"
	"github.com/woodcraft-atelier/api/internal/repositories"
	"github.com/woodcraft-atelier/api/internal/services"
)

const (
	maxJSONBody       = 256 * 1024
	retryAfterSeconds = 5
)

var errBodyRequired = errors.New("request body required")

// writeServiceError maps service and repository failures onto the error envelope.
func writeServiceError(ctx context.Context, w http.ResponseWriter, err error, resource string) {
	if err == nil {
		return
	}
	if resource == "" {
		resource = "resource"
	}

	var validationErr *services.ValidationError
	var filterErr *query.InvalidFilterError
	switch {
	case errors.As(err, &validationErr):
		httpx.WriteError(ctx, w, httpx.ValidationError("", validationErr.Fields))
	case errors.As(err, &filterErr):
		httpx.WriteError(ctx, w, httpx.NewError(httpx.CodeInvalidFilter, filterErr.Error(), http.StatusBadRequest).
			WithDetails(map[string]any{"field": filterErr.Field}))
	case errors.Is(err, pagination.ErrInvalidPageToken):
		httpx.WriteError(ctx, w, httpx.NewError(httpx.CodeInvalidPageToken, "page token is invalid or was issued for a different query", http.StatusBadRequest))
	case errors.Is(err, pagination.ErrInvalidPageSize):
		httpx.WriteError(ctx, w, httpx.NewError(httpx.CodeInvalidRequest, err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrNotFound), repositories.IsNotFound(err):
		httpx.WriteError(ctx, w, httpx.NewError(httpx.CodeNotFound, fmt.Sprintf("%s not found", resource), http.StatusNotFound))
	case errors.Is(err, services.ErrMediaTooLarge):
		httpx.WriteError(ctx, w, httpx.NewError(httpx.CodeTooLarge, err.Error(), http.StatusRequestEntityTooLarge))
	case errors.Is(err, services.ErrMediaUnsupportedType):
		httpx.WriteError(ctx, w, httpx.NewError(httpx.CodeUnsupportedMedia, err.Error(), http.StatusUnsupportedMediaType))
	case repositories.IsUnavailable(err), errors.Is(err, context.DeadlineExceeded):
		requestctx.Logger(ctx).Warn("store unavailable", zap.String("resource", resource), zap.Error(err))
		httpx.WriteError(ctx, w, httpx.Unavailable("", retryAfterSeconds))
	default:
		requestctx.Logger(ctx).Error("request failed", zap.String("resource", resource), zap.Error(err))
		httpx.WriteError(ctx, w, httpx.NewError(httpx.CodeInternal, "internal error", http.StatusInternalServerError))
	}
}

func writeBadRequest(ctx context.Context, w http.ResponseWriter, message string) {
	httpx.WriteError(ctx, w, httpx.NewError(httpx.CodeInvalidRequest, message, http.StatusBadRequest))
}

// decodeJSON reads a single JSON document into dst, rejecting unknown fields.
func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return errBodyRequired
	}
	defer r.Body.Close()
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errBodyRequired
		}
		return fmt.Errorf("invalid request body: %w", err)
	}
	if decoder.More() {
		return errors.New("invalid request body: trailing data")
	}
	return nil
}

func trimmedParam(r *http.Request, name string) string {
	return strings.TrimSpace(r.URL.Query().Get(name))
}
