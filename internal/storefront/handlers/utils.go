package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"smm-market/internal/storefront/data"
	"smm-market/internal/storefront/providerapi"
	"smm-market/internal/storefront/service"
	"smm-market/pkg/logging"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type errorResponse struct {
	Error string `json:"error"`
}

func closeBody(ctx context.Context, body io.ReadCloser, logger *logging.ZapLogger) {
	err := body.Close()
	if err != nil {
		logger.ErrorCtx(ctx, "failed to close body", zap.Error(err))
	}
}

func decodeJSON[T any](r io.Reader) (T, error) {
	var out T
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()
	err := decoder.Decode(&out)
	return out, err
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, responseItem any, logger *logging.ZapLogger) {
	res, err := json.Marshal(responseItem)
	if err != nil {
		logger.ErrorCtx(ctx, "failed to marshal response", zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err = w.Write(res); err != nil {
		logger.ErrorCtx(ctx, "failed to write response", zap.Error(err))
	}
}

// writeError maps domain errors onto HTTP statuses. Unknown errors are logged
// and reported as 500 without details.
func writeError(ctx context.Context, w http.ResponseWriter, err error, logger *logging.ZapLogger) {
	var apiErr *providerapi.APIError
	var decodeErr *providerapi.DecodeError
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrInvalidCredentials):
		status = http.StatusUnauthorized
	case errors.Is(err, data.ErrOrderNotFound), errors.Is(err, data.ErrProviderNotFound):
		status = http.StatusNotFound
	case errors.Is(err, data.ErrUniqueConstraintViolation),
		errors.Is(err, service.ErrOrderAlreadyPlaced),
		errors.Is(err, service.ErrOrderBusy):
		status = http.StatusConflict
	case errors.Is(err, service.ErrProviderInactive), errors.Is(err, service.ErrOrderNotPlaced):
		status = http.StatusUnprocessableEntity
	case errors.As(err, &apiErr), errors.As(err, &decodeErr):
		status = http.StatusBadGateway
	}
	if status == http.StatusInternalServerError {
		logger.ErrorCtx(ctx, "request failed", zap.Error(err))
		writeJSON(ctx, w, status, errorResponse{Error: http.StatusText(status)}, logger)
		return
	}
	logger.DebugCtx(ctx, "request rejected", zap.Int("status", status), zap.Error(err))
	writeJSON(ctx, w, status, errorResponse{Error: err.Error()}, logger)
}

func badRequest(ctx context.Context, w http.ResponseWriter, err error, logger *logging.ZapLogger) {
	logger.DebugCtx(ctx, "error decoding input", zap.Error(err))
	writeJSON(ctx, w, http.StatusBadRequest, errorResponse{Error: err.Error()}, logger)
}
