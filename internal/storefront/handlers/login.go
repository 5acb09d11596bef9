package handlers

import (
	"context"
	"fmt"
	"net/http"

	"smm-market/pkg/logging"
)

type LoginService interface {
	Login(ctx context.Context, login string, password string) (string, error)
}

type LoginInput struct {
	Login    string `json:"login" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginHandler struct {
	service LoginService
	logger  *logging.ZapLogger
}

func NewLoginHandler(service LoginService, logger *logging.ZapLogger) *LoginHandler {
	return &LoginHandler{
		service: service,
		logger:  logger,
	}
}

func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	defer closeBody(r.Context(), r.Body, h.logger)

	input, err := decodeJSON[LoginInput](r.Body)
	if err == nil {
		err = validate.Struct(input)
	}
	if err != nil {
		badRequest(r.Context(), w, err, h.logger)
		return
	}

	tkn, err := h.service.Login(r.Context(), input.Login, input.Password)
	if err != nil {
		writeError(r.Context(), w, err, h.logger)
		return
	}

	w.Header().Set("Authorization", fmt.Sprintf("Bearer %s", tkn))
	w.WriteHeader(http.StatusOK)
}
