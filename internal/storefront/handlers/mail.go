package handlers

import (
	"net/http"

	"smm-market/internal/storefront/notify"
	"smm-market/pkg/logging"
)

type MailConfigurer interface {
	Configure(cfg notify.SMTPConfig, recipient string)
}

type MailInput struct {
	Host      string `json:"host" validate:"required,hostname|ip"`
	Port      int    `json:"port" validate:"required,min=1,max=65535"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	From      string `json:"from" validate:"required,email"`
	Recipient string `json:"recipient" validate:"required,email"`
}

type MailHandler struct {
	mailer MailConfigurer
	logger *logging.ZapLogger
}

func NewMailHandler(mailer MailConfigurer, logger *logging.ZapLogger) *MailHandler {
	return &MailHandler{
		mailer: mailer,
		logger: logger,
	}
}

func (h *MailHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	defer closeBody(r.Context(), r.Body, h.logger)

	input, err := decodeJSON[MailInput](r.Body)
	if err == nil {
		err = validate.Struct(input)
	}
	if err != nil {
		badRequest(r.Context(), w, err, h.logger)
		return
	}
	h.mailer.Configure(notify.SMTPConfig{
		Host:     input.Host,
		Port:     input.Port,
		Username: input.Username,
		Password: input.Password,
		From:     input.From,
	}, input.Recipient)
	h.logger.InfoCtx(r.Context(), "mail settings updated")
	w.WriteHeader(http.StatusNoContent)
}
