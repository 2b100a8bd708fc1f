package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"
)

// EmailJobPayload is the job envelope sent to QueueEmail.
type EmailJobPayload struct {
	ToEmail string `json:"to_email"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
	PDFPath string `json:"pdf_path"`
}

type etiquetaMailer interface {
	SendEtiquetas(to, subject, body, pdfPath string) error
}

// breaker is satisfied by *infra.CircuitBreaker.
type breaker interface {
	Execute(fn func() error) error
}

// EmailWorker mails generated label sheets through the SMTP circuit breaker.
type EmailWorker struct {
	mailer etiquetaMailer
	cb     breaker
}

func NewEmailWorker(mailer etiquetaMailer, cb breaker) *EmailWorker {
	return &EmailWorker{mailer: mailer, cb: cb}
}

func (w *EmailWorker) Process(_ context.Context, raw json.RawMessage) error {
	var payload EmailJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("email_worker: invalid payload: %w", err)
	}
	if payload.ToEmail == "" {
		log.Warn().Msg("email_worker: empty to_email, skipping")
		return nil
	}

	send := func() error {
		return w.mailer.SendEtiquetas(payload.ToEmail, payload.Subject, payload.Body, payload.PDFPath)
	}
	if err := w.cb.Execute(send); err != nil {
		return fmt.Errorf("email_worker: send to %s: %w", payload.ToEmail, err)
	}
	log.Info().Str("to", payload.ToEmail).Str("pdf", payload.PDFPath).Msg("email_worker: etiquetas enviadas")
	return nil
}
