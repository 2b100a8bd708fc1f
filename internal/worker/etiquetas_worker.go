package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"cipriano/internal/infra"
	"cipriano/internal/model"

	"github.com/rs/zerolog/log"
)

// EtiquetasJobPayload identifies the pizzas of one generation run.
type EtiquetasJobPayload struct {
	Lote  string `json:"lote"`
	Desde string `json:"desde"`
	Hasta string `json:"hasta"`
}

type pizzaLister interface {
	ListByLote(ctx context.Context, codigoLote, desdeID, hastaID string) ([]model.Pizza, error)
}

type emailEnqueuer interface {
	EnqueueEmail(ctx context.Context, payload EmailJobPayload) error
}

// EtiquetasWorker pre-renders the label sheet of a new lote to disk and,
// when a recipient is configured, queues it for email.
type EtiquetasWorker struct {
	pizzas      pizzaLister
	emails      emailEnqueuer
	storagePath string
	emailTo     string
}

func NewEtiquetasWorker(pizzas pizzaLister, emails emailEnqueuer, storagePath, emailTo string) *EtiquetasWorker {
	return &EtiquetasWorker{pizzas: pizzas, emails: emails, storagePath: storagePath, emailTo: emailTo}
}

func (w *EtiquetasWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload EtiquetasJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("etiquetas_worker: invalid payload: %w", err)
	}
	pizzas, err := w.pizzas.ListByLote(ctx, payload.Lote, payload.Desde, payload.Hasta)
	if err != nil {
		return fmt.Errorf("etiquetas_worker: list %s: %w", payload.Lote, err)
	}
	if len(pizzas) == 0 {
		log.Warn().Str("lote", payload.Lote).Msg("etiquetas_worker: lote sin pizzas")
		return nil
	}

	nombre := fmt.Sprintf("etiquetas_%s_%s", payload.Desde, payload.Hasta)
	path, err := infra.GuardarEtiquetas(w.storagePath, nombre, infra.EtiquetasDePizzas(pizzas))
	if err != nil {
		return err
	}
	log.Info().Str("lote", payload.Lote).Int("cantidad", len(pizzas)).Str("path", path).Msg("etiquetas_worker: PDF generado")

	if w.emailTo == "" || w.emails == nil {
		return nil
	}
	return w.emails.EnqueueEmail(ctx, EmailJobPayload{
		ToEmail: w.emailTo,
		Subject: fmt.Sprintf("Etiquetas %s (%d pizzas)", payload.Lote, len(pizzas)),
		Body:    fmt.Sprintf("Etiquetas %s a %s adjuntas.", payload.Desde, payload.Hasta),
		PDFPath: path,
	})
}
