package worker

// alert_worker.go
// Processes low stock alerts from QueueAlerts: emails the company when a
// product crosses its threshold.

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/M-Alhbyb/inventory-pos-companies/internal/infra"
)

// AlertWorker delivers low stock notifications.
type AlertWorker struct {
	mailer *infra.Mailer
}

func NewAlertWorker(mailer *infra.Mailer) *AlertWorker {
	return &AlertWorker{mailer: mailer}
}

// Process emails the low stock notice to the company address.
func (w *AlertWorker) Process(_ context.Context, raw json.RawMessage) {
	var payload LowStockJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("alert_worker: invalid payload")
		return
	}
	if payload.CompanyEmail == "" {
		log.Warn().Str("product", payload.ProductName).Msg("alert_worker: no company email — skipping")
		return
	}
	if w.mailer == nil {
		return
	}

	subject := fmt.Sprintf("Low stock: %s (%d left)", payload.ProductName, payload.Stock)
	body := fmt.Sprintf(
		"Product %q is down to %d units (threshold %d).\nConsider restocking soon.",
		payload.ProductName, payload.Stock, payload.Threshold,
	)
	if err := w.mailer.Send(payload.CompanyEmail, subject, body, ""); err != nil {
		log.Error().Err(err).Str("to", payload.CompanyEmail).Msg("alert_worker: failed to send alert")
		return
	}
	log.Info().Str("product", payload.ProductName).Msg("alert_worker: low stock alert sent")
}
