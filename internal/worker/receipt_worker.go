package worker

// receipt_worker.go
// Processes receipt jobs from QueueReceipts: renders the PDF for a
// completed sale and, when the customer left an email, mails it.

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/M-Alhbyb/inventory-pos-companies/internal/infra"
	"github.com/M-Alhbyb/inventory-pos-companies/internal/model"
	"github.com/M-Alhbyb/inventory-pos-companies/internal/repository"
)

// ReceiptWorker renders and delivers sale receipts.
type ReceiptWorker struct {
	saleRepo    repository.SaleRepository
	companyRepo repository.CompanyRepository
	mailer      *infra.Mailer
	storagePath string
}

func NewReceiptWorker(saleRepo repository.SaleRepository, companyRepo repository.CompanyRepository, mailer *infra.Mailer, storagePath string) *ReceiptWorker {
	return &ReceiptWorker{
		saleRepo:    saleRepo,
		companyRepo: companyRepo,
		mailer:      mailer,
		storagePath: storagePath,
	}
}

// Process renders the receipt PDF and mails it when an address is present.
func (w *ReceiptWorker) Process(ctx context.Context, raw json.RawMessage) {
	var payload ReceiptJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("receipt_worker: invalid payload")
		return
	}

	saleID, err := uuid.Parse(payload.SaleID)
	if err != nil {
		log.Error().Str("sale_id", payload.SaleID).Msg("receipt_worker: invalid sale id")
		return
	}
	companyID, err := uuid.Parse(payload.CompanyID)
	if err != nil {
		log.Error().Str("company_id", payload.CompanyID).Msg("receipt_worker: invalid company id")
		return
	}

	sale, err := w.saleRepo.FindByID(ctx, companyID, saleID)
	if err != nil {
		log.Error().Err(err).Str("sale_id", payload.SaleID).Msg("receipt_worker: sale not found")
		return
	}
	company, err := w.companyRepo.FindByID(ctx, companyID)
	if err != nil {
		log.Error().Err(err).Str("company_id", payload.CompanyID).Msg("receipt_worker: company not found")
		return
	}

	pdfPath, err := infra.GenerateReceiptPDF(sale, company, w.storagePath)
	if err != nil {
		log.Error().Err(err).Str("receipt", sale.ReceiptNumber).Msg("receipt_worker: pdf generation failed")
		return
	}
	log.Info().Str("receipt", sale.ReceiptNumber).Str("path", pdfPath).Msg("receipt_worker: pdf generated")

	if payload.CustomerEmail == "" || w.mailer == nil {
		return
	}
	subject := "Your receipt " + sale.ReceiptNumber + " from " + company.Name
	body := receiptEmailBody(sale, company)
	if err := w.mailer.Send(payload.CustomerEmail, subject, body, pdfPath); err != nil {
		log.Error().Err(err).Str("to", payload.CustomerEmail).Msg("receipt_worker: failed to send email")
		return
	}
	log.Info().Str("to", payload.CustomerEmail).Str("receipt", sale.ReceiptNumber).Msg("receipt_worker: receipt emailed")
}

func receiptEmailBody(sale *model.Sale, company *model.Company) string {
	return "Thank you for your purchase at " + company.Name + ".\n\n" +
		"Receipt: " + sale.ReceiptNumber + "\n" +
		"Total: $" + sale.Total.StringFixed(2) + "\n\n" +
		"Your receipt is attached as a PDF."
}
