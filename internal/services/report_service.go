package services

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jung-kurt/gofpdf/v2"

	"farrier-backend/internal/models"
	"farrier-backend/internal/repositories"
	"farrier-backend/internal/storage"
	"farrier-backend/pkg/money"
)

// ReportService renders invoice PDFs from completed records and archives a
// copy to object storage when configured.
type ReportService struct {
	shoeings *repositories.ShoeingRepository
	archiver *storage.Archiver
}

func NewReportService(shoeings *repositories.ShoeingRepository, archiver *storage.Archiver) *ReportService {
	return &ReportService{shoeings: shoeings, archiver: archiver}
}

// InvoicePDF renders every completed record carrying the given invoice number
// into a one-page summary. Archival failure only logs; the caller still gets
// the PDF.
func (s *ReportService) InvoicePDF(ctx context.Context, invoiceNumber string) ([]byte, error) {
	shoeings, err := s.listForInvoice(ctx, invoiceNumber)
	if err != nil {
		return nil, err
	}
	if len(shoeings) == 0 {
		return nil, fmt.Errorf("no records found for invoice %s", invoiceNumber)
	}

	data, err := renderInvoicePDF(invoiceNumber, shoeings)
	if err != nil {
		return nil, fmt.Errorf("failed to render PDF: %w", err)
	}

	key := fmt.Sprintf("invoices/%s/%s.pdf", time.Now().Format("2006-01"), invoiceNumber)
	if err := s.archiver.Upload(ctx, key, data, "application/pdf"); err != nil {
		log.Printf("[Report] Archive upload failed for invoice %s: %v", invoiceNumber, err)
	}
	return data, nil
}

func (s *ReportService) listForInvoice(ctx context.Context, invoiceNumber string) ([]*models.Shoeing, error) {
	completed, err := s.shoeings.ListByStatus(ctx, models.ShoeingStatusCompleted)
	if err != nil {
		return nil, fmt.Errorf("failed to load records: %w", err)
	}
	var matched []*models.Shoeing
	for _, sh := range completed {
		if sh.InvoiceNumber != nil && *sh.InvoiceNumber == invoiceNumber {
			matched = append(matched, sh)
		}
	}
	return matched, nil
}

func renderInvoicePDF(invoiceNumber string, shoeings []*models.Shoeing) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, fmt.Sprintf("Invoice %s", invoiceNumber))
	pdf.Ln(12)

	if name := shoeings[0].CustomerName; name != nil && *name != "" {
		pdf.SetFont("Helvetica", "", 11)
		pdf.Cell(0, 8, fmt.Sprintf("Customer: %s", *name))
		pdf.Ln(10)
	}

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(30, 8, "Date", "1", 0, "", false, 0, "")
	pdf.CellFormat(60, 8, "Horse", "1", 0, "", false, 0, "")
	pdf.CellFormat(70, 8, "Service", "1", 0, "", false, 0, "")
	pdf.CellFormat(30, 8, "Amount", "1", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	var total float64
	for _, sh := range shoeings {
		date := ""
		if sh.DateOfService != nil {
			date = sh.DateOfService.Format("2006-01-02")
		}
		amount := ""
		if v, err := money.Parse(sh.TotalCost); err == nil {
			amount = money.Format(v)
			total += v
		}
		pdf.CellFormat(30, 8, date, "1", 0, "", false, 0, "")
		pdf.CellFormat(60, 8, sh.HorseIdentifier, "1", 0, "", false, 0, "")
		pdf.CellFormat(70, 8, StripMentionMarkup(sh.Description), "1", 0, "", false, 0, "")
		pdf.CellFormat(30, 8, amount, "1", 1, "R", false, 0, "")
	}

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(160, 8, "Total", "1", 0, "R", false, 0, "")
	pdf.CellFormat(30, 8, money.Format(total), "1", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
