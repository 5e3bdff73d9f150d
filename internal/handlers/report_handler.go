package handlers

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"farrier-backend/internal/services"
	"farrier-backend/pkg/utils"
)

type ReportHandler struct {
	reports *services.ReportService
}

func NewReportHandler(reports *services.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// InvoicePDF streams the rendered PDF for one invoice number
func (h *ReportHandler) InvoicePDF(w http.ResponseWriter, r *http.Request) {
	invoiceNumber := mux.Vars(r)["number"]
	if invoiceNumber == "" {
		utils.RespondError(w, http.StatusBadRequest, "Invoice number is required")
		return
	}

	data, err := h.reports.InvoicePDF(r.Context(), invoiceNumber)
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="invoice-%s.pdf"`, invoiceNumber))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
