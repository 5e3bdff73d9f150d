package handlers

import (
	"net/http"
	"strconv"

	"farrier-backend/internal/middleware"
	"farrier-backend/internal/models"
	"farrier-backend/internal/services"
	"farrier-backend/pkg/utils"
)

// AccountingHandler manages the per-user connection to the external
// accounting provider.
type AccountingHandler struct {
	accounting *services.AccountingService
}

func NewAccountingHandler(accounting *services.AccountingService) *AccountingHandler {
	return &AccountingHandler{accounting: accounting}
}

// Connect returns the provider consent URL; the client completes the redirect
// flow and posts the resulting code back to Exchange.
func (h *AccountingHandler) Connect(w http.ResponseWriter, r *http.Request) {
	state := h.accounting.NewState()
	utils.RespondJSON(w, http.StatusOK, map[string]string{
		"url":   h.accounting.AuthorizeURL(state),
		"state": state,
	})
}

func (h *AccountingHandler) Exchange(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req models.ExchangeTokenRequest
	if err := utils.DecodeJSON(r, &req); err != nil || req.Code == "" || req.RealmID == "" {
		utils.RespondError(w, http.StatusBadRequest, "Code and realm id are required")
		return
	}

	if err := h.accounting.ExchangeCode(r.Context(), userID, req.Code, req.RealmID); err != nil {
		utils.RespondError(w, http.StatusBadGateway, err.Error())
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]string{"message": "Accounting connected"})
}

func (h *AccountingHandler) Status(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	utils.RespondJSON(w, http.StatusOK, h.accounting.Status(r.Context(), userID))
}

func (h *AccountingHandler) Disconnect(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	if err := h.accounting.Disconnect(r.Context(), userID); err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "Failed to disconnect")
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]string{"message": "Accounting disconnected"})
}

func (h *AccountingHandler) Customers(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	customers, err := h.accounting.GetCustomers(r.Context(), userID)
	if err != nil {
		utils.RespondError(w, http.StatusBadGateway, err.Error())
		return
	}
	utils.RespondJSON(w, http.StatusOK, customers)
}

func (h *AccountingHandler) Invoices(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))

	result, err := h.accounting.GetInvoices(r.Context(), userID, page, perPage)
	if err != nil {
		utils.RespondError(w, http.StatusBadGateway, err.Error())
		return
	}
	utils.RespondJSON(w, http.StatusOK, result)
}
