package handlers

import (
	"net/http"

	"farrier-backend/internal/middleware"
	"farrier-backend/internal/models"
	"farrier-backend/internal/services"
	"farrier-backend/pkg/utils"
)

// ApprovalHandler exposes the admin approval screen: grouped pending records
// and the accept/reject/edit actions.
type ApprovalHandler struct {
	approvals *services.ApprovalService
}

func NewApprovalHandler(approvals *services.ApprovalService) *ApprovalHandler {
	return &ApprovalHandler{approvals: approvals}
}

func (h *ApprovalHandler) PendingGroups(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	groups, err := h.approvals.PendingGroups(r.Context(), userID)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	utils.RespondJSON(w, http.StatusOK, groups)
}

type acceptRequest struct {
	AccountingCustomerID string `json:"accounting_customer_id"`
}

func (h *ApprovalHandler) Accept(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	id, ok := pathID(r)
	if !ok {
		utils.RespondError(w, http.StatusBadRequest, "Invalid record id")
		return
	}

	var req acceptRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	invoice, err := h.approvals.Accept(r.Context(), userID, id, req.AccountingCustomerID)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	utils.RespondJSON(w, http.StatusOK, invoice)
}

type acceptAllRequest struct {
	ShoeingIDs           []int  `json:"shoeing_ids"`
	AccountingCustomerID string `json:"accounting_customer_id"`
}

func (h *ApprovalHandler) AcceptAll(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req acceptAllRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	invoice, err := h.approvals.AcceptAll(r.Context(), userID, req.ShoeingIDs, req.AccountingCustomerID)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	utils.RespondJSON(w, http.StatusOK, invoice)
}

func (h *ApprovalHandler) Reject(w http.ResponseWriter, r *http.Request) {
	adminID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	id, ok := pathID(r)
	if !ok {
		utils.RespondError(w, http.StatusBadRequest, "Invalid record id")
		return
	}
	if err := h.approvals.Reject(r.Context(), adminID, id); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]string{"message": "Record rejected"})
}

func (h *ApprovalHandler) Edit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		utils.RespondError(w, http.StatusBadRequest, "Invalid record id")
		return
	}

	var req models.EditShoeingRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.approvals.Edit(r.Context(), id, &req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]string{"message": "Record updated"})
}

func (h *ApprovalHandler) AcceptHorse(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		utils.RespondError(w, http.StatusBadRequest, "Invalid record id")
		return
	}
	if err := h.approvals.AcceptHorse(r.Context(), id); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]string{"message": "Horse accepted"})
}

func (h *ApprovalHandler) RejectHorse(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		utils.RespondError(w, http.StatusBadRequest, "Invalid record id")
		return
	}
	if err := h.approvals.RejectHorse(r.Context(), id); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]string{"message": "Horse rejected"})
}

func (h *ApprovalHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		utils.RespondError(w, http.StatusBadRequest, "Invalid record id")
		return
	}
	confirmed := r.URL.Query().Get("confirm") == "true"
	if err := h.approvals.Delete(r.Context(), id, confirmed); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]string{"message": "Record deleted"})
}
