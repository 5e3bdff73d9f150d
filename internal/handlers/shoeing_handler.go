package handlers

import (
	"net/http"

	"farrier-backend/internal/middleware"
	"farrier-backend/internal/models"
	"farrier-backend/internal/services"
	"farrier-backend/pkg/utils"
)

type ShoeingHandler struct {
	shoeings *services.ShoeingService
}

func NewShoeingHandler(shoeings *services.ShoeingService) *ShoeingHandler {
	return &ShoeingHandler{shoeings: shoeings}
}

func (h *ShoeingHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req models.CreateShoeingRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	sh, err := h.shoeings.Create(r.Context(), userID, &req)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	utils.RespondJSON(w, http.StatusCreated, sh)
}

func (h *ShoeingHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		utils.RespondError(w, http.StatusBadRequest, "Invalid record id")
		return
	}
	sh, err := h.shoeings.Get(r.Context(), id)
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, "Record not found")
		return
	}
	utils.RespondJSON(w, http.StatusOK, sh)
}

func (h *ShoeingHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)

	if term := r.URL.Query().Get("search"); term != "" {
		shoeings, err := h.shoeings.Search(r.Context(), term, limit, offset)
		if err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Search failed")
			return
		}
		utils.RespondJSON(w, http.StatusOK, shoeings)
		return
	}

	result, err := h.shoeings.List(r.Context(), limit, offset)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "Failed to load records")
		return
	}
	utils.RespondJSON(w, http.StatusOK, result)
}
