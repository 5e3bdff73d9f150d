package handlers

import (
	"net/http"

	"farrier-backend/internal/models"
	"farrier-backend/internal/services"
	"farrier-backend/pkg/utils"
)

type PriceHandler struct {
	prices *services.PriceService
}

func NewPriceHandler(prices *services.PriceService) *PriceHandler {
	return &PriceHandler{prices: prices}
}

func (h *PriceHandler) ListLocations(w http.ResponseWriter, r *http.Request) {
	locations, err := h.prices.ListLocations(r.Context())
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "Failed to load locations")
		return
	}
	utils.RespondJSON(w, http.StatusOK, locations)
}

func (h *PriceHandler) CreateLocation(w http.ResponseWriter, r *http.Request) {
	var loc models.Location
	if err := utils.DecodeJSON(r, &loc); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.prices.CreateLocation(r.Context(), &loc); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	utils.RespondJSON(w, http.StatusCreated, loc)
}

func (h *PriceHandler) ListPrices(w http.ResponseWriter, r *http.Request) {
	prices, err := h.prices.ListPrices(r.Context())
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "Failed to load prices")
		return
	}
	utils.RespondJSON(w, http.StatusOK, prices)
}

func (h *PriceHandler) SetPrice(w http.ResponseWriter, r *http.Request) {
	var price models.Price
	if err := utils.DecodeJSON(r, &price); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.prices.SetPrice(r.Context(), &price); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	utils.RespondJSON(w, http.StatusOK, price)
}

// Quote looks up the configured price for a product at a location, used by
// the submission form to prefill costs.
func (h *PriceHandler) Quote(w http.ResponseWriter, r *http.Request) {
	product := r.URL.Query().Get("product")
	location := r.URL.Query().Get("location")
	if product == "" || location == "" {
		utils.RespondError(w, http.StatusBadRequest, "Product and location are required")
		return
	}

	amount, err := h.prices.Quote(r.Context(), product, location)
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, err.Error())
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]float64{"amount": amount})
}
