package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"farrier-backend/internal/models"
	"farrier-backend/internal/services"
	"farrier-backend/pkg/utils"
)

type CustomerHandler struct {
	customers *services.CustomerService
}

func NewCustomerHandler(customers *services.CustomerService) *CustomerHandler {
	return &CustomerHandler{customers: customers}
}

// pathID extracts the {id} route variable
func pathID(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	return id, err == nil && id > 0
}

// pageParams reads limit/offset query parameters with defaults
func pageParams(r *http.Request) (int, int) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func (h *CustomerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateCustomerRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	customer, err := h.customers.Create(r.Context(), &req)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	utils.RespondJSON(w, http.StatusCreated, customer)
}

func (h *CustomerHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		utils.RespondError(w, http.StatusBadRequest, "Invalid customer id")
		return
	}
	customer, err := h.customers.Get(r.Context(), id)
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, "Customer not found")
		return
	}
	utils.RespondJSON(w, http.StatusOK, customer)
}

func (h *CustomerHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)

	if term := r.URL.Query().Get("search"); term != "" {
		customers, err := h.customers.Search(r.Context(), term, limit, offset)
		if err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Search failed")
			return
		}
		utils.RespondJSON(w, http.StatusOK, customers)
		return
	}

	customers, err := h.customers.List(r.Context(), limit, offset)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "Failed to load customers")
		return
	}
	utils.RespondJSON(w, http.StatusOK, customers)
}

func (h *CustomerHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		utils.RespondError(w, http.StatusBadRequest, "Invalid customer id")
		return
	}

	var req models.UpdateCustomerRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	customer, err := h.customers.Update(r.Context(), id, &req)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	utils.RespondJSON(w, http.StatusOK, customer)
}

func (h *CustomerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		utils.RespondError(w, http.StatusBadRequest, "Invalid customer id")
		return
	}
	if err := h.customers.Delete(r.Context(), id); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]string{"message": "Customer deleted"})
}

func (h *CustomerHandler) Horses(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		utils.RespondError(w, http.StatusBadRequest, "Invalid customer id")
		return
	}
	horses, err := h.customers.Horses(r.Context(), id)
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, err.Error())
		return
	}
	utils.RespondJSON(w, http.StatusOK, horses)
}

func (h *CustomerHandler) LinkHorse(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		utils.RespondError(w, http.StatusBadRequest, "Invalid customer id")
		return
	}

	var req struct {
		HorseID int `json:"horse_id"`
	}
	if err := utils.DecodeJSON(r, &req); err != nil || req.HorseID <= 0 {
		utils.RespondError(w, http.StatusBadRequest, "A horse id is required")
		return
	}
	if err := h.customers.LinkHorse(r.Context(), id, req.HorseID); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]string{"message": "Horse linked"})
}
