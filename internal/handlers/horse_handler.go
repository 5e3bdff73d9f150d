package handlers

import (
	"net/http"

	"farrier-backend/internal/models"
	"farrier-backend/internal/services"
	"farrier-backend/pkg/utils"
)

type HorseHandler struct {
	horses   *services.HorseService
	shoeings *services.ShoeingService
	notes    *services.NoteService
}

func NewHorseHandler(horses *services.HorseService, shoeings *services.ShoeingService, notes *services.NoteService) *HorseHandler {
	return &HorseHandler{horses: horses, shoeings: shoeings, notes: notes}
}

func (h *HorseHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateHorseRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	horse, err := h.horses.Create(r.Context(), &req)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	utils.RespondJSON(w, http.StatusCreated, horse)
}

func (h *HorseHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		utils.RespondError(w, http.StatusBadRequest, "Invalid horse id")
		return
	}
	horse, err := h.horses.Get(r.Context(), id)
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, "Horse not found")
		return
	}
	utils.RespondJSON(w, http.StatusOK, horse)
}

func (h *HorseHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)

	if term := r.URL.Query().Get("search"); term != "" {
		horses, err := h.horses.Search(r.Context(), term, limit, offset)
		if err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Search failed")
			return
		}
		utils.RespondJSON(w, http.StatusOK, horses)
		return
	}

	horses, err := h.horses.List(r.Context(), limit, offset)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "Failed to load horses")
		return
	}
	utils.RespondJSON(w, http.StatusOK, horses)
}

func (h *HorseHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		utils.RespondError(w, http.StatusBadRequest, "Invalid horse id")
		return
	}

	var req models.UpdateHorseRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	horse, err := h.horses.Update(r.Context(), id, &req)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	utils.RespondJSON(w, http.StatusOK, horse)
}

func (h *HorseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		utils.RespondError(w, http.StatusBadRequest, "Invalid horse id")
		return
	}
	if err := h.horses.Delete(r.Context(), id); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]string{"message": "Horse deleted"})
}

func (h *HorseHandler) Owners(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		utils.RespondError(w, http.StatusBadRequest, "Invalid horse id")
		return
	}
	customers, err := h.horses.Owners(r.Context(), id)
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, err.Error())
		return
	}
	utils.RespondJSON(w, http.StatusOK, customers)
}

// History returns the horse's full shoeing history, legacy rows included
func (h *HorseHandler) History(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		utils.RespondError(w, http.StatusBadRequest, "Invalid horse id")
		return
	}
	shoeings, err := h.shoeings.History(r.Context(), id)
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, err.Error())
		return
	}
	utils.RespondJSON(w, http.StatusOK, shoeings)
}

// Notes re-renders mention emphasis for the horse context: only this horse's
// name stays bold.
func (h *HorseHandler) Notes(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		utils.RespondError(w, http.StatusBadRequest, "Invalid horse id")
		return
	}
	horse, err := h.horses.Get(r.Context(), id)
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, "Horse not found")
		return
	}

	limit, offset := pageParams(r)
	notes, err := h.notes.ListNotes(r.Context(), limit, offset)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "Failed to load notes")
		return
	}

	type horseNote struct {
		*models.Note
		Rendered string `json:"rendered"`
	}
	rendered := make([]horseNote, 0, len(notes))
	for _, n := range notes {
		rendered = append(rendered, horseNote{
			Note:     n,
			Rendered: services.RenderForHorse(n.Content, horse.Name),
		})
	}
	utils.RespondJSON(w, http.StatusOK, rendered)
}
