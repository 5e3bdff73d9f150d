package handlers

import (
	"net/http"

	"farrier-backend/internal/middleware"
	"farrier-backend/internal/models"
	"farrier-backend/internal/services"
	"farrier-backend/pkg/utils"
)

type NoteHandler struct {
	notes *services.NoteService
}

func NewNoteHandler(notes *services.NoteService) *NoteHandler {
	return &NoteHandler{notes: notes}
}

func (h *NoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req models.CreateNoteRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	note, err := h.notes.CreateNote(r.Context(), userID, &req)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	utils.RespondJSON(w, http.StatusCreated, note)
}

func (h *NoteHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)
	notes, err := h.notes.ListNotes(r.Context(), limit, offset)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "Failed to load notes")
		return
	}
	utils.RespondJSON(w, http.StatusOK, notes)
}
