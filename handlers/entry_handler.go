package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"seventyFiveAPI/internal/types/entry"
	"seventyFiveAPI/middleware"
	"seventyFiveAPI/services"
	"seventyFiveAPI/utils"
)

type EntryHandler struct {
	entryService *services.EntryService
}

func NewEntryHandler(entryService *services.EntryService) *EntryHandler {
	return &EntryHandler{
		entryService: entryService,
	}
}

// GetEntry returns the caller's check-in for one day. A day with no
// check-in yet responds 200 with a null body, not 404.
func (h *EntryHandler) GetEntry(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	challengeID, date, ok := entryVars(w, r)
	if !ok {
		return
	}

	e, err := h.entryService.GetEntry(ctx, clerkID, challengeID, date)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, e)
}

func (h *EntryHandler) SaveEntry(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	challengeID, date, ok := entryVars(w, r)
	if !ok {
		return
	}

	var req entry.SaveEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("SaveEntry Handler: Failed to decode request body: %v", err)
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	saved, err := h.entryService.SaveEntry(ctx, clerkID, challengeID, date, &req)
	if err != nil {
		log.Printf("SaveEntry Handler: Service error: %v", err)
		errMsg := err.Error()
		switch {
		case errMsg == "challenge not found":
			respondWithError(w, http.StatusNotFound, errMsg)
		case strings.Contains(errMsg, "user not found"):
			respondWithError(w, http.StatusNotFound, errMsg)
		default:
			respondWithError(w, http.StatusInternalServerError, "Failed to save entry")
		}
		return
	}

	respondWithJSON(w, http.StatusOK, saved)
}

func (h *EntryHandler) ListEntries(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	challengeID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid challenge id")
		return
	}

	entries, err := h.entryService.ListEntries(ctx, clerkID, challengeID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, entries)
}

func entryVars(w http.ResponseWriter, r *http.Request) (uuid.UUID, time.Time, bool) {
	vars := mux.Vars(r)

	challengeID, err := uuid.Parse(vars["id"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid challenge id")
		return uuid.Nil, time.Time{}, false
	}

	date, err := utils.ParseDate(vars["date"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return uuid.Nil, time.Time{}, false
	}

	return challengeID, date, true
}
