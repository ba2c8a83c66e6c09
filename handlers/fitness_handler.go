package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"seventyFiveAPI/internal/types/fitness"
	"seventyFiveAPI/middleware"
	"seventyFiveAPI/services"
	"seventyFiveAPI/utils"
)

type FitnessHandler struct {
	fitnessService *services.FitnessService
	appBaseURL     string
}

func NewFitnessHandler(fitnessService *services.FitnessService, appBaseURL string) *FitnessHandler {
	return &FitnessHandler{
		fitnessService: fitnessService,
		appBaseURL:     appBaseURL,
	}
}

// Connect hands the client the provider consent URL to open in a browser.
func (h *FitnessHandler) Connect(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{
		"url": h.fitnessService.AuthorizationURL(clerkID),
	})
}

// Callback is hit by the provider's redirect, not by our client, so it is
// unauthenticated; the user identity travels in the OAuth state parameter.
func (h *FitnessHandler) Callback(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	query := r.URL.Query()
	if errParam := query.Get("error"); errParam != "" {
		log.Printf("Callback Handler: provider returned error %q", errParam)
		http.Redirect(w, r, h.appBaseURL+"/settings?strava=denied", http.StatusFound)
		return
	}

	code := query.Get("code")
	state := query.Get("state")
	if code == "" || state == "" {
		respondWithError(w, http.StatusBadRequest, "code and state are required")
		return
	}

	if err := h.fitnessService.HandleCallback(ctx, state, code); err != nil {
		log.Printf("Callback Handler: Service error: %v", err)
		http.Redirect(w, r, h.appBaseURL+"/settings?strava=error", http.StatusFound)
		return
	}

	http.Redirect(w, r, h.appBaseURL+"/settings?strava=connected", http.StatusFound)
}

func (h *FitnessHandler) Status(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	status, err := h.fitnessService.Status(ctx, clerkID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, status)
}

func (h *FitnessHandler) Disconnect(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	if err := h.fitnessService.Disconnect(ctx, clerkID); err != nil {
		if err.Error() == "no fitness provider connected" {
			respondWithError(w, http.StatusNotFound, err.Error())
			return
		}
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Provider disconnected successfully"})
}

// Sync pulls fresh activities on demand. Provider round-trips can be slow,
// so this gets a longer deadline than the usual handler budget.
func (h *FitnessHandler) Sync(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	result, err := h.fitnessService.SyncNow(ctx, clerkID)
	if err != nil {
		log.Printf("Sync Handler: Service error: %v", err)
		if err.Error() == "no fitness provider connected" {
			respondWithError(w, http.StatusNotFound, err.Error())
			return
		}
		respondWithError(w, http.StatusBadGateway, "Failed to sync activities")
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

func (h *FitnessHandler) GetActivities(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	date, ok := dateQuery(w, r)
	if !ok {
		return
	}

	activities, err := h.fitnessService.ActivitiesForDate(ctx, clerkID, date)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, activities)
}

func (h *FitnessHandler) GetDayMetrics(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	date, ok := dateQuery(w, r)
	if !ok {
		return
	}

	metrics, err := h.fitnessService.MetricsForDate(ctx, clerkID, date)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, metrics)
}

// GetSuggestions runs the auto-matcher and returns prefill values for the
// check-in form. Tasks with no matching data are simply absent.
func (h *FitnessHandler) GetSuggestions(w http.ResponseWriter, r *http.Request) {
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

	date, ok := dateQuery(w, r)
	if !ok {
		return
	}

	suggestions, err := h.fitnessService.SuggestCompletions(ctx, clerkID, challengeID, date)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, suggestions)
}

func (h *FitnessHandler) CreateMapping(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req fitness.CreateMappingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	mapping, err := h.fitnessService.CreateMapping(ctx, clerkID, &req)
	if err != nil {
		errMsg := err.Error()
		switch {
		case errMsg == "task not found":
			respondWithError(w, http.StatusNotFound, errMsg)
		case errMsg == fmt.Sprintf("invalid metric %q", req.Metric):
			respondWithError(w, http.StatusBadRequest, errMsg)
		default:
			respondWithError(w, http.StatusInternalServerError, "Failed to create mapping")
		}
		return
	}

	respondWithJSON(w, http.StatusCreated, mapping)
}

func (h *FitnessHandler) DeleteMapping(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	mappingID, err := uuid.Parse(mux.Vars(r)["mappingId"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid mapping id")
		return
	}

	if err := h.fitnessService.DeleteMapping(ctx, clerkID, mappingID); err != nil {
		if err.Error() == "mapping not found" {
			respondWithError(w, http.StatusNotFound, err.Error())
			return
		}
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Mapping deleted successfully"})
}

func (h *FitnessHandler) GetMappings(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	_, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	challengeID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid challenge id")
		return
	}

	mappings, err := h.fitnessService.ListMappings(ctx, challengeID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if mappings == nil {
		mappings = []*fitness.TaskMapping{}
	}
	respondWithJSON(w, http.StatusOK, mappings)
}

func dateQuery(w http.ResponseWriter, r *http.Request) (time.Time, bool) {
	raw := r.URL.Query().Get("date")
	if raw == "" {
		respondWithError(w, http.StatusBadRequest, "Query parameter 'date' is required")
		return time.Time{}, false
	}

	date, err := utils.ParseDate(raw)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return time.Time{}, false
	}

	return date, true
}
