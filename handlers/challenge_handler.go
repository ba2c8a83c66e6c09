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

	"seventyFiveAPI/internal/types/challenge"
	"seventyFiveAPI/internal/types/task"
	"seventyFiveAPI/middleware"
	"seventyFiveAPI/services"
	"seventyFiveAPI/utils"
)

type ChallengeHandler struct {
	challengeService *services.ChallengeService
	profileService   *services.ProfileService
	appBaseURL       string
}

func NewChallengeHandler(challengeService *services.ChallengeService, profileService *services.ProfileService, appBaseURL string) *ChallengeHandler {
	return &ChallengeHandler{
		challengeService: challengeService,
		profileService:   profileService,
		appBaseURL:       appBaseURL,
	}
}

func (h *ChallengeHandler) CreateChallenge(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req challenge.CreateChallengeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("CreateChallenge Handler: Failed to decode request body: %v", err)
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	created, err := h.challengeService.CreateChallenge(ctx, clerkID, &req)
	if err != nil {
		log.Printf("CreateChallenge Handler: Service error: %v", err)
		errMsg := err.Error()
		switch {
		case errMsg == "challenge name is required" || errMsg == "duration must be at least 1 day" || strings.Contains(errMsg, "invalid date"):
			respondWithError(w, http.StatusBadRequest, errMsg)
		case strings.Contains(errMsg, "user not found"):
			respondWithError(w, http.StatusNotFound, errMsg)
		default:
			respondWithError(w, http.StatusInternalServerError, "Failed to create challenge")
		}
		return
	}

	respondWithJSON(w, http.StatusCreated, created)
}

func (h *ChallengeHandler) GetChallenges(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	challenges, err := h.challengeService.GetChallenges(ctx, clerkID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, challenges)
}

func (h *ChallengeHandler) GetChallenge(w http.ResponseWriter, r *http.Request) {
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

	ch, err := h.challengeService.GetChallenge(ctx, clerkID, challengeID)
	if err != nil {
		if err.Error() == "challenge not found" {
			respondWithError(w, http.StatusNotFound, err.Error())
			return
		}
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, ch)
}

func (h *ChallengeHandler) UpdateChallenge(w http.ResponseWriter, r *http.Request) {
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

	var req challenge.UpdateChallengeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	updated, err := h.challengeService.UpdateChallenge(ctx, clerkID, challengeID, &req)
	if err != nil {
		errMsg := err.Error()
		switch {
		case errMsg == "challenge not found":
			respondWithError(w, http.StatusNotFound, errMsg)
		case errMsg == "duration must be at least 1 day" || strings.Contains(errMsg, "invalid date"):
			respondWithError(w, http.StatusBadRequest, errMsg)
		default:
			respondWithError(w, http.StatusInternalServerError, "Failed to update challenge")
		}
		return
	}

	respondWithJSON(w, http.StatusOK, updated)
}

func (h *ChallengeHandler) DeleteChallenge(w http.ResponseWriter, r *http.Request) {
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

	if err := h.challengeService.DeleteChallenge(ctx, clerkID, challengeID); err != nil {
		if err.Error() == "challenge not found" {
			respondWithError(w, http.StatusNotFound, err.Error())
			return
		}
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Challenge deleted successfully"})
}

func (h *ChallengeHandler) AddTask(w http.ResponseWriter, r *http.Request) {
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

	var req task.CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	created, err := h.challengeService.AddTask(ctx, clerkID, challengeID, &req)
	if err != nil {
		errMsg := err.Error()
		switch {
		case errMsg == "challenge not found":
			respondWithError(w, http.StatusNotFound, errMsg)
		case errMsg == "only the challenge owner can do that":
			respondWithError(w, http.StatusForbidden, errMsg)
		case strings.Contains(errMsg, "required") || strings.Contains(errMsg, "invalid"):
			respondWithError(w, http.StatusBadRequest, errMsg)
		default:
			respondWithError(w, http.StatusInternalServerError, "Failed to add task")
		}
		return
	}

	respondWithJSON(w, http.StatusCreated, created)
}

func (h *ChallengeHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	taskID, err := uuid.Parse(mux.Vars(r)["taskId"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid task id")
		return
	}

	var req task.UpdateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	updated, err := h.challengeService.UpdateTask(ctx, clerkID, taskID, &req)
	if err != nil {
		if err.Error() == "task not found" {
			respondWithError(w, http.StatusNotFound, err.Error())
			return
		}
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, updated)
}

func (h *ChallengeHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	taskID, err := uuid.Parse(mux.Vars(r)["taskId"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid task id")
		return
	}

	if err := h.challengeService.DeleteTask(ctx, clerkID, taskID); err != nil {
		if err.Error() == "task not found" {
			respondWithError(w, http.StatusNotFound, err.Error())
			return
		}
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Task deleted successfully"})
}

func (h *ChallengeHandler) GetInvite(w http.ResponseWriter, r *http.Request) {
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

	invite, err := h.challengeService.GetInvite(ctx, clerkID, challengeID, h.appBaseURL)
	if err != nil {
		h.respondInviteError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, invite)
}

func (h *ChallengeHandler) RegenerateInvite(w http.ResponseWriter, r *http.Request) {
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

	invite, err := h.challengeService.RegenerateInviteToken(ctx, clerkID, challengeID, h.appBaseURL)
	if err != nil {
		h.respondInviteError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, invite)
}

func (h *ChallengeHandler) respondInviteError(w http.ResponseWriter, err error) {
	errMsg := err.Error()
	switch {
	case errMsg == "challenge not found":
		respondWithError(w, http.StatusNotFound, errMsg)
	case errMsg == "only the challenge owner can do that":
		respondWithError(w, http.StatusForbidden, errMsg)
	default:
		respondWithError(w, http.StatusInternalServerError, "Failed to build invite")
	}
}

func (h *ChallengeHandler) JoinChallenge(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	token := mux.Vars(r)["token"]
	if token == "" {
		respondWithError(w, http.StatusBadRequest, "Invite token is required")
		return
	}

	log.Printf("JoinChallenge Handler: Request from %s with token %s", clerkID, token)

	challengeID, err := h.challengeService.JoinByToken(ctx, clerkID, token)
	if err != nil {
		log.Printf("JoinChallenge Handler: Service error: %v", err)
		errMsg := err.Error()
		switch {
		case errMsg == "invalid invite token":
			respondWithError(w, http.StatusNotFound, errMsg)
		case errMsg == "you are the owner of this challenge" || errMsg == "you have already joined this challenge":
			respondWithError(w, http.StatusConflict, errMsg)
		case strings.Contains(errMsg, "user not found"):
			respondWithError(w, http.StatusNotFound, errMsg)
		default:
			respondWithError(w, http.StatusInternalServerError, "Failed to join challenge")
		}
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{
		"message":      "Joined challenge successfully",
		"challenge_id": challengeID.String(),
	})
}

func (h *ChallengeHandler) GetMemberProgress(w http.ResponseWriter, r *http.Request) {
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

	today := utils.TodayIn("")
	if p, err := h.profileService.GetProfileByClerkID(ctx, clerkID); err == nil {
		today = utils.TodayIn(p.Timezone)
	}

	members, err := h.challengeService.GetMemberProgress(ctx, clerkID, challengeID, today)
	if err != nil {
		if err.Error() == "challenge not found" {
			respondWithError(w, http.StatusNotFound, err.Error())
			return
		}
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, members)
}
