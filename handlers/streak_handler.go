package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"fireDragonAPI/services"
)

type StreakHandler struct {
	streakService *services.StreakService
}

func NewStreakHandler(streakService *services.StreakService) *StreakHandler {
	return &StreakHandler{
		streakService: streakService,
	}
}

// GetStreaks lists a user's streaks with derived health, stage and badges.
func (h *StreakHandler) GetStreaks(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, err := strconv.ParseInt(mux.Vars(r)["userID"], 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid user id")
		return
	}

	views, err := h.streakService.GetStreaksForUser(ctx, userID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load streaks")
		return
	}

	respondWithJSON(w, http.StatusOK, views)
}

type checkInRequest struct {
	StreakID string `json:"streakId"`
}

// CheckIn is the explicit "feed the fire" action: count grows by one.
func (h *StreakHandler) CheckIn(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var req checkInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	streakID, err := uuid.Parse(req.StreakID)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid streak id")
		return
	}

	count, err := h.streakService.CheckIn(ctx, streakID)
	if err != nil {
		if errors.Is(err, services.ErrStreakNotFound) {
			respondWithError(w, http.StatusNotFound, "Streak not found")
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Failed to check in")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"count":   count,
	})
}

type renamePetRequest struct {
	StreakID string `json:"streakId"`
	NewName  string `json:"newName"`
}

func (h *StreakHandler) RenamePet(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var req renamePetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	streakID, err := uuid.Parse(req.StreakID)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid streak id")
		return
	}

	petName, err := h.streakService.RenamePet(ctx, streakID, req.NewName)
	if err != nil {
		if errors.Is(err, services.ErrStreakNotFound) {
			respondWithError(w, http.StatusNotFound, "Streak not found")
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Failed to rename pet")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"petName": petName,
	})
}

type useFreezeRequest struct {
	StreakID string `json:"streakId"`
}

func (h *StreakHandler) UseFreeze(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var req useFreezeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	streakID, err := uuid.Parse(req.StreakID)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid streak id")
		return
	}

	freezes, err := h.streakService.UseFreeze(ctx, streakID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNoFreezes):
			respondWithError(w, http.StatusBadRequest, "No freezes available")
		case errors.Is(err, services.ErrStreakNotFound):
			respondWithError(w, http.StatusNotFound, "Streak not found")
		default:
			respondWithError(w, http.StatusInternalServerError, "Failed to use freeze")
		}
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"freezes": freezes,
	})
}

// GetLeaderboard is the only public read: top 10 pairs by count.
func (h *StreakHandler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	entries, err := h.streakService.GetLeaderboard(ctx)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load leaderboard")
		return
	}

	respondWithJSON(w, http.StatusOK, entries)
}

// Helper functions
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "Internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}
