package compatibility

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/roamcrew/roamcrew-backend/internal/common/utils"
)

type Handler struct {
	engine *Engine
}

func NewHandler(engine *Engine) *Handler {
	return &Handler{engine: engine}
}

// GetCompatibility scores a single pair.
// GET /api/v1/compatibility/{user1Id}/{user2Id}?group_id=&context=
func (h *Handler) GetCompatibility(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	user1ID := vars["user1Id"]
	user2ID := vars["user2Id"]

	if user1ID == "" || user2ID == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Both user IDs are required")
		return
	}
	if user1ID == user2ID {
		utils.RespondWithError(w, http.StatusBadRequest, "Cannot score a user against themselves")
		return
	}

	opts := &Options{
		GroupID:    r.URL.Query().Get("group_id"),
		ContextTag: r.URL.Query().Get("context"),
	}

	result := h.engine.Approximate(r.Context(), user1ID, user2ID, opts)
	utils.RespondWithJSON(w, http.StatusOK, result)
}

// ApproximateBatch scores a list of pairs.
// POST /api/v1/compatibility/batch
func (h *Handler) ApproximateBatch(w http.ResponseWriter, r *http.Request) {
	var dto BatchRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := utils.ValidateStruct(&dto); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	opts := &Options{GroupID: dto.GroupID, ContextTag: dto.ContextTag}
	batch := h.engine.ApproximateBatch(r.Context(), dto.Pairs, opts)

	utils.RespondWithJSON(w, http.StatusOK, &BatchResponseDTO{
		BatchID:      batch.BatchID,
		Results:      batch.Results,
		TotalPairs:   batch.TotalPairs,
		AverageScore: batch.AverageScore,
	})
}

// GetStats returns the engine's counters snapshot.
// GET /api/v1/compatibility/stats
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	utils.RespondWithJSON(w, http.StatusOK, h.engine.Metrics(r.Context()))
}

// ResetStats clears the counters snapshot.
// POST /api/v1/compatibility/stats/reset
func (h *Handler) ResetStats(w http.ResponseWriter, r *http.Request) {
	h.engine.Reset()
	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}
