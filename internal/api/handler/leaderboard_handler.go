package handler

import (
	"net/http"
	"strconv"

	"judgeflow/internal/app/service"
	"judgeflow/internal/common"

	"github.com/go-chi/chi/v5"
)

type LeaderboardHandler struct {
	judgeService *service.JudgeService
}

func NewLeaderboardHandler(js *service.JudgeService) *LeaderboardHandler {
	return &LeaderboardHandler{judgeService: js}
}

func (h *LeaderboardHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.leaderboard)
}

func (h *LeaderboardHandler) leaderboard(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 || limit > 100 {
		limit = 25
	}

	entries, err := h.judgeService.GetLeaderboard(r.Context(), limit)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, entries)
}
