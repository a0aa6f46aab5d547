package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"judgeflow/internal/api/middleware"
	"judgeflow/internal/app/service"
	"judgeflow/internal/common"

	"github.com/go-chi/chi/v5"
)

type SubmissionHandler struct {
	judgeService *service.JudgeService
}

func NewSubmissionHandler(js *service.JudgeService) *SubmissionHandler {
	return &SubmissionHandler{judgeService: js}
}

func (h *SubmissionHandler) RegisterRoutes(r chi.Router) {
	r.Use(middleware.Authenticator) // All submission routes require auth
	r.Post("/run/{problemID}", h.runCode)
	r.Post("/submit/{problemID}", h.submit)
	r.Get("/{submissionID}", h.getSubmission)
	r.Get("/run-result/{runID}", h.getRunResult)
	r.Get("/problem/{problemID}/history", h.history)
}

type codeRequest struct {
	Language string `json:"language"`
	Code     string `json:"code"`
}

func (h *SubmissionHandler) runCode(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	var req codeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	result, err := h.judgeService.RunCode(r.Context(), userID, service.RunCodeRequest{
		ProblemID: chi.URLParam(r, "problemID"),
		Language:  req.Language,
		Code:      req.Code,
	})
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, result)
}

func (h *SubmissionHandler) submit(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	var req codeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	resp, err := h.judgeService.Submit(r.Context(), userID, service.SubmitRequest{
		ProblemID: chi.URLParam(r, "problemID"),
		Language:  req.Language,
		Code:      req.Code,
	})
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, resp)
}

func (h *SubmissionHandler) getSubmission(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	sub, err := h.judgeService.GetSubmission(r.Context(), userID, chi.URLParam(r, "submissionID"))
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, sub)
}

func (h *SubmissionHandler) getRunResult(w http.ResponseWriter, r *http.Request) {
	result, err := h.judgeService.GetRunResult(r.Context(), chi.URLParam(r, "runID"))
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, result)
}

func (h *SubmissionHandler) history(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	if offset < 0 {
		offset = 0
	}

	subs, total, err := h.judgeService.ListSubmissions(r.Context(), userID, chi.URLParam(r, "problemID"), limit, offset)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"submissions": subs,
		"total":       total,
	})
}
