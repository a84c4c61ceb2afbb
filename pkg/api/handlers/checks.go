package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"paperguard/pkg/check"
	"paperguard/pkg/errdefs"
	"paperguard/pkg/logger"
	"paperguard/pkg/models"
	"paperguard/pkg/quota"
	"paperguard/pkg/store"
	"paperguard/pkg/utils"

	"github.com/gorilla/mux"
)

var (
	checker *check.Checker
	limiter *quota.Limiter
)

// RegisterChecks registers the plagiarism check routes. The checker and
// limiter are process-wide singletons assembled at startup.
func RegisterChecks(r *mux.Router, c *check.Checker, l *quota.Limiter) {
	checker = c
	limiter = l

	r.HandleFunc("/plagiarism-check", runCheck).Methods(http.MethodPost)
	r.HandleFunc("/check-limit", checkLimit).Methods(http.MethodPost)
	r.HandleFunc("/check-log/{author}", getCheckLog).Methods(http.MethodGet)
}

type checkReq struct {
	Title         string `json:"title"`
	Content       string `json:"content"`
	AuthorAddress string `json:"authorAddress"`
}

// runCheck handles POST /plagiarism-check. A quota hit is a 403 whose body
// always reports zero remaining checks; validation failures are a 400 and
// never consume a check.
func runCheck(w http.ResponseWriter, r *http.Request) {
	var req checkReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if tooLarge(req.Content) {
		utils.JSONError(w, http.StatusRequestEntityTooLarge, "content too large")
		return
	}

	res, err := checker.Check(r.Context(), req.Title, req.Content, req.AuthorAddress)
	if err != nil {
		var ve *errdefs.ValidationError
		var qe *errdefs.QuotaExceededError
		switch {
		case errors.As(err, &ve):
			utils.JSONError(w, http.StatusBadRequest, ve.Error())
		case errors.As(err, &qe):
			_ = utils.JSONWrite(w, http.StatusForbidden, map[string]any{
				"error":            qe.Error(),
				"allowed":          false,
				"checks_remaining": 0,
			})
		default:
			logger.Error("plagiarism_check_failed", "error", err)
			utils.JSONError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, res)
}

type limitReq struct {
	Title         string `json:"title"`
	AuthorAddress string `json:"authorAddress"`
}

// checkLimit handles POST /check-limit: report local quota usage for an
// (author, title) pair without consuming a slot.
func checkLimit(w http.ResponseWriter, r *http.Request) {
	var req limitReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Title == "" || req.AuthorAddress == "" {
		utils.JSONError(w, http.StatusBadRequest, "missing required fields")
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, limiter.Peek(req.AuthorAddress, req.Title))
}

// getCheckLog handles GET /check-log/{author}: the author's persisted check
// history in insertion order.
func getCheckLog(w http.ResponseWriter, r *http.Request) {
	// log keys are written with the normalized author
	author := strings.ToLower(strings.TrimSpace(mux.Vars(r)["author"]))
	entries, err := store.ListCheckLog(author)
	if err != nil {
		writeStoreErr(w, err)
		return
	}
	if entries == nil {
		entries = []models.CheckLogEntry{}
	}
	_ = utils.JSONWrite(w, http.StatusOK, struct {
		Checks []models.CheckLogEntry `json:"checks"`
	}{Checks: entries})
}
