// Package handlers contains the HTTP handlers for the paper store and the
// plagiarism check pipeline. Routes are registered on a gorilla router;
// handlers write JSON and map the shared error taxonomy onto status codes.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"paperguard/pkg/errdefs"
	"paperguard/pkg/logger"
	"paperguard/pkg/store"
	"paperguard/pkg/utils"

	"github.com/gorilla/mux"
)

// maxContentBytes caps the content field of write requests; zero means
// unlimited. Set once at registration time.
var maxContentBytes int64

// RegisterPapers registers the paper store routes on the provided router.
func RegisterPapers(r *mux.Router, maxBytes int64) {
	maxContentBytes = maxBytes

	r.HandleFunc("/paper", storePaper).Methods(http.MethodPost)
	r.HandleFunc("/papers", listPapers).Methods(http.MethodGet)
	r.HandleFunc("/paper/version", addVersion).Methods(http.MethodPost)
	r.HandleFunc("/paper/{bucketHash}", getPaper).Methods(http.MethodGet)
}

// storePaperReq is the wire shape of POST /paper. Field names are camelCase
// on the wire; stored records use snake_case.
type storePaperReq struct {
	BucketHash    string `json:"bucketHash"`
	Title         string `json:"title"`
	Content       string `json:"content"`
	AuthorAddress string `json:"authorAddress"`
	Timestamp     int64  `json:"timestamp"`
}

// storePaper handles POST /paper: create a record or append a version to
// an existing one. A differing author marks the record shared.
func storePaper(w http.ResponseWriter, r *http.Request) {
	var req storePaperReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if tooLarge(req.Content) {
		utils.JSONError(w, http.StatusRequestEntityTooLarge, "content too large")
		return
	}
	if err := store.SavePaper(req.BucketHash, req.Content, req.Title, req.AuthorAddress, req.Timestamp); err != nil {
		writeStoreErr(w, err)
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Paper stored successfully",
	})
}

// getPaper handles GET /paper/{bucketHash}: the full record including all
// versions.
func getPaper(w http.ResponseWriter, r *http.Request) {
	bucketHash := mux.Vars(r)["bucketHash"]
	p, err := store.GetPaper(bucketHash)
	if err != nil {
		writeStoreErr(w, err)
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, p)
}

// listPapers handles GET /papers: all known bucket hashes in stable order.
func listPapers(w http.ResponseWriter, r *http.Request) {
	ids, err := store.ListPaperIDs()
	if err != nil {
		writeStoreErr(w, err)
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, ids)
}

type addVersionReq struct {
	BucketHash string `json:"bucketHash"`
	Content    string `json:"content"`
	Timestamp  int64  `json:"timestamp"`
}

// addVersion handles POST /paper/version: append a version to an existing
// record. Unknown hashes are a 404, not an implicit create.
func addVersion(w http.ResponseWriter, r *http.Request) {
	var req addVersionReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if tooLarge(req.Content) {
		utils.JSONError(w, http.StatusRequestEntityTooLarge, "content too large")
		return
	}
	if err := store.AddVersion(req.BucketHash, req.Content, req.Timestamp); err != nil {
		writeStoreErr(w, err)
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Version added successfully",
	})
}

func tooLarge(content string) bool {
	return maxContentBytes > 0 && int64(len(content)) > maxContentBytes
}

// writeStoreErr maps store errors onto HTTP statuses. Unclassified errors
// become an opaque 500; the detail goes to the log only.
func writeStoreErr(w http.ResponseWriter, err error) {
	var ve *errdefs.ValidationError
	var nf *errdefs.NotFoundError
	switch {
	case errors.As(err, &ve):
		utils.JSONError(w, http.StatusBadRequest, ve.Error())
	case errors.As(err, &nf):
		utils.JSONError(w, http.StatusNotFound, nf.Error())
	default:
		logger.Error("request_failed", "error", err)
		utils.JSONError(w, http.StatusInternalServerError, "internal server error")
	}
}
