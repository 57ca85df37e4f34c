package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
)

// errorResponse is the JSON body for every non-2xx response.
type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Code: status, Message: msg})
}

// writeStorageError logs the underlying failure and returns an opaque 500.
// Storage failures are never retried automatically: they may indicate a
// non-transient fault.
func writeStorageError(w http.ResponseWriter, r *http.Request, err error) {
	zctx.From(r.Context()).Error("storage failure", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "storage failure")
}
