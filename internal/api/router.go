package api

import (
	"net/http"
)

func NewRouter(h *APIHandler) http.Handler {

	mux := http.NewServeMux()

	mux.HandleFunc("POST /jobs/{jobId}/watch", h.HandleWatch)

	mux.HandleFunc("GET /jobs/current", h.HandleCurrent)

	mux.HandleFunc("DELETE /jobs/current", h.HandleStop)

	return mux
}
