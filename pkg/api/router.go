package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

// NewRouter wires the status routes behind a permissive CORS policy
func NewRouter(h *Handlers) http.Handler {
	router := mux.NewRouter()

	router.HandleFunc("/health", h.Health).Methods("GET")

	apiRouter := router.PathPrefix("/api").Subrouter()
	apiRouter.HandleFunc("/checks", h.ListChecks).Methods("GET")
	apiRouter.HandleFunc("/checks/latest", h.GetLatestCheck).Methods("GET")
	apiRouter.HandleFunc("/checks/stream", h.StreamChecks).Methods("GET")
	apiRouter.HandleFunc("/checks/{id}", h.GetCheck).Methods("GET")

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	})

	return c.Handler(router)
}
