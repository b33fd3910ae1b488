package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

// NewRouter builds the HTTP router with every endpoint.
func NewRouter(h *Handler) http.Handler {
	r := mux.NewRouter()
	r.Use(accessLog(h.logger))

	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)
	api.HandleFunc("/overview", h.GetOverview).Methods(http.MethodGet)
	api.HandleFunc("/metrics", h.GetMetrics).Methods(http.MethodGet)
	api.HandleFunc("/schedule", h.GetSchedule).Methods(http.MethodGet)
	api.HandleFunc("/analytics", h.GetAnalytics).Methods(http.MethodGet)
	api.HandleFunc("/timeline", h.GetTimeline).Methods(http.MethodGet)

	// Catalog
	api.HandleFunc("/categories", h.GetCategories).Methods(http.MethodGet)
	api.HandleFunc("/categories/{categoryId:[0-9]+}/expand", h.ToggleCategoryExpansion).Methods(http.MethodPost)
	api.HandleFunc("/standards", h.ListStandards).Methods(http.MethodGet)

	item := api.PathPrefix("/categories/{categoryId:[0-9]+}/standards/{itemId}").Subrouter()
	item.HandleFunc("/toggle", h.ToggleCompletion).Methods(http.MethodPost)
	item.HandleFunc("/hours", h.SetHoursSpent).Methods(http.MethodPut)
	item.HandleFunc("/priority", h.SetPriority).Methods(http.MethodPut)
	item.HandleFunc("/notes", h.SetNotes).Methods(http.MethodPut)
	item.HandleFunc("/scheduled-date", h.SetScheduledDate).Methods(http.MethodPut)

	// Plan settings
	api.HandleFunc("/availability", h.GetAvailability).Methods(http.MethodGet)
	api.HandleFunc("/availability/{day:[0-9]+}", h.SetAvailability).Methods(http.MethodPut)
	api.HandleFunc("/exam-date", h.GetExamDate).Methods(http.MethodGet)
	api.HandleFunc("/exam-date", h.SetExamDate).Methods(http.MethodPut)

	// Backup
	api.HandleFunc("/export", h.Export).Methods(http.MethodGet)
	api.HandleFunc("/import", h.Import).Methods(http.MethodPost)

	r.HandleFunc("/ws", h.Events)

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", RequestIDHeader},
		ExposedHeaders: []string{RequestIDHeader},
	})

	return c.Handler(r)
}
