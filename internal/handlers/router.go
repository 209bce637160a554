package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/grovetrack/importflow/internal/buildinfo"
	"github.com/grovetrack/importflow/internal/config"
	"github.com/grovetrack/importflow/internal/database"
	"github.com/grovetrack/importflow/internal/middleware"
	"github.com/grovetrack/importflow/internal/realtime"
	"github.com/grovetrack/importflow/internal/services/archive"
	"github.com/grovetrack/importflow/internal/workflow"
)

// Router wraps the mux router and the services behind the API
type Router struct {
	*mux.Router
	db      *database.DB
	cfg     *config.Config
	engine  *workflow.Engine
	hub     *realtime.Hub
	archive *archive.Service
}

// NewRouter creates a new HTTP router with all routes
func NewRouter(db *database.DB, cfg *config.Config) *Router {
	hub := realtime.NewHub()
	archiveSvc := archive.NewService(db)

	r := &Router{
		Router:  mux.NewRouter(),
		db:      db,
		cfg:     cfg,
		engine:  workflow.NewEngine(db, hub, archiveSvc),
		hub:     hub,
		archive: archiveSvc,
	}

	// Health check endpoint
	r.HandleFunc("/health", r.healthCheck).Methods("GET")

	// Auth routes
	auth := r.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/login", r.login).Methods("POST")
	auth.HandleFunc("/register", r.register).Methods("POST")
	auth.HandleFunc("/logout", r.logout).Methods("POST")

	// API routes (protected)
	api := r.PathPrefix("/api").Subrouter()
	api.Use(middleware.Auth(cfg))

	// Shipment CRUD
	api.HandleFunc("/shipments", r.listShipments).Methods("GET")
	api.HandleFunc("/shipments", r.createShipment).Methods("POST")
	api.HandleFunc("/shipments/bulk-import", r.bulkImportShipments).Methods("POST")
	api.HandleFunc("/shipments/{id}", r.getShipment).Methods("GET")
	api.HandleFunc("/shipments/{id}", r.updateShipment).Methods("PUT")
	api.HandleFunc("/shipments/{id}", r.deleteShipment).Methods("DELETE")
	api.HandleFunc("/shipments/{id}/label", r.shipmentLabel).Methods("GET")

	// Post-arrival workflow transitions
	api.HandleFunc("/shipments/{id}/start-unloading", r.startUnloading).Methods("POST")
	api.HandleFunc("/shipments/{id}/complete-unloading", r.completeUnloading).Methods("POST")
	api.HandleFunc("/shipments/{id}/start-inspection", r.startInspection).Methods("POST")
	api.HandleFunc("/shipments/{id}/complete-inspection", r.completeInspection).Methods("POST")
	api.HandleFunc("/shipments/{id}/start-receiving", r.startReceiving).Methods("POST")
	api.HandleFunc("/shipments/{id}/complete-receiving", r.completeReceiving).Methods("POST")
	api.HandleFunc("/shipments/{id}/mark-stored", r.markStored).Methods("POST")
	api.HandleFunc("/shipments/{id}/reject-shipment", r.rejectShipment).Methods("POST")
	api.Handle("/shipments/{id}/amend-status",
		middleware.RequireAdmin(http.HandlerFunc(r.amendStatus))).Methods("POST")

	// Costing
	api.HandleFunc("/costing", r.listEstimates).Methods("GET")
	api.HandleFunc("/costing", r.createEstimate).Methods("POST")
	api.HandleFunc("/costing/{id}", r.getEstimate).Methods("GET")
	api.HandleFunc("/costing/{id}", r.updateEstimate).Methods("PUT")
	api.HandleFunc("/costing/{id}", r.deleteEstimate).Methods("DELETE")
	api.HandleFunc("/costing/{id}/report", r.estimateReport).Methods("GET")

	// Supplier document portal
	api.HandleFunc("/documents", r.listDocuments).Methods("GET")
	api.HandleFunc("/documents", r.uploadDocument).Methods("POST")
	api.HandleFunc("/documents/{id}/download", r.downloadDocument).Methods("GET")
	api.HandleFunc("/documents/{id}/review", r.reviewDocument).Methods("POST")

	// Archive maintenance
	api.Handle("/archive/run",
		middleware.RequireAdmin(http.HandlerFunc(r.runArchive))).Methods("POST")

	// Live status feed for dashboards
	api.HandleFunc("/ws", r.hub.ServeWS).Methods("GET")

	return r
}

// healthCheck returns the health status of the API
func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"wsClients": r.hub.ClientCount(),
		"startTime": buildinfo.StartTime,
		"commit":    buildinfo.CommitHash,
	})
}

// Handler returns the root http.Handler
func (r *Router) Handler() http.Handler {
	return r.Router
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError sends an error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}

// respondValidation sends a 400 with field-level messages
func respondValidation(w http.ResponseWriter, messages []string) {
	respondJSON(w, http.StatusBadRequest, map[string]interface{}{
		"error":  "validation failed",
		"fields": messages,
	})
}

// respondInternal sends a 500; development mode includes the cause
func (r *Router) respondInternal(w http.ResponseWriter, message string, err error) {
	body := map[string]string{"error": message}
	if r.cfg.IsDevelopment() && err != nil {
		body["detail"] = err.Error()
	}
	respondJSON(w, http.StatusInternalServerError, body)
}
