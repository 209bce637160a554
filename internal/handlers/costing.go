package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/grovetrack/importflow/internal/costing"
	"github.com/grovetrack/importflow/internal/middleware"
	"github.com/grovetrack/importflow/internal/models"
	"github.com/grovetrack/importflow/internal/services/printer"
)

// resolveSchedule picks the estimate's fee schedule, falling back to the
// configured default
func (r *Router) resolveSchedule(est *models.ImportCostEstimate) (costing.FeeSchedule, error) {
	code := est.FeeSchedule
	if code == "" {
		code = r.cfg.FeeSchedule
	}
	sched, err := costing.ResolveSchedule(code)
	if err != nil {
		return costing.FeeSchedule{}, err
	}
	est.FeeSchedule = sched.Code
	return sched, nil
}

// listEstimates returns cost estimates; supplier users see only their own
func (r *Router) listEstimates(w http.ResponseWriter, req *http.Request) {
	q := r.db.Model(&models.ImportCostEstimate{}).Order("created_at DESC")
	if supplier := middleware.ClaimsFrom(req).Supplier(); supplier != "" {
		q = q.Where("supplier = ?", supplier)
	}
	if shipmentID := req.URL.Query().Get("shipmentId"); shipmentID != "" {
		q = q.Where("shipment_id = ?", shipmentID)
	}

	var estimates []models.ImportCostEstimate
	if err := q.Find(&estimates).Error; err != nil {
		r.respondInternal(w, "Failed to fetch cost estimates", err)
		return
	}
	respondJSON(w, http.StatusOK, estimates)
}

// getEstimate returns a single cost estimate
func (r *Router) getEstimate(w http.ResponseWriter, req *http.Request) {
	est, ok := r.loadEstimate(w, req)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, est)
}

// createEstimate stores a new estimate with all derived fields computed
func (r *Router) createEstimate(w http.ResponseWriter, req *http.Request) {
	var est models.ImportCostEstimate
	if err := json.NewDecoder(req.Body).Decode(&est); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	est.ID = "" // server-assigned

	sched, err := r.resolveSchedule(&est)
	if err != nil {
		respondValidation(w, []string{err.Error()})
		return
	}
	costing.CalculateAllTotals(&est, sched)

	if err := r.db.Create(&est).Error; err != nil {
		r.respondInternal(w, "Failed to create cost estimate", err)
		return
	}
	respondJSON(w, http.StatusCreated, est)
}

// updateEstimate merges the incoming fields over the stored record and
// recomputes every derived field from the merged inputs
func (r *Router) updateEstimate(w http.ResponseWriter, req *http.Request) {
	est, ok := r.loadEstimate(w, req)
	if !ok {
		return
	}

	id := est.ID
	if err := json.NewDecoder(req.Body).Decode(est); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	est.ID = id // id is not client-mutable

	sched, err := r.resolveSchedule(est)
	if err != nil {
		respondValidation(w, []string{err.Error()})
		return
	}
	costing.CalculateAllTotals(est, sched)

	if err := r.db.Save(est).Error; err != nil {
		r.respondInternal(w, "Failed to update cost estimate", err)
		return
	}
	respondJSON(w, http.StatusOK, est)
}

// deleteEstimate removes a cost estimate
func (r *Router) deleteEstimate(w http.ResponseWriter, req *http.Request) {
	id := mux.Vars(req)["id"]
	res := r.db.Delete(&models.ImportCostEstimate{}, "id = ?", id)
	if res.Error != nil {
		r.respondInternal(w, "Failed to delete cost estimate", res.Error)
		return
	}
	if res.RowsAffected == 0 {
		respondError(w, http.StatusNotFound, "Cost estimate not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"message": "Cost estimate deleted successfully",
	})
}

// estimateReport streams the landed-cost breakdown PDF
func (r *Router) estimateReport(w http.ResponseWriter, req *http.Request) {
	est, ok := r.loadEstimate(w, req)
	if !ok {
		return
	}

	pdf, err := printer.CostEstimatePDF(est)
	if err != nil {
		r.respondInternal(w, "Failed to generate report", err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="estimate-`+est.ID+`.pdf"`)
	w.Write(pdf)
}

// loadEstimate fetches the estimate named in the URL, answering 404 itself
func (r *Router) loadEstimate(w http.ResponseWriter, req *http.Request) (*models.ImportCostEstimate, bool) {
	id := mux.Vars(req)["id"]
	var est models.ImportCostEstimate
	if err := r.db.First(&est, "id = ?", id).Error; err != nil {
		respondError(w, http.StatusNotFound, "Cost estimate not found")
		return nil, false
	}
	return &est, true
}
