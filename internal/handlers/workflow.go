package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/grovetrack/importflow/internal/models"
	"github.com/grovetrack/importflow/internal/workflow"
)

// respondWorkflow writes the updated shipment or translates engine errors:
// 404 for a missing shipment, 409 for a wrong-state attempt.
func (r *Router) respondWorkflow(w http.ResponseWriter, shipment *models.Shipment, err error) {
	switch {
	case err == nil:
		respondJSON(w, http.StatusOK, shipment)
	case errors.Is(err, workflow.ErrShipmentNotFound):
		respondError(w, http.StatusNotFound, "Shipment not found")
	case workflow.IsInvalidTransition(err):
		respondError(w, http.StatusConflict, err.Error())
	default:
		r.respondInternal(w, "Workflow operation failed", err)
	}
}

// startUnloading begins unloading an arrived shipment
func (r *Router) startUnloading(w http.ResponseWriter, req *http.Request) {
	shipment, err := r.engine.StartUnloading(mux.Vars(req)["id"])
	r.respondWorkflow(w, shipment, err)
}

// completeUnloading finishes unloading and queues the inspection
func (r *Router) completeUnloading(w http.ResponseWriter, req *http.Request) {
	shipment, err := r.engine.CompleteUnloading(mux.Vars(req)["id"])
	r.respondWorkflow(w, shipment, err)
}

// startInspection assigns an inspector
func (r *Router) startInspection(w http.ResponseWriter, req *http.Request) {
	var body struct {
		InspectedBy string `json:"inspectedBy"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if body.InspectedBy == "" {
		respondValidation(w, []string{"inspectedBy is required"})
		return
	}

	shipment, err := r.engine.StartInspection(mux.Vars(req)["id"], body.InspectedBy)
	r.respondWorkflow(w, shipment, err)
}

// completeInspection records the pass/fail outcome
func (r *Router) completeInspection(w http.ResponseWriter, req *http.Request) {
	var body struct {
		Passed      *bool  `json:"passed"`
		Notes       string `json:"notes"`
		InspectedBy string `json:"inspectedBy"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if body.Passed == nil {
		respondValidation(w, []string{"passed is required"})
		return
	}

	shipment, err := r.engine.CompleteInspection(mux.Vars(req)["id"], *body.Passed, body.Notes, body.InspectedBy)
	r.respondWorkflow(w, shipment, err)
}

// startReceiving begins receiving a passed shipment
func (r *Router) startReceiving(w http.ResponseWriter, req *http.Request) {
	var body struct {
		ReceivedBy string `json:"receivedBy"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if body.ReceivedBy == "" {
		respondValidation(w, []string{"receivedBy is required"})
		return
	}

	shipment, err := r.engine.StartReceiving(mux.Vars(req)["id"], body.ReceivedBy)
	r.respondWorkflow(w, shipment, err)
}

// completeReceiving records the count and any discrepancies
func (r *Router) completeReceiving(w http.ResponseWriter, req *http.Request) {
	var body struct {
		ReceivedQuantity *int                 `json:"receivedQuantity"`
		Notes            string               `json:"notes"`
		ReceivedBy       string               `json:"receivedBy"`
		Discrepancies    []models.Discrepancy `json:"discrepancies"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if body.ReceivedQuantity == nil {
		respondValidation(w, []string{"receivedQuantity is required"})
		return
	}
	if *body.ReceivedQuantity < 0 {
		respondValidation(w, []string{"receivedQuantity must not be negative"})
		return
	}

	shipment, err := r.engine.CompleteReceiving(mux.Vars(req)["id"],
		*body.ReceivedQuantity, body.Notes, body.ReceivedBy, body.Discrepancies)
	r.respondWorkflow(w, shipment, err)
}

// markStored puts a received shipment into storage
func (r *Router) markStored(w http.ResponseWriter, req *http.Request) {
	shipment, err := r.engine.MarkAsStored(mux.Vars(req)["id"])
	r.respondWorkflow(w, shipment, err)
}

// rejectShipment rejects and optionally archives a shipment
func (r *Router) rejectShipment(w http.ResponseWriter, req *http.Request) {
	var body struct {
		Reason     string `json:"reason"`
		RejectedBy string `json:"rejectedBy"`
		Archive    bool   `json:"archive"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	var fields []string
	if body.Reason == "" {
		fields = append(fields, "reason is required")
	}
	if body.RejectedBy == "" {
		fields = append(fields, "rejectedBy is required")
	}
	if len(fields) > 0 {
		respondValidation(w, fields)
		return
	}

	shipment, err := r.engine.RejectShipment(mux.Vars(req)["id"], body.Reason, body.RejectedBy, body.Archive)
	r.respondWorkflow(w, shipment, err)
}

// amendStatus is the admin-only override back to a pre-workflow status
func (r *Router) amendStatus(w http.ResponseWriter, req *http.Request) {
	var body struct {
		Status models.ShipmentStatus `json:"status"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if !workflow.IsAmendTarget(body.Status) {
		respondValidation(w, []string{"status must be a planning, transit or arrival status"})
		return
	}

	shipment, err := r.engine.AmendStatus(mux.Vars(req)["id"], body.Status)
	r.respondWorkflow(w, shipment, err)
}
