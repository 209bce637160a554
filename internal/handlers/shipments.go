package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/grovetrack/importflow/internal/middleware"
	"github.com/grovetrack/importflow/internal/models"
	"github.com/grovetrack/importflow/internal/services/archive"
	"github.com/grovetrack/importflow/internal/services/printer"
	"gorm.io/gorm"
)

// ShipmentRequest carries the client-mutable fields of a shipment.
// Workflow fields are only reachable through the transition endpoints.
type ShipmentRequest struct {
	Supplier     string                `json:"supplier"`
	OrderRef     string                `json:"orderRef"`
	ProductName  string                `json:"productName"`
	Quantity     int                   `json:"quantity"`
	WeekNumber   int                   `json:"weekNumber"`
	LatestStatus models.ShipmentStatus `json:"latestStatus"`
}

func (s *ShipmentRequest) validate() []string {
	var fields []string
	if s.Supplier == "" {
		fields = append(fields, "supplier is required")
	}
	if s.OrderRef == "" {
		fields = append(fields, "orderRef is required")
	}
	if s.Quantity < 0 {
		fields = append(fields, "quantity must not be negative")
	}
	if s.WeekNumber < 0 || s.WeekNumber > 53 {
		fields = append(fields, "weekNumber must be between 0 and 53")
	}
	return fields
}

// listShipments returns shipments, filterable by status, supplier and week.
// Supplier users only ever see their own shipments.
func (r *Router) listShipments(w http.ResponseWriter, req *http.Request) {
	q := r.db.Model(&models.Shipment{}).Order("created_at DESC")

	if status := req.URL.Query().Get("status"); status != "" {
		q = q.Where("latest_status = ?", status)
	}
	if supplier := req.URL.Query().Get("supplier"); supplier != "" {
		q = q.Where("supplier = ?", supplier)
	}
	if week := req.URL.Query().Get("week"); week != "" {
		n, err := strconv.Atoi(week)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid week number")
			return
		}
		q = q.Where("week_number = ?", n)
	}
	if own := middleware.ClaimsFrom(req).Supplier(); own != "" {
		q = q.Where("supplier = ?", own)
	}

	var shipments []models.Shipment
	if err := q.Find(&shipments).Error; err != nil {
		r.respondInternal(w, "Failed to fetch shipments", err)
		return
	}
	respondJSON(w, http.StatusOK, shipments)
}

// getShipment returns a single shipment by ID
func (r *Router) getShipment(w http.ResponseWriter, req *http.Request) {
	shipment, ok := r.loadShipment(w, req)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, shipment)
}

// createShipment creates a new shipment in its initial status
func (r *Router) createShipment(w http.ResponseWriter, req *http.Request) {
	var in ShipmentRequest
	if err := json.NewDecoder(req.Body).Decode(&in); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if fields := in.validate(); len(fields) > 0 {
		respondValidation(w, fields)
		return
	}

	status := in.LatestStatus
	if status == "" {
		status = models.StatusPlanning
	}

	shipment := models.Shipment{
		Supplier:     in.Supplier,
		OrderRef:     in.OrderRef,
		ProductName:  in.ProductName,
		Quantity:     in.Quantity,
		WeekNumber:   in.WeekNumber,
		LatestStatus: status,
	}

	if err := r.db.Create(&shipment).Error; err != nil {
		if isDuplicateKey(err) {
			respondError(w, http.StatusConflict, "Order reference already exists")
			return
		}
		r.respondInternal(w, "Failed to create shipment", err)
		return
	}
	respondJSON(w, http.StatusCreated, shipment)
}

// updateShipment updates the classification fields of a shipment.
// latestStatus is deliberately not updatable here; use the workflow
// endpoints or amend-status.
func (r *Router) updateShipment(w http.ResponseWriter, req *http.Request) {
	shipment, ok := r.loadShipment(w, req)
	if !ok {
		return
	}

	var in ShipmentRequest
	if err := json.NewDecoder(req.Body).Decode(&in); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if fields := in.validate(); len(fields) > 0 {
		respondValidation(w, fields)
		return
	}

	shipment.Supplier = in.Supplier
	shipment.OrderRef = in.OrderRef
	shipment.ProductName = in.ProductName
	shipment.Quantity = in.Quantity
	shipment.WeekNumber = in.WeekNumber

	if err := r.db.Save(shipment).Error; err != nil {
		if isDuplicateKey(err) {
			respondError(w, http.StatusConflict, "Order reference already exists")
			return
		}
		r.respondInternal(w, "Failed to update shipment", err)
		return
	}
	respondJSON(w, http.StatusOK, shipment)
}

// deleteShipment removes a shipment; the cost estimate FK is set to NULL by
// the database, not by application logic
func (r *Router) deleteShipment(w http.ResponseWriter, req *http.Request) {
	id := mux.Vars(req)["id"]
	res := r.db.Delete(&models.Shipment{}, "id = ?", id)
	if res.Error != nil {
		r.respondInternal(w, "Failed to delete shipment", res.Error)
		return
	}
	if res.RowsAffected == 0 {
		respondError(w, http.StatusNotFound, "Shipment not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"message": "Shipment deleted successfully",
	})
}

// BulkImportRequest replaces a week's shipments in one transaction
type BulkImportRequest struct {
	WeekNumber int               `json:"weekNumber"`
	Shipments  []ShipmentRequest `json:"shipments"`
}

// bulkImportShipments archives the existing shipments of a week and inserts
// the replacement set atomically
func (r *Router) bulkImportShipments(w http.ResponseWriter, req *http.Request) {
	var in BulkImportRequest
	if err := json.NewDecoder(req.Body).Decode(&in); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if len(in.Shipments) == 0 {
		respondError(w, http.StatusBadRequest, "shipments must not be empty")
		return
	}
	var fields []string
	for i := range in.Shipments {
		for _, msg := range in.Shipments[i].validate() {
			fields = append(fields, "shipments["+strconv.Itoa(i)+"]: "+msg)
		}
	}
	if len(fields) > 0 {
		respondValidation(w, fields)
		return
	}

	actor := middleware.ClaimsFrom(req).Email()
	var archived int

	err := r.db.Transaction(func(tx *gorm.DB) error {
		n, err := archive.ArchiveWeek(tx, in.WeekNumber, actor)
		if err != nil {
			return err
		}
		archived = n

		for _, s := range in.Shipments {
			status := s.LatestStatus
			if status == "" {
				status = models.StatusPlanning
			}
			shipment := models.Shipment{
				Supplier:     s.Supplier,
				OrderRef:     s.OrderRef,
				ProductName:  s.ProductName,
				Quantity:     s.Quantity,
				WeekNumber:   in.WeekNumber,
				LatestStatus: status,
			}
			if err := tx.Create(&shipment).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if isDuplicateKey(err) {
			respondError(w, http.StatusConflict, "Duplicate order reference in import")
			return
		}
		r.respondInternal(w, "Bulk import failed", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]int{
		"archived": archived,
		"imported": len(in.Shipments),
	})
}

// shipmentLabel streams the put-away label PDF for a shipment
func (r *Router) shipmentLabel(w http.ResponseWriter, req *http.Request) {
	shipment, ok := r.loadShipment(w, req)
	if !ok {
		return
	}

	pdf, err := printer.ShipmentLabelPDF(shipment)
	if err != nil {
		r.respondInternal(w, "Failed to generate label", err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="label-`+shipment.OrderRef+`.pdf"`)
	w.Write(pdf)
}

// loadShipment fetches the shipment named in the URL, answering 404 itself
func (r *Router) loadShipment(w http.ResponseWriter, req *http.Request) (*models.Shipment, bool) {
	id := mux.Vars(req)["id"]
	var shipment models.Shipment
	if err := r.db.First(&shipment, "id = ?", id).Error; err != nil {
		respondError(w, http.StatusNotFound, "Shipment not found")
		return nil, false
	}
	return &shipment, true
}

// isDuplicateKey detects a unique-constraint violation from the driver
func isDuplicateKey(err error) bool {
	return err != nil && strings.Contains(err.Error(), "duplicate key")
}
