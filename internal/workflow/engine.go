// Package workflow enforces the post-arrival lifecycle of a shipment:
// arrival → unloading → inspection → receiving → storage, with rejection as
// the escape hatch after a failed inspection.
//
// Every transition is applied as a single conditional UPDATE guarded on the
// current status (WHERE id = ? AND latest_status IN (...)), so of N
// concurrent attempts at the same transition exactly one succeeds; the
// losers observe zero rows affected and get a precise error back.
package workflow

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/grovetrack/importflow/internal/database"
	"github.com/grovetrack/importflow/internal/models"
	"gorm.io/gorm"
)

// StatusFeed receives a notification after every successful transition.
// The realtime hub implements it; a nil feed disables broadcasting.
type StatusFeed interface {
	PublishStatus(shipmentID string, status models.ShipmentStatus)
}

// Archiver moves a rejected shipment out of the live table.
type Archiver interface {
	ArchiveShipment(shipmentID, reason, actor string) error
}

// Engine applies workflow transitions to shipments
type Engine struct {
	db       *database.DB
	feed     StatusFeed
	archiver Archiver
}

// NewEngine creates a workflow engine. feed and archiver may be nil.
func NewEngine(db *database.DB, feed StatusFeed, archiver Archiver) *Engine {
	return &Engine{db: db, feed: feed, archiver: archiver}
}

// transition performs the guarded status update and classifies a zero-row
// result as either not-found or wrong-state by re-reading the row.
func (e *Engine) transition(id string, from []models.ShipmentStatus, updates map[string]interface{}) (*models.Shipment, error) {
	res := e.db.Model(&models.Shipment{}).
		Where("id = ? AND latest_status IN ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to update shipment: %w", res.Error)
	}

	if res.RowsAffected == 0 {
		var current models.Shipment
		if err := e.db.First(&current, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrShipmentNotFound
			}
			return nil, err
		}
		return nil, &InvalidTransitionError{
			ShipmentID: id,
			Actual:     current.LatestStatus,
			Expected:   from,
		}
	}

	var shipment models.Shipment
	if err := e.db.First(&shipment, "id = ?", id).Error; err != nil {
		return nil, err
	}

	if e.feed != nil {
		e.feed.PublishStatus(shipment.ID, shipment.LatestStatus)
	}
	return &shipment, nil
}

// StartUnloading moves an arrived shipment into unloading
func (e *Engine) StartUnloading(id string) (*models.Shipment, error) {
	now := time.Now().UTC()
	return e.transition(id, ArrivalStates, map[string]interface{}{
		"latest_status":        models.StatusUnloading,
		"unloading_start_date": &now,
	})
}

// CompleteUnloading moves an unloading shipment to inspection_pending
func (e *Engine) CompleteUnloading(id string) (*models.Shipment, error) {
	now := time.Now().UTC()
	return e.transition(id, []models.ShipmentStatus{models.StatusUnloading}, map[string]interface{}{
		"latest_status":            models.StatusInspectionPending,
		"unloading_completed_date": &now,
	})
}

// StartInspection assigns an inspector and moves the shipment to inspecting.
// Also legal from inspection_failed, which re-opens a failed inspection.
func (e *Engine) StartInspection(id, inspectedBy string) (*models.Shipment, error) {
	now := time.Now().UTC()
	return e.transition(id, StartInspectionSources(), map[string]interface{}{
		"latest_status":   models.StatusInspecting,
		"inspected_by":    inspectedBy,
		"inspection_date": &now,
	})
}

// CompleteInspection records the inspection outcome
func (e *Engine) CompleteInspection(id string, passed bool, notes, inspectedBy string) (*models.Shipment, error) {
	status := models.StatusInspectionPassed
	outcome := models.InspectionPassed
	if !passed {
		status = models.StatusInspectionFailed
		outcome = models.InspectionFailed
	}

	updates := map[string]interface{}{
		"latest_status":     status,
		"inspection_status": outcome,
		"inspection_notes":  notes,
	}
	if inspectedBy != "" {
		updates["inspected_by"] = inspectedBy
	}
	return e.transition(id, []models.ShipmentStatus{models.StatusInspecting}, updates)
}

// StartReceiving moves a passed shipment into receiving
func (e *Engine) StartReceiving(id, receivedBy string) (*models.Shipment, error) {
	now := time.Now().UTC()
	return e.transition(id, []models.ShipmentStatus{models.StatusInspectionPassed}, map[string]interface{}{
		"latest_status":  models.StatusReceiving,
		"received_by":    receivedBy,
		"receiving_date": &now,
	})
}

// CompleteReceiving records the received quantity and discrepancies.
// Outcome priority: discrepancies > short quantity > completed. Only a clean
// completed receipt advances latest_status to received; partial and
// discrepancy outcomes keep the shipment in receiving for manual review and
// the operation may be repeated once the count is corrected.
func (e *Engine) CompleteReceiving(id string, receivedQuantity int, notes, receivedBy string, discrepancies []models.Discrepancy) (*models.Shipment, error) {
	var shipment models.Shipment
	if err := e.db.First(&shipment, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShipmentNotFound
		}
		return nil, err
	}

	var receivingStatus string
	switch {
	case len(discrepancies) > 0:
		receivingStatus = models.ReceivingDiscrepancy
	case receivedQuantity < shipment.Quantity:
		receivingStatus = models.ReceivingPartial
	default:
		receivingStatus = models.ReceivingCompleted
	}

	updates := map[string]interface{}{
		"receiving_status":  receivingStatus,
		"received_quantity": receivedQuantity,
		"receiving_notes":   notes,
	}
	if receivingStatus == models.ReceivingCompleted {
		updates["latest_status"] = models.StatusReceived
	}
	if receivedBy != "" {
		updates["received_by"] = receivedBy
	}
	if discrepancies != nil {
		raw, err := json.Marshal(discrepancies)
		if err != nil {
			return nil, fmt.Errorf("failed to encode discrepancies: %w", err)
		}
		updates["discrepancies"] = raw
	}

	return e.transition(id, []models.ShipmentStatus{models.StatusReceiving}, updates)
}

// MarkAsStored moves a received shipment into storage
func (e *Engine) MarkAsStored(id string) (*models.Shipment, error) {
	return e.transition(id, []models.ShipmentStatus{models.StatusReceived}, map[string]interface{}{
		"latest_status": models.StatusStored,
	})
}

// RejectShipment rejects a shipment from any live state, typically after a
// failed inspection, and optionally archives the record.
func (e *Engine) RejectShipment(id, reason, rejectedBy string, archive bool) (*models.Shipment, error) {
	now := time.Now().UTC()

	var live []models.ShipmentStatus
	for _, s := range allStatuses {
		if RejectableFrom(s) {
			live = append(live, s)
		}
	}

	shipment, err := e.transition(id, live, map[string]interface{}{
		"latest_status":    models.StatusRejected,
		"rejection_date":   &now,
		"rejection_reason": reason,
		"rejected_by":      rejectedBy,
	})
	if err != nil {
		return nil, err
	}

	if archive && e.archiver != nil {
		if err := e.archiver.ArchiveShipment(shipment.ID, "rejected", rejectedBy); err != nil {
			return nil, fmt.Errorf("shipment rejected but archival failed: %w", err)
		}
	}
	return shipment, nil
}

// AmendStatus is the administrative override: it sets the shipment back to a
// pre-workflow status unconditionally, bypassing the forward-only chain.
func (e *Engine) AmendStatus(id string, target models.ShipmentStatus) (*models.Shipment, error) {
	if !IsAmendTarget(target) {
		return nil, fmt.Errorf("%q is not a valid amend target", target)
	}

	res := e.db.Model(&models.Shipment{}).
		Where("id = ?", id).
		Update("latest_status", target)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to amend status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrShipmentNotFound
	}

	var shipment models.Shipment
	if err := e.db.First(&shipment, "id = ?", id).Error; err != nil {
		return nil, err
	}
	if e.feed != nil {
		e.feed.PublishStatus(shipment.ID, shipment.LatestStatus)
	}
	return &shipment, nil
}

// allStatuses enumerates every shipment status for building guard lists
var allStatuses = []models.ShipmentStatus{
	models.StatusPlanning,
	models.StatusInTransit,
	models.StatusArrivedPTA,
	models.StatusArrivedKLM,
	models.StatusArrivedOffsite,
	models.StatusUnloading,
	models.StatusInspectionPending,
	models.StatusInspecting,
	models.StatusInspectionPassed,
	models.StatusInspectionFailed,
	models.StatusReceiving,
	models.StatusReceived,
	models.StatusStored,
	models.StatusRejected,
}
