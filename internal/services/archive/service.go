// Package archive moves shipments out of the live table into
// shipment_archives. Each archival copies a full JSON snapshot of the row
// and deletes the live record inside a single transaction, so a crash can
// never leave a shipment both archived and live.
package archive

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/grovetrack/importflow/internal/database"
	"github.com/grovetrack/importflow/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ErrNotFound is returned when the shipment to archive does not exist
var ErrNotFound = errors.New("shipment not found")

// Service performs shipment archival
type Service struct {
	db *database.DB
}

// NewService creates an archive service
func NewService(db *database.DB) *Service {
	return &Service{db: db}
}

// ArchiveShipment snapshots one shipment into the archive table and removes
// the live row. Implements workflow.Archiver.
func (s *Service) ArchiveShipment(shipmentID, reason, actor string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var shipment models.Shipment
		if err := tx.First(&shipment, "id = ?", shipmentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		return archiveInTx(tx, &shipment, reason, actor)
	})
}

// ArchiveWeek archives and removes every shipment of the given week number.
// Used by bulk import to implement "archive old data then replace".
// Must run inside the caller's transaction.
func ArchiveWeek(tx *gorm.DB, weekNumber int, actor string) (int, error) {
	var shipments []models.Shipment
	if err := tx.Where("week_number = ?", weekNumber).Find(&shipments).Error; err != nil {
		return 0, fmt.Errorf("failed to load week %d shipments: %w", weekNumber, err)
	}

	for i := range shipments {
		if err := archiveInTx(tx, &shipments[i], "bulk_replace", actor); err != nil {
			return 0, err
		}
	}
	return len(shipments), nil
}

// ArchiveRejected archives every shipment rejected before the cutoff
func (s *Service) ArchiveRejected(olderThan time.Time, actor string) (int, error) {
	count := 0
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var shipments []models.Shipment
		if err := tx.
			Where("latest_status = ? AND rejection_date < ?", models.StatusRejected, olderThan).
			Find(&shipments).Error; err != nil {
			return err
		}

		for i := range shipments {
			if err := archiveInTx(tx, &shipments[i], "rejected", actor); err != nil {
				return err
			}
		}
		count = len(shipments)
		return nil
	})
	if err != nil {
		return 0, err
	}

	if count > 0 {
		log.Printf("🗃️  Archived %d rejected shipment(s)", count)
	}
	return count, nil
}

func archiveInTx(tx *gorm.DB, shipment *models.Shipment, reason, actor string) error {
	snapshot, err := json.Marshal(shipment)
	if err != nil {
		return fmt.Errorf("failed to snapshot shipment %s: %w", shipment.ID, err)
	}

	record := models.ShipmentArchive{
		ShipmentID:    shipment.ID,
		ArchiveReason: reason,
		Snapshot:      datatypes.JSON(snapshot),
		ArchivedBy:    actor,
		ArchivedAt:    time.Now().UTC(),
	}
	if err := tx.Create(&record).Error; err != nil {
		return fmt.Errorf("failed to write archive record: %w", err)
	}

	// Hard delete: the snapshot is the surviving copy
	if err := tx.Unscoped().Delete(&models.Shipment{}, "id = ?", shipment.ID).Error; err != nil {
		return fmt.Errorf("failed to remove live shipment: %w", err)
	}
	return nil
}
