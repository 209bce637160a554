package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ShipmentStatus defines the lifecycle states of a shipment
type ShipmentStatus string

const (
	// Pre-arrival states
	StatusPlanning  ShipmentStatus = "planning"
	StatusInTransit ShipmentStatus = "in_transit"

	// Arrival states (per site)
	StatusArrivedPTA     ShipmentStatus = "arrived_pta"
	StatusArrivedKLM     ShipmentStatus = "arrived_klm"
	StatusArrivedOffsite ShipmentStatus = "arrived_offsite"

	// Post-arrival workflow states
	StatusUnloading         ShipmentStatus = "unloading"
	StatusInspectionPending ShipmentStatus = "inspection_pending"
	StatusInspecting        ShipmentStatus = "inspecting"
	StatusInspectionPassed  ShipmentStatus = "inspection_passed"
	StatusInspectionFailed  ShipmentStatus = "inspection_failed"
	StatusReceiving         ShipmentStatus = "receiving"
	StatusReceived          ShipmentStatus = "received"
	StatusStored            ShipmentStatus = "stored"

	// Terminal escape state
	StatusRejected ShipmentStatus = "rejected"
)

// Inspection outcome values
const (
	InspectionPassed = "passed"
	InspectionFailed = "failed"
)

// Receiving outcome values
const (
	ReceivingCompleted   = "completed"
	ReceivingPartial     = "partial"
	ReceivingDiscrepancy = "discrepancy"
)

// Discrepancy records a mismatch found during receiving
type Discrepancy struct {
	Type        string `json:"type"` // e.g. "shortage", "damage", "wrong_item"
	Description string `json:"description"`
	Quantity    int    `json:"quantity,omitempty"`
}

// Shipment represents a tracked unit of imported goods
// Standardized: Go (PascalCase) -> DB (snake_case) -> JSON (camelCase)
type Shipment struct {
	ID           string         `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	Supplier     string         `gorm:"index;not null" json:"supplier"`
	OrderRef     string         `gorm:"uniqueIndex;not null" json:"orderRef"`
	ProductName  string         `json:"productName"`
	Quantity     int            `json:"quantity"`
	WeekNumber   int            `gorm:"index" json:"weekNumber"`
	LatestStatus ShipmentStatus `gorm:"index;default:'planning'" json:"latestStatus"`

	// Unloading
	UnloadingStartDate     *time.Time `json:"unloadingStartDate,omitempty"`
	UnloadingCompletedDate *time.Time `json:"unloadingCompletedDate,omitempty"`

	// Inspection
	InspectionDate   *time.Time `json:"inspectionDate,omitempty"`
	InspectionStatus string     `json:"inspectionStatus,omitempty"` // passed | failed
	InspectionNotes  string     `gorm:"type:text" json:"inspectionNotes,omitempty"`
	InspectedBy      string     `json:"inspectedBy,omitempty"`

	// Receiving
	ReceivingDate    *time.Time     `json:"receivingDate,omitempty"`
	ReceivingStatus  string         `json:"receivingStatus,omitempty"` // completed | partial | discrepancy
	ReceivingNotes   string         `gorm:"type:text" json:"receivingNotes,omitempty"`
	ReceivedBy       string         `json:"receivedBy,omitempty"`
	ReceivedQuantity *int           `json:"receivedQuantity,omitempty"`
	Discrepancies    datatypes.JSON `json:"discrepancies,omitempty"` // []Discrepancy

	// Rejection
	RejectionDate   *time.Time `json:"rejectionDate,omitempty"`
	RejectionReason string     `gorm:"type:text" json:"rejectionReason,omitempty"`
	RejectedBy      string     `json:"rejectedBy,omitempty"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for Shipment model
func (Shipment) TableName() string {
	return "shipments"
}

// IsTerminal returns true when no further workflow transition is allowed
func (s *Shipment) IsTerminal() bool {
	return s.LatestStatus == StatusStored || s.LatestStatus == StatusRejected
}

// ShipmentArchive holds shipments moved out of the live table
// (rejected shipments and bulk-archived weeks)
type ShipmentArchive struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	ShipmentID    string         `gorm:"index;not null" json:"shipmentId"`
	ArchiveReason string         `json:"archiveReason"` // rejected | bulk_replace
	Snapshot      datatypes.JSON `json:"snapshot"`      // full shipment row at archive time
	ArchivedBy    string         `json:"archivedBy"`
	ArchivedAt    time.Time      `json:"archivedAt"`
}

// TableName specifies the table name for ShipmentArchive model
func (ShipmentArchive) TableName() string {
	return "shipment_archives"
}
