package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Supplier document types uploaded through the portal
const (
	DocTypeCommercialInvoice = "commercial_invoice"
	DocTypePackingList       = "packing_list"
	DocTypeBillOfLading      = "bill_of_lading"
	DocTypeSAD500            = "sad500"
)

// SupplierDocument is the metadata row for a file uploaded through the
// supplier portal. The payload itself lives on disk under StoredName.
type SupplierDocument struct {
	ID         string         `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	ShipmentID *string        `gorm:"type:uuid;index" json:"shipmentId,omitempty"`
	Supplier   string         `gorm:"index" json:"supplier"`
	Type       string         `gorm:"not null;index" json:"type"`
	FileName   string         `gorm:"not null" json:"fileName"`
	StoredName string         `gorm:"uniqueIndex;not null" json:"-"` // uuid-based name on disk
	SizeBytes  int64          `json:"sizeBytes"`
	MimeType   string         `json:"mimeType"`
	Status     string         `gorm:"default:'pending';index" json:"status"` // pending | reviewed | rejected
	Metadata   datatypes.JSON `json:"metadata,omitempty"`
	UploadedBy string         `json:"uploadedBy"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name
func (SupplierDocument) TableName() string {
	return "supplier_documents"
}
