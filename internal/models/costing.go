package models

import (
	"time"

	"gorm.io/gorm"
)

// ImportCostEstimate holds the raw charge inputs and the derived landed-cost
// figures for one shipment. Derived fields are recomputed in full by the
// costing engine on every create/update and are never client-mutable.
type ImportCostEstimate struct {
	ID         string  `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	ShipmentID *string `gorm:"type:uuid;index" json:"shipmentId,omitempty"`
	Supplier   string  `gorm:"index" json:"supplier"`

	// Estimates outlive their shipment; the FK clears instead of cascading
	Shipment *Shipment `gorm:"foreignKey:ShipmentID;constraint:OnDelete:SET NULL" json:"shipment,omitempty"`

	// Exchange rates
	RoeOrigin float64 `json:"roeOrigin"` // USD -> ZAR
	RoeEur    float64 `json:"roeEur"`    // EUR -> ZAR

	// Origin charges (foreign currency)
	OriginChargeUsd float64 `json:"originChargeUsd"`
	OriginChargeEur float64 `json:"originChargeEur"`

	// Local charge line items (ZAR)
	CartageZar          float64 `json:"cartageZar"`
	PortHandlingZar     float64 `json:"portHandlingZar"`
	DocumentationZar    float64 `json:"documentationZar"`
	ContainerDepositZar float64 `json:"containerDepositZar"`
	FacilityFeeZar      float64 `json:"facilityFeeZar"`

	// Destination charge line items (ZAR)
	TransportToWarehouseZar float64 `json:"transportToWarehouseZar"`
	OffloadingZar           float64 `json:"offloadingZar"`
	StorageZar              float64 `json:"storageZar"`

	// Customs components (ZAR)
	CustomsValueZar          float64 `json:"customsValueZar"`
	CustomsDutiesZar         float64 `json:"customsDutiesZar"`
	CustomsVatZar            float64 `json:"customsVatZar"`
	CustomsDeclarationZar    float64 `json:"customsDeclarationZar"`
	CustomsDutyNotApplicable bool    `json:"customsDutyNotApplicable"`

	// Weight
	TotalGrossWeightKg float64 `json:"totalGrossWeightKg"`

	// Fee schedule selector: agency (3.5%, min R1187) | davif (3.25%, min R125)
	FeeSchedule string `gorm:"default:'agency'" json:"feeSchedule"`

	// Derived fields (engine output, overwritten on every save)
	OriginChargeZar               float64 `json:"originChargeZar"`
	LocalChargesSubtotalZar       float64 `json:"localChargesSubtotalZar"`
	DestinationChargesSubtotalZar float64 `json:"destinationChargesSubtotalZar"`
	AgencyFeeZar                  float64 `json:"agencyFeeZar"`
	CustomsSubtotalZar            float64 `json:"customsSubtotalZar"`
	TotalShippingCostZar          float64 `json:"totalShippingCostZar"`
	TotalInWarehouseCostZar       float64 `json:"totalInWarehouseCostZar"`
	CostPerKgZar                  float64 `json:"costPerKgZar"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for ImportCostEstimate model
func (ImportCostEstimate) TableName() string {
	return "import_cost_estimates"
}
