package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LPStatus is the lifecycle state of a license plate.
type LPStatus string

const (
	LPStatusAvailable    LPStatus = "available"
	LPStatusInProduction LPStatus = "in_production"
	LPStatusShipped      LPStatus = "shipped"
	LPStatusConsumed     LPStatus = "consumed"
	LPStatusQuarantine   LPStatus = "quarantine"
)

// Statuses lists every LP status in breakdown order.
func Statuses() []LPStatus {
	return []LPStatus{
		LPStatusAvailable,
		LPStatusInProduction,
		LPStatusShipped,
		LPStatusConsumed,
		LPStatusQuarantine,
	}
}

// Valid reports whether s is a known status value.
func (s LPStatus) Valid() bool {
	switch s {
	case LPStatusAvailable, LPStatusInProduction, LPStatusShipped, LPStatusConsumed, LPStatusQuarantine:
		return true
	}
	return false
}

// LicensePlate is a uniquely identified quantity of one product at one
// location. Trace and recall operations treat it as a read-only snapshot
// taken at query time; status changes belong to the production and shipping
// workflows.
type LicensePlate struct {
	ID          uuid.UUID       `json:"id"`
	LPNumber    string          `json:"lp_number"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	ProductType string          `json:"product_type"`
	BatchNumber string          `json:"batch_number"`
	Quantity    decimal.Decimal `json:"quantity"`
	UOM         string          `json:"uom"`
	Status      LPStatus        `json:"status"`
	WarehouseID uuid.UUID       `json:"warehouse_id"`
	ExpiryDate  *time.Time      `json:"expiry_date,omitempty"`
	UnitValue   decimal.Decimal `json:"unit_value"`
}

// Value returns quantity multiplied by unit value.
func (lp LicensePlate) Value() decimal.Decimal {
	return lp.Quantity.Mul(lp.UnitValue)
}

// Warehouse names a storage location referenced by license plates.
type Warehouse struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}
