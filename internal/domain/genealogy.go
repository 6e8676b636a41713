package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LinkOperation classifies how a genealogy link was produced.
type LinkOperation string

const (
	LinkOperationConsume LinkOperation = "consume"
	LinkOperationOutput  LinkOperation = "output"
	LinkOperationSplit   LinkOperation = "split"
	LinkOperationMerge   LinkOperation = "merge"
)

// Valid reports whether op is a known operation type.
func (op LinkOperation) Valid() bool {
	switch op {
	case LinkOperationConsume, LinkOperationOutput, LinkOperationSplit, LinkOperationMerge:
		return true
	}
	return false
}

// GenealogyLink records that producing the output LP consumed some quantity
// of the input LP. Links are written once by the production-consumption
// workflow and never mutated here; a correction marks the link reversed
// rather than deleting it, and reversed links are excluded from traversal
// unless the caller opts in.
type GenealogyLink struct {
	ID               uuid.UUID       `json:"id"`
	InputLPID        uuid.UUID       `json:"input_lp_id"`
	OutputLPID       uuid.UUID       `json:"output_lp_id"`
	QuantityConsumed decimal.Decimal `json:"quantity_consumed"`
	OperationType    LinkOperation   `json:"operation_type"`
	LinkedAt         time.Time       `json:"linked_at"`
	Reference        string          `json:"reference"`
	IsReversed       bool            `json:"is_reversed"`
}

// ShipmentRecord links a shipped LP to the customer that received it.
type ShipmentRecord struct {
	ID                 uuid.UUID       `json:"id"`
	LPID               uuid.UUID       `json:"lp_id"`
	CustomerID         uuid.UUID       `json:"customer_id"`
	CustomerName       string          `json:"customer_name"`
	ContactEmail       string          `json:"contact_email"`
	ShippedQuantity    decimal.Decimal `json:"shipped_quantity"`
	ShipDate           time.Time       `json:"ship_date"`
	NotificationStatus string          `json:"notification_status"`
}
