package recall

import "github.com/shopspring/decimal"

// Config carries the business parameters of recall cost and reportability
// estimation. These are externally configured values, not constants: cost
// rates and thresholds differ per manufacturer and per regulator.
type Config struct {
	// RetrievalCostRate is the estimated cost to retrieve one unit of
	// affected quantity.
	RetrievalCostRate decimal.Decimal
	// DisposalCostRate is the estimated cost to dispose of one unit of
	// affected quantity.
	DisposalCostRate decimal.Decimal
	// MarginFactor scales shipped value into lost revenue.
	MarginFactor decimal.Decimal
	// ReportableValueThreshold is the affected-value level above which the
	// recall must be reported.
	ReportableValueThreshold decimal.Decimal
	// AlwaysReportableProductTypes lists product types that are reportable
	// regardless of value.
	AlwaysReportableProductTypes []string
	// ResponseWindowDays is the regulator's reporting window, counted from
	// the earliest affected shipment.
	ResponseWindowDays int
	// ConfidenceInterval is a descriptive band communicated with the cost
	// estimate. It documents that the rates are estimates; it is not a
	// statistical computation.
	ConfidenceInterval string
}

// DefaultConfig returns a configuration with every rate at zero and the
// descriptive confidence band set. Deployments are expected to provide real
// rates via configuration.
func DefaultConfig() Config {
	return Config{
		RetrievalCostRate:            decimal.Zero,
		DisposalCostRate:             decimal.Zero,
		MarginFactor:                 decimal.Zero,
		ReportableValueThreshold:     decimal.Zero,
		AlwaysReportableProductTypes: nil,
		ResponseWindowDays:           0,
		ConfidenceInterval:           "±15%",
	}
}
