package domain

import "github.com/shopspring/decimal"

// Status is a stock-health label
type Status string

// Labels assigned by the per-supplier policy
const (
	StatusReorder       Status = "reorder"
	StatusTransferStock Status = "transfer-stock"
	StatusOverStock     Status = "over-stock"
	StatusSufficient    Status = "sufficient"
)

// Additional labels assigned by the tier policy
const (
	StatusCritical Status = "critical"
	StatusLowStock Status = "low-stock"
)

// Policy selects which rule table classifies a snapshot
type Policy string

const (
	// PolicySupplier is the 4-way per-supplier rule table
	// (reorder / transfer-stock / over-stock / sufficient)
	PolicySupplier Policy = "supplier"
	// PolicyTier is the aggregate rule table with no supplier split
	// (critical / low-stock / sufficient / over-stock)
	PolicyTier Policy = "tier"
)

// Valid reports whether p names a known policy
func (p Policy) Valid() bool {
	return p == PolicySupplier || p == PolicyTier
}

// StatusFor reports whether s is a label the policy can assign
func (p Policy) StatusFor(s Status) bool {
	switch p {
	case PolicySupplier:
		return s == StatusReorder || s == StatusTransferStock || s == StatusOverStock || s == StatusSufficient
	case PolicyTier:
		return s == StatusCritical || s == StatusLowStock || s == StatusOverStock || s == StatusSufficient
	}
	return false
}

var three = decimal.NewFromInt(3)

// Classify assigns a status to a stock snapshot under the given policy.
//
// Rules are evaluated strictly top to bottom and the first match wins. The
// conditions are not mutually exclusive by construction, so the order is
// load-bearing: with level=10, downstream=12, upstream=20 the over-stock rule
// fires even though "sufficient" would also match. A tuple with no threshold
// record classifies with level 0, which makes "downstream >= level" hold at
// zero stock; that zero-threshold edge is intentional and pinned by tests.
func Classify(policy Policy, snap StockSnapshot, level decimal.Decimal) Status {
	total := snap.TotalQty()

	switch policy {
	case PolicyTier:
		switch {
		case level.IsPositive() && total.GreaterThanOrEqual(level.Mul(three)):
			return StatusOverStock
		case snap.DownstreamQty.GreaterThanOrEqual(level):
			return StatusSufficient
		case total.GreaterThanOrEqual(level):
			return StatusLowStock
		default:
			return StatusCritical
		}
	default:
		switch {
		case level.IsPositive() &&
			snap.DownstreamQty.GreaterThanOrEqual(level) &&
			total.GreaterThanOrEqual(level.Mul(three)):
			return StatusOverStock
		case level.IsPositive() &&
			snap.DownstreamQty.LessThan(level) &&
			snap.UpstreamQty.GreaterThanOrEqual(level):
			return StatusTransferStock
		case snap.DownstreamQty.GreaterThanOrEqual(level):
			return StatusSufficient
		default:
			return StatusReorder
		}
	}
}
