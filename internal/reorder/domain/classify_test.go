package domain_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/stocklens/stocklens-backend/internal/reorder/domain"
)

func snap(downstream, upstream float64) domain.StockSnapshot {
	return domain.StockSnapshot{
		DownstreamQty: decimal.NewFromFloat(downstream),
		UpstreamQty:   decimal.NewFromFloat(upstream),
	}
}

func TestClassify_SupplierPolicy(t *testing.T) {
	tests := []struct {
		name       string
		downstream float64
		upstream   float64
		level      float64
		want       domain.Status
	}{
		{"over-stock when retail covered and total at triple level", 12, 20, 10, domain.StatusOverStock},
		{"over-stock exactly at triple level", 10, 20, 10, domain.StatusOverStock},
		{"transfer-stock when retail short but warehouse covers", 0, 75, 50, domain.StatusTransferStock},
		{"transfer-stock at warehouse boundary", 5, 10, 10, domain.StatusTransferStock},
		{"sufficient at exact retail boundary", 10, 0, 10, domain.StatusSufficient},
		{"sufficient when total below triple level", 15, 10, 10, domain.StatusSufficient},
		{"reorder when both tiers short", 3, 4, 10, domain.StatusReorder},
		{"reorder at zero stock", 0, 0, 10, domain.StatusReorder},
		{"zero threshold with zero stock is sufficient", 0, 0, 0, domain.StatusSufficient},
		{"zero threshold never over-stock", 500, 500, 0, domain.StatusSufficient},
		{"negative retail with zero threshold is reorder", -2, 0, 0, domain.StatusReorder},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := domain.Classify(domain.PolicySupplier, snap(tt.downstream, tt.upstream), decimal.NewFromFloat(tt.level))
			assert.Equal(t, tt.want, got)
		})
	}
}

// The rules are not mutually exclusive; first match wins. With level=10,
// downstream=12, upstream=20 the total (32) clears the triple-level bar, so
// over-stock fires even though the sufficient condition also holds.
func TestClassify_SupplierPolicy_RuleOrder(t *testing.T) {
	got := domain.Classify(domain.PolicySupplier, snap(12, 20), decimal.NewFromInt(10))
	assert.Equal(t, domain.StatusOverStock, got)

	// Boundary: total=10 misses rule 1, downstream=10 misses rule 2,
	// rule 3 matches.
	got = domain.Classify(domain.PolicySupplier, snap(10, 0), decimal.NewFromInt(10))
	assert.Equal(t, domain.StatusSufficient, got)
}

func TestClassify_TierPolicy(t *testing.T) {
	tests := []struct {
		name       string
		downstream float64
		upstream   float64
		level      float64
		want       domain.Status
	}{
		{"over-stock at triple level regardless of split", 0, 30, 10, domain.StatusOverStock},
		{"sufficient when retail covers", 10, 5, 10, domain.StatusSufficient},
		{"low-stock when only total covers", 4, 8, 10, domain.StatusLowStock},
		{"low-stock at exact total boundary", 0, 10, 10, domain.StatusLowStock},
		{"critical when total short", 2, 3, 10, domain.StatusCritical},
		{"zero threshold with zero stock is sufficient", 0, 0, 0, domain.StatusSufficient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := domain.Classify(domain.PolicyTier, snap(tt.downstream, tt.upstream), decimal.NewFromFloat(tt.level))
			assert.Equal(t, tt.want, got)
		})
	}
}

// Classification is a pure function: every input yields exactly one label from
// the policy's set, and repeated evaluation is stable.
func TestClassify_Deterministic(t *testing.T) {
	quantities := []float64{-5, 0, 1, 9, 10, 11, 29, 30, 31, 100}
	levels := []float64{0, 1, 10, 25.5}

	for _, d := range quantities {
		for _, u := range quantities {
			for _, l := range levels {
				s := snap(d, u)
				level := decimal.NewFromFloat(l)

				first := domain.Classify(domain.PolicySupplier, s, level)
				assert.True(t, domain.PolicySupplier.StatusFor(first),
					"unexpected label %q for d=%v u=%v l=%v", first, d, u, l)
				assert.Equal(t, first, domain.Classify(domain.PolicySupplier, s, level))

				tier := domain.Classify(domain.PolicyTier, s, level)
				assert.True(t, domain.PolicyTier.StatusFor(tier),
					"unexpected tier label %q for d=%v u=%v l=%v", tier, d, u, l)
			}
		}
	}
}

// End-to-end figures from a real lot: purchased=100, transferred=20,
// returned=5 gives upstream 75; no retail rows gives downstream 0. With a
// threshold of 50 the warehouse should transfer down.
func TestClassify_WarehouseOnlyStock(t *testing.T) {
	got := domain.Classify(domain.PolicySupplier, snap(0, 75), decimal.NewFromInt(50))
	assert.Equal(t, domain.StatusTransferStock, got)
}

func TestPolicy_Valid(t *testing.T) {
	assert.True(t, domain.PolicySupplier.Valid())
	assert.True(t, domain.PolicyTier.Valid())
	assert.False(t, domain.Policy("weekly").Valid())
	assert.False(t, domain.Policy("").Valid())
}

func TestIsPlaceholderName(t *testing.T) {
	assert.True(t, domain.IsPlaceholderName(""))
	assert.True(t, domain.IsPlaceholderName("UNSPECIFIED"))
	assert.True(t, domain.IsPlaceholderName("NONE"))
	assert.False(t, domain.IsPlaceholderName("ACME"))
	assert.False(t, domain.IsPlaceholderName("none"))
}
