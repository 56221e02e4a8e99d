package inventory

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPosition(t *testing.T) *ProductPosition {
	t.Helper()
	position, err := NewProductPosition("OIL", "Sunflower oil", "l", "2041")
	require.NoError(t, err)
	return position
}

func receive(t *testing.T, p *ProductPosition, quantity, unitCost float64) *StockLot {
	t.Helper()
	lot, err := p.Receive(
		decimal.NewFromFloat(quantity),
		decimal.NewFromFloat(unitCost),
		SupplierRef{ID: "SUP-1", Name: "Agro Trade SRL"},
		time.Now(),
	)
	require.NoError(t, err)
	return lot
}

func TestNewProductPosition(t *testing.T) {
	t.Run("creates empty position", func(t *testing.T) {
		position := newTestPosition(t)
		assert.Equal(t, "OIL", position.ProductCode)
		assert.Equal(t, "2041", position.InventoryAccountCode)
		assert.True(t, position.QuantityOnHand.IsZero())
		assert.True(t, position.TotalValue.IsZero())
		assert.True(t, position.WeightedAverageCost.IsZero())
		assert.Empty(t, position.Lots)
	})

	t.Run("rejects empty product code", func(t *testing.T) {
		_, err := NewProductPosition("", "x", "pc", "2041")
		assert.Error(t, err)
	})

	t.Run("rejects empty inventory account", func(t *testing.T) {
		_, err := NewProductPosition("OIL", "x", "pc", "")
		assert.Error(t, err)
	})
}

func TestProductPositionReceive(t *testing.T) {
	t.Run("first receipt sets aggregates", func(t *testing.T) {
		position := newTestPosition(t)
		lot := receive(t, position, 10, 800)

		assert.True(t, position.QuantityOnHand.Equal(decimal.NewFromInt(10)))
		assert.True(t, position.TotalValue.Equal(decimal.NewFromInt(8000)))
		assert.True(t, position.WeightedAverageCost.Equal(decimal.NewFromInt(800)))
		assert.True(t, lot.RemainingQuantity.Equal(lot.OriginalQuantity))
	})

	t.Run("second receipt recomputes weighted average", func(t *testing.T) {
		position := newTestPosition(t)
		receive(t, position, 10, 800)
		receive(t, position, 10, 900)

		assert.True(t, position.QuantityOnHand.Equal(decimal.NewFromInt(20)))
		assert.True(t, position.TotalValue.Equal(decimal.NewFromInt(17000)))
		assert.True(t, position.WeightedAverageCost.Equal(decimal.NewFromInt(850)))
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		position := newTestPosition(t)
		_, err := position.Receive(decimal.Zero, decimal.NewFromInt(800), SupplierRef{}, time.Now())
		assert.Error(t, err)
		assert.Empty(t, position.Lots)
	})

	t.Run("rejects non-positive unit cost", func(t *testing.T) {
		position := newTestPosition(t)
		_, err := position.Receive(decimal.NewFromInt(10), decimal.NewFromInt(-1), SupplierRef{}, time.Now())
		assert.Error(t, err)
		assert.Empty(t, position.Lots)
	})

	t.Run("emits StockReceived event", func(t *testing.T) {
		position := newTestPosition(t)
		receive(t, position, 10, 800)

		events := position.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeStockReceived, events[0].EventType())
	})
}

func TestProductPositionIssueFIFO(t *testing.T) {
	t.Run("issues from oldest lot first", func(t *testing.T) {
		position := newTestPosition(t)
		receive(t, position, 10, 800)

		breakdown, err := position.Issue(decimal.NewFromInt(4))
		require.NoError(t, err)

		assert.True(t, breakdown.ConsumedCost.Equal(decimal.NewFromInt(3200)))
		assert.True(t, position.QuantityOnHand.Equal(decimal.NewFromInt(6)))
		assert.True(t, position.TotalValue.Equal(decimal.NewFromInt(4800)))
		require.Len(t, breakdown.ConsumedLots, 1)
		assert.True(t, breakdown.ConsumedLots[0].QuantityTaken.Equal(decimal.NewFromInt(4)))
	})

	t.Run("spans lots in receipt order", func(t *testing.T) {
		position := newTestPosition(t)
		receive(t, position, 10, 800)
		_, err := position.Issue(decimal.NewFromInt(4))
		require.NoError(t, err)
		receive(t, position, 5, 820)

		// Lots now: 6 @ 800, 5 @ 820
		breakdown, err := position.Issue(decimal.NewFromInt(8))
		require.NoError(t, err)

		assert.True(t, breakdown.ConsumedCost.Equal(decimal.NewFromInt(6440)),
			"expected 6x800 + 2x820 = 6440, got %s", breakdown.ConsumedCost)
		require.Len(t, breakdown.ConsumedLots, 2)
		assert.True(t, breakdown.ConsumedLots[0].QuantityTaken.Equal(decimal.NewFromInt(6)))
		assert.True(t, breakdown.ConsumedLots[0].UnitCost.Equal(decimal.NewFromInt(800)))
		assert.True(t, breakdown.ConsumedLots[1].QuantityTaken.Equal(decimal.NewFromInt(2)))
		assert.True(t, breakdown.ConsumedLots[1].UnitCost.Equal(decimal.NewFromInt(820)))

		assert.True(t, position.QuantityOnHand.Equal(decimal.NewFromInt(3)))
		assert.True(t, position.TotalValue.Equal(decimal.NewFromInt(2460)))
	})

	t.Run("exact depletion retires lot from consumption", func(t *testing.T) {
		position := newTestPosition(t)
		receive(t, position, 10, 800)
		receive(t, position, 5, 820)

		_, err := position.Issue(decimal.NewFromInt(10))
		require.NoError(t, err)

		active := position.ActiveLots()
		require.Len(t, active, 1)
		assert.True(t, active[0].UnitCost.Equal(decimal.NewFromInt(820)))

		// Depleted lot stays on the aggregate for audit
		require.Len(t, position.Lots, 2)
		assert.True(t, position.Lots[0].IsDepleted())
		assert.True(t, position.Lots[0].UnitCost.Equal(decimal.NewFromInt(800)))

		// Next issue draws only from the surviving lot
		breakdown, err := position.Issue(decimal.NewFromInt(2))
		require.NoError(t, err)
		assert.True(t, breakdown.ConsumedCost.Equal(decimal.NewFromInt(1640)))
	})

	t.Run("fifo cost equals draining receipts in order", func(t *testing.T) {
		position := newTestPosition(t)
		receipts := []struct {
			quantity float64
			unitCost float64
		}{
			{3, 100}, {7, 110}, {5, 95}, {2, 120},
		}
		for _, r := range receipts {
			receive(t, position, r.quantity, r.unitCost)
		}

		issueQty := decimal.NewFromInt(13)
		breakdown, err := position.Issue(issueQty)
		require.NoError(t, err)

		// Drain receipts in order by hand: 3x100 + 7x110 + 3x95
		expected := decimal.NewFromInt(3*100 + 7*110 + 3*95)
		assert.True(t, breakdown.ConsumedCost.Equal(expected),
			"expected %s, got %s", expected, breakdown.ConsumedCost)
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		position := newTestPosition(t)
		receive(t, position, 10, 800)
		_, err := position.Issue(decimal.Zero)
		assert.Error(t, err)
		assert.True(t, position.QuantityOnHand.Equal(decimal.NewFromInt(10)))
	})
}

func TestProductPositionInsufficientStock(t *testing.T) {
	t.Run("over-issue fails and leaves state unchanged", func(t *testing.T) {
		position := newTestPosition(t)
		receive(t, position, 10, 800)
		receive(t, position, 5, 820)
		_, err := position.Issue(decimal.NewFromInt(12))
		require.NoError(t, err)
		// 3 @ 820 remain

		before := position.QuantityOnHand
		beforeValue := position.TotalValue
		beforeLots := make([]StockLot, len(position.Lots))
		copy(beforeLots, position.Lots)

		_, err = position.Issue(decimal.NewFromInt(100))
		require.Error(t, err)

		var stockErr *InsufficientStockError
		require.True(t, errors.As(err, &stockErr))
		assert.True(t, stockErr.Requested.Equal(decimal.NewFromInt(100)))
		assert.True(t, stockErr.Available.Equal(decimal.NewFromInt(3)))
		assert.Equal(t, "OIL", stockErr.ProductCode)

		assert.True(t, position.QuantityOnHand.Equal(before))
		assert.True(t, position.TotalValue.Equal(beforeValue))
		for i := range beforeLots {
			assert.True(t, position.Lots[i].RemainingQuantity.Equal(beforeLots[i].RemainingQuantity))
		}
	})

	t.Run("issue on empty position fails", func(t *testing.T) {
		position := newTestPosition(t)
		_, err := position.Issue(decimal.NewFromInt(1))
		var stockErr *InsufficientStockError
		require.True(t, errors.As(err, &stockErr))
		assert.True(t, stockErr.Available.IsZero())
	})
}

func TestProductPositionConservation(t *testing.T) {
	t.Run("quantity and value follow receipts minus issues", func(t *testing.T) {
		position := newTestPosition(t)

		receive(t, position, 10, 800)
		receive(t, position, 4, 850)
		_, err := position.Issue(decimal.NewFromInt(6))
		require.NoError(t, err)
		receive(t, position, 2, 790)
		_, err = position.Issue(decimal.NewFromInt(5))
		require.NoError(t, err)

		// 10 + 4 + 2 - 6 - 5 = 5
		assert.True(t, position.QuantityOnHand.Equal(decimal.NewFromInt(5)))

		expectedValue := decimal.Zero
		expectedQty := decimal.Zero
		for _, lot := range position.ActiveLots() {
			expectedValue = expectedValue.Add(lot.Value())
			expectedQty = expectedQty.Add(lot.RemainingQuantity)
		}
		assert.True(t, position.TotalValue.Equal(expectedValue))
		assert.True(t, position.QuantityOnHand.Equal(expectedQty))
	})

	t.Run("weighted average resets at zero quantity", func(t *testing.T) {
		position := newTestPosition(t)
		receive(t, position, 5, 800)
		_, err := position.Issue(decimal.NewFromInt(5))
		require.NoError(t, err)

		assert.True(t, position.QuantityOnHand.IsZero())
		assert.True(t, position.TotalValue.IsZero())
		assert.True(t, position.WeightedAverageCost.IsZero())
		assert.False(t, position.HasStock())
	})

	t.Run("fractional quantities keep rounding stable", func(t *testing.T) {
		position := newTestPosition(t)
		receive(t, position, 3, 10)
		receive(t, position, 3, 20)

		// 90 / 6 = 15
		assert.True(t, position.WeightedAverageCost.Equal(decimal.NewFromInt(15)))

		_, err := position.Issue(decimal.NewFromFloat(4.5))
		require.NoError(t, err)
		// Consumed 3x10 + 1.5x20 = 60; remaining 1.5 @ 20 = 30
		assert.True(t, position.TotalValue.Equal(decimal.NewFromInt(30)))
		assert.True(t, position.WeightedAverageCost.Equal(decimal.NewFromInt(20)))
	})
}

func TestStockLot(t *testing.T) {
	t.Run("take caps at remaining quantity", func(t *testing.T) {
		lot := NewStockLot(newTestPosition(t).ID, "OIL", decimal.NewFromInt(5), decimal.NewFromInt(800), SupplierRef{}, time.Now())
		taken := lot.Take(decimal.NewFromInt(8))
		assert.True(t, taken.Equal(decimal.NewFromInt(5)))
		assert.True(t, lot.IsDepleted())
		assert.False(t, lot.HasStock())
	})

	t.Run("historical unit cost survives depletion", func(t *testing.T) {
		lot := NewStockLot(newTestPosition(t).ID, "OIL", decimal.NewFromInt(5), decimal.NewFromInt(800), SupplierRef{}, time.Now())
		lot.Take(decimal.NewFromInt(5))
		assert.True(t, lot.UnitCost.Equal(decimal.NewFromInt(800)))
		assert.True(t, lot.OriginalQuantity.Equal(decimal.NewFromInt(5)))
	})
}
