package entity

import (
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/uint128"
	"github.com/orbit-network/launchpad-engine/common/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSaleParams() NewSaleParams {
	return NewSaleParams{
		Name:            "test-sale",
		TokenDecimals:   6,
		TokenPrice:      uint128.From64(2_000_000),
		SoftCap:         uint128.From64(1_000_000),
		HardCap:         uint128.From64(10_000_000),
		MinContribution: uint128.From64(10_000),
		MaxContribution: uint128.From64(5_000_000),
		MaxPerWallet:    uint128.From64(5_000_000),
		StartsAt:        time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		EndsAt:          time.Date(2024, 6, 8, 0, 0, 0, 0, time.UTC),
	}
}

func TestSaleStateTransitions(t *testing.T) {
	allStates := []SaleState{SaleStatePending, SaleStateLive, SaleStatePaused, SaleStateSuccess, SaleStateFailed, SaleStateFinalized}
	allowed := map[SaleState][]SaleState{
		SaleStatePending: {SaleStateLive},
		SaleStateLive:    {SaleStatePaused, SaleStateSuccess, SaleStateFailed},
		SaleStatePaused:  {SaleStateLive},
		SaleStateSuccess: {SaleStateFinalized},
	}

	for _, from := range allStates {
		for _, to := range allStates {
			expected := false
			for _, a := range allowed[from] {
				if a == to {
					expected = true
				}
			}
			assert.Equal(t, expected, from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}
}

func TestSaleStateIsTerminal(t *testing.T) {
	assert.False(t, SaleStatePending.IsTerminal())
	assert.False(t, SaleStateLive.IsTerminal())
	assert.False(t, SaleStatePaused.IsTerminal())
	assert.False(t, SaleStateSuccess.IsTerminal())
	assert.True(t, SaleStateFailed.IsTerminal())
	assert.True(t, SaleStateFinalized.IsTerminal())
}

func TestNewSale(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		sale, err := NewSale(validSaleParams())
		require.NoError(t, err)
		assert.Equal(t, SaleStatePending, sale.State)
		assert.True(t, sale.RaisedTotal.IsZero())
	})

	test := func(name string, mutate func(*NewSaleParams)) {
		t.Run(name, func(t *testing.T) {
			params := validSaleParams()
			mutate(&params)
			_, err := NewSale(params)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errs.InvalidArgument))
		})
	}

	test("empty name", func(p *NewSaleParams) { p.Name = "" })
	test("zero token price", func(p *NewSaleParams) { p.TokenPrice = uint128.Zero })
	test("zero hard cap", func(p *NewSaleParams) { p.HardCap = uint128.Zero })
	test("soft cap equals hard cap", func(p *NewSaleParams) { p.SoftCap = p.HardCap })
	test("soft cap above hard cap", func(p *NewSaleParams) { p.SoftCap = p.HardCap.Add64(1) })
	test("min above max contribution", func(p *NewSaleParams) { p.MinContribution = p.MaxContribution.Add64(1) })
	test("max contribution above hard cap", func(p *NewSaleParams) { p.MaxContribution = p.HardCap.Add64(1) })
	test("zero max per wallet", func(p *NewSaleParams) { p.MaxPerWallet = uint128.Zero })
	test("starts after ends", func(p *NewSaleParams) { p.StartsAt = p.EndsAt.Add(time.Hour) })
	test("starts equals ends", func(p *NewSaleParams) { p.StartsAt = p.EndsAt })
}

func TestIsAcceptingContributions(t *testing.T) {
	sale, err := NewSale(validSaleParams())
	require.NoError(t, err)
	sale.State = SaleStateLive

	assert.True(t, sale.IsAcceptingContributions(sale.StartsAt))
	assert.True(t, sale.IsAcceptingContributions(sale.EndsAt))
	assert.True(t, sale.IsAcceptingContributions(sale.StartsAt.Add(time.Hour)))
	assert.False(t, sale.IsAcceptingContributions(sale.StartsAt.Add(-time.Second)))
	assert.False(t, sale.IsAcceptingContributions(sale.EndsAt.Add(time.Second)))

	sale.State = SaleStatePaused
	assert.False(t, sale.IsAcceptingContributions(sale.StartsAt.Add(time.Hour)))
}

func TestDueTransition(t *testing.T) {
	sale, err := NewSale(validSaleParams())
	require.NoError(t, err)
	afterEnd := sale.EndsAt.Add(time.Second)

	t.Run("not live", func(t *testing.T) {
		_, due := sale.DueTransition(afterEnd)
		assert.False(t, due)
	})

	t.Run("live before end", func(t *testing.T) {
		live := sale
		live.State = SaleStateLive
		_, due := live.DueTransition(sale.EndsAt)
		assert.False(t, due)
	})

	t.Run("soft cap met", func(t *testing.T) {
		live := sale
		live.State = SaleStateLive
		live.RaisedTotal = live.SoftCap
		target, due := live.DueTransition(afterEnd)
		require.True(t, due)
		assert.Equal(t, SaleStateSuccess, target)
	})

	t.Run("soft cap missed", func(t *testing.T) {
		live := sale
		live.State = SaleStateLive
		live.RaisedTotal = live.SoftCap.Sub64(1)
		target, due := live.DueTransition(afterEnd)
		require.True(t, due)
		assert.Equal(t, SaleStateFailed, target)
	})
}

func TestTokenAmountFor(t *testing.T) {
	test := func(name string, decimals uint8, price, amount, expected uint64) {
		t.Run(name, func(t *testing.T) {
			sale := Sale{TokenDecimals: decimals, TokenPrice: uint128.From64(price)}
			tokenAmount, err := sale.TokenAmountFor(uint128.From64(amount))
			require.NoError(t, err)
			assert.Equal(t, uint128.From64(expected), tokenAmount)
		})
	}

	test("exact", 6, 2_000_000, 3_000_000, 1_500_000)
	test("floors remainder", 2, 3, 10, 333)
	test("below one base unit", 0, 3, 1, 0)
	test("zero amount", 6, 2_000_000, 0, 0)
	test("no decimals", 0, 5, 100, 20)

	t.Run("zero price", func(t *testing.T) {
		sale := Sale{TokenDecimals: 6}
		_, err := sale.TokenAmountFor(uint128.From64(100))
		require.Error(t, err)
		assert.True(t, errors.Is(err, errs.InvalidArgument))
	})
}
