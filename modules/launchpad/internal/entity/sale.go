package entity

import (
	"math/big"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/uint128"
	"github.com/orbit-network/launchpad-engine/common/errs"
)

// ErrInvalidTransition is returned when a sale state transition is not
// permitted by the lifecycle state machine.
var ErrInvalidTransition = errs.ErrorKind("invalid sale state transition")

type SaleState string

const (
	SaleStatePending   SaleState = "pending"
	SaleStateLive      SaleState = "live"
	SaleStatePaused    SaleState = "paused"
	SaleStateSuccess   SaleState = "success"
	SaleStateFailed    SaleState = "failed"
	SaleStateFinalized SaleState = "finalized"
)

func (s SaleState) String() string {
	return string(s)
}

func (s SaleState) IsValid() bool {
	switch s {
	case SaleStatePending, SaleStateLive, SaleStatePaused, SaleStateSuccess, SaleStateFailed, SaleStateFinalized:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition can leave the state.
func (s SaleState) IsTerminal() bool {
	switch s {
	case SaleStateFailed, SaleStateFinalized:
		return true
	}
	return false
}

// saleTransitions is the full set of permitted transitions. Every
// transition is one-way except the Live/Paused round trip.
var saleTransitions = map[SaleState][]SaleState{
	SaleStatePending: {SaleStateLive},
	SaleStateLive:    {SaleStatePaused, SaleStateSuccess, SaleStateFailed},
	SaleStatePaused:  {SaleStateLive},
	SaleStateSuccess: {SaleStateFinalized},
}

// CanTransitionTo reports whether the state machine permits moving from s to target.
func (s SaleState) CanTransitionTo(target SaleState) bool {
	for _, allowed := range saleTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// Sale is the aggregate the cap ledger and lifecycle operate on.
// RaisedTotal only grows while the sale is live and never exceeds HardCap.
type Sale struct {
	ID              int64
	Name            string
	TokenDecimals   uint8
	TokenPrice      uint128.Uint128 // base units of payment per whole token
	SoftCap         uint128.Uint128
	HardCap         uint128.Uint128
	MinContribution uint128.Uint128
	MaxContribution uint128.Uint128
	MaxPerWallet    uint128.Uint128
	StartsAt        time.Time
	EndsAt          time.Time
	RaisedTotal     uint128.Uint128
	State           SaleState
	UpdatedAt       time.Time
}

type NewSaleParams struct {
	Name            string
	TokenDecimals   uint8
	TokenPrice      uint128.Uint128
	SoftCap         uint128.Uint128
	HardCap         uint128.Uint128
	MinContribution uint128.Uint128
	MaxContribution uint128.Uint128
	MaxPerWallet    uint128.Uint128
	StartsAt        time.Time
	EndsAt          time.Time
}

// NewSale validates the cap structure at creation time. Invalid cap
// structures are rejected here so the ledger never has to re-check them.
func NewSale(params NewSaleParams) (Sale, error) {
	if params.Name == "" {
		return Sale{}, errors.Wrap(errs.InvalidArgument, "sale name is required")
	}
	if params.TokenPrice.IsZero() {
		return Sale{}, errors.Wrap(errs.InvalidArgument, "token price must be positive")
	}
	if params.HardCap.IsZero() {
		return Sale{}, errors.Wrap(errs.InvalidArgument, "hard cap must be positive")
	}
	if params.SoftCap.Cmp(params.HardCap) >= 0 {
		return Sale{}, errors.Wrap(errs.InvalidArgument, "soft cap must be less than hard cap")
	}
	if params.MinContribution.Cmp(params.MaxContribution) > 0 {
		return Sale{}, errors.Wrap(errs.InvalidArgument, "min contribution must not exceed max contribution")
	}
	if params.MaxContribution.Cmp(params.HardCap) > 0 {
		return Sale{}, errors.Wrap(errs.InvalidArgument, "max contribution must not exceed hard cap")
	}
	if params.MaxPerWallet.IsZero() {
		return Sale{}, errors.Wrap(errs.InvalidArgument, "max per wallet must be positive")
	}
	if !params.StartsAt.Before(params.EndsAt) {
		return Sale{}, errors.Wrap(errs.InvalidArgument, "sale must start before it ends")
	}
	return Sale{
		Name:            params.Name,
		TokenDecimals:   params.TokenDecimals,
		TokenPrice:      params.TokenPrice,
		SoftCap:         params.SoftCap,
		HardCap:         params.HardCap,
		MinContribution: params.MinContribution,
		MaxContribution: params.MaxContribution,
		MaxPerWallet:    params.MaxPerWallet,
		StartsAt:        params.StartsAt.UTC(),
		EndsAt:          params.EndsAt.UTC(),
		RaisedTotal:     uint128.Zero,
		State:           SaleStatePending,
	}, nil
}

// IsAcceptingContributions reports whether the sale accepts new
// contributions at the given time.
func (s Sale) IsAcceptingContributions(now time.Time) bool {
	if s.State != SaleStateLive {
		return false
	}
	return !now.Before(s.StartsAt) && !now.After(s.EndsAt)
}

// DueTransition returns the time-driven transition that should fire at the
// given time, if any. Activation (Pending to Live) is an explicit operation
// and is never returned here.
func (s Sale) DueTransition(now time.Time) (SaleState, bool) {
	if s.State != SaleStateLive || !now.After(s.EndsAt) {
		return "", false
	}
	if s.RaisedTotal.Cmp(s.SoftCap) >= 0 {
		return SaleStateSuccess, true
	}
	return SaleStateFailed, true
}

// TokenAmountFor computes the token amount purchased by the given payment
// amount: floor(amount * 10^decimals / price). Integer arithmetic only,
// rounding always floors in favor of the pool.
func (s Sale) TokenAmountFor(amount uint128.Uint128) (uint128.Uint128, error) {
	if s.TokenPrice.IsZero() {
		return uint128.Zero, errors.Wrap(errs.InvalidArgument, "token price must be positive")
	}
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(s.TokenDecimals)), nil)
	result := new(big.Int).Mul(amount.Big(), scale)
	result.Quo(result, s.TokenPrice.Big())
	tokenAmount, err := uint128.FromBig(result)
	if err != nil {
		return uint128.Zero, errors.WithStack(errs.OverflowUint128)
	}
	return tokenAmount, nil
}
