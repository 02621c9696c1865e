package contribution

import (
	"time"

	"github.com/gaze-network/uint128"
	"github.com/orbit-network/launchpad-engine/modules/launchpad/internal/entity"
)

// Validator accumulates the outcome of the contribution admission checks.
// Checks are chained; the first failing check wins and later checks
// become no-ops.
type Validator struct {
	Valid  bool
	Reason RejectReason
}

func New() *Validator {
	return &Validator{
		Valid: true,
	}
}

func (v *Validator) reject(reason RejectReason) bool {
	v.Valid = false
	v.Reason = reason
	return v.Valid
}

// KycApproved requires the wallet to have passed KYC.
func (v *Validator) KycApproved(approved bool) bool {
	if !v.Valid {
		return false
	}
	if !approved {
		return v.reject(ReasonKycRequired)
	}
	return v.Valid
}

// SaleActive requires the sale to be live and inside its time window.
func (v *Validator) SaleActive(sale entity.Sale, now time.Time) bool {
	if !v.Valid {
		return false
	}
	if !sale.IsAcceptingContributions(now) {
		return v.reject(ReasonSaleNotActive)
	}
	return v.Valid
}

// AmountWithinRange requires the amount to be inside the sale's
// per-contribution bounds.
func (v *Validator) AmountWithinRange(sale entity.Sale, amount uint128.Uint128) bool {
	if !v.Valid {
		return false
	}
	if amount.Cmp(sale.MinContribution) < 0 || amount.Cmp(sale.MaxContribution) > 0 {
		return v.reject(ReasonAmountOutOfRange)
	}
	return v.Valid
}

// WalletCapNotExceeded requires the wallet's cumulative accepted total plus
// the new amount to stay within the effective per-wallet cap.
func (v *Validator) WalletCapNotExceeded(walletCap, walletTotal, amount uint128.Uint128) bool {
	if !v.Valid {
		return false
	}
	cumulative, overflow := walletTotal.AddOverflow(amount)
	if overflow || cumulative.Cmp(walletCap) > 0 {
		return v.reject(ReasonWalletCapExceeded)
	}
	return v.Valid
}

// HardCapNotExceeded requires the sale's raised total plus the new amount
// to stay within the hard cap. A contribution either fully fits or is fully
// rejected; there is no partial fill.
func (v *Validator) HardCapNotExceeded(sale entity.Sale, amount uint128.Uint128) bool {
	if !v.Valid {
		return false
	}
	raised, overflow := sale.RaisedTotal.AddOverflow(amount)
	if overflow || raised.Cmp(sale.HardCap) > 0 {
		return v.reject(ReasonHardCapExceeded)
	}
	return v.Valid
}
