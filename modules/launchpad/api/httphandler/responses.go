package httphandler

import (
	"time"

	"github.com/gaze-network/uint128"
	"github.com/orbit-network/launchpad-engine/modules/launchpad/internal/entity"
)

type saleResult struct {
	ID              int64           `json:"id"`
	Name            string          `json:"name"`
	TokenDecimals   uint8           `json:"tokenDecimals"`
	TokenPrice      uint128.Uint128 `json:"tokenPrice"`
	SoftCap         uint128.Uint128 `json:"softCap"`
	HardCap         uint128.Uint128 `json:"hardCap"`
	MinContribution uint128.Uint128 `json:"minContribution"`
	MaxContribution uint128.Uint128 `json:"maxContribution"`
	MaxPerWallet    uint128.Uint128 `json:"maxPerWallet"`
	StartsAt        time.Time       `json:"startsAt"`
	EndsAt          time.Time       `json:"endsAt"`
	RaisedTotal     uint128.Uint128 `json:"raisedTotal"`
	State           string          `json:"state"`
}

func saleToResult(sale entity.Sale) saleResult {
	return saleResult{
		ID:              sale.ID,
		Name:            sale.Name,
		TokenDecimals:   sale.TokenDecimals,
		TokenPrice:      sale.TokenPrice,
		SoftCap:         sale.SoftCap,
		HardCap:         sale.HardCap,
		MinContribution: sale.MinContribution,
		MaxContribution: sale.MaxContribution,
		MaxPerWallet:    sale.MaxPerWallet,
		StartsAt:        sale.StartsAt,
		EndsAt:          sale.EndsAt,
		RaisedTotal:     sale.RaisedTotal,
		State:           sale.State.String(),
	}
}

type contributionResult struct {
	ID           int64           `json:"id"`
	SaleID       int64           `json:"saleId"`
	Wallet       string          `json:"wallet"`
	Amount       uint128.Uint128 `json:"amount"`
	TokenAmount  uint128.Uint128 `json:"tokenAmount"`
	Status       string          `json:"status"`
	RejectReason string          `json:"rejectReason,omitempty"`
	At           time.Time       `json:"at"`
}

func contributionToResult(contribution entity.Contribution) contributionResult {
	return contributionResult{
		ID:           contribution.ID,
		SaleID:       contribution.SaleID,
		Wallet:       contribution.Wallet,
		Amount:       contribution.Amount,
		TokenAmount:  contribution.TokenAmount,
		Status:       contribution.Status.String(),
		RejectReason: contribution.RejectReason,
		At:           contribution.At,
	}
}

type vestingScheduleResult struct {
	ID              int64           `json:"id"`
	Beneficiary     string          `json:"beneficiary"`
	TotalAmount     uint128.Uint128 `json:"totalAmount"`
	StartsAt        time.Time       `json:"startsAt"`
	CliffSeconds    int64           `json:"cliffSeconds"`
	VestingSeconds  int64           `json:"vestingSeconds"`
	Revocable       bool            `json:"revocable"`
	Revoked         bool            `json:"revoked"`
	ReleasedAmount  uint128.Uint128 `json:"releasedAmount"`
	Releasable      uint128.Uint128 `json:"releasable"`
	ClaimableAmount uint128.Uint128 `json:"claimableAmount"`
}

func vestingScheduleToResult(schedule entity.VestingSchedule, now time.Time) vestingScheduleResult {
	return vestingScheduleResult{
		ID:              schedule.ID,
		Beneficiary:     schedule.Beneficiary,
		TotalAmount:     schedule.TotalAmount,
		StartsAt:        schedule.StartsAt,
		CliffSeconds:    int64(schedule.CliffDuration / time.Second),
		VestingSeconds:  int64(schedule.VestingDuration / time.Second),
		Revocable:       schedule.Revocable,
		Revoked:         schedule.Revoked,
		ReleasedAmount:  schedule.ReleasedAmount,
		Releasable:      schedule.Releasable(now),
		ClaimableAmount: schedule.Claimable(now),
	}
}

type batchResult struct {
	Index     int             `json:"index"`
	Amount    uint128.Uint128 `json:"amount"`
	Status    string          `json:"status"`
	Attempts  int             `json:"attempts"`
	LastError string          `json:"lastError,omitempty"`
}

type jobStatusResult struct {
	ID               int64           `json:"id"`
	TotalAmount      uint128.Uint128 `json:"totalAmount"`
	BatchSize        int             `json:"batchSize"`
	Status           string          `json:"status"`
	CompletedBatches int             `json:"completedBatches"`
	TotalBatches     int             `json:"totalBatches"`
	FailedBatches    int             `json:"failedBatches"`
	Batches          []batchResult   `json:"batches"`
	CreatedAt        time.Time       `json:"createdAt"`
}
