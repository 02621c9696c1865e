package postgres

import (
	"encoding/json"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/uint128"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/orbit-network/launchpad-engine/modules/launchpad/internal/entity"
)

func uint128FromNumeric(src pgtype.Numeric) (uint128.Uint128, error) {
	if !src.Valid {
		return uint128.Zero, nil
	}
	bytes, err := src.MarshalJSON()
	if err != nil {
		return uint128.Zero, errors.WithStack(err)
	}
	result, err := uint128.FromString(string(bytes))
	if err != nil {
		return uint128.Zero, errors.WithStack(err)
	}
	return result, nil
}

func numericFromUint128(src uint128.Uint128) (pgtype.Numeric, error) {
	bytes := []byte(src.String())
	var result pgtype.Numeric
	if err := result.UnmarshalJSON(bytes); err != nil {
		return pgtype.Numeric{}, errors.WithStack(err)
	}
	return result, nil
}

type saleModel struct {
	ID              int64
	Name            string
	TokenDecimals   int16
	TokenPrice      pgtype.Numeric
	SoftCap         pgtype.Numeric
	HardCap         pgtype.Numeric
	MinContribution pgtype.Numeric
	MaxContribution pgtype.Numeric
	MaxPerWallet    pgtype.Numeric
	StartsAt        pgtype.Timestamptz
	EndsAt          pgtype.Timestamptz
	RaisedTotal     pgtype.Numeric
	State           string
	UpdatedAt       pgtype.Timestamptz
}

func mapSaleModelToType(src saleModel) (entity.Sale, error) {
	tokenPrice, err := uint128FromNumeric(src.TokenPrice)
	if err != nil {
		return entity.Sale{}, errors.Wrap(err, "invalid token price")
	}
	softCap, err := uint128FromNumeric(src.SoftCap)
	if err != nil {
		return entity.Sale{}, errors.Wrap(err, "invalid soft cap")
	}
	hardCap, err := uint128FromNumeric(src.HardCap)
	if err != nil {
		return entity.Sale{}, errors.Wrap(err, "invalid hard cap")
	}
	minContribution, err := uint128FromNumeric(src.MinContribution)
	if err != nil {
		return entity.Sale{}, errors.Wrap(err, "invalid min contribution")
	}
	maxContribution, err := uint128FromNumeric(src.MaxContribution)
	if err != nil {
		return entity.Sale{}, errors.Wrap(err, "invalid max contribution")
	}
	maxPerWallet, err := uint128FromNumeric(src.MaxPerWallet)
	if err != nil {
		return entity.Sale{}, errors.Wrap(err, "invalid max per wallet")
	}
	raisedTotal, err := uint128FromNumeric(src.RaisedTotal)
	if err != nil {
		return entity.Sale{}, errors.Wrap(err, "invalid raised total")
	}
	return entity.Sale{
		ID:              src.ID,
		Name:            src.Name,
		TokenDecimals:   uint8(src.TokenDecimals),
		TokenPrice:      tokenPrice,
		SoftCap:         softCap,
		HardCap:         hardCap,
		MinContribution: minContribution,
		MaxContribution: maxContribution,
		MaxPerWallet:    maxPerWallet,
		StartsAt:        src.StartsAt.Time.UTC(),
		EndsAt:          src.EndsAt.Time.UTC(),
		RaisedTotal:     raisedTotal,
		State:           entity.SaleState(src.State),
		UpdatedAt:       src.UpdatedAt.Time.UTC(),
	}, nil
}

type contributionModel struct {
	ID           int64
	SaleID       int64
	Wallet       string
	Amount       pgtype.Numeric
	TokenAmount  pgtype.Numeric
	Status       string
	RejectReason string
	At           pgtype.Timestamptz
}

func mapContributionModelToType(src contributionModel) (entity.Contribution, error) {
	amount, err := uint128FromNumeric(src.Amount)
	if err != nil {
		return entity.Contribution{}, errors.Wrap(err, "invalid amount")
	}
	tokenAmount, err := uint128FromNumeric(src.TokenAmount)
	if err != nil {
		return entity.Contribution{}, errors.Wrap(err, "invalid token amount")
	}
	return entity.Contribution{
		ID:           src.ID,
		SaleID:       src.SaleID,
		Wallet:       src.Wallet,
		Amount:       amount,
		TokenAmount:  tokenAmount,
		Status:       entity.ContributionStatus(src.Status),
		RejectReason: src.RejectReason,
		At:           src.At.Time.UTC(),
	}, nil
}

type vestingScheduleModel struct {
	ID              int64
	Beneficiary     string
	TotalAmount     pgtype.Numeric
	StartsAt        pgtype.Timestamptz
	CliffDuration   int64 // nanoseconds
	VestingDuration int64 // nanoseconds
	Revocable       bool
	Revoked         bool
	RevokedAt       pgtype.Timestamptz
	ReleasedAmount  pgtype.Numeric
}

func mapVestingScheduleModelToType(src vestingScheduleModel) (entity.VestingSchedule, error) {
	totalAmount, err := uint128FromNumeric(src.TotalAmount)
	if err != nil {
		return entity.VestingSchedule{}, errors.Wrap(err, "invalid total amount")
	}
	releasedAmount, err := uint128FromNumeric(src.ReleasedAmount)
	if err != nil {
		return entity.VestingSchedule{}, errors.Wrap(err, "invalid released amount")
	}
	var revokedAt time.Time
	if src.RevokedAt.Valid {
		revokedAt = src.RevokedAt.Time.UTC()
	}
	return entity.VestingSchedule{
		ID:              src.ID,
		Beneficiary:     src.Beneficiary,
		TotalAmount:     totalAmount,
		StartsAt:        src.StartsAt.Time.UTC(),
		CliffDuration:   time.Duration(src.CliffDuration),
		VestingDuration: time.Duration(src.VestingDuration),
		Revocable:       src.Revocable,
		Revoked:         src.Revoked,
		RevokedAt:       revokedAt,
		ReleasedAmount:  releasedAmount,
	}, nil
}

type distributionJobModel struct {
	ID          int64
	TotalAmount pgtype.Numeric
	BatchSize   int32
	Status      string
	CreatedAt   pgtype.Timestamptz
}

func mapDistributionJobModelToType(src distributionJobModel) (entity.DistributionJob, error) {
	totalAmount, err := uint128FromNumeric(src.TotalAmount)
	if err != nil {
		return entity.DistributionJob{}, errors.Wrap(err, "invalid total amount")
	}
	return entity.DistributionJob{
		ID:          src.ID,
		TotalAmount: totalAmount,
		BatchSize:   int(src.BatchSize),
		Status:      entity.JobStatus(src.Status),
		CreatedAt:   src.CreatedAt.Time.UTC(),
	}, nil
}

type distributionBatchModel struct {
	JobID     int64
	Index     int32
	Transfers []byte // JSONB
	Amount    pgtype.Numeric
	Status    string
	Attempts  int32
	LastError string
}

type transferModel struct {
	Recipient string `json:"recipient"`
	Amount    string `json:"amount"`
}

func mapDistributionBatchModelToType(src distributionBatchModel) (entity.DistributionBatch, error) {
	amount, err := uint128FromNumeric(src.Amount)
	if err != nil {
		return entity.DistributionBatch{}, errors.Wrap(err, "invalid amount")
	}
	var transferModels []transferModel
	if err := json.Unmarshal(src.Transfers, &transferModels); err != nil {
		return entity.DistributionBatch{}, errors.Wrap(err, "invalid transfers payload")
	}
	transfers := make([]entity.Transfer, 0, len(transferModels))
	for _, transfer := range transferModels {
		transferAmount, err := uint128.FromString(transfer.Amount)
		if err != nil {
			return entity.DistributionBatch{}, errors.Wrapf(err, "invalid transfer amount for recipient %s", transfer.Recipient)
		}
		transfers = append(transfers, entity.Transfer{
			Recipient: transfer.Recipient,
			Amount:    transferAmount,
		})
	}
	return entity.DistributionBatch{
		JobID:     src.JobID,
		Index:     int(src.Index),
		Transfers: transfers,
		Amount:    amount,
		Status:    entity.BatchStatus(src.Status),
		Attempts:  int(src.Attempts),
		LastError: src.LastError,
	}, nil
}

func transfersToJSON(transfers []entity.Transfer) ([]byte, error) {
	transferModels := make([]transferModel, 0, len(transfers))
	for _, transfer := range transfers {
		transferModels = append(transferModels, transferModel{
			Recipient: transfer.Recipient,
			Amount:    transfer.Amount.String(),
		})
	}
	bytes, err := json.Marshal(transferModels)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return bytes, nil
}
