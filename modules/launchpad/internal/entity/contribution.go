package entity

import (
	"time"

	"github.com/gaze-network/uint128"
)

type ContributionStatus string

const (
	ContributionStatusAccepted ContributionStatus = "accepted"
	ContributionStatusRejected ContributionStatus = "rejected"
	ContributionStatusRefunded ContributionStatus = "refunded"
)

func (s ContributionStatus) String() string {
	return string(s)
}

// Contribution is an append-only audit record of a contribution attempt.
// Accepted records carry the token amount computed at acceptance time.
// Rejected records carry the machine-readable rejection reason. A record is
// never mutated after creation, except that an accepted contribution of a
// failed sale may be marked refunded exactly once.
type Contribution struct {
	ID           int64
	SaleID       int64
	Wallet       string
	Amount       uint128.Uint128
	TokenAmount  uint128.Uint128
	Status       ContributionStatus
	RejectReason string
	At           time.Time
}
