package usecase

import (
	"github.com/orbit-network/launchpad-engine/modules/launchpad/datagateway"
	"github.com/orbit-network/launchpad-engine/modules/launchpad/internal/entity"
	"github.com/orbit-network/launchpad-engine/modules/launchpad/kyc"
	"github.com/orbit-network/launchpad-engine/pkg/reportingclient"
)

type Usecase struct {
	launchpadDg datagateway.LaunchpadDataGateway
	kycOracle   kyc.Oracle
	tiers       []entity.Tier
	batchSize   int
	// optional, nil disables sale reports
	reporting *reportingclient.ReportingClient

	saleLocks     *keyedMutex
	scheduleLocks *keyedMutex
}

func New(launchpadDg datagateway.LaunchpadDataGateway, kycOracle kyc.Oracle, tiers []entity.Tier, batchSize int) *Usecase {
	return &Usecase{
		launchpadDg:   launchpadDg,
		kycOracle:     kycOracle,
		tiers:         tiers,
		batchSize:     batchSize,
		saleLocks:     newKeyedMutex(),
		scheduleLocks: newKeyedMutex(),
	}
}

// WithReporting enables best-effort sale reports on terminal transitions.
func (u *Usecase) WithReporting(reporting *reportingclient.ReportingClient) *Usecase {
	u.reporting = reporting
	return u
}
