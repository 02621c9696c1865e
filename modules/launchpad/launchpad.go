package launchpad

import (
	"context"
	"fmt"
	"sort"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/uint128"
	"github.com/gofiber/fiber/v2"
	"github.com/orbit-network/launchpad-engine/core/jobrunner"
	"github.com/orbit-network/launchpad-engine/internal/config"
	"github.com/orbit-network/launchpad-engine/internal/postgres"
	"github.com/orbit-network/launchpad-engine/modules/launchpad/api/httphandler"
	launchpadconfig "github.com/orbit-network/launchpad-engine/modules/launchpad/config"
	"github.com/orbit-network/launchpad-engine/modules/launchpad/distributor"
	"github.com/orbit-network/launchpad-engine/modules/launchpad/exporter"
	"github.com/orbit-network/launchpad-engine/modules/launchpad/internal/entity"
	"github.com/orbit-network/launchpad-engine/modules/launchpad/kyc"
	repository "github.com/orbit-network/launchpad-engine/modules/launchpad/repository/postgres"
	"github.com/orbit-network/launchpad-engine/modules/launchpad/usecase"
	"github.com/orbit-network/launchpad-engine/pkg/httpclient"
	"github.com/orbit-network/launchpad-engine/pkg/logger"
	"github.com/orbit-network/launchpad-engine/pkg/reportingclient"
	"github.com/samber/do/v2"
)

const (
	Version = "v0.0.1-alpha"

	defaultBatchSize = 100
)

func New(injector do.Injector) (*jobrunner.Runner, error) {
	ctx := do.MustInvoke[context.Context](injector)
	conf := do.MustInvoke[config.Config](injector)
	moduleConf := conf.Modules.Launchpad

	pg, err := postgres.NewPool(ctx, moduleConf.Postgres)
	if err != nil {
		return nil, fmt.Errorf("Can't create postgres connection : %w", err)
	}
	var cleanupFuncs []func(context.Context) error
	cleanupFuncs = append(cleanupFuncs, func(ctx context.Context) error {
		pg.Close()
		return nil
	})
	repository := repository.NewRepository(pg)

	kycOracle, err := newKYCOracle(moduleConf.KYC)
	if err != nil {
		return nil, errors.Wrap(err, "can't create kyc oracle")
	}
	tiers, err := parseTiers(moduleConf.Tiers)
	if err != nil {
		return nil, errors.Wrap(err, "invalid tier configuration")
	}

	batchSize := moduleConf.Distributor.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	launchpadUsecase := usecase.New(repository, kycOracle, tiers, batchSize)
	reporting, err := do.Invoke[*reportingclient.ReportingClient](injector)
	if err != nil {
		reporting = nil
	}
	if reporting != nil {
		launchpadUsecase = launchpadUsecase.WithReporting(reporting)
	}

	executor, err := newExecutor(moduleConf.Distributor.Executor)
	if err != nil {
		return nil, errors.Wrap(err, "can't create transfer executor")
	}
	engine := distributor.NewEngine(repository, executor, distributor.Config{
		MaxRetries:  moduleConf.Distributor.MaxRetries,
		BackoffBase: moduleConf.Distributor.BackoffBase,
		BackoffCap:  moduleConf.Distributor.BackoffCap,
		Parallelism: moduleConf.Distributor.Parallelism,
	})

	var saleExporter *exporter.Exporter
	if !moduleConf.Exporter.Disable && moduleConf.Exporter.Bucket != "" {
		saleExporter, err = exporter.New(ctx, moduleConf.Exporter, repository)
		if err != nil {
			return nil, errors.Wrap(err, "can't create sale exporter")
		}
	}

	httpServer := do.MustInvoke[*fiber.App](injector)
	launchpadHandler := httphandler.New(launchpadUsecase, engine, saleExporter)
	if err := launchpadHandler.Mount(httpServer); err != nil {
		return nil, fmt.Errorf("Can't mount launchpad API : %w", err)
	}
	logger.InfoContext(ctx, "Mounted launchpad HTTP handler")

	processor := distributor.NewProcessor(repository, engine, cleanupFuncs...)
	if reporting != nil {
		processor = processor.WithReporting(reporting)
	}
	runner := jobrunner.New(processor, moduleConf.Distributor.PollInterval)
	logger.InfoContext(ctx, "Launchpad module started.")
	return runner, nil
}

func newKYCOracle(conf launchpadconfig.KYCConfig) (kyc.Oracle, error) {
	switch conf.Type {
	case "http":
		client, err := httpclient.New(conf.BaseURL, httpclient.Config{Timeout: conf.Timeout})
		if err != nil {
			return nil, errors.Wrap(err, "can't create http client")
		}
		return kyc.NewHTTPOracle(client), nil
	case "static", "":
		return kyc.NewStaticOracle(conf.Approved), nil
	default:
		return nil, errors.Errorf("unknown kyc oracle type %q", conf.Type)
	}
}

func newExecutor(conf launchpadconfig.ExecutorConfig) (distributor.TransferExecutor, error) {
	switch conf.Type {
	case "http":
		client, err := httpclient.New(conf.BaseURL, httpclient.Config{Timeout: conf.Timeout})
		if err != nil {
			return nil, errors.Wrap(err, "can't create http client")
		}
		return distributor.NewHTTPExecutor(client), nil
	case "noop", "":
		return distributor.NoopExecutor{}, nil
	default:
		return nil, errors.Errorf("unknown executor type %q", conf.Type)
	}
}

// parseTiers converts config tiers to entities, sorted ascending by minimum
// stake with indexes assigned in that order.
func parseTiers(confTiers []launchpadconfig.TierConfig) ([]entity.Tier, error) {
	tiers := make([]entity.Tier, 0, len(confTiers))
	for _, confTier := range confTiers {
		minStake, err := uint128.FromString(confTier.MinStake)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid min_stake for tier %q", confTier.Name)
		}
		allocationLimit, err := uint128.FromString(confTier.AllocationLimit)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid allocation_limit for tier %q", confTier.Name)
		}
		tiers = append(tiers, entity.Tier{
			Name:            confTier.Name,
			MinStake:        minStake,
			AllocationLimit: allocationLimit,
		})
	}
	sort.Slice(tiers, func(i, j int) bool {
		return tiers[i].MinStake.Cmp(tiers[j].MinStake) < 0
	})
	for i := range tiers {
		tiers[i].Index = i
	}
	return tiers, nil
}
