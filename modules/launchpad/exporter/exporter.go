package exporter

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/cockroachdb/errors"
	"github.com/orbit-network/launchpad-engine/modules/launchpad/config"
	"github.com/orbit-network/launchpad-engine/modules/launchpad/datagateway"
	"github.com/orbit-network/launchpad-engine/modules/launchpad/internal/entity"
	"github.com/orbit-network/launchpad-engine/pkg/decimals"
	"github.com/orbit-network/launchpad-engine/pkg/logger"
	"github.com/orbit-network/launchpad-engine/pkg/logger/slogx"
	"github.com/orbit-network/launchpad-engine/pkg/parquetutils"
)

// Uploader is the subset of the s3 upload manager used by the exporter.
type Uploader interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

// Exporter writes audit snapshots of a sale's contribution ledger as
// parquet objects to an S3 bucket.
type Exporter struct {
	launchpadDg datagateway.LaunchpadDataGateway
	uploader    Uploader
	bucket      string
	prefix      string
}

func New(ctx context.Context, conf config.ExporterConfig, launchpadDg datagateway.LaunchpadDataGateway) (*Exporter, error) {
	if conf.Bucket == "" {
		return nil, errors.New("exporter bucket is required")
	}

	sdkConfig, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "can't load aws user config")
	}

	s3Client := s3.NewFromConfig(sdkConfig, func(o *s3.Options) {
		if conf.Region != "" {
			o.Region = conf.Region
		}
	})

	return NewWithUploader(conf, launchpadDg, manager.NewUploader(s3Client)), nil
}

func NewWithUploader(conf config.ExporterConfig, launchpadDg datagateway.LaunchpadDataGateway, uploader Uploader) *Exporter {
	return &Exporter{
		launchpadDg: launchpadDg,
		uploader:    uploader,
		bucket:      conf.Bucket,
		prefix:      conf.Prefix,
	}
}

// ContributionRecord is the parquet row schema of a ledger snapshot.
// Amounts travel both as exact base-unit strings and as display decimals.
type ContributionRecord struct {
	Id                 int64  `parquet:"name=id, type=INT64"`
	SaleId             int64  `parquet:"name=sale_id, type=INT64"`
	Wallet             string `parquet:"name=wallet, type=BYTE_ARRAY, convertedtype=UTF8"`
	Amount             string `parquet:"name=amount, type=BYTE_ARRAY, convertedtype=UTF8"`
	TokenAmount        string `parquet:"name=token_amount, type=BYTE_ARRAY, convertedtype=UTF8"`
	TokenAmountDisplay string `parquet:"name=token_amount_display, type=BYTE_ARRAY, convertedtype=UTF8"`
	Status             string `parquet:"name=status, type=BYTE_ARRAY, convertedtype=UTF8"`
	RejectReason       string `parquet:"name=reject_reason, type=BYTE_ARRAY, convertedtype=UTF8"`
	At                 int64  `parquet:"name=at, type=INT64, convertedtype=TIMESTAMP_MILLIS"`
}

// ExportSaleSnapshot writes the full contribution ledger of the sale to the
// configured bucket and returns the object key.
func (e *Exporter) ExportSaleSnapshot(ctx context.Context, saleID int64, at time.Time) (string, error) {
	sale, err := e.launchpadDg.GetSale(ctx, saleID)
	if err != nil {
		return "", errors.Wrap(err, "failed to get sale")
	}
	contributions, err := e.launchpadDg.GetContributionsBySale(ctx, saleID)
	if err != nil {
		return "", errors.Wrap(err, "failed to get contributions")
	}

	records := make([]ContributionRecord, 0, len(contributions))
	for _, contribution := range contributions {
		records = append(records, contributionRecordFrom(contribution, sale.TokenDecimals))
	}

	buf := parquetutils.NewBuffer()
	if err := parquetutils.WriteAll(buf, records); err != nil {
		return "", errors.Wrap(err, "failed to encode snapshot")
	}

	key := path.Join(e.prefix, fmt.Sprintf("sale-%d", saleID), at.UTC().Format("20060102T150405Z")+".parquet")
	if _, err := e.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(e.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: aws.String("application/vnd.apache.parquet"),
		Metadata: map[string]string{
			"sale-state": sale.State.String(),
		},
	}); err != nil {
		return "", errors.Wrap(err, "failed to upload snapshot")
	}

	logger.InfoContext(ctx, "Exported contribution ledger snapshot",
		slogx.Int64("saleId", saleID),
		slogx.Int("contributions", len(records)),
		slogx.String("key", key),
	)
	return key, nil
}

func contributionRecordFrom(contribution entity.Contribution, tokenDecimals uint8) ContributionRecord {
	return ContributionRecord{
		Id:                 contribution.ID,
		SaleId:             contribution.SaleID,
		Wallet:             contribution.Wallet,
		Amount:             contribution.Amount.String(),
		TokenAmount:        contribution.TokenAmount.String(),
		TokenAmountDisplay: decimals.ToDecimal(contribution.TokenAmount, tokenDecimals).String(),
		Status:             contribution.Status.String(),
		RejectReason:       contribution.RejectReason,
		At:                 contribution.At.UnixMilli(),
	}
}
