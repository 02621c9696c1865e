package distributor

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/orbit-network/launchpad-engine/modules/launchpad/internal/entity"
	"github.com/orbit-network/launchpad-engine/pkg/httpclient"
	"github.com/orbit-network/launchpad-engine/pkg/logger"
	"github.com/orbit-network/launchpad-engine/pkg/logger/slogx"
)

// TransferExecutor abstracts the on-chain transfer mechanism. It has
// at-least-once semantics: a retried call carries the same batchID, and the
// executor must recognize it as the same attempt rather than a new transfer.
type TransferExecutor interface {
	Execute(ctx context.Context, batchID string, transfers []entity.Transfer) error
}

var (
	// ErrRetryable marks executor failures worth retrying (timeouts,
	// transient network errors).
	ErrRetryable = errors.New("retryable executor error")
	// ErrFatal marks executor failures that cannot succeed on retry
	// (invalid recipient, permanently rejected transfer).
	ErrFatal = errors.New("fatal executor error")
)

func Retryable(err error) error {
	return errors.Mark(err, ErrRetryable)
}

func Fatal(err error) error {
	return errors.Mark(err, ErrFatal)
}

// IsFatal reports whether the executor failure is permanent. Unclassified
// errors are treated as retryable.
func IsFatal(err error) bool {
	return errors.Is(err, ErrFatal)
}

// NoopExecutor logs transfers without performing them. Used by the run
// command when no executor endpoint is configured, and in development.
type NoopExecutor struct{}

func (NoopExecutor) Execute(ctx context.Context, batchID string, transfers []entity.Transfer) error {
	logger.InfoContext(ctx, "skipping transfer execution, no executor configured",
		slogx.String("batchId", batchID),
		slogx.Int("transfers", len(transfers)),
	)
	return nil
}

// HTTPExecutor submits batches to a remote transfer service. The batchID
// travels as an Idempotency-Key header so the service can deduplicate
// retried submissions.
type HTTPExecutor struct {
	client *httpclient.Client
}

func NewHTTPExecutor(client *httpclient.Client) *HTTPExecutor {
	return &HTTPExecutor{client: client}
}

type executeTransferRequest struct {
	BatchID   string            `json:"batchId"`
	Transfers []transferPayload `json:"transfers"`
}

type transferPayload struct {
	Recipient string `json:"recipient"`
	Amount    string `json:"amount"` // base units, decimal string
}

func (e *HTTPExecutor) Execute(ctx context.Context, batchID string, transfers []entity.Transfer) error {
	payload := executeTransferRequest{
		BatchID:   batchID,
		Transfers: make([]transferPayload, 0, len(transfers)),
	}
	for _, transfer := range transfers {
		payload.Transfers = append(payload.Transfers, transferPayload{
			Recipient: transfer.Recipient,
			Amount:    transfer.Amount.String(),
		})
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return Fatal(errors.Wrap(err, "can't marshal payload"))
	}
	resp, err := e.client.Post(ctx, "/v1/transfers", httpclient.RequestOptions{
		Body:   body,
		Header: map[string]string{"Idempotency-Key": batchID},
	})
	if err != nil {
		return Retryable(errors.Wrap(err, "can't send request"))
	}
	switch {
	case resp.StatusCode() < 300:
		return nil
	case resp.StatusCode() >= http.StatusInternalServerError || resp.StatusCode() == http.StatusTooManyRequests:
		return Retryable(errors.Errorf("transfer service returned status %d", resp.StatusCode()))
	default:
		return Fatal(errors.Errorf("transfer service rejected batch with status %d", resp.StatusCode()))
	}
}
