package kyc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/cockroachdb/errors"
	"github.com/orbit-network/launchpad-engine/common/errs"
	"github.com/orbit-network/launchpad-engine/pkg/httpclient"
)

// Oracle answers whether a wallet passed KYC. A sale that does not require
// KYC never consults the oracle.
type Oracle interface {
	IsApproved(ctx context.Context, wallet string) (bool, error)
}

// StaticOracle approves wallets from a fixed allowlist.
type StaticOracle struct {
	approved map[string]struct{}
}

func NewStaticOracle(wallets []string) *StaticOracle {
	approved := make(map[string]struct{}, len(wallets))
	for _, wallet := range wallets {
		approved[wallet] = struct{}{}
	}
	return &StaticOracle{approved: approved}
}

func (o *StaticOracle) IsApproved(ctx context.Context, wallet string) (bool, error) {
	_, ok := o.approved[wallet]
	return ok, nil
}

// HTTPOracle asks a remote KYC provider.
type HTTPOracle struct {
	client *httpclient.Client
}

func NewHTTPOracle(client *httpclient.Client) *HTTPOracle {
	return &HTTPOracle{client: client}
}

type kycStatusResult struct {
	Wallet   string `json:"wallet"`
	Approved bool   `json:"approved"`
}

func (o *HTTPOracle) IsApproved(ctx context.Context, wallet string) (bool, error) {
	resp, err := o.client.Get(ctx, "/v1/kyc/status", httpclient.RequestOptions{
		Query: url.Values{"wallet": []string{wallet}},
	})
	if err != nil {
		return false, errors.Wrap(err, "can't send request")
	}
	if resp.StatusCode() == http.StatusNotFound {
		return false, nil
	}
	if resp.StatusCode() != http.StatusOK {
		return false, errors.Wrapf(errs.InternalError, "kyc provider returned status %d", resp.StatusCode())
	}
	var result kycStatusResult
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return false, errors.Wrap(err, "can't unmarshal response body")
	}
	return result.Approved, nil
}
