package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sethvargo/go-retry"

	"vendora/internal/model"
)

// Provider names as referenced by the plan catalog and the fallback ladder.
const (
	Datastation = "datastation"
	SmePlug     = "smeplug"
	A4BData     = "a4bdata"
)

// AttemptTimeout bounds a single fulfillment attempt so a stuck vendor
// cannot hold a purchase session open with a staged, uncommitted debit.
const AttemptTimeout = 15 * time.Second

// Request is what the orchestrator hands a vendor for one attempt.
type Request struct {
	ExternalPlanID string
	Network        string
	PhoneNumber    string
	Amount         model.Money
}

// Result is the abstracted vendor outcome. A vendor only reports; it never
// touches the ledger or the transaction log.
type Result struct {
	Success   bool
	VendorRef string
	Message   string
}

// PurchaseProvider is the capability every vendor client implements.
// Implementations must be safe for concurrent use.
type PurchaseProvider interface {
	Name() string
	Purchase(ctx context.Context, req Request) (*Result, error)
}

// Registry maps provider names to clients.
type Registry map[string]PurchaseProvider

func (r Registry) Add(p PurchaseProvider) {
	r[p.Name()] = p
}

// postJSON sends one JSON request to a vendor. Connection-level failures and
// 5xx responses get a single constant-backoff retry; a vendor that answered
// with a decision is never retried here — that is the ladder's job.
func postJSON(ctx context.Context, client *http.Client, url string, headers map[string]string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode vendor request: %w", err)
	}

	var respBody []byte
	backoff := retry.WithMaxRetries(1, retry.NewConstant(250*time.Millisecond))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		for k, v := range headers {
			req.Header.Set(k, v)
		}

		resp, err := client.Do(req)
		if err != nil {
			return retry.RetryableError(err)
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if err != nil {
			return retry.RetryableError(err)
		}
		if resp.StatusCode >= 500 {
			return retry.RetryableError(fmt.Errorf("vendor returned %d", resp.StatusCode))
		}
		if resp.StatusCode >= 400 {
			return fmt.Errorf("vendor returned %d", resp.StatusCode)
		}
		respBody = data
		return nil
	})
	if err != nil {
		return nil, err
	}
	return respBody, nil
}
