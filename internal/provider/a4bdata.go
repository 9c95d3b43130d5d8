package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// A4BDataClient is the tertiary vendor, used as the last rung of fallback
// ladders for plan families that have a wholesale equivalent there.
type A4BDataClient struct {
	baseURL string
	token   string
	client  *http.Client
}

func NewA4BData(baseURL, token string) *A4BDataClient {
	return &A4BDataClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: AttemptTimeout},
	}
}

func (a *A4BDataClient) Name() string {
	return A4BData
}

var a4bNetworks = map[string]string{
	"mtn":     "1",
	"glo":     "2",
	"airtel":  "3",
	"9mobile": "4",
}

func (a *A4BDataClient) Purchase(ctx context.Context, req Request) (*Result, error) {
	ref := uuid.NewString()
	payload := map[string]any{
		"network":      a4bNetworks[strings.ToLower(req.Network)],
		"plan":         req.ExternalPlanID,
		"phone_number": req.PhoneNumber,
		"reference":    ref,
	}

	raw, err := postJSON(ctx, a.client, a.baseURL+"/api/data", map[string]string{
		"Authorization": "Token " + a.token,
	}, payload)
	if err != nil {
		return nil, fmt.Errorf("a4bdata: %w", err)
	}

	var resp struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
		TxRef   string `json:"transaction_reference"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("a4bdata: decode response: %w", err)
	}

	if !resp.Success {
		return &Result{Success: false, Message: resp.Message}, nil
	}
	if resp.TxRef == "" {
		resp.TxRef = ref
	}
	return &Result{Success: true, VendorRef: resp.TxRef, Message: resp.Message}, nil
}
