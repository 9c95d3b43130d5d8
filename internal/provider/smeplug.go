package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// SmePlugClient is the secondary data vendor.
type SmePlugClient struct {
	baseURL string
	token   string
	client  *http.Client
}

func NewSmePlug(baseURL, token string) *SmePlugClient {
	return &SmePlugClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: AttemptTimeout},
	}
}

func (s *SmePlugClient) Name() string {
	return SmePlug
}

// smePlug's own network identifiers.
var smePlugNetworks = map[string]string{
	"mtn":     "1",
	"airtel":  "2",
	"9mobile": "3",
	"glo":     "4",
}

func (s *SmePlugClient) Purchase(ctx context.Context, req Request) (*Result, error) {
	network, ok := smePlugNetworks[strings.ToLower(req.Network)]
	if !ok {
		return nil, fmt.Errorf("smeplug: unsupported network %q", req.Network)
	}

	payload := map[string]any{
		"network_id":         network,
		"plan_id":            req.ExternalPlanID,
		"phone":              req.PhoneNumber,
		"customer_reference": uuid.NewString(),
	}

	raw, err := postJSON(ctx, s.client, s.baseURL+"/data/purchase", map[string]string{
		"Authorization": "Bearer " + s.token,
	}, payload)
	if err != nil {
		return nil, fmt.Errorf("smeplug: %w", err)
	}

	var resp struct {
		Status bool   `json:"status"`
		Msg    string `json:"msg"`
		Data   struct {
			Reference string `json:"reference"`
			Msg       string `json:"msg"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("smeplug: decode response: %w", err)
	}

	if !resp.Status {
		msg := resp.Data.Msg
		if msg == "" {
			msg = resp.Msg
		}
		return &Result{Success: false, Message: msg}, nil
	}
	return &Result{Success: true, VendorRef: resp.Data.Reference, Message: resp.Data.Msg}, nil
}
