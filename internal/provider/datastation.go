package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// DatastationClient is the primary wholesale data vendor.
type DatastationClient struct {
	baseURL string
	token   string
	client  *http.Client
}

func NewDatastation(baseURL, token string) *DatastationClient {
	return &DatastationClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: AttemptTimeout},
	}
}

func (d *DatastationClient) Name() string {
	return Datastation
}

var datastationNetworks = map[string]string{
	"mtn":     "1",
	"glo":     "2",
	"9mobile": "3",
	"airtel":  "4",
}

func (d *DatastationClient) Purchase(ctx context.Context, req Request) (*Result, error) {
	ident := uuid.NewString()
	payload := map[string]any{
		"network":       datastationNetworks[strings.ToLower(req.Network)],
		"plan":          req.ExternalPlanID,
		"mobile_number": req.PhoneNumber,
		"Ident":         ident,
	}

	raw, err := postJSON(ctx, d.client, d.baseURL+"/data/", map[string]string{
		"Authorization": "Token " + d.token,
	}, payload)
	if err != nil {
		return nil, fmt.Errorf("datastation: %w", err)
	}

	var resp struct {
		Status      string `json:"Status"`
		APIResponse string `json:"api_response"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("datastation: decode response: %w", err)
	}

	if !strings.EqualFold(resp.Status, "successful") {
		return &Result{Success: false, Message: resp.APIResponse}, nil
	}
	return &Result{Success: true, VendorRef: ident, Message: resp.APIResponse}, nil
}
