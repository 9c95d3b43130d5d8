package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSmePlug_Success(t *testing.T) {
	var gotAuth string
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status": true,
			"data": map[string]any{
				"reference": "SP-001",
				"msg":       "Data delivered",
			},
		})
	}))
	defer srv.Close()

	client := NewSmePlug(srv.URL, "secret-token")
	res, err := client.Purchase(context.Background(), Request{
		ExternalPlanID: "104",
		Network:        "airtel",
		PhoneNumber:    "08021234567",
		Amount:         48000,
	})
	require.NoError(t, err)

	assert.True(t, res.Success)
	assert.Equal(t, "SP-001", res.VendorRef)
	assert.Equal(t, "Data delivered", res.Message)

	assert.Equal(t, "Bearer secret-token", gotAuth)
	assert.Equal(t, "2", gotBody["network_id"], "airtel maps to smePlug network 2")
	assert.Equal(t, "104", gotBody["plan_id"])
	assert.Equal(t, "08021234567", gotBody["phone"])
}

func TestSmePlug_Declined(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status": false,
			"msg":    "Insufficient vendor balance",
		})
	}))
	defer srv.Close()

	client := NewSmePlug(srv.URL, "tok")
	res, err := client.Purchase(context.Background(), Request{
		ExternalPlanID: "104",
		Network:        "mtn",
		PhoneNumber:    "08031234567",
	})
	require.NoError(t, err, "a vendor decline is a result, not an error")
	assert.False(t, res.Success)
	assert.Equal(t, "Insufficient vendor balance", res.Message)
}

func TestSmePlug_UnsupportedNetwork(t *testing.T) {
	client := NewSmePlug("http://vendor.invalid", "tok")
	_, err := client.Purchase(context.Background(), Request{Network: "vodafone"})
	require.Error(t, err)
}

func TestDatastation_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Token ds-key", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"Status":       "successful",
			"api_response": "You have received 1GB",
		})
	}))
	defer srv.Close()

	client := NewDatastation(srv.URL, "ds-key")
	res, err := client.Purchase(context.Background(), Request{
		ExternalPlanID: "32",
		Network:        "mtn",
		PhoneNumber:    "08031234567",
	})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.NotEmpty(t, res.VendorRef, "datastation reference is our generated ident")
	assert.Equal(t, "You have received 1GB", res.Message)
}

func TestA4BData_Declined(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": false,
			"message": "Plan unavailable",
		})
	}))
	defer srv.Close()

	client := NewA4BData(srv.URL, "tok")
	res, err := client.Purchase(context.Background(), Request{
		ExternalPlanID: "1",
		Network:        "mtn",
		PhoneNumber:    "08031234567",
	})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "Plan unavailable", res.Message)
}

func TestPostJSON_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true})
	}))
	defer srv.Close()

	raw, err := postJSON(context.Background(), srv.Client(), srv.URL, nil, map[string]string{"a": "b"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok": true}`, string(raw))
	assert.Equal(t, int32(2), calls.Load())
}

func TestPostJSON_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := postJSON(context.Background(), srv.Client(), srv.URL, nil, nil)
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}
