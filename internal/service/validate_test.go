package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"vendora/internal/model"
)

func TestValidatePurchaseRequest(t *testing.T) {
	valid := model.PurchaseRequest{
		UserID:      testUser,
		Kind:        model.KindData,
		PlanID:      "plan-1",
		PhoneNumber: testPhone,
		Pin:         "1234",
	}

	tests := []struct {
		name   string
		mutate func(*model.PurchaseRequest)
		ok     bool
	}{
		{"valid", func(r *model.PurchaseRequest) {}, true},
		{"missing plan", func(r *model.PurchaseRequest) { r.PlanID = "" }, false},
		{"short phone", func(r *model.PurchaseRequest) { r.PhoneNumber = "0803123" }, false},
		{"foreign phone", func(r *model.PurchaseRequest) { r.PhoneNumber = "4915123456789" }, false},
		{"alpha pin", func(r *model.PurchaseRequest) { r.Pin = "12ab" }, false},
		{"long pin", func(r *model.PurchaseRequest) { r.Pin = "12345" }, false},
		{"unknown kind", func(r *model.PurchaseRequest) { r.Kind = "cable" }, false},
		{"airtime kind", func(r *model.PurchaseRequest) { r.Kind = model.KindAirtime }, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := valid
			tc.mutate(&req)
			err := validatePurchaseRequest(req)
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
				assert.Equal(t, model.CodeInvalidRequest, model.CodeOf(err))
			}
		})
	}
}

func TestNetworkMatches(t *testing.T) {
	assert.True(t, networkMatches("08031234567", "mtn"))
	assert.True(t, networkMatches("08031234567", "MTN"))
	assert.False(t, networkMatches("08051234567", "mtn"))
	assert.True(t, networkMatches("07991234567", "mtn"), "unknown prefixes pass")
	assert.False(t, networkMatches("080", "mtn"))
}
