package dto

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoneyMarshalsExactNumber(t *testing.T) {
	total := decimal.RequireFromString("0.1").Add(decimal.RequireFromString("0.2"))

	resp := BookingResponse{
		SelectedTests: []BookingTestResponse{{TestID: "t1", Price: Money{decimal.RequireFromString("19.99")}}},
		TotalAmount:   Money{total},
	}
	raw, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"price":19.99`)
	assert.Contains(t, string(raw), `"totalAmount":0.3`)

	var back struct {
		TotalAmount Money `json:"totalAmount"`
	}
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.True(t, total.Equal(back.TotalAmount.Decimal))
}

func TestMoneyDecodesQuotedAmount(t *testing.T) {
	var out LabTestResponse
	require.NoError(t, json.Unmarshal([]byte(`{"price":"1234567.89"}`), &out))
	assert.Equal(t, "1234567.89", out.Price.String())
}
