package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The JSON tags double as the Realtime Database field names, so a
// decode of an encoded value must reproduce every field the dues
// engine reads.

func TestMemberAccountRoundTrip(t *testing.T) {
	in := MemberAccount{
		ID:                "u1",
		FullName:          "Asha Rao",
		FlatNumber:        "101",
		Email:             "a@x.com",
		Role:              "owner",
		Status:            "Active",
		Dues:              350.5,
		Paid:              2649.5,
		LateFeeAssessedOn: "2025-03",
		CreatedAt:         1741600000000,
	}
	b, err := json.Marshal(in)
	require.NoError(t, err)

	var out MemberAccount
	require.NoError(t, json.Unmarshal(b, &out))
	assert.Equal(t, in, out)
}

func TestBillingConfigRoundTrip(t *testing.T) {
	in := BillingConfig{
		MaintenanceCharge: 1000,
		WaterCharge:       200,
		SinkingFund:       100,
		DueDateISO:        "2025-03-25",
		DueDate:           "25",
		LateFee:           50,
		ContactEmail:      "admin@society.example",
	}
	b, err := json.Marshal(in)
	require.NoError(t, err)

	var out BillingConfig
	require.NoError(t, json.Unmarshal(b, &out))
	assert.Equal(t, in, out)
	assert.Equal(t, 1300.0, out.RecurringCharge())
}

func TestPaymentRecordRoundTrip(t *testing.T) {
	in := PaymentRecord{
		UID:                "u1",
		Email:              "a@x.com",
		Name:               "Asha Rao",
		Flat:               "101",
		Amount:             1350,
		Method:             MethodUPI,
		MethodDetails:      map[string]string{"upi": "asha@bank"},
		Receipt:            "RCPT-1741600000000-4821",
		Date:               "10/03/2025",
		CreatedAt:          1741600000000,
		PreviousDue:        1300,
		RemainingDue:       0,
		LateFeeAddedToDues: 50,
		WasLatePayment:     true,
	}
	b, err := json.Marshal(in)
	require.NoError(t, err)

	var out PaymentRecord
	require.NoError(t, json.Unmarshal(b, &out))
	assert.Equal(t, in, out)
}

func TestRecurringChargeNilConfig(t *testing.T) {
	var cfg *BillingConfig
	assert.Equal(t, 0.0, cfg.RecurringCharge())
}
