package model

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateUUIDWithSuffix(t *testing.T) {
	id := GenerateUUIDWithSuffix("txn")
	assert.True(t, strings.HasPrefix(id, "txn_"))
	assert.NotEqual(t, id, GenerateUUIDWithSuffix("txn"))
}

func TestToMinorUnits(t *testing.T) {
	amount, err := ToMinorUnits(decimal.NewFromFloat(10.50), 100)
	require.NoError(t, err)
	assert.Equal(t, int64(1050), amount)

	amount, err = ToMinorUnits(decimal.NewFromInt(75), 100)
	require.NoError(t, err)
	assert.Equal(t, int64(7500), amount)
}

func TestToMinorUnits_RejectsSubMinorPrecision(t *testing.T) {
	_, err := ToMinorUnits(decimal.RequireFromString("10.505"), 100)
	assert.Error(t, err)
}

func TestFromMinorUnits(t *testing.T) {
	major := FromMinorUnits(1050, 100)
	assert.True(t, major.Equal(decimal.NewFromFloat(10.50)))
}

func TestTransactionToJSON(t *testing.T) {
	txn := &Transaction{
		TransactionID: "txn_1",
		Status:        StatusUnreconciled,
		Amount:        3000,
	}

	payload, err := txn.ToJSON()
	require.NoError(t, err)

	var decoded Transaction
	require.NoError(t, json.Unmarshal(payload, &decoded))
	assert.Equal(t, "txn_1", decoded.TransactionID)
	assert.Equal(t, StatusUnreconciled, decoded.Status)
}

func TestMinorUnitsRoundTrip(t *testing.T) {
	original := decimal.RequireFromString("12345.67")
	minor, err := ToMinorUnits(original, 100)
	require.NoError(t, err)
	assert.True(t, original.Equal(FromMinorUnits(minor, 100)))
}
