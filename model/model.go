package model

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// GenerateUUIDWithSuffix returns a new UUID prefixed with the module tag,
// e.g. "txn_9f2c...". The prefix makes identifiers self-describing in logs
// and ledger entries.
func GenerateUUIDWithSuffix(module string) string {
	return fmt.Sprintf("%s_%s", module, uuid.New().String())
}

// ToMinorUnits converts a major-unit amount ("10.50") into minor units
// (1050) using the given multiplier. Sub-minor precision is rejected so a
// caller can never silently lose fractions of a cent.
func ToMinorUnits(amount decimal.Decimal, multiplier int64) (int64, error) {
	minor := amount.Mul(decimal.NewFromInt(multiplier))
	if !minor.IsInteger() {
		return 0, fmt.Errorf("amount %s has more precision than multiplier %d allows", amount, multiplier)
	}
	return minor.IntPart(), nil
}

// FromMinorUnits converts minor units back to a major-unit decimal.
func FromMinorUnits(amount int64, multiplier int64) decimal.Decimal {
	return decimal.NewFromInt(amount).Div(decimal.NewFromInt(multiplier))
}
