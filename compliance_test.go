package vermillion

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/vermillionhq/vermillion/config"
	"github.com/vermillionhq/vermillion/database/mocks"
	"github.com/vermillionhq/vermillion/internal/apierror"
	"github.com/vermillionhq/vermillion/model"
)

func complianceTestConfig() *config.Configuration {
	cnf := routingTestConfig()
	cnf.Compliance = config.ComplianceConfig{
		TierLimits: map[string]int64{
			"tier_1": 100000,
			"tier_2": 500000,
		},
		RiskScoreThreshold: 80,
		RestrictedOperations: map[string][]string{
			string(model.OpCrossBorderPayment): {"IR", "KP"},
		},
	}
	return cnf
}

func newComplianceFixture(profile *model.ComplianceProfile) *Vermillion {
	config.MockConfig(complianceTestConfig())

	datasource := new(mocks.MockDataSource)
	datasource.On("GetComplianceProfile", mock.Anything, profile.OwnerID).Return(profile, nil)
	return &Vermillion{datasource: datasource}
}

func TestValidateTransaction_Passes(t *testing.T) {
	v := newComplianceFixture(&model.ComplianceProfile{
		OwnerID: "own_1", Tier: "tier_1", Active: true, RiskScore: 10, Country: "NG",
	})

	err := v.ValidateTransaction(context.Background(), "own_1", 50000, model.OpCrossBorderPayment)
	assert.NoError(t, err)
}

func TestValidateTransaction_RestrictedAccount(t *testing.T) {
	v := newComplianceFixture(&model.ComplianceProfile{
		OwnerID: "own_1", Tier: "tier_1", Active: false, RiskScore: 10, Country: "NG",
	})

	err := v.ValidateTransaction(context.Background(), "own_1", 100, model.OpCrossBorderPayment)
	assert.Equal(t, apierror.ErrAccountRestricted, apierror.CodeOf(err))
}

func TestValidateTransaction_TierLimit(t *testing.T) {
	v := newComplianceFixture(&model.ComplianceProfile{
		OwnerID: "own_1", Tier: "tier_1", Active: true, RiskScore: 10, Country: "NG",
	})

	// At the limit passes, one unit over is rejected.
	assert.NoError(t, v.ValidateTransaction(context.Background(), "own_1", 100000, model.OpCrossBorderPayment))

	err := v.ValidateTransaction(context.Background(), "own_1", 100001, model.OpCrossBorderPayment)
	assert.Equal(t, apierror.ErrTierLimitExceeded, apierror.CodeOf(err))
}

func TestValidateTransaction_UnknownTier(t *testing.T) {
	v := newComplianceFixture(&model.ComplianceProfile{
		OwnerID: "own_1", Tier: "tier_99", Active: true, RiskScore: 10, Country: "NG",
	})

	err := v.ValidateTransaction(context.Background(), "own_1", 100, model.OpCrossBorderPayment)
	assert.Equal(t, apierror.ErrAccountRestricted, apierror.CodeOf(err))
}

func TestValidateTransaction_RiskScoreThreshold(t *testing.T) {
	v := newComplianceFixture(&model.ComplianceProfile{
		OwnerID: "own_1", Tier: "tier_2", Active: true, RiskScore: 81, Country: "NG",
	})

	err := v.ValidateTransaction(context.Background(), "own_1", 100, model.OpCrossBorderPayment)
	assert.Equal(t, apierror.ErrEnhancedDueDiligence, apierror.CodeOf(err))
}

func TestValidateTransaction_RiskScoreAtThresholdPasses(t *testing.T) {
	v := newComplianceFixture(&model.ComplianceProfile{
		OwnerID: "own_1", Tier: "tier_2", Active: true, RiskScore: 80, Country: "NG",
	})

	assert.NoError(t, v.ValidateTransaction(context.Background(), "own_1", 100, model.OpCrossBorderPayment))
}

func TestValidateTransaction_CountryRestriction(t *testing.T) {
	v := newComplianceFixture(&model.ComplianceProfile{
		OwnerID: "own_1", Tier: "tier_1", Active: true, RiskScore: 10, Country: "IR",
	})

	err := v.ValidateTransaction(context.Background(), "own_1", 100, model.OpCrossBorderPayment)
	assert.Equal(t, apierror.ErrOperationNotInCountry, apierror.CodeOf(err))

	// The same owner may still perform operations without a restriction
	// rule for their country.
	assert.NoError(t, v.ValidateTransaction(context.Background(), "own_1", 100, model.OpInternalTransfer))
}

func TestValidateTransaction_ChecksRunInOrder(t *testing.T) {
	// An inactive account with a breached tier limit reports the
	// restriction, not the limit.
	v := newComplianceFixture(&model.ComplianceProfile{
		OwnerID: "own_1", Tier: "tier_1", Active: false, RiskScore: 99, Country: "IR",
	})

	err := v.ValidateTransaction(context.Background(), "own_1", 999999999, model.OpCrossBorderPayment)
	assert.Equal(t, apierror.ErrAccountRestricted, apierror.CodeOf(err))
}

func TestValidateTransaction_ProfileReadFresh(t *testing.T) {
	config.MockConfig(complianceTestConfig())

	datasource := new(mocks.MockDataSource)
	datasource.On("GetComplianceProfile", mock.Anything, "own_1").
		Return(&model.ComplianceProfile{OwnerID: "own_1", Tier: "tier_1", Active: true, RiskScore: 10, Country: "NG"}, nil).Once()
	datasource.On("GetComplianceProfile", mock.Anything, "own_1").
		Return(&model.ComplianceProfile{OwnerID: "own_1", Tier: "tier_1", Active: false, RiskScore: 10, Country: "NG"}, nil).Once()
	v := &Vermillion{datasource: datasource}

	assert.NoError(t, v.ValidateTransaction(context.Background(), "own_1", 100, model.OpInternalTransfer))
	err := v.ValidateTransaction(context.Background(), "own_1", 100, model.OpInternalTransfer)
	assert.Equal(t, apierror.ErrAccountRestricted, apierror.CodeOf(err))
	datasource.AssertNumberOfCalls(t, "GetComplianceProfile", 2)
}
