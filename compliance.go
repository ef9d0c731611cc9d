package vermillion

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/vermillionhq/vermillion/config"
	"github.com/vermillionhq/vermillion/internal/apierror"
	"github.com/vermillionhq/vermillion/model"
)

// ValidateTransaction gates a proposed money movement against the owner's
// current compliance profile. The profile is loaded fresh on every call.
// Checks run in a fixed order: activity status, tier limit, risk score,
// country restriction. Rejections are audit-logged and have no provider or
// ledger side effects.
func (v *Vermillion) ValidateTransaction(ctx context.Context, ownerID string, amount int64, operationType model.OperationType) error {
	cnf, err := config.Fetch()
	if err != nil {
		return err
	}

	profile, err := v.datasource.GetComplianceProfile(ctx, ownerID)
	if err != nil {
		return err
	}

	if !profile.Active {
		return rejectCompliance(profile, amount, operationType,
			apierror.NewAPIError(apierror.ErrAccountRestricted, fmt.Sprintf("Account %s is restricted", ownerID), nil))
	}

	limit, ok := cnf.Compliance.TierLimits[profile.Tier]
	if !ok {
		return rejectCompliance(profile, amount, operationType,
			apierror.NewAPIError(apierror.ErrAccountRestricted, fmt.Sprintf("Unknown tier %q for account %s", profile.Tier, ownerID), nil))
	}
	if amount > limit {
		return rejectCompliance(profile, amount, operationType,
			apierror.NewAPIError(apierror.ErrTierLimitExceeded,
				fmt.Sprintf("Amount %d exceeds %s per-transaction limit %d", amount, profile.Tier, limit), nil))
	}

	if profile.RiskScore > cnf.Compliance.RiskScoreThreshold {
		return rejectCompliance(profile, amount, operationType,
			apierror.NewAPIError(apierror.ErrEnhancedDueDiligence,
				fmt.Sprintf("Risk score %d exceeds threshold %d", profile.RiskScore, cnf.Compliance.RiskScoreThreshold), nil))
	}

	for _, country := range cnf.Compliance.RestrictedOperations[string(operationType)] {
		if country == profile.Country {
			return rejectCompliance(profile, amount, operationType,
				apierror.NewAPIError(apierror.ErrOperationNotInCountry,
					fmt.Sprintf("Operation %s is not permitted in %s", operationType, profile.Country), nil))
		}
	}

	return nil
}

// rejectCompliance audit-logs a compliance rejection before surfacing it.
func rejectCompliance(profile *model.ComplianceProfile, amount int64, operationType model.OperationType, rejection error) error {
	logrus.WithFields(logrus.Fields{
		"audit":          true,
		"owner_id":       profile.OwnerID,
		"tier":           profile.Tier,
		"risk_score":     profile.RiskScore,
		"country":        profile.Country,
		"amount":         amount,
		"operation_type": operationType,
	}).Warnf("compliance rejection: %v", rejection)
	return rejection
}
