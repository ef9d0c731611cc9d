package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/vermillionhq/vermillion/internal/apierror"
	"github.com/vermillionhq/vermillion/model"
)

// GetComplianceProfile reads the owner's current compliance state. Callers
// must not cache the result across requests; tier, risk and restriction
// state can change between calls.
func (d Datasource) GetComplianceProfile(ctx context.Context, ownerID string) (*model.ComplianceProfile, error) {
	row := d.Conn.QueryRowContext(ctx, `
		SELECT owner_id, tier, active, risk_score, country, updated_at
		FROM vermillion.compliance_profiles
		WHERE owner_id = $1
	`, ownerID)

	profile := &model.ComplianceProfile{}
	err := row.Scan(&profile.OwnerID, &profile.Tier, &profile.Active, &profile.RiskScore, &profile.Country, &profile.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apierror.NewAPIError(apierror.ErrNotFound, fmt.Sprintf("No compliance profile for owner '%s'", ownerID), err)
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve compliance profile", err)
	}
	return profile, nil
}

func (d Datasource) UpsertComplianceProfile(ctx context.Context, profile model.ComplianceProfile) error {
	profile.UpdatedAt = time.Now()
	_, err := d.Conn.ExecContext(ctx, `
		INSERT INTO vermillion.compliance_profiles(owner_id, tier, active, risk_score, country, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (owner_id) DO UPDATE
		SET tier = $2, active = $3, risk_score = $4, country = $5, updated_at = $6
	`, profile.OwnerID, profile.Tier, profile.Active, profile.RiskScore, profile.Country, profile.UpdatedAt)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to upsert compliance profile", err)
	}
	return nil
}
