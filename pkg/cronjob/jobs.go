package cronjob

import (
	"context"
	"time"

	"github.com/go-logr/logr"
	"gorm.io/gorm"

	"github.com/ppmlab/atlas/pkg/service"
)

const (
	AuditRetentionJob = "audit-retention"
	RiskRescoreJob    = "risk-rescore"
)

// NewAuditRetentionFunc hard deletes audit entries older than days.
func NewAuditRetentionFunc(audit *service.AuditLog, days int, now func() time.Time, log logr.Logger) JobFunc {
	return func(ctx context.Context) error {
		cutoff := now().AddDate(0, 0, -days)
		n, err := audit.PurgeAll(ctx, cutoff)
		if err != nil {
			return err
		}
		log.Info("audit entries purged", "count", n, "before", cutoff)
		return nil
	}
}

// NewRiskRescoreFunc repairs stored risk scores of every live organization.
func NewRiskRescoreFunc(db *gorm.DB, risks *service.RiskRegister, log logr.Logger) JobFunc {
	return func(ctx context.Context) error {
		orgs, err := service.OrganizationIDs(ctx, db, false)
		if err != nil {
			return err
		}
		total := 0
		for _, org := range orgs {
			n, err := risks.Rescore(ctx, org)
			if err != nil {
				return err
			}
			total += n
		}
		if total > 0 {
			log.Info("stale risk scores repaired", "count", total)
		}
		return nil
	}
}
