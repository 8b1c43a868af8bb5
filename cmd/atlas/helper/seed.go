package helper

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ppmlab/atlas/dao/model"
	"github.com/ppmlab/atlas/pkg/logutils"
	"github.com/ppmlab/atlas/pkg/service"
	"github.com/ppmlab/atlas/pkg/store"
)

type SeedOptions struct {
	OrganizationName string
	Slug             string
	AdminEmail       string
	AdminPassword    string
	// Demo adds one portfolio, program and project owned by the admin.
	Demo bool
}

// Seed creates an organization with a super admin. It is a no-op when an
// organization with the slug already exists, and returns its id either way.
func Seed(ctx context.Context, db *gorm.DB, opts SeedOptions) (uuid.UUID, error) {
	var existing model.Organization
	err := db.WithContext(ctx).Where("slug = ?", opts.Slug).First(&existing).Error
	if err == nil {
		logutils.Log.Infof("organization %s already seeded", opts.Slug)
		return existing.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return uuid.Nil, err
	}

	var orgID uuid.UUID
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		org := &model.Organization{Name: opts.OrganizationName, Slug: opts.Slug, IsActive: true}
		if err := store.New[model.Organization](tx).Create(ctx, uuid.New(), org); err != nil {
			return err
		}
		orgID = org.ID

		admin := &model.User{Email: opts.AdminEmail, FirstName: "Platform", LastName: "Admin", Role: model.RoleSuperAdmin}
		if err := service.NewUsers(tx).Create(ctx, org.ID, admin, opts.AdminPassword); err != nil {
			return fmt.Errorf("seed admin: %w", err)
		}
		if opts.Demo {
			return seedDemo(ctx, tx, org.ID, admin.ID)
		}
		return nil
	})
	if err != nil {
		return uuid.Nil, err
	}
	logutils.WithTenant(orgID.String(), string(model.KindOrganization)).Infof("organization %s seeded", opts.Slug)
	return orgID, nil
}

func seedDemo(ctx context.Context, tx *gorm.DB, org, owner uuid.UUID) error {
	portfolio := &model.Portfolio{
		Name:        "Network Expansion",
		OwnerID:     &owner,
		TotalBudget: decimal.NewFromInt(1_500_000),
		RAGStatus:   model.RAGGreen,
	}
	if err := store.New[model.Portfolio](tx).Create(ctx, org, portfolio); err != nil {
		return err
	}
	program := &model.Program{
		PortfolioID:      &portfolio.ID,
		Name:             "Metro Rollout",
		ProgramManagerID: &owner,
		Status:           model.ProgramActive,
		TotalBudget:      decimal.NewFromInt(600_000),
		RAGStatus:        model.RAGGreen,
	}
	if err := store.New[model.Program](tx).Create(ctx, org, program); err != nil {
		return err
	}
	project := &model.Project{
		ProgramID:        &program.ID,
		Code:             "PRJ-DEMO0001",
		Name:             "Core Site Build",
		Status:           model.ProjectActive,
		ProjectManagerID: &owner,
		TotalBudget:      decimal.NewFromInt(250_000),
		ActualCost:       decimal.NewFromInt(90_000),
		PlannedValue:     decimal.NewFromInt(100_000),
		EarnedValue:      decimal.NewFromInt(85_000),
		PercentComplete:  34,
		RAGStatus:        model.RAGAmber,
	}
	return store.New[model.Project](tx).Create(ctx, org, project)
}
