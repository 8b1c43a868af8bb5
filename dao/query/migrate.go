package query

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"

	"github.com/ppmlab/atlas/dao/model"
)

// Models lists every table managed by the migrations.
func Models() []any {
	return []any{
		&model.Organization{},
		&model.User{},
		&model.Portfolio{},
		&model.Program{},
		&model.Project{},
		&model.ProjectMember{},
		&model.Task{},
		&model.Milestone{},
		&model.Risk{},
		&model.Issue{},
		&model.Budget{},
		&model.ChangeRequest{},
		&model.Document{},
		&model.Resource{},
		&model.ResourceAssignment{},
		&model.AuditLog{},
	}
}

func migrations() []*gormigrate.Migration {
	return []*gormigrate.Migration{
		{
			ID: "202610010900_initial_schema",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(Models()...)
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable(Models()...)
			},
		},
		{
			// Backs the executive dashboard top-risk query.
			ID: "202610080900_risk_status_score_index",
			Migrate: func(tx *gorm.DB) error {
				return tx.Exec("CREATE INDEX IF NOT EXISTS idx_risks_org_status_score " +
					"ON risks (organization_id, status, risk_score)").Error
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Exec("DROP INDEX IF EXISTS idx_risks_org_status_score").Error
			},
		},
		{
			ID: "202610100900_audit_log_org_created_index",
			Migrate: func(tx *gorm.DB) error {
				return tx.Exec("CREATE INDEX IF NOT EXISTS idx_audit_logs_org_created " +
					"ON audit_logs (organization_id, created_at)").Error
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Exec("DROP INDEX IF EXISTS idx_audit_logs_org_created").Error
			},
		},
		{
			ID: "202610160900_change_request_number_unique",
			Migrate: func(tx *gorm.DB) error {
				if err := tx.Exec("DROP INDEX IF EXISTS idx_change_requests_cr_number").Error; err != nil {
					return err
				}
				return tx.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_change_requests_org_project_number " +
					"ON change_requests (organization_id, project_id, cr_number)").Error
			},
			Rollback: func(tx *gorm.DB) error {
				if err := tx.Exec("DROP INDEX IF EXISTS idx_change_requests_org_project_number").Error; err != nil {
					return err
				}
				return tx.Exec("CREATE INDEX IF NOT EXISTS idx_change_requests_cr_number " +
					"ON change_requests (cr_number)").Error
			},
		},
	}
}

// Migrate applies every pending migration.
func Migrate(db *gorm.DB) error {
	return gormigrate.New(db, gormigrate.DefaultOptions, migrations()).Migrate()
}

// RollbackLast undoes the most recently applied migration.
func RollbackLast(db *gorm.DB) error {
	return gormigrate.New(db, gormigrate.DefaultOptions, migrations()).RollbackLast()
}
