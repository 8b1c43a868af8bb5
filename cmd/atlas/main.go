package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"
	"k8s.io/klog/v2"

	"github.com/ppmlab/atlas/cmd/atlas/helper"
	"github.com/ppmlab/atlas/dao/query"
)

// @title						Atlas API
// @version						1.0.0
// @description					API server for Atlas, a multi-tenant portfolio, program and project management platform.
// @securityDefinitions.apikey	Bearer
// @in							header
// @name						Authorization
// @description					Call /v1/auth/login and send the token as 'Bearer ${TOKEN}' to reach protected endpoints
func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "atlas",
		Short:        "Portfolio, program and project management backend",
		SilenceUsage: true,
	}
	root.AddCommand(newServeCmd(), newMigrateCmd(), newSeedCmd())
	return root
}

func newServeCmd() *cobra.Command {
	var migrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the maintenance scheduler",
		RunE: func(_ *cobra.Command, _ []string) error {
			configInit := helper.NewConfigInitializer()
			if err := configInit.LoadDebugEnvironment(); err != nil {
				klog.Errorf("Failed to load env: %s", err)
				return err
			}

			db := query.GetDB()
			if migrate {
				if err := query.Migrate(db); err != nil {
					return err
				}
			}

			registerConfig, err := configInit.InitializeRegisterConfig(db)
			if err != nil {
				klog.Errorf("Failed to register config: %s", err)
				return err
			}
			helper.NewServerRunner(configInit.GetBackendConfig()).StartServer(registerConfig)
			return nil
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply pending migrations before serving")
	return cmd
}

func newMigrateCmd() *cobra.Command {
	var rollback bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		RunE: func(_ *cobra.Command, _ []string) error {
			db := query.GetDB()
			if rollback {
				if err := query.RollbackLast(db); err != nil {
					return err
				}
				klog.Info("last migration rolled back")
				return nil
			}
			if err := query.Migrate(db); err != nil {
				return err
			}
			klog.Info("migrations applied")
			return nil
		},
	}
	cmd.Flags().BoolVar(&rollback, "rollback", false, "undo the most recent migration instead")
	return cmd
}

func newSeedCmd() *cobra.Command {
	opts := helper.SeedOptions{}
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create an organization with a super admin",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.AdminPassword == "" {
				opts.AdminPassword = os.Getenv("ATLAS_ADMIN_PASSWORD")
			}
			if opts.AdminPassword == "" {
				return errors.New("admin password required, pass --admin-password or set ATLAS_ADMIN_PASSWORD")
			}
			org, err := helper.Seed(cmd.Context(), query.GetDB(), opts)
			if err != nil {
				return err
			}
			cmd.Printf("organization %s ready: %s\n", opts.Slug, org)
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.OrganizationName, "name", "Acme", "organization name")
	cmd.Flags().StringVar(&opts.Slug, "slug", "acme", "organization slug")
	cmd.Flags().StringVar(&opts.AdminEmail, "admin-email", "admin@acme.test", "super admin email")
	cmd.Flags().StringVar(&opts.AdminPassword, "admin-password", "", "super admin password, defaults to $ATLAS_ADMIN_PASSWORD")
	cmd.Flags().BoolVar(&opts.Demo, "demo", false, "add a demo portfolio, program and project")
	return cmd
}
