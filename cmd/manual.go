package main

import (
	"context"
	"fmt"

	"talento/internal/auth"
	"talento/internal/model"
	"talento/internal/scheduler"

	"github.com/spf13/cobra"
)

func newMaintenanceCmd(load func() (AppConfig, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "maintenance",
		Short: "Run the maintenance tasks once and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			report, err := runOnceManual(cmd.Context(), cfg, buildApp)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "expired contracts: %d, deleted notifications: %d\n",
				report.ExpiredContracts, report.DeletedNotifications)
			return nil
		},
	}
}

// runOnceManual 组装依赖后执行一次维护。
func runOnceManual(ctx context.Context, cfg AppConfig, build appBuilder) (scheduler.Report, error) {
	deps, cleanup, err := build(cfg)
	if err != nil {
		return scheduler.Report{}, err
	}
	defer cleanup()
	return deps.sched.RunOnce(ctx)
}

func newCreateAdminCmd(load func() (AppConfig, error)) *cobra.Command {
	var in auth.RegisterInput
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an administrator account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			u, err := createAdmin(cmd.Context(), cfg, buildApp, in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "admin %s created (%s)\n", u.Email, u.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Name, "name", "Admin", "display name")
	cmd.Flags().StringVar(&in.Email, "email", "", "login email")
	cmd.Flags().StringVar(&in.Password, "password", "", "initial password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func createAdmin(ctx context.Context, cfg AppConfig, build appBuilder, in auth.RegisterInput) (*model.User, error) {
	deps, cleanup, err := build(cfg)
	if err != nil {
		return nil, err
	}
	defer cleanup()
	return deps.accounts.Register(ctx, in, model.RoleAdmin)
}
