package main

import (
	"fmt"

	"github.com/mx-space/landing/internal/database"
	"github.com/mx-space/landing/internal/models"
	"github.com/mx-space/landing/internal/modules/auth"
	"github.com/spf13/cobra"
)

func newUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage editor accounts",
	}
	cmd.AddCommand(newUserCreateCmd())
	return cmd
}

func newUserCreateCmd() *cobra.Command {
	var username, password, name, role string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an account that can edit sections",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r := models.UserRole(role)
			if r != models.RoleOwner && r != models.RoleEditor {
				return fmt.Errorf("--role must be %s or %s", models.RoleOwner, models.RoleEditor)
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			db, err := openDB(cfg)
			if err != nil {
				return err
			}
			defer database.Close(db)

			svc := auth.NewService(auth.NewGormRepository(db), auth.WithLogger(logger))
			u, err := svc.CreateUser(cmd.Context(), username, password, name, r)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s %q (%s)\n", u.Role, u.Username, u.ID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "login name")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password")
	cmd.Flags().StringVar(&name, "name", "", "display name, defaults to the username")
	cmd.Flags().StringVar(&role, "role", string(models.RoleEditor), "owner or editor")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}
