package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jwalitptl/hms-api/internal/model"
	"github.com/jwalitptl/hms-api/internal/repository/postgres"
	"github.com/jwalitptl/hms-api/internal/service/auth"
	apperrors "github.com/jwalitptl/hms-api/pkg/errors"
)

func newSeedCmd() *cobra.Command {
	var (
		adminEmail string
		password   string
		adminOnly  bool
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the bootstrap admin and one sample user per role",
		Long: "Seed registers users through the normal registration flow. " +
			"Accounts whose email already exists are left untouched, so the command can be re-run.",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			authSvc := a.authService(postgres.NewBaseRepository(a.db), nil)
			users := seedUsers(adminEmail, password)
			if adminOnly {
				users = users[:1]
			}
			return seed(cmd.Context(), a, authSvc, users)
		},
	}

	cmd.Flags().StringVar(&adminEmail, "admin-email", "admin@hospital.local", "email of the bootstrap admin")
	cmd.Flags().StringVar(&password, "password", "", "password for every seeded account (min 8 characters)")
	cmd.Flags().BoolVar(&adminOnly, "admin-only", false, "only create the bootstrap admin")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func seed(ctx context.Context, a *app, authSvc auth.AuthService, users []model.RegisterRequest) error {
	for i := range users {
		req := &users[i]
		u, err := authSvc.Register(ctx, req)
		switch {
		case apperrors.Is(err, apperrors.ErrConflict):
			a.log.Info("User already exists, skipping", "email", req.Email)
		case err != nil:
			return fmt.Errorf("seed %s: %w", req.Email, err)
		default:
			a.log.Info("User created", "email", u.Email, "role", u.Role)
		}
	}
	return nil
}

func seedUsers(adminEmail, password string) []model.RegisterRequest {
	str := func(s string) *string { return &s }
	experience := 5
	fee := 500.0

	return []model.RegisterRequest{
		{
			Email: adminEmail, Password: password, Role: model.RoleAdmin,
			FirstName: "System", LastName: "Admin", Phone: "0000000000",
		},
		{
			Email: "doctor@hospital.local", Password: password, Role: model.RoleDoctor,
			FirstName: "Asha", LastName: "Rao", Phone: "0000000001",
			Specialization: str("General Medicine"), Qualification: str("MBBS"),
			Experience: &experience, ConsultationFee: &fee,
		},
		{
			Email: "reception@hospital.local", Password: password, Role: model.RoleReceptionist,
			FirstName: "Front", LastName: "Desk", Phone: "0000000002",
			Shift: str("Morning"),
		},
		{
			Email: "lab@hospital.local", Password: password, Role: model.RoleLabStaff,
			FirstName: "Lab", LastName: "Technician", Phone: "0000000003",
			Department: str("Pathology"),
		},
	}
}
