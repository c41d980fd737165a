package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kakpu/IT-onboarding/internal/authz"
	"github.com/kakpu/IT-onboarding/internal/models"
	"github.com/spf13/cobra"
)

// newGrantRoleCmd sets a user's role directly. This is how the first admin
// is created; afterwards admins change roles through the API.
func newGrantRoleCmd(app *App) *cobra.Command {
	var email, role string

	cmd := &cobra.Command{
		Use:   "grant-role",
		Short: "Set the role of a user identified by email",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, ok := authz.ParseRole(role)
			if !ok {
				return fmt.Errorf("unknown role %q (want user, trainer or admin)", role)
			}
			email = strings.ToLower(strings.TrimSpace(email))
			if email == "" {
				return errors.New("--email is required")
			}

			result := app.DB.WithContext(cmd.Context()).Model(&models.User{}).
				Where("email = ?", email).
				Update("role", string(r))
			if result.Error != nil {
				return fmt.Errorf("update role: %w", result.Error)
			}
			if result.RowsAffected == 0 {
				return fmt.Errorf("no user with email %s", email)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s.\n", email, r)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "email of the user")
	cmd.Flags().StringVar(&role, "role", string(authz.RoleAdmin), "role to grant: user, trainer or admin")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}
