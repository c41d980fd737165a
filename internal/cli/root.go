// Package cli implements onboardctl, the operator command line for schema
// migration, catalog seeding and role bootstrap.
package cli

import (
	"io"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// App holds what the commands operate on.
type App struct {
	DB  *gorm.DB
	Out io.Writer
}

// NewRootCmd creates the top-level "onboardctl" command.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "onboardctl",
		Short:         "Operator tooling for the IT onboarding service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(app.Out)

	root.AddCommand(
		newMigrateCmd(app),
		newSeedCmd(app),
		newGrantRoleCmd(app),
	)

	return root
}
