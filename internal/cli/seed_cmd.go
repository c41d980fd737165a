package cli

import (
	"fmt"

	"github.com/kakpu/IT-onboarding/internal/dto"
	"github.com/kakpu/IT-onboarding/internal/models"
	"github.com/kakpu/IT-onboarding/internal/services"
	"github.com/spf13/cobra"
)

func strPtr(s string) *string { return &s }

// defaultCatalog is the starter checklist for a new installation.
var defaultCatalog = []dto.CreateItemRequest{
	{Day: 1, Category: "account", Title: "Sign in to your PC", OrderIndex: 0,
		Summary: "Log in with the temporary password from IT and set your own.",
		Steps:   []string{"Power on the PC", "Enter your employee ID and temporary password", "Choose a new password when prompted"}},
	{Day: 1, Category: "account", Title: "Set up multi-factor authentication", OrderIndex: 1,
		Summary: "Register the authenticator app on your phone.",
		Steps:   []string{"Install Microsoft Authenticator", "Open https://aka.ms/mfasetup", "Scan the QR code", "Approve the test notification"}},
	{Day: 1, Category: "mail", Title: "Open Outlook", OrderIndex: 2,
		Summary: "Check that your mailbox is available.",
		Steps:   []string{"Start Outlook", "Sign in with your company account", "Send a test message to yourself"},
		Notes:   strPtr("The first sync can take several minutes.")},
	{Day: 2, Category: "network", Title: "Connect to the VPN", OrderIndex: 0,
		Summary: "Remote access to internal systems goes through the VPN client.",
		Steps:   []string{"Open the VPN client", "Select the company profile", "Sign in and approve the MFA prompt"}},
	{Day: 2, Category: "collaboration", Title: "Join your team in Teams", OrderIndex: 1,
		Summary: "Find your department team and introduce yourself.",
		Steps:   []string{"Start Teams", "Open Teams > Join or create a team", "Search for your department", "Post a hello in General"}},
	{Day: 3, Category: "security", Title: "Complete security training", OrderIndex: 0,
		Summary: "The mandatory e-learning must be finished in your first week.",
		Steps:   []string{"Open the learning portal", "Start the Information Security course", "Pass the final quiz"}},
	{Day: 3, Category: "devices", Title: "Register your printer", OrderIndex: 1,
		Summary: "Add the floor printer to your PC.",
		Steps:   []string{"Open Settings > Printers", "Add the printer shown on the label", "Print a test page"}},
}

func newSeedCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the starter checklist into an empty catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			var existing int64
			if err := app.DB.WithContext(ctx).Model(&models.ChecklistItem{}).Count(&existing).Error; err != nil {
				return fmt.Errorf("count items: %w", err)
			}
			if existing > 0 {
				fmt.Fprintf(out, "Catalog already has %d items; nothing seeded.\n", existing)
				return nil
			}

			catalog := services.NewCatalogService(app.DB)
			for i := range defaultCatalog {
				if _, err := catalog.CreateItem(ctx, &defaultCatalog[i]); err != nil {
					return fmt.Errorf("seed %q: %w", defaultCatalog[i].Title, err)
				}
			}
			fmt.Fprintf(out, "Seeded %d checklist items.\n", len(defaultCatalog))
			return nil
		},
	}
}
