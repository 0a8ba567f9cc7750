package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/prospect-cli/internal/model"
)

var statusCmd = &cobra.Command{
	Use:   "status <place-id> <status>",
	Short: "Update the outreach status of a business",
	Long: fmt.Sprintf(`Update the outreach status of a stored business.

Valid statuses: %v`, model.Statuses()),
	Args: cobra.ExactArgs(2),
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	placeID, rawStatus := args[0], args[1]

	svc, st, err := newService(ctx)
	if err != nil {
		return err
	}
	defer st.Close() //nolint:errcheck

	b, err := svc.UpdateStatus(ctx, placeID, rawStatus)
	if err != nil {
		return eris.Wrapf(err, "status: place %s", placeID)
	}
	if b == nil {
		return eris.Errorf("status: business %s not found", placeID)
	}

	fmt.Printf("%s (%s) -> %s\n", b.Name, b.PlaceID, b.Status)
	return nil
}
