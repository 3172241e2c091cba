package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Matheus-Salgado02/cinelist/config"
	"github.com/Matheus-Salgado02/cinelist/data_access"
	"github.com/Matheus-Salgado02/cinelist/logging"
)

var (
	maintenanceCmd = &cobra.Command{
		Use:   "maintenance",
		Short: "One-off database maintenance tasks",
	}

	fixIdentitiesCmd = &cobra.Command{
		Use:   "fix-identities",
		Short: "Unset null usernames/emails and rebuild the sparse unique indexes",
		Long: `Documents that store username or email as an explicit null collide inside
the sparse unique indexes and block registrations. This command unsets those
fields and recreates both indexes. It never deletes users.`,
		RunE: runFixIdentities,
	}
)

func init() {
	maintenanceCmd.AddCommand(fixIdentitiesCmd)
	fixIdentitiesCmd.Flags().Duration("timeout", time.Minute, "overall timeout")
}

func runFixIdentities(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Store.Driver != config.StoreMongo {
		return fmt.Errorf("fix-identities requires the mongo store driver, got %q", cfg.Store.Driver)
	}
	timeout, _ := cmd.Flags().GetDuration("timeout")

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	mongodb, err := data_access.NewMongoDB(cfg.Mongo)
	if err != nil {
		return fmt.Errorf("failed to create MongoDB client: %w", err)
	}
	defer mongodb.Close(context.Background()) //nolint:errcheck

	if err := mongodb.Ping(ctx); err != nil {
		return fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	report, err := data_access.NewUserRepository(mongodb).FixIdentities(ctx)
	if err != nil {
		return fmt.Errorf("fix-identities failed: %w", err)
	}
	logging.Info().
		Int64("usernames_unset", report.UsernamesUnset).
		Int64("emails_unset", report.EmailsUnset).
		Msg("identity cleanup complete, indexes rebuilt")
	fmt.Fprintf(cmd.OutOrStdout(), "unset %d null usernames and %d null emails\n", report.UsernamesUnset, report.EmailsUnset)
	return nil
}
