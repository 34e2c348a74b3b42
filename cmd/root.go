package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

const app = "talent-radar"

func newRootCmd() *cobra.Command {
	var cfgFile string

	root := &cobra.Command{
		Use:          app,
		Short:        "talent-radar screens job applications and notifies applicants about matching postings",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $CONFIG_FILE or config.yaml)")

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API and the periodic tasks",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cfgFile)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, buildApp)
		},
	})
	root.AddCommand(taskCmd(&cfgFile, "retry-notifications", "Resend pending and failed notifications once", taskNotificationRetry))
	root.AddCommand(taskCmd(&cfgFile, "expire-postings", "Deactivate postings past their due date once", taskPostingExpiry))
	return root
}

func taskCmd(cfgFile *string, use, short, task string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(*cfgFile)
			if err != nil {
				return err
			}
			ran, err := runOnceManual(cmd.Context(), cfg, task, buildApp)
			if err != nil {
				return err
			}
			if !ran {
				fmt.Fprintf(cmd.OutOrStdout(), "%s skipped: already running\n", task)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s done\n", task)
			return nil
		},
	}
}
