package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/kubenetlabs/pipeline-demo/internal/probe"
	"github.com/kubenetlabs/pipeline-demo/pkg/version"
)

func newRootCmd() *cobra.Command {
	var (
		url     string
		timeout time.Duration
		quiet   bool
	)

	defaultURL := probe.DefaultURL
	if v := os.Getenv("PROBE_URL"); v != "" {
		defaultURL = v
	}

	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Check the health endpoint of a pipeline-demo server",
		Long: `probe issues GET against the health endpoint and exits 0 when the server
answers 200 with {"status":"ok"}. Any other outcome exits 1.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			client := &http.Client{Timeout: timeout}
			if err := probe.Check(ctx, client, url); err != nil {
				return fmt.Errorf("health check failed: %w", err)
			}
			if !quiet {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", url)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&url, "url", defaultURL, "health endpoint URL (env PROBE_URL)")
	cmd.Flags().DurationVar(&timeout, "timeout", 3*time.Second, "overall timeout for the check")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "print nothing on success")

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "probe %s\n", version.String())
		},
	})

	return cmd
}
