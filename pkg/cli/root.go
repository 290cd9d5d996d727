// Package cli implements the aihub command-line interface.
package cli

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	var (
		host   string
		token  string
		apiKey string
		output string
	)

	rootCmd := &cobra.Command{
		Use:           "aihub",
		Short:         "AI Hub query engine CLI",
		Long:          "Command-line interface for the AI Hub ad-hoc query API.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Precedence: flag > env > default.
			if !cmd.Flags().Changed("host") {
				if v := os.Getenv("AIHUB_HOST"); v != "" {
					host = v
				}
			}
			if !cmd.Flags().Changed("token") {
				if v := os.Getenv("AIHUB_TOKEN"); v != "" {
					token = v
				}
			}
			if !cmd.Flags().Changed("api-key") {
				if v := os.Getenv("AIHUB_API_KEY"); v != "" {
					apiKey = v
				}
			}
			if !cmd.Flags().Changed("output") {
				if v := os.Getenv("AIHUB_OUTPUT"); v != "" {
					output = v
				}
			}
			if err := validateHostURL(host); err != nil {
				return err
			}
			return validateOutputFormat(output)
		},
	}

	rootCmd.PersistentFlags().StringVar(&host, "host", "http://localhost:8080", "API host URL")
	rootCmd.PersistentFlags().StringVar(&token, "token", "", "JWT bearer token for authentication")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", "", "API key for authentication")
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "table", "Output format (table, json)")

	newClient := func() *Client {
		return NewClient(strings.TrimRight(host, "/"), token, apiKey)
	}

	rootCmd.AddCommand(newQueryCmd(newClient))
	rootCmd.AddCommand(newDatasetsCmd(newClient))

	return rootCmd
}

func validateHostURL(host string) error {
	host = strings.TrimSpace(host)
	if host == "" {
		return fmt.Errorf("invalid host %q: host URL cannot be empty", host)
	}
	u, err := url.Parse(host)
	if err != nil {
		return fmt.Errorf("invalid host %q: %w", host, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid host %q: scheme must be http or https", host)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid host %q: missing host", host)
	}
	return nil
}

func validateOutputFormat(output string) error {
	if output != "" && output != "table" && output != "json" {
		return fmt.Errorf("unsupported output format %q: use 'table' or 'json'", output)
	}
	return nil
}
