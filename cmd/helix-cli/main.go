package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/helixmedia/helix"
	"github.com/helixmedia/helix/clientcli"
	"github.com/helixmedia/helix/config"
	"github.com/helixmedia/helix/database"
)

var (
	version = "dev"

	cfgFile    string
	jsonOutput bool
	quiet      bool
)

var rootCmd = &cobra.Command{
	Use:     "helix-cli",
	Version: version,
	Short:   "Client for the Helix media service",
	Long: `Helix CLI - Client for the Helix media-management service

Resources are addressed by kind (videos, tracks, images, albums) and guid.
Requests are scoped to the reseller, company and library in the config.

Configuration is read from ./helix.yml, HELIX_* environment variables and
flags, in increasing order of precedence. Run 'helix-cli configure' to
write a config file interactively.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadConfig,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&cfgFile, "config", "c", helix.DefaultCredentialsFile, "config file")
	pf.String("site", "", "service URL (env: HELIX_SITE)")
	pf.String("license-key", "", "license key (env: HELIX_LICENSE_KEY)")
	pf.String("reseller", "", "reseller scope (env: HELIX_RESELLER)")
	pf.String("company", "", "company scope (env: HELIX_COMPANY)")
	pf.String("library", "", "library scope (env: HELIX_LIBRARY)")
	pf.String("contributor", "", "contributor recorded on uploads (env: HELIX_CONTRIBUTOR)")
	pf.String("server", "", "stillframe server name (env: HELIX_SERVER)")
	pf.String("cache-type", "", "signature cache: memory, sqlite, postgres, redis (default: memory)")
	pf.String("cache-dsn", "", "signature cache connection string")
	pf.String("cache-table", "", "signature cache table or key prefix (default: helix_signatures)")
	pf.Duration("timeout", 0, "HTTP timeout (default: 30s)")
	pf.String("log-level", "", "log level: debug, info, warn, error (default: warn)")
	pf.String("log-format", "", "log format: text, json (default: text)")
	pf.BoolVar(&jsonOutput, "json", false, "output as JSON")
	pf.BoolVarP(&quiet, "quiet", "q", false, "suppress non-essential output")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(findCmd)
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(stillframeCmd)
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(sliceCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(signatureCmd)
	rootCmd.AddCommand(configureCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		var exitErr *exitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.code)
		}
		_ = getFormatter().FormatError(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads and validates the configuration, sets up logging and
// stores the config on the command context.
func loadConfig(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load([]string{cfgFile}, cmd.Flags())
	if err != nil {
		return err
	}

	setupLogging(cfg.Log)
	cmd.SetContext(config.WithContext(cmd.Context(), cfg))
	return nil
}

// getFormatter returns the appropriate formatter based on flags.
func getFormatter() clientcli.Formatter {
	return clientcli.NewFormatter(jsonOutput, quiet)
}

// getClient creates a client from the config on the command context.
// The returned cleanup function closes the signature cache.
func getClient(cmd *cobra.Command) (*clientcli.Client, func(), error) {
	ctx := cmd.Context()

	cfg, err := config.FromContext(ctx)
	if err != nil {
		return nil, nil, err
	}

	store, cleanup, err := database.Connect(ctx, cfg.Store())
	if err != nil {
		return nil, nil, fmt.Errorf("connect signature cache: %w", err)
	}

	hc, err := helix.New(cfg.Credentials(),
		helix.WithTimeout(cfg.HTTP.Timeout),
		helix.WithSignatureStore(store),
		helix.WithLogger(slog.Default()),
	)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	client, err := clientcli.New(hc)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	slog.Debug("client ready",
		"site", cfg.Site,
		"cache", cfg.Cache.Type,
	)
	return client, cleanup, nil
}

// exitError is returned when we want to exit with a specific code
// but don't want an error message printed.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}
