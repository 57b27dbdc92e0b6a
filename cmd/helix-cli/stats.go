package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/helixmedia/helix"
)

var statsCmd = &cobra.Command{
	Use:   "stats <media> <delivery|ingest|storage> [key=value...]",
	Short: "Fetch a statistics report",
	Long: `Fetch a delivery, ingest or storage report.

media is one of video, audio, track, image or album; track reports are
audio reports and album reports are image reports. Images have no ingest
report.

Some parameters shape the request instead of being forwarded:
  {media}_id=<guid>   delivery report for a single resource
  action=<name>       ingest breakdown (encode, source, breakdown)
  content_type=<ext>  response format instead of json

Examples:
  helix-cli stats video delivery start_date=2024-01-01 end_date=2024-01-31
  helix-cli stats video delivery video_id=239c59483d346
  helix-cli stats audio ingest action=encode
  helix-cli stats image storage --json`,
	Args: cobra.MinimumNArgs(2),
	RunE: runStats,
}

var signatureCmd = &cobra.Command{
	Use:   "signature <ingest|update|view>",
	Short: "Print a signature for the configured license key",
	Long: `Print a signature of the given type, fetching one if the cache has
no unexpired token.

With a persistent cache (--cache-type sqlite, postgres or redis) repeated
invocations reuse the token until it expires.

Examples:
  helix-cli signature view
  helix-cli signature ingest -q`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{string(helix.SignatureIngest), string(helix.SignatureUpdate), string(helix.SignatureView)},
	RunE:      runSignature,
}

func runStats(cmd *cobra.Command, args []string) error {
	opts, err := parseQuery(args[2:])
	if err != nil {
		return err
	}

	client, cleanup, err := getClient(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	result, err := client.Stats(cmd.Context(), args[0], args[1], opts)
	if err != nil {
		return err
	}

	return getFormatter().FormatStats(os.Stdout, result)
}

func runSignature(cmd *cobra.Command, args []string) error {
	sigType, err := helix.ParseSignatureType(args[0])
	if err != nil {
		return err
	}

	client, cleanup, err := getClient(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	result, err := client.Signature(cmd.Context(), sigType)
	if err != nil {
		return err
	}

	return getFormatter().FormatSignature(os.Stdout, result)
}
