package main

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/helixmedia/helix"
)

var listQuery string

var listCmd = &cobra.Command{
	Use:   "list <kind> [key=value...]",
	Short: "List resources of a kind",
	Long: `List videos, tracks, images or albums in the configured scope.

Extra key=value arguments are sent as query parameters.

Examples:
  helix-cli list videos
  helix-cli list tracks --query cats
  helix-cli list images page=2 -q`,
	Args: cobra.MinimumNArgs(1),
	RunE: runList,
}

var findCmd = &cobra.Command{
	Use:   "find <kind> <guid>",
	Short: "Show one resource",
	Long: `Load a resource by guid and print its attributes.

Examples:
  helix-cli find videos 239c59483d346
  helix-cli find album 4be7a2f --json`,
	Args: cobra.ExactArgs(2),
	RunE: runFind,
}

func init() {
	listCmd.Flags().StringVar(&listQuery, "query", "", "free-text filter")
}

func runList(cmd *cobra.Command, args []string) error {
	kind, err := helix.ParseKind(args[0])
	if err != nil {
		return err
	}

	query, err := parseQuery(args[1:])
	if err != nil {
		return err
	}
	if listQuery != "" {
		query.Set("query", listQuery)
	}

	client, cleanup, err := getClient(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	result, err := client.List(cmd.Context(), kind, query)
	if err != nil {
		return err
	}

	return getFormatter().FormatList(os.Stdout, result)
}

func runFind(cmd *cobra.Command, args []string) error {
	kind, err := helix.ParseKind(args[0])
	if err != nil {
		return err
	}

	client, cleanup, err := getClient(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	result, err := client.Find(cmd.Context(), kind, args[1])
	if err != nil {
		return err
	}

	return getFormatter().FormatResource(os.Stdout, result)
}

// parseQuery turns key=value arguments into query parameters. Repeated keys
// are sent repeatedly.
func parseQuery(args []string) (url.Values, error) {
	query := url.Values{}
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("parameter must be key=value: %q", arg)
		}
		query.Add(key, value)
	}
	return query, nil
}
