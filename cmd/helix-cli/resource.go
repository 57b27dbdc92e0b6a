package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/helixmedia/helix"
	"github.com/helixmedia/helix/clientcli"
)

var createCmd = &cobra.Command{
	Use:   "create <kind> <key=value>...",
	Short: "Create a resource",
	Long: `Create a resource from key=value attributes using an ingest signature.

Examples:
  helix-cli create videos title="Cats" description="On film"
  helix-cli create albums title=Holiday`,
	Args: cobra.MinimumNArgs(2),
	RunE: runCreate,
}

var updateCmd = &cobra.Command{
	Use:   "update <kind> <guid> <key=value>...",
	Short: "Update a resource",
	Long: `Send new attribute values for a resource using an update signature.

Albums cannot be updated.

Examples:
  helix-cli update videos 239c59483d346 title="New title"`,
	Args: cobra.MinimumNArgs(3),
	RunE: runUpdate,
}

var deleteCmd = &cobra.Command{
	Use:   "delete <kind> <guid> [guid...]",
	Short: "Delete resources",
	Long: `Delete one or more resources of a kind.

Every guid is attempted; the command exits non-zero if any delete failed.

Examples:
  helix-cli delete videos 239c59483d346
  helix-cli delete tracks a1 b2 c3 -q`,
	Args: cobra.MinimumNArgs(2),
	RunE: runDelete,
}

func runCreate(cmd *cobra.Command, args []string) error {
	kind, err := helix.ParseKind(args[0])
	if err != nil {
		return err
	}
	attrs, err := clientcli.ParseAttributes(args[1:])
	if err != nil {
		return err
	}

	client, cleanup, err := getClient(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	result, err := client.Create(cmd.Context(), kind, attrs)
	if err != nil {
		return err
	}

	return getFormatter().FormatResource(os.Stdout, result)
}

func runUpdate(cmd *cobra.Command, args []string) error {
	kind, err := helix.ParseKind(args[0])
	if err != nil {
		return err
	}
	attrs, err := clientcli.ParseAttributes(args[2:])
	if err != nil {
		return err
	}

	client, cleanup, err := getClient(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	result, err := client.Update(cmd.Context(), kind, args[1], attrs)
	if err != nil {
		return err
	}

	return getFormatter().FormatResource(os.Stdout, result)
}

func runDelete(cmd *cobra.Command, args []string) error {
	kind, err := helix.ParseKind(args[0])
	if err != nil {
		return err
	}

	client, cleanup, err := getClient(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	results, err := client.Delete(cmd.Context(), kind, args[1:])
	if err != nil {
		return err
	}

	if err := getFormatter().FormatDelete(os.Stdout, results); err != nil {
		return err
	}

	// Return error if any deletes failed
	if clientcli.HasDeleteErrors(results) {
		return &exitError{code: 1}
	}

	return nil
}
