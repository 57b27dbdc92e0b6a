package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/helixmedia/helix"
	"github.com/helixmedia/helix/clientcli"
)

var uploadCmd = &cobra.Command{
	Use:   "upload <kind> <local-path> [local-path...]",
	Short: "Upload files through upload sessions",
	Long: `Upload local files as videos, tracks or images.

Each file opens an upload session with an ingest signature attributed to
the configured contributor, company and library, is posted to the server
the session names and then closes the session.

Examples:
  helix-cli upload videos ./clip.mp4
  helix-cli upload images ./a.jpg ./b.jpg -q`,
	Args: cobra.MinimumNArgs(2),
	RunE: runUpload,
}

var sliceCmd = &cobra.Command{
	Use:   "slice <key=value>...",
	Short: "Cut a clip out of a video",
	Long: `Ask the service to cut a new video out of an existing one.

The attributes are sent as form fields. A content_type attribute selects
the reply format (xml by default); the reply is printed as received.

Examples:
  helix-cli slice video_id=239c59483d346 start=10 end=25`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSlice,
}

func runUpload(cmd *cobra.Command, args []string) error {
	kind, err := helix.ParseKind(args[0])
	if err != nil {
		return err
	}

	client, cleanup, err := getClient(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	results, err := client.Upload(cmd.Context(), kind, args[1:])
	if err != nil {
		return err
	}

	if err := getFormatter().FormatUpload(os.Stdout, results); err != nil {
		return err
	}

	if clientcli.HasUploadErrors(results) {
		return &exitError{code: 1}
	}

	return nil
}

func runSlice(cmd *cobra.Command, args []string) error {
	attrs, err := clientcli.ParseAttributes(args)
	if err != nil {
		return err
	}

	client, cleanup, err := getClient(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	body, err := client.Slice(cmd.Context(), attrs)
	if err != nil {
		return err
	}

	_, err = os.Stdout.Write(body)
	return err
}
