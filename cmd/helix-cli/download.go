package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/helixmedia/helix"
	"github.com/helixmedia/helix/clientcli"
)

var (
	downloadOutput      string
	downloadStdout      bool
	downloadContentType string

	stillframeWidth  int
	stillframeHeight int
)

var downloadCmd = &cobra.Command{
	Use:   "download <kind> <guid> [local-path]",
	Short: "Download the file of a video or track",
	Long: `Download the file of a video or track.

Without --content-type the service picks the encoding and the URL carries
no extension. The local path defaults to the guid, plus the content type as
extension when one is given.

Examples:
  helix-cli download videos 239c59483d346
  helix-cli download videos 239c59483d346 -t mp4 -o clip.mp4
  helix-cli download tracks 4be7a2f --stdout > song`,
	Args: cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFetch(cmd, args, "file")
	},
}

var playCmd = &cobra.Command{
	Use:   "play <kind> <guid> [local-path]",
	Short: "Fetch the playback payload of a video or track",
	Long: `Fetch the playback payload of a video or track.

Examples:
  helix-cli play videos 239c59483d346 --stdout
  helix-cli play tracks 4be7a2f -t m3u8`,
	Args: cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFetch(cmd, args, "play")
	},
}

var stillframeCmd = &cobra.Command{
	Use:   "stillframe <guid> [local-path]",
	Short: "Download a screenshot of a video",
	Long: `Download a JPEG screenshot of a video.

Width and height are optional; without either the original size is fetched.
The host is taken from --server, or the config "server" key.

Examples:
  helix-cli stillframe 239c59483d346
  helix-cli stillframe 239c59483d346 --width 320 -o thumb.jpg`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runStillframe,
}

func init() {
	for _, cmd := range []*cobra.Command{downloadCmd, playCmd, stillframeCmd} {
		cmd.Flags().StringVarP(&downloadOutput, "output", "o", "", "output file path")
		cmd.Flags().BoolVar(&downloadStdout, "stdout", false, "write to stdout")
	}
	downloadCmd.Flags().StringVarP(&downloadContentType, "content-type", "t", "", "requested encoding, e.g. mp4")
	playCmd.Flags().StringVarP(&downloadContentType, "content-type", "t", "", "requested encoding")

	stillframeCmd.Flags().IntVar(&stillframeWidth, "width", 0, "width in pixels")
	stillframeCmd.Flags().IntVar(&stillframeHeight, "height", 0, "height in pixels")
}

func runFetch(cmd *cobra.Command, args []string, action string) error {
	kind, err := helix.ParseKind(args[0])
	if err != nil {
		return err
	}

	opts := clientcli.DownloadOptions{
		Kind:        kind,
		GUID:        args[1],
		Action:      action,
		ContentType: downloadContentType,
		LocalPath:   localPathArg(args, 2),
	}
	return download(cmd, opts)
}

func runStillframe(cmd *cobra.Command, args []string) error {
	opts := clientcli.DownloadOptions{
		Kind:      helix.VideoKind,
		GUID:      args[0],
		Action:    "stillframe",
		LocalPath: localPathArg(args, 1),
		Stillframe: helix.StillframeOptions{
			Width:  stillframeWidth,
			Height: stillframeHeight,
		},
	}
	return download(cmd, opts)
}

// localPathArg picks the destination from the positional argument at i,
// --output and --stdout, in increasing order of precedence.
func localPathArg(args []string, i int) string {
	localPath := ""
	if len(args) > i {
		localPath = args[i]
	}
	if downloadOutput != "" {
		localPath = downloadOutput
	}
	if downloadStdout {
		localPath = "-"
	}
	return localPath
}

func download(cmd *cobra.Command, opts clientcli.DownloadOptions) error {
	client, cleanup, err := getClient(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	result, data, err := client.Download(cmd.Context(), opts)
	if err != nil {
		return err
	}

	// If stdout, write content to stdout
	if result.LocalPath == "-" {
		if _, err := os.Stdout.Write(data); err != nil {
			return err
		}
		// Don't print metadata when writing to stdout (unless JSON mode)
		if jsonOutput {
			return getFormatter().FormatDownload(os.Stderr, result)
		}
		return nil
	}

	return getFormatter().FormatDownload(os.Stdout, result)
}
