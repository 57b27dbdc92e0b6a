// Package clientcli implements the operations behind helix-cli.
//
// A Client wraps one helix.Config and dispatches list, find, create, update,
// delete, download, upload, signature and statistics requests on the media
// kind given by the caller. Batch operations (delete, upload) continue past
// individual failures and report each outcome separately.
//
// # Basic Usage
//
//	cfg, err := helix.New(helix.Credentials{
//		Site:       "https://service.example.com",
//		Company:    "acme",
//		LicenseKey: "your-license-key",
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	client, err := clientcli.New(cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	list, err := client.List(ctx, helix.VideoKind, url.Values{"query": {"cats"}})
//
// # Output Formatting
//
// Use formatters for human-readable or JSON output:
//
//	formatter := clientcli.NewFormatter(jsonOutput, quiet)
//	formatter.FormatList(os.Stdout, list)
package clientcli
