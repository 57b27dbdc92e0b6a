package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/helixmedia/helix"
)

var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Write the credentials file interactively",
	Long: `Prompt for the service URL, tenancy scope and license key and save
them to the config file (default ./helix.yml).

Existing values, overridden by any of --site, --license-key, --reseller,
--company, --library, --contributor or --server, are offered as defaults.
The license key is checked by requesting a view signature before saving.`,
	Args:              cobra.NoArgs,
	PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
	RunE:              runConfigure,
}

var configureShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the saved credentials",
	Long: `Show the credentials saved in the config file.

The license key is hidden by default; use --show-secrets to reveal it.`,
	Args: cobra.NoArgs,
	RunE: runConfigureShow,
}

var showSecrets bool

func init() {
	configureCmd.AddCommand(configureShowCmd)
	configureShowCmd.Flags().BoolVar(&showSecrets, "show-secrets", false, "show secret values")
}

func runConfigure(cmd *cobra.Command, _ []string) error {
	saved, err := helix.LoadCredentials(cfgFile)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	existing := helix.MergeCredentials(saved, flagCredentials(cmd.Flags()))
	if err == nil {
		prompt := promptui.Prompt{
			Label:     fmt.Sprintf("%s already exists. Update it", cfgFile),
			IsConfirm: true,
		}
		if _, promptErr := prompt.Run(); promptErr != nil {
			fmt.Println("Cancelled.")
			return nil //nolint:nilerr // User cancelled, not an error
		}
	}

	sitePrompt := promptui.Prompt{
		Label:   "Site URL",
		Default: existing.Site,
		Validate: func(input string) error {
			if input == "" {
				return errors.New("site URL is required")
			}
			parsedURL, parseErr := url.Parse(input)
			if parseErr != nil {
				return fmt.Errorf("invalid URL: %w", parseErr)
			}
			if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
				return errors.New("URL must start with http:// or https://")
			}
			return nil
		},
	}
	site, err := sitePrompt.Run()
	if err != nil {
		return handlePromptError(err)
	}

	creds := helix.Credentials{Site: strings.TrimSuffix(site, "/")}

	optional := []struct {
		label string
		dst   *string
		def   string
	}{
		{"Reseller (optional)", &creds.Reseller, existing.Reseller},
		{"Company (optional)", &creds.Company, existing.Company},
		{"Library (optional)", &creds.Library, existing.Library},
		{"Contributor (optional)", &creds.Contributor, existing.Contributor},
		{"Stillframe server (optional)", &creds.Server, existing.Server},
	}
	for _, field := range optional {
		prompt := promptui.Prompt{Label: field.label, Default: field.def}
		value, promptErr := prompt.Run()
		if promptErr != nil {
			return handlePromptError(promptErr)
		}
		*field.dst = strings.TrimSpace(value)
	}

	keyPrompt := promptui.Prompt{
		Label: "License Key",
		Mask:  '*',
		Validate: func(input string) error {
			if strings.TrimSpace(input) == "" && existing.LicenseKey == "" {
				return errors.New("license key is required")
			}
			return nil
		},
	}
	licenseKey, err := keyPrompt.Run()
	if err != nil {
		return handlePromptError(err)
	}
	creds.LicenseKey = strings.TrimSpace(licenseKey)

	creds, err = resolveCredentials(existing, creds)
	if err != nil {
		return err
	}

	fmt.Print("Checking license key... ")
	if checkErr := checkLicenseKey(cmd.Context(), creds); checkErr != nil {
		fmt.Println("FAILED")
		fmt.Printf("Warning: Could not fetch a signature: %v\n", checkErr)

		continuePrompt := promptui.Prompt{
			Label:     "Save anyway",
			IsConfirm: true,
		}
		if _, promptErr := continuePrompt.Run(); promptErr != nil {
			fmt.Println("Cancelled.")
			return nil //nolint:nilerr // User cancelled, not an error
		}
	} else {
		fmt.Println("OK")
	}

	if err := creds.Save(cfgFile); err != nil {
		return fmt.Errorf("save credentials: %w", err)
	}

	fmt.Printf("Saved %s.\n", cfgFile)
	return nil
}

func runConfigureShow(_ *cobra.Command, _ []string) error {
	creds, err := helix.LoadCredentials(cfgFile)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			fmt.Println("No credentials configured.")
			fmt.Println("Run 'helix-cli configure' to create them.")
			return nil
		}
		return err
	}

	return getFormatter().FormatCredentials(os.Stdout, creds, showSecrets)
}

// flagCredentials collects the credential flags set on the command line.
func flagCredentials(flags *pflag.FlagSet) helix.Credentials {
	get := func(name string) string {
		value, _ := flags.GetString(name)
		return strings.TrimSpace(value)
	}
	return helix.Credentials{
		Site:        strings.TrimSuffix(get("site"), "/"),
		LicenseKey:  get("license-key"),
		Reseller:    get("reseller"),
		Company:     get("company"),
		Library:     get("library"),
		Contributor: get("contributor"),
		Server:      get("server"),
	}
}

// resolveCredentials completes the prompted answers. A blank license key
// keeps the default one; a blank optional field stays cleared.
func resolveCredentials(defaults, answers helix.Credentials) (helix.Credentials, error) {
	creds := helix.MergeCredentials(helix.Credentials{LicenseKey: defaults.LicenseKey}, answers)
	if err := creds.Validate(); err != nil {
		return helix.Credentials{}, fmt.Errorf("invalid credentials: %w", err)
	}
	return creds, nil
}

// checkLicenseKey requests a view signature, which fails for unknown keys.
func checkLicenseKey(ctx context.Context, creds helix.Credentials) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	cfg, err := helix.New(creds)
	if err != nil {
		return err
	}
	_, err = cfg.Signature(ctx, helix.SignatureView, nil)
	return err
}

// handlePromptError handles promptui errors.
func handlePromptError(err error) error {
	if errors.Is(err, promptui.ErrInterrupt) {
		fmt.Println("\nCancelled.")
		os.Exit(0)
	}
	if errors.Is(err, promptui.ErrAbort) {
		fmt.Println("Cancelled.")
		return nil
	}
	return err
}
