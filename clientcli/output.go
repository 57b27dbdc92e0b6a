package clientcli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/helixmedia/helix"
)

// Formatter formats results for output.
type Formatter interface {
	FormatList(w io.Writer, result *ListResult) error
	FormatResource(w io.Writer, result *ResourceResult) error
	FormatDownload(w io.Writer, result *DownloadResult) error
	FormatUpload(w io.Writer, results []UploadResult) error
	FormatDelete(w io.Writer, results []DeleteResult) error
	FormatSignature(w io.Writer, result *SignatureResult) error
	FormatStats(w io.Writer, result *StatsResult) error
	FormatCredentials(w io.Writer, creds helix.Credentials, showSecrets bool) error
	FormatError(w io.Writer, err error) error
}

// NewFormatter returns the appropriate formatter based on flags.
func NewFormatter(jsonOutput, quiet bool) Formatter {
	if jsonOutput {
		return &JSONFormatter{}
	}
	return &HumanFormatter{Quiet: quiet}
}

// HumanFormatter outputs tables and short status lines.
type HumanFormatter struct {
	Quiet bool
}

// FormatList renders one row per resource. In quiet mode only guids are printed.
func (f *HumanFormatter) FormatList(w io.Writer, result *ListResult) error {
	kind, err := helix.ParseKind(result.Kind)
	if err != nil {
		return err
	}

	if f.Quiet {
		for _, item := range result.Items {
			_, _ = fmt.Fprintln(w, item.String(kind.GUIDName))
		}
		return nil
	}

	if len(result.Items) == 0 {
		_, _ = fmt.Fprintf(w, "No %s found\n", result.Kind)
		return nil
	}

	// every kind carries the album attributes, so they make the summary columns
	headers := []string{"GUID"}
	for _, attr := range helix.AlbumKnownAttributes {
		headers = append(headers, strings.ToUpper(attr))
	}

	rows := make([][]string, 0, len(result.Items))
	for _, item := range result.Items {
		row := []string{item.String(kind.GUIDName)}
		for _, attr := range helix.AlbumKnownAttributes {
			row = append(row, item.String(attr))
		}
		rows = append(rows, row)
	}

	_, _ = fmt.Fprintln(w, renderTable(headers, rows, nil))
	_, _ = fmt.Fprintf(w, "%d %s\n", len(result.Items), result.Kind)
	return nil
}

// FormatResource renders the attributes of one resource as key/value rows.
func (f *HumanFormatter) FormatResource(w io.Writer, result *ResourceResult) error {
	if f.Quiet {
		_, _ = fmt.Fprintln(w, result.GUID)
		return nil
	}

	keys := result.Attributes.Keys()
	rows := make([][]string, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, []string{k, result.Attributes.String(k)})
	}

	_, _ = fmt.Fprintf(w, "%s %s\n", result.Kind, result.GUID)
	_, _ = fmt.Fprintln(w, renderTable([]string{"ATTRIBUTE", "VALUE"}, rows, nil))
	return nil
}

// FormatDownload formats download result as human-readable text.
func (f *HumanFormatter) FormatDownload(w io.Writer, result *DownloadResult) error {
	if f.Quiet {
		return nil
	}
	if result.LocalPath == "-" {
		_, _ = fmt.Fprintf(w, "Downloaded: %s %s %s (%s)\n", result.Kind, result.GUID, result.Action, formatSize(result.Size))
	} else {
		_, _ = fmt.Fprintf(w, "Downloaded: %s %s %s -> %s (%s)\n", result.Kind, result.GUID, result.Action, result.LocalPath, formatSize(result.Size))
	}
	return nil
}

// FormatUpload formats upload results as human-readable text.
func (f *HumanFormatter) FormatUpload(w io.Writer, results []UploadResult) error {
	for i := range results {
		r := &results[i]
		if r.Err != nil {
			_, _ = fmt.Fprintf(w, "Error: %s - %v\n", r.LocalPath, r.Err)
			continue
		}
		if !f.Quiet {
			_, _ = fmt.Fprintf(w, "Uploaded: %s (%s)\n", r.Filename, formatSize(r.Size))
		}
	}
	return nil
}

// FormatDelete formats delete results as human-readable text.
func (f *HumanFormatter) FormatDelete(w io.Writer, results []DeleteResult) error {
	for i := range results {
		r := &results[i]
		if r.Err != nil {
			_, _ = fmt.Fprintf(w, "Error: %s - %v\n", r.GUID, r.Err)
			continue
		}
		if !f.Quiet {
			_, _ = fmt.Fprintf(w, "Deleted: %s\n", r.GUID)
		}
	}
	return nil
}

// FormatSignature prints the token. Outside quiet mode it is labelled with
// its type and cache status.
func (f *HumanFormatter) FormatSignature(w io.Writer, result *SignatureResult) error {
	if f.Quiet {
		_, _ = fmt.Fprintln(w, result.Token)
		return nil
	}
	source := "fetched"
	if result.Cached {
		source = "cached"
	}
	_, _ = fmt.Fprintf(w, "%s signature (%s): %s\n", result.Type, source, result.Token)
	return nil
}

// FormatStats renders a list of report rows as a table, anything else as indented JSON.
func (f *HumanFormatter) FormatStats(w io.Writer, result *StatsResult) error {
	rows, ok := result.Report.([]any)
	if !ok || len(rows) == 0 {
		return writeJSON(w, result.Report)
	}

	var headers []string
	seen := map[string]bool{}
	for _, row := range rows {
		m, ok := row.(map[string]any)
		if !ok {
			return writeJSON(w, result.Report)
		}
		for k := range m {
			if !seen[k] {
				seen[k] = true
				headers = append(headers, k)
			}
		}
	}
	sort.Strings(headers)

	cells := make([][]string, 0, len(rows))
	for _, row := range rows {
		attrs := helix.Attributes(row.(map[string]any))
		line := make([]string, len(headers))
		for i, h := range headers {
			line[i] = attrs.String(h)
		}
		cells = append(cells, line)
	}

	if !f.Quiet {
		_, _ = fmt.Fprintf(w, "%s %s statistics\n", result.Media, result.Kind)
	}
	_, _ = fmt.Fprintln(w, renderTable(headers, cells, nil))
	return nil
}

// FormatCredentials formats credentials as human-readable text.
func (f *HumanFormatter) FormatCredentials(w io.Writer, creds helix.Credentials, showSecrets bool) error {
	rows := [][]string{
		{"site", creds.Site},
		{"reseller", creds.Reseller},
		{"company", creds.Company},
		{"library", creds.Library},
		{"license_key", maskSecret(creds.LicenseKey, showSecrets)},
		{"contributor", creds.Contributor},
		{"server", creds.Server},
	}
	_, _ = fmt.Fprintln(w, renderTable([]string{"SETTING", "VALUE"}, rows, nil))
	return nil
}

// FormatError formats an error as human-readable text.
func (f *HumanFormatter) FormatError(w io.Writer, err error) error {
	_, _ = fmt.Fprintf(w, "Error: %v\n", err)
	return nil
}

// JSONFormatter outputs JSON.
type JSONFormatter struct{}

// FormatList formats list results as JSON.
func (f *JSONFormatter) FormatList(w io.Writer, result *ListResult) error {
	return writeJSON(w, result)
}

// FormatResource formats a resource as JSON.
func (f *JSONFormatter) FormatResource(w io.Writer, result *ResourceResult) error {
	return writeJSON(w, result)
}

// FormatDownload formats download result as JSON.
func (f *JSONFormatter) FormatDownload(w io.Writer, result *DownloadResult) error {
	return writeJSON(w, result)
}

// FormatUpload formats upload results as JSON.
func (f *JSONFormatter) FormatUpload(w io.Writer, results []UploadResult) error {
	// Convert errors to strings for JSON output
	type jsonResult struct {
		LocalPath string `json:"local_path"`
		Filename  string `json:"filename"`
		Size      int64  `json:"size_bytes,omitempty"`
		Response  string `json:"response,omitempty"`
		Error     string `json:"error,omitempty"`
	}

	output := make([]jsonResult, len(results))
	for i := range results {
		r := &results[i]
		jr := jsonResult{
			LocalPath: r.LocalPath,
			Filename:  r.Filename,
		}
		if r.Err != nil {
			jr.Error = r.Err.Error()
		} else {
			jr.Size = r.Size
			jr.Response = r.Response
		}
		output[i] = jr
	}

	return writeJSON(w, output)
}

// FormatDelete formats delete results as JSON.
func (f *JSONFormatter) FormatDelete(w io.Writer, results []DeleteResult) error {
	// Convert errors to strings for JSON output
	type jsonResult struct {
		GUID    string `json:"guid"`
		Deleted bool   `json:"deleted"`
		Error   string `json:"error,omitempty"`
	}

	output := struct {
		Results []jsonResult `json:"results"`
	}{
		Results: make([]jsonResult, len(results)),
	}

	for i, r := range results {
		jr := jsonResult{
			GUID:    r.GUID,
			Deleted: r.Deleted,
		}
		if r.Err != nil {
			jr.Error = r.Err.Error()
		}
		output.Results[i] = jr
	}

	return writeJSON(w, output)
}

// FormatSignature formats a signature as JSON.
func (f *JSONFormatter) FormatSignature(w io.Writer, result *SignatureResult) error {
	return writeJSON(w, result)
}

// FormatStats formats a statistics report as JSON.
func (f *JSONFormatter) FormatStats(w io.Writer, result *StatsResult) error {
	return writeJSON(w, result)
}

// FormatCredentials formats credentials as JSON.
func (f *JSONFormatter) FormatCredentials(w io.Writer, creds helix.Credentials, showSecrets bool) error {
	creds.LicenseKey = maskSecret(creds.LicenseKey, showSecrets)
	return writeJSON(w, struct {
		Site        string `json:"site"`
		Reseller    string `json:"reseller,omitempty"`
		Company     string `json:"company,omitempty"`
		Library     string `json:"library,omitempty"`
		LicenseKey  string `json:"license_key"`
		Contributor string `json:"contributor,omitempty"`
		Server      string `json:"server,omitempty"`
	}(creds))
}

// FormatError formats an error as JSON.
func (f *JSONFormatter) FormatError(w io.Writer, err error) error {
	output := struct {
		Error string `json:"error"`
	}{
		Error: err.Error(),
	}
	return writeJSON(w, output)
}

// writeJSON writes a value as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// formatSize formats bytes as human-readable size.
func formatSize(bytes int64) string {
	if bytes < 0 {
		bytes = 0
	}
	return humanize.IBytes(uint64(bytes))
}

// maskSecret masks a secret string, showing only first 4 and last 4 characters.
// If showSecrets is true, returns the original value.
// If the secret is too short, returns all asterisks.
func maskSecret(secret string, showSecrets bool) string {
	if showSecrets {
		return secret
	}
	if secret == "" {
		return "(not set)"
	}
	if len(secret) <= 8 {
		return "********"
	}
	return secret[:4] + "..." + secret[len(secret)-4:]
}
