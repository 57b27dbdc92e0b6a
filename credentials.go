package helix

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
	"gopkg.in/yaml.v3"
)

// DefaultCredentialsFile is the credentials path used when none is given.
const DefaultCredentialsFile = "./helix.yml"

// Scopes lists the tenancy levels in URL order.
var Scopes = []string{"reseller", "company", "library"}

// Credentials holds the tenancy scope and license key for one deployment.
type Credentials struct {
	Site        string `yaml:"site"`
	Reseller    string `yaml:"reseller,omitempty"`
	Company     string `yaml:"company,omitempty"`
	Library     string `yaml:"library,omitempty"`
	LicenseKey  string `yaml:"license_key"`
	Contributor string `yaml:"contributor,omitempty"`
	// Server is the stillframe host prefix, e.g. "service-staging".
	Server string `yaml:"server,omitempty"`
}

// Validate checks the fields every request depends on.
func (c Credentials) Validate() error {
	if strings.TrimSpace(c.Site) == "" {
		return ErrSiteRequired
	}
	if strings.TrimSpace(c.LicenseKey) == "" {
		return ErrLicenseKeyRequired
	}
	return nil
}

// Scope returns the value of a tenancy level by name ("reseller", "company" or "library").
func (c Credentials) Scope(level string) string {
	switch level {
	case "reseller":
		return c.Reseller
	case "company":
		return c.Company
	case "library":
		return c.Library
	default:
		return ""
	}
}

// Save writes the credentials to path as YAML.
// Concurrent writers are serialized through a sibling lock file.
func (c Credentials) Save(path string) error {
	cleanPath := filepath.Clean(path)

	dir := filepath.Dir(cleanPath)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create credentials directory: %w", err)
	}

	lock := flock.New(cleanPath + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("lock credentials file: %w", err)
	}
	defer func() { _ = lock.Unlock() }()

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal credentials: %w", err)
	}

	if err := os.WriteFile(cleanPath, data, 0o600); err != nil {
		return fmt.Errorf("write credentials file: %w", err)
	}

	return nil
}

// LoadCredentials reads credentials from a YAML file.
func LoadCredentials(path string) (Credentials, error) {
	if path == "" {
		path = DefaultCredentialsFile
	}
	cleanPath := filepath.Clean(path)
	data, err := os.ReadFile(cleanPath) //#nosec G304 -- path is user-provided credentials file
	if err != nil {
		return Credentials{}, fmt.Errorf("read credentials file: %w", err)
	}

	var creds Credentials
	if err := yaml.Unmarshal(data, &creds); err != nil {
		return Credentials{}, fmt.Errorf("parse credentials file: %w", err)
	}

	return creds, nil
}

// MergeCredentials merges credentials, with later values taking precedence.
// Empty strings in later values do not override earlier ones.
func MergeCredentials(all ...Credentials) Credentials {
	var result Credentials
	for _, c := range all {
		mergeString(&result.Site, c.Site)
		mergeString(&result.Reseller, c.Reseller)
		mergeString(&result.Company, c.Company)
		mergeString(&result.Library, c.Library)
		mergeString(&result.LicenseKey, c.LicenseKey)
		mergeString(&result.Contributor, c.Contributor)
		mergeString(&result.Server, c.Server)
	}
	return result
}

func mergeString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
