package e2e_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/helixmedia/helix/helixtest"
)

const licenseKey = "e2e-license"

var (
	binaryPath     string
	binaryBuildErr error
	binaryOnce     sync.Once
	sharedTempDir  string
)

// TestMain sets up and tears down shared test resources.
func TestMain(m *testing.M) {
	// Create shared temp directory for the binary
	var err error
	sharedTempDir, err = os.MkdirTemp("", "helix-e2e-*")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create temp dir: %v\n", err)
		os.Exit(1)
	}

	// Run tests
	code := m.Run()

	// Cleanup shared temp directory
	_ = os.RemoveAll(sharedTempDir)

	os.Exit(code)
}

// CacheConfig selects the signature cache the CLI is started with.
type CacheConfig struct {
	Type string // memory, sqlite, postgres
	DSN  string
}

// buildBinary compiles the helix-cli binary once per test run.
// Returns the path to the compiled binary.
func buildBinary(t *testing.T) string {
	t.Helper()

	binaryOnce.Do(func() {
		binaryPath = filepath.Join(sharedTempDir, "helix-cli")

		cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/helix-cli")
		cmd.Dir = getProjectRoot(t)
		output, err := cmd.CombinedOutput()
		if err != nil {
			binaryBuildErr = fmt.Errorf("build binary: %w\nOutput: %s", err, output)
			return
		}
	})

	if binaryBuildErr != nil {
		t.Fatalf("failed to build binary: %v", binaryBuildErr)
	}

	return binaryPath
}

// getProjectRoot returns the root directory of the module.
func getProjectRoot(t *testing.T) string {
	t.Helper()

	// Find the go.mod file to determine project root
	dir, err := os.Getwd()
	require.NoError(t, err, "get working directory")

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("could not find project root (go.mod)")
		}
		dir = parent
	}
}

// cli runs helix-cli against one fake service with one signature cache.
type cli struct {
	t      *testing.T
	binary string
	srv    *helixtest.Server
	cache  CacheConfig
	config string
}

func newCLI(t *testing.T, cache CacheConfig) *cli {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping end-to-end test in short mode")
	}

	return &cli{
		t:      t,
		binary: buildBinary(t),
		srv:    helixtest.NewServer(t, licenseKey),
		cache:  cache,
		config: filepath.Join(t.TempDir(), "helix.yml"),
	}
}

// run executes one invocation and returns stdout, stderr and the exit code.
func (c *cli) run(args ...string) (string, string, int) {
	c.t.Helper()

	full := append([]string{
		"--config", c.config,
		"--site", c.srv.URL(),
		"--license-key", licenseKey,
		"--company", "acme",
		"--cache-type", c.cache.Type,
		"--log-level", "error",
	}, args...)
	if c.cache.DSN != "" {
		full = append(full, "--cache-dsn", c.cache.DSN)
	}

	cmd := exec.Command(c.binary, full...)
	cmd.Env = environWithout("HELIX_")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	code := 0
	if err != nil {
		var exitErr *exec.ExitError
		require.True(c.t, errors.As(err, &exitErr), "run helix-cli: %v", err)
		code = exitErr.ExitCode()
	}

	return stdout.String(), stderr.String(), code
}

// mustRun executes one invocation that is expected to succeed.
func (c *cli) mustRun(args ...string) string {
	c.t.Helper()

	stdout, stderr, code := c.run(args...)
	require.Zero(c.t, code, "helix-cli %s: %s", strings.Join(args, " "), stderr)
	return stdout
}

// mustRunJSON executes one invocation with --json and decodes its output into v.
func (c *cli) mustRunJSON(v any, args ...string) {
	c.t.Helper()

	stdout := c.mustRun(append(args, "--json")...)
	require.NoError(c.t, json.Unmarshal([]byte(stdout), v), "decode output: %s", stdout)
}

func environWithout(prefix string) []string {
	env := os.Environ()
	out := env[:0:0]
	for _, kv := range env {
		if !strings.HasPrefix(kv, prefix) {
			out = append(out, kv)
		}
	}
	return out
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o600)
}
