package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTestConfig(t *testing.T) string {
	t.Helper()
	base := t.TempDir()
	root := filepath.Join(base, "library")
	if err := os.MkdirAll(root, 0o755); err != nil {
		t.Fatalf("mkdir root: %v", err)
	}

	content := fmt.Sprintf(`[paths]
state_dir = %q
log_dir = %q

[scan]
roots = [%q]

[ai]
enabled = false

[logging]
format = "console"
level = "error"
`, filepath.Join(base, "state"), filepath.Join(base, "logs"), root)

	configPath := filepath.Join(base, "config.toml")
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return configPath
}

func runCommand(t *testing.T, configPath string, args ...string) string {
	t.Helper()
	cmd := newRootCommand()
	out := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs(append([]string{"--config", configPath}, args...))
	if err := cmd.Execute(); err != nil {
		t.Fatalf("command %v failed: %v\noutput: %s", args, err, out.String())
	}
	return out.String()
}

func TestScanMatchStatusFlow(t *testing.T) {
	configPath := writeTestConfig(t)

	// Seed one release file under the configured root.
	base := filepath.Dir(configPath)
	filePath := filepath.Join(base, "library", "Total Commander", "Total Commander 10.51.zip")
	if err := os.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filePath, []byte("payload"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	scanOut := runCommand(t, configPath, "scan")
	if !strings.Contains(scanOut, "New files recorded:  1") {
		t.Fatalf("scan output:\n%s", scanOut)
	}

	listOut := runCommand(t, configPath, "violations", "list")
	if !strings.Contains(listOut, "Total Commander 10.51.zip") {
		t.Fatalf("violations output:\n%s", listOut)
	}

	matchOut := runCommand(t, configPath, "match", "--skip-clarity")
	if !strings.Contains(matchOut, "Matched: 1") {
		t.Fatalf("match output:\n%s", matchOut)
	}

	statusOut := runCommand(t, configPath, "status")
	if !strings.Contains(statusOut, "Products:          1") {
		t.Fatalf("status output:\n%s", statusOut)
	}
	if !strings.Contains(statusOut, "Unmatched files:   0") {
		t.Fatalf("status output:\n%s", statusOut)
	}
}

func TestMatchWithNothingPending(t *testing.T) {
	configPath := writeTestConfig(t)
	out := runCommand(t, configPath, "match")
	if !strings.Contains(out, "Nothing to match") {
		t.Fatalf("match output:\n%s", out)
	}
}

func TestConfigInitWritesSample(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")

	cmd := newRootCommand()
	out := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs([]string{"config", "init", "--path", target})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("config init: %v", err)
	}

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[matcher]") {
		t.Fatalf("sample config missing sections:\n%s", data)
	}

	// A second init without --overwrite must refuse.
	cmd = newRootCommand()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{"config", "init", "--path", target})
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected error when config already exists")
	}
}

func TestConfigShowPrintsResolvedConfig(t *testing.T) {
	configPath := writeTestConfig(t)
	out := runCommand(t, configPath, "config", "show")
	if !strings.Contains(out, "[scan]") || !strings.Contains(out, "library") {
		t.Fatalf("config show output:\n%s", out)
	}
}
