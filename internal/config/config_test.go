package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "cluster:\n  bootstrap: 127.0.0.1:7000\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Cluster.DialTimeout != "5s" {
		t.Fatalf("DialTimeout default = %q, want 5s", cfg.Cluster.DialTimeout)
	}
	if cfg.Cluster.MaxRetry != 16 {
		t.Fatalf("MaxRetry default = %d, want 16", cfg.Cluster.MaxRetry)
	}
	if cfg.Log.Level != "info" {
		t.Fatalf("Log.Level default = %q, want info", cfg.Log.Level)
	}
}

func TestLoadRejectsMissingBootstrap(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "log:\n  level: info\n")

	if _, err := Load(path); err == nil {
		t.Fatalf("expected an error when cluster.bootstrap is missing")
	}
}

func TestLoadRejectsBadLogLevel(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "cluster:\n  bootstrap: 127.0.0.1:7000\nlog:\n  level: verbose\n")

	if _, err := Load(path); err == nil {
		t.Fatalf("expected an error for an unrecognized log level")
	}
}

func TestResolvedLogDirIsRelativeToConfig(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "cluster:\n  bootstrap: 127.0.0.1:7000\nlog:\n  dir: logs\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := filepath.Join(dir, "logs")
	if cfg.ResolvedLogDir() != want {
		t.Fatalf("ResolvedLogDir() = %q, want %q", cfg.ResolvedLogDir(), want)
	}
}

func TestDialTimeoutParses(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "cluster:\n  bootstrap: 127.0.0.1:7000\n  dialTimeout: 250ms\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	d, err := cfg.DialTimeout()
	if err != nil {
		t.Fatalf("DialTimeout: %v", err)
	}
	if d.String() != "250ms" {
		t.Fatalf("DialTimeout() = %v, want 250ms", d)
	}
}
