package config

import (
	"strings"
	"testing"
)

type envTestConfig struct {
	Port int `env:"ROWEDEX_TEST_PORT" envDefault:"123"`
}

func TestParseEnvDefaults(t *testing.T) {
	var cfg envTestConfig

	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Port != 123 {
		t.Fatalf("expected default port 123, got %d", cfg.Port)
	}
}

func TestParseEnvError(t *testing.T) {
	var cfg envTestConfig
	t.Setenv("ROWEDEX_TEST_PORT", "not-an-int")

	err := ParseEnv(&cfg)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env prefix, got %v", err)
	}
}

func TestLoadReadsOverride(t *testing.T) {
	t.Setenv("ROWEDEX_TEST_PORT", "9000")

	cfg, err := Load[envTestConfig]()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != 9000 {
		t.Fatalf("port = %d, want 9000", cfg.Port)
	}
}

func TestRequiredNamesVariable(t *testing.T) {
	err := Required("DISCORD_TOKEN", "  ")
	if err == nil {
		t.Fatal("expected blank value to be rejected")
	}
	if !strings.Contains(err.Error(), "ROWEDEX_DISCORD_TOKEN") {
		t.Fatalf("expected variable name in error, got %v", err)
	}
	if err := Required("DISCORD_TOKEN", "token"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
