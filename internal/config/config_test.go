package config

import (
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Port != "8080" {
		t.Errorf("port = %s", cfg.Server.Port)
	}
	if cfg.Database.DSN != "data/sibat.db" {
		t.Errorf("dsn = %s", cfg.Database.DSN)
	}
	if cfg.Reporting.Timezone != "Asia/Jakarta" {
		t.Errorf("timezone = %s", cfg.Reporting.Timezone)
	}
	if cfg.SheetsEnabled() {
		t.Error("sheets should be disabled without credentials")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("DATABASE_DSN", "postgres://localhost/sibat")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Port != "9090" || cfg.Database.DSN != "postgres://localhost/sibat" || cfg.Log.Level != "debug" {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestValidateRejectsHalfConfiguredSheets(t *testing.T) {
	t.Setenv("GOOGLE_SHEETS_CREDENTIALS_PATH", "/tmp/creds.json")

	_, err := Load("")
	if err == nil {
		t.Fatal("half-configured sheets accepted")
	}
	if !strings.Contains(err.Error(), "GOOGLE_SHEET_DATABASE_ID") {
		t.Errorf("error = %v", err)
	}
}

func TestSheetsEnabled(t *testing.T) {
	t.Setenv("GOOGLE_SHEETS_CREDENTIALS_PATH", "/tmp/creds.json")
	t.Setenv("GOOGLE_SHEET_DATABASE_ID", "sheet-id")

	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.SheetsEnabled() {
		t.Error("sheets should be enabled with both settings")
	}
}
