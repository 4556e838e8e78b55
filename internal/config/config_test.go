package config

import (
	"strings"
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("GOOGLE_SHEETS_CREDENTIALS_PATH", "/tmp/creds.json")
	t.Setenv("GOOGLE_SHEET_DATABASE_ID", "sheet-123")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load("testdata-missing.env")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("port = %q", cfg.Server.Port)
	}
	if got := cfg.Ledger.ReadRange(); got != "DULIEU!A3:U" {
		t.Errorf("ledger read range = %q", got)
	}
	if got := cfg.Ledger.AppendRange(); got != "DULIEU!A:R" {
		t.Errorf("ledger append range = %q", got)
	}
	if cfg.Ledger.WriteMode != WriteModeScript {
		t.Errorf("write mode = %q", cfg.Ledger.WriteMode)
	}
	if cfg.Ledger.PendingTTL != 2*time.Minute {
		t.Errorf("pending ttl = %s", cfg.Ledger.PendingTTL)
	}
	if cfg.Script.Timeout != 30*time.Second {
		t.Errorf("script timeout = %s", cfg.Script.Timeout)
	}
	if len(cfg.Server.AllowedOrigins) != 1 || cfg.Server.AllowedOrigins[0] != "*" {
		t.Errorf("origins = %v", cfg.Server.AllowedOrigins)
	}
	if cfg.WhatsApp.Enabled() {
		t.Error("whatsapp should be disabled without a token")
	}
}

func TestLoadOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("LEDGER_WRITE_MODE", "SHEETS")
	t.Setenv("LEDGER_PENDING_TTL", "45s")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test ,")

	cfg, err := Load("testdata-missing.env")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Ledger.WriteMode != WriteModeSheets {
		t.Errorf("write mode = %q", cfg.Ledger.WriteMode)
	}
	if cfg.Ledger.PendingTTL != 45*time.Second {
		t.Errorf("pending ttl = %s", cfg.Ledger.PendingTTL)
	}
	if strings.Join(cfg.Server.AllowedOrigins, "|") != "http://a.test|http://b.test" {
		t.Errorf("origins = %v", cfg.Server.AllowedOrigins)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"missing sheet id", map[string]string{"GOOGLE_SHEET_DATABASE_ID": ""}, "GOOGLE_SHEET_DATABASE_ID"},
		{"bad write mode", map[string]string{"LEDGER_WRITE_MODE": "ftp"}, "LEDGER_WRITE_MODE"},
		{"bad duration", map[string]string{"SCRIPT_TIMEOUT": "soon"}, "SCRIPT_TIMEOUT"},
		{"token without phone", map[string]string{"WHATSAPP_TOKEN": "tok"}, "WHATSAPP_PHONE_NUMBER_ID"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load("testdata-missing.env")
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("Load error = %v, want mention of %s", err, tt.want)
			}
		})
	}
}
