package config

import (
	"testing"
	"time"
)

func TestLoad_RequiresDatabaseURL(t *testing.T) {
	if _, err := Load(); err == nil {
		t.Fatal("expected error without database url")
	}
}

func TestLoad_DefaultsAndEnvOverride(t *testing.T) {
	t.Setenv("TERMSYNC_DATABASE_URL", "postgres://localhost/termsync")
	t.Setenv("TERMSYNC_BROKER_GROUP_ID", "custom-group")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Database.URL != "postgres://localhost/termsync" {
		t.Errorf("env override lost: %q", cfg.Database.URL)
	}
	if cfg.Broker.GroupID != "custom-group" {
		t.Errorf("env override lost: %q", cfg.Broker.GroupID)
	}
	if cfg.Database.PoolMaxSize != 10 {
		t.Errorf("unexpected default pool size %d", cfg.Database.PoolMaxSize)
	}
	if cfg.Broker.Block != 5*time.Second {
		t.Errorf("unexpected default block %v", cfg.Broker.Block)
	}
	if cfg.Auth.CacheTime != 90*time.Second {
		t.Errorf("unexpected default cache time %v", cfg.Auth.CacheTime)
	}
	if cfg.Topics.TermsCreated != "terms.notification.created" {
		t.Errorf("unexpected default topic %q", cfg.Topics.TermsCreated)
	}
	if cfg.Topics.EmailSupport != "terms.legacy.processor.action.email.support" {
		t.Errorf("unexpected default support topic %q", cfg.Topics.EmailSupport)
	}
}
