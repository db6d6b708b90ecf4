// Package config loads processor configuration from an optional TOML file and
// TERMSYNC_-prefixed environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all processor configuration.
type Config struct {
	App      AppConfig
	Log      LogConfig
	Broker   BrokerConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Topics   TopicsConfig
	Email    EmailConfig
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Name string
	Env  string
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// BrokerConfig holds the broker connection and consumer group settings.
type BrokerConfig struct {
	Addr     string
	Password string
	DB       int
	GroupID  string
	Block    time.Duration
}

// DatabaseConfig holds the relational store connection settings.
type DatabaseConfig struct {
	URL         string
	PoolMaxSize int
}

// AuthConfig holds the machine-token settings for outbound publishes.
type AuthConfig struct {
	ClientID     string
	ClientSecret string
	Audience     string
	Issuer       string
	CacheTime    time.Duration
}

// TopicsConfig holds the inbound topic names plus the support channel.
type TopicsConfig struct {
	TermsCreated            string
	TermsUpdated            string
	TermsDeleted            string
	ResourceTermsCreated    string
	ResourceTermsUpdated    string
	ResourceTermsDeleted    string
	UserAgreed              string
	DocusignEnvelopeCreated string
	DocusignEnvelopeUpdated string
	EmailSupport            string
}

// EmailConfig holds the failure-report addressing and per-family subjects.
type EmailConfig struct {
	Recipient               string
	Sender                  string
	TermsSubject            string
	ResourceTermsSubject    string
	UserTermsSubject        string
	DocusignEnvelopeSubject string
}

// Load reads configuration with the priority: TERMSYNC_ environment variables,
// then config.toml, then built-in defaults.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("config: read file: %w", err)
		}
	}

	v.SetEnvPrefix("TERMSYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		Broker: BrokerConfig{
			Addr:     v.GetString("broker.addr"),
			Password: v.GetString("broker.password"),
			DB:       v.GetInt("broker.db"),
			GroupID:  v.GetString("broker.group_id"),
			Block:    v.GetDuration("broker.block"),
		},
		Database: DatabaseConfig{
			URL:         v.GetString("database.url"),
			PoolMaxSize: v.GetInt("database.pool_max_size"),
		},
		Auth: AuthConfig{
			ClientID:     v.GetString("auth.client_id"),
			ClientSecret: v.GetString("auth.client_secret"),
			Audience:     v.GetString("auth.audience"),
			Issuer:       v.GetString("auth.issuer"),
			CacheTime:    v.GetDuration("auth.cache_time"),
		},
		Topics: TopicsConfig{
			TermsCreated:            v.GetString("topics.terms_created"),
			TermsUpdated:            v.GetString("topics.terms_updated"),
			TermsDeleted:            v.GetString("topics.terms_deleted"),
			ResourceTermsCreated:    v.GetString("topics.resource_terms_created"),
			ResourceTermsUpdated:    v.GetString("topics.resource_terms_updated"),
			ResourceTermsDeleted:    v.GetString("topics.resource_terms_deleted"),
			UserAgreed:              v.GetString("topics.user_agreed"),
			DocusignEnvelopeCreated: v.GetString("topics.docusign_envelope_created"),
			DocusignEnvelopeUpdated: v.GetString("topics.docusign_envelope_updated"),
			EmailSupport:            v.GetString("topics.email_support"),
		},
		Email: EmailConfig{
			Recipient:               v.GetString("email.recipient"),
			Sender:                  v.GetString("email.sender"),
			TermsSubject:            v.GetString("email.terms_subject"),
			ResourceTermsSubject:    v.GetString("email.resource_terms_subject"),
			UserTermsSubject:        v.GetString("email.user_terms_subject"),
			DocusignEnvelopeSubject: v.GetString("email.docusign_envelope_subject"),
		},
	}

	if cfg.Database.URL == "" {
		return nil, fmt.Errorf("config: database.url is required")
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "termsync")
	v.SetDefault("app.env", "development")

	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "stdout")

	v.SetDefault("broker.addr", "localhost:6379")
	v.SetDefault("broker.password", "")
	v.SetDefault("broker.db", 0)
	v.SetDefault("broker.group_id", "legacy-terms-processor")
	v.SetDefault("broker.block", 5*time.Second)

	v.SetDefault("database.url", "")
	v.SetDefault("database.pool_max_size", 10)

	v.SetDefault("auth.client_id", "")
	v.SetDefault("auth.client_secret", "")
	v.SetDefault("auth.audience", "")
	v.SetDefault("auth.issuer", "termsync")
	v.SetDefault("auth.cache_time", 90*time.Second)

	v.SetDefault("topics.terms_created", "terms.notification.created")
	v.SetDefault("topics.terms_updated", "terms.notification.updated")
	v.SetDefault("topics.terms_deleted", "terms.notification.deleted")
	v.SetDefault("topics.resource_terms_created", "terms.notification.resource.created")
	v.SetDefault("topics.resource_terms_updated", "terms.notification.resource.updated")
	v.SetDefault("topics.resource_terms_deleted", "terms.notification.resource.deleted")
	v.SetDefault("topics.user_agreed", "terms.notification.user.agreed")
	v.SetDefault("topics.docusign_envelope_created", "terms.notification.docusign.envelope.created")
	v.SetDefault("topics.docusign_envelope_updated", "terms.notification.docusign.envelope.updated")
	v.SetDefault("topics.email_support", "terms.legacy.processor.action.email.support")

	v.SetDefault("email.recipient", "support@example.com")
	v.SetDefault("email.sender", "noreply@example.com")
	v.SetDefault("email.terms_subject", "Terms of use processing error")
	v.SetDefault("email.resource_terms_subject", "Resource terms processing error")
	v.SetDefault("email.user_terms_subject", "User terms of use processing error")
	v.SetDefault("email.docusign_envelope_subject", "Docusign envelope processing error")
}
