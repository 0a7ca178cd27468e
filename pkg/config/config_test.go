package config_test

import (
	"strings"
	"testing"
	"time"

	"github.com/fleetscale/autoscaler-core/pkg/config"
)

func validConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{
			Name:     "test-app",
			Mode:     "development",
			LogLevel: "info",
		},
		Controller: config.ControllerConfig{
			ClusterIds:      []string{"cluster-1"},
			SampleInterval:  10 * time.Second,
			RefreshInterval: 60 * time.Second,
		},
		RuleStore: config.RuleStoreConfig{Type: "memory"},
		API:       config.APIConfig{Port: 8080, RateLimit: 100},
	}
}

func TestConfig_Validate_Valid(t *testing.T) {
	cfg := validConfig()

	if err := cfg.Validate(); err != nil {
		t.Errorf("expected valid config, got error: %v", err)
	}
}

func TestConfig_Validate_MissingClusterIds(t *testing.T) {
	cfg := validConfig()
	cfg.Controller.ClusterIds = nil

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for missing cluster_ids")
	}
	if !strings.Contains(err.Error(), "cluster_ids is required") {
		t.Errorf("unexpected error message: %v", err)
	}
}

func TestConfig_Validate_PostgresRequiresDatabaseFields(t *testing.T) {
	cfg := validConfig()
	cfg.RuleStore.Type = "postgres"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for missing database config")
	}
	if !strings.Contains(err.Error(), "database.host is required") {
		t.Errorf("unexpected error message: %v", err)
	}
}

func TestConfig_Validate_ProductionRequiresStrongSecret(t *testing.T) {
	cfg := validConfig()
	cfg.App.Mode = "production"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for weak jwt secret in production")
	}
	if !strings.Contains(err.Error(), "jwt_secret") {
		t.Errorf("unexpected error message: %v", err)
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	dbCfg := config.DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		Name:     "testdb",
		User:     "admin",
		Password: "secret",
		SSLMode:  "disable",
	}

	dsn := dbCfg.DSN()

	expected := "host=localhost port=5432 user=admin password=secret dbname=testdb sslmode=disable"
	if dsn != expected {
		t.Errorf("expected DSN %q, got %q", expected, dsn)
	}
}
