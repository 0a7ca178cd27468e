package config

import (
	"errors"
	"fmt"
)

// Validate follows the teacher's pkg/config/validator.go shape: aggregate
// every field check, return one combined error.
func (c *Config) Validate() error {
	var errs []error

	if c.App.Name == "" {
		errs = append(errs, errors.New("app.name is required"))
	}

	validModes := map[string]bool{"development": true, "production": true, "test": true}
	if !validModes[c.App.Mode] {
		errs = append(errs, fmt.Errorf("app.mode must be one of: development, production, test"))
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.App.LogLevel] {
		errs = append(errs, fmt.Errorf("app.log_level must be one of: debug, info, warn, error"))
	}

	if len(c.Controller.ClusterIds) == 0 {
		errs = append(errs, errors.New("controller.cluster_ids is required"))
	}
	if c.Controller.SampleInterval <= 0 {
		errs = append(errs, errors.New("controller.sample_interval must be positive"))
	}
	if c.Controller.RefreshInterval <= 0 {
		errs = append(errs, errors.New("controller.refresh_interval must be positive"))
	}

	if c.RuleStore.Type != "memory" && c.RuleStore.Type != "postgres" {
		errs = append(errs, errors.New("rule_store.type must be one of: memory, postgres"))
	}

	if c.RuleStore.Type == "postgres" {
		if c.Database.Host == "" {
			errs = append(errs, errors.New("database.host is required"))
		}
		if c.Database.Port <= 0 || c.Database.Port > 65535 {
			errs = append(errs, errors.New("database.port must be between 1 and 65535"))
		}
		if c.Database.Name == "" {
			errs = append(errs, errors.New("database.name is required"))
		}
		if c.Database.MaxConnections <= 0 {
			errs = append(errs, errors.New("database.max_connections must be positive"))
		}
	}

	if c.API.Port <= 0 || c.API.Port > 65535 {
		errs = append(errs, errors.New("api.port must be between 1 and 65535"))
	}

	if c.App.Mode == "production" {
		if c.API.JWTSecret == "" || c.API.JWTSecret == "change-me-in-production" {
			errs = append(errs, errors.New("api.jwt_secret must be a strong secret in production"))
		}
		if len(c.API.JWTSecret) < 32 {
			errs = append(errs, errors.New("api.jwt_secret must be at least 32 characters in production"))
		}
		if !c.API.CookieSecure {
			errs = append(errs, errors.New("api.cookie_secure must be true in production"))
		}
		if !c.API.CookieHTTPOnly {
			errs = append(errs, errors.New("api.cookie_http_only must be true in production"))
		}
		if c.RuleStore.Type == "postgres" && c.Database.SSLMode == "disable" {
			errs = append(errs, errors.New("database.ssl_mode should not be disabled in production"))
		}
	}

	if c.API.RateLimit <= 0 {
		errs = append(errs, errors.New("api.rate_limit must be positive"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed: %v", errs)
	}

	return nil
}
