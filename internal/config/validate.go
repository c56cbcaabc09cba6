package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateStore(); err != nil {
		return err
	}
	if err := c.validateCache(); err != nil {
		return err
	}
	if err := c.validateEditor(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateServer() error {
	if strings.TrimSpace(c.Server.Bind) == "" {
		return errors.New("server.bind must be set")
	}
	if c.Server.MaxBodyBytes <= 0 {
		return errors.New("server.max_body_bytes must be positive")
	}
	return nil
}

func (c *Config) validateStore() error {
	switch c.Store.Driver {
	case StoreDriverSQLite:
		if strings.TrimSpace(c.Store.Path) == "" {
			return errors.New("store.path must be set when store.driver is sqlite")
		}
	case StoreDriverPostgres:
		if strings.TrimSpace(c.Store.DSN) == "" {
			return fmt.Errorf("store.dsn must be set when store.driver is postgres (or set %s)", envStoreDSN)
		}
	default:
		return fmt.Errorf("store.driver: unsupported value %q (want %s or %s)", c.Store.Driver, StoreDriverSQLite, StoreDriverPostgres)
	}
	return nil
}

func (c *Config) validateCache() error {
	switch c.Cache.Backend {
	case CacheBackendFile, CacheBackendBolt:
	default:
		return fmt.Errorf("cache.backend: unsupported value %q (want %s or %s)", c.Cache.Backend, CacheBackendFile, CacheBackendBolt)
	}
	if strings.TrimSpace(c.Cache.Dir) == "" {
		return errors.New("cache.dir must be set")
	}
	if strings.ContainsAny(c.Cache.Slot, `/\`) {
		return fmt.Errorf("cache.slot %q must not contain path separators", c.Cache.Slot)
	}
	return nil
}

func (c *Config) validateEditor() error {
	parsed, err := url.Parse(c.Editor.ServerURL)
	if err != nil {
		return fmt.Errorf("editor.server_url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("editor.server_url %q must use http or https", c.Editor.ServerURL)
	}
	if parsed.Host == "" {
		return fmt.Errorf("editor.server_url %q must include a host", c.Editor.ServerURL)
	}
	if c.Editor.RequestTimeoutSeconds <= 0 {
		return errors.New("editor.request_timeout_seconds must be positive")
	}
	switch c.Editor.ReconcilePolicy {
	case PolicyReplace, PolicyPreserveEdits:
	default:
		return fmt.Errorf("editor.reconcile_policy: unsupported value %q (want %s or %s)", c.Editor.ReconcilePolicy, PolicyReplace, PolicyPreserveEdits)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
		return nil
	}
	return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
}
