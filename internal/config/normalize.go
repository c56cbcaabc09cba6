package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeStore(); err != nil {
		return err
	}
	if err := c.normalizeCache(); err != nil {
		return err
	}
	c.normalizeServer()
	c.normalizeEditor()
	return c.normalizeLogging()
}

func (c *Config) normalizePaths() error {
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	var err error
	if c.Paths.DataDir, err = expandPath(strings.TrimSpace(c.Paths.DataDir)); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeStore() error {
	c.Store.Driver = strings.ToLower(strings.TrimSpace(c.Store.Driver))
	if c.Store.Driver == "" {
		c.Store.Driver = StoreDriverSQLite
	}
	if value, ok := os.LookupEnv(envStoreDSN); ok && strings.TrimSpace(value) != "" {
		c.Store.DSN = value
	}
	c.Store.DSN = strings.TrimSpace(c.Store.DSN)

	if c.Store.Driver != StoreDriverSQLite {
		return nil
	}
	if strings.TrimSpace(c.Store.Path) == "" {
		c.Store.Path = filepath.Join(c.Paths.DataDir, defaultStoreFile)
	}
	var err error
	if c.Store.Path, err = expandPath(strings.TrimSpace(c.Store.Path)); err != nil {
		return fmt.Errorf("store.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeCache() error {
	c.Cache.Backend = strings.ToLower(strings.TrimSpace(c.Cache.Backend))
	if c.Cache.Backend == "" {
		c.Cache.Backend = CacheBackendFile
	}
	c.Cache.Slot = strings.TrimSpace(c.Cache.Slot)
	if c.Cache.Slot == "" {
		c.Cache.Slot = DefaultCacheSlot
	}
	if strings.TrimSpace(c.Cache.Dir) == "" {
		c.Cache.Dir = filepath.Join(c.Paths.DataDir, defaultCacheSubdir)
	}
	var err error
	if c.Cache.Dir, err = expandPath(strings.TrimSpace(c.Cache.Dir)); err != nil {
		return fmt.Errorf("cache.dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeServer() {
	c.Server.Bind = strings.TrimSpace(c.Server.Bind)
	if c.Server.Bind == "" {
		c.Server.Bind = defaultServerBind
	}
	if c.Server.MaxBodyBytes <= 0 {
		c.Server.MaxBodyBytes = defaultMaxBodyBytes
	}
}

func (c *Config) normalizeEditor() {
	if value, ok := os.LookupEnv(envServerURL); ok && strings.TrimSpace(value) != "" {
		c.Editor.ServerURL = value
	}
	c.Editor.ServerURL = strings.TrimRight(strings.TrimSpace(c.Editor.ServerURL), "/")
	if c.Editor.ServerURL == "" {
		c.Editor.ServerURL = defaultServerURL
	}
	if c.Editor.RequestTimeoutSeconds <= 0 {
		c.Editor.RequestTimeoutSeconds = defaultRequestTimeout
	}
	c.Editor.ReconcilePolicy = strings.ToLower(strings.TrimSpace(c.Editor.ReconcilePolicy))
	if c.Editor.ReconcilePolicy == "" {
		c.Editor.ReconcilePolicy = PolicyReplace
	}
}

func (c *Config) normalizeLogging() error {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	var err error
	if c.Logging.File, err = expandPath(strings.TrimSpace(c.Logging.File)); err != nil {
		return fmt.Errorf("logging.file: %w", err)
	}
	return nil
}
