package config

const (
	defaultConfigPath  = "~/.config/mangaeditor/config.toml"
	projectConfigName  = "mangaeditor.toml"
	defaultDataDir     = "~/.local/share/mangaeditor"
	defaultStoreFile   = "database.db"
	defaultCacheSubdir = "cache"

	defaultServerBind     = ":5000"
	defaultMaxBodyBytes   = 1 << 20
	defaultServerURL      = "http://localhost:5000"
	defaultRequestTimeout = 10
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"

	// DefaultCacheSlot is the slot name the editor has always cached its table under.
	DefaultCacheSlot = "manga-editor-table-data"
)

const (
	StoreDriverSQLite   = "sqlite"
	StoreDriverPostgres = "postgres"

	CacheBackendFile = "file"
	CacheBackendBolt = "bolt"

	// PolicyReplace applies a non-empty startup load even if the operator edited meanwhile.
	PolicyReplace = "replace"
	// PolicyPreserveEdits skips the startup load when an edit landed after the fetch began.
	PolicyPreserveEdits = "preserve-edits"
)

const (
	envServerURL = "MANGAEDITOR_SERVER_URL"
	envStoreDSN  = "MANGAEDITOR_STORE_DSN"
)

// Default returns a Config populated with repository defaults. Store.Path and
// Cache.Dir stay empty and are derived from Paths.DataDir during normalization.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
		},
		Server: Server{
			Bind:         defaultServerBind,
			MaxBodyBytes: defaultMaxBodyBytes,
		},
		Store: Store{
			Driver: StoreDriverSQLite,
		},
		Cache: Cache{
			Backend: CacheBackendFile,
			Slot:    DefaultCacheSlot,
		},
		Editor: Editor{
			ServerURL:             defaultServerURL,
			RequestTimeoutSeconds: defaultRequestTimeout,
			ReconcilePolicy:       PolicyReplace,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
