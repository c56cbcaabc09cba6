package preflight

import (
	"context"
	"fmt"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"mangaeditor/internal/config"
	"mangaeditor/internal/localcache"
	"mangaeditor/internal/rowclient"
	"mangaeditor/internal/rowdb"
	"mangaeditor/internal/rows"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckStore opens the configured row store and pings it.
func CheckStore(ctx context.Context, cfg *config.Config) Result {
	const name = "Row store"

	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	store, err := rowdb.Open(checkCtx, cfg)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", cfg.Store.Driver, err)}
	}
	defer store.Close()
	if err := store.Ping(checkCtx); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: ping: %v)", store.Driver(), err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s %s", store.Driver(), store.Location())}
}

// CheckCacheSlot reports whether the cache slot holds a usable snapshot. An
// absent slot passes; a malformed one fails because the next session starts
// from the seed.
func CheckCacheSlot(cfg *config.Config) Result {
	name := "Cache slot"

	backend, err := localcache.Open(cfg)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("open %s cache: %v", cfg.Cache.Backend, err)}
	}
	defer backend.Close()

	slot, err := localcache.NewSlot(backend, cfg.Cache.Slot)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	data, found, err := slot.Load()
	switch {
	case err != nil:
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", slot.Name(), err)}
	case !found:
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (empty; seed will be used)", slot.Name())}
	}
	snapshot, err := rows.DecodeSnapshot(data)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", slot.Name(), err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%d rows)", slot.Name(), len(snapshot))}
}

// CheckRowService calls the row service health endpoint once.
func CheckRowService(ctx context.Context, cfg *config.Config) Result {
	const name = "Row service"

	client, err := rowclient.NewFromConfig(cfg)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	status, err := client.Health(checkCtx)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (unreachable: %v)", client.BaseURL(), err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%s)", client.BaseURL(), status)}
}
