package chunksvc

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Sweep удаляет каталоги загрузок под root, которые не менялись дольше ttl.
// Каталог считается каталогом загрузки, только если в нём лежат одни *.part файлы.
// Возвращает имена удалённых каталогов (upload id).
func Sweep(root string, ttl time.Duration, now time.Time) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var removed []string
	var errs error
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}

		dir := filepath.Join(root, e.Name())
		latest, ok := uploadDirModTime(dir)
		if !ok {
			continue
		}
		if now.Sub(latest) < ttl {
			continue
		}

		if err := os.RemoveAll(dir); err != nil {
			errs = errors.Join(errs, err)
			continue
		}
		removed = append(removed, e.Name())
	}

	return removed, errs
}

// uploadDirModTime возвращает самое свежее время изменения каталога и его слотов.
// ok=false, если каталог содержит что-то кроме слотов.
func uploadDirModTime(dir string) (time.Time, bool) {
	info, err := os.Stat(dir)
	if err != nil {
		return time.Time{}, false
	}
	latest := info.ModTime()

	entries, err := os.ReadDir(dir)
	if err != nil {
		return time.Time{}, false
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), slotSuffix) {
			return time.Time{}, false
		}
		fi, err := e.Info()
		if err != nil {
			continue
		}
		if fi.ModTime().After(latest) {
			latest = fi.ModTime()
		}
	}

	return latest, true
}

// StartJanitor стартует периодическую уборку брошенных загрузок.
func StartJanitor(root string, ttl, every time.Duration, logger *zap.Logger) func() {
	if every <= 0 || ttl <= 0 {
		return func() {}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	ticker := time.NewTicker(every)
	stop := make(chan struct{})
	var once sync.Once
	go func() {
		for {
			select {
			case now := <-ticker.C:
				removed, err := Sweep(root, ttl, now)
				if err != nil {
					logger.Warn("janitor sweep failed", zap.String("root", root), zap.Error(err))
				}
				if len(removed) > 0 {
					logger.Info("janitor removed stale uploads", zap.Strings("upload_ids", removed))
				}
			case <-stop:
				ticker.Stop()
				return
			}
		}
	}()

	return func() {
		once.Do(func() {
			close(stop)
		})
	}
}
