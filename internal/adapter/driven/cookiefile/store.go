// Package cookiefile persists the session credential bundle as a JSON
// file in the interchange format produced by the browser extraction
// tooling.
package cookiefile

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/natefinch/atomic"

	"github.com/ericfisherdev/promowatch/internal/domain/model"
	"github.com/ericfisherdev/promowatch/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.CookieStore = (*Store)(nil)

// backupRetention is how many timestamped snapshots Backup keeps. The
// retention is strictly count-based; age is not considered.
const backupRetention = 10

// Store is the file-backed implementation of the CookieStore port.
type Store struct {
	path      string
	backupDir string
	now       func() time.Time // Injectable for snapshot-name tests.
}

// NewStore creates a Store for the given bundle path. Backups live in a
// cookies_backup directory next to the bundle.
func NewStore(path string) *Store {
	return &Store{
		path:      path,
		backupDir: filepath.Join(filepath.Dir(path), "cookies_backup"),
		now:       time.Now,
	}
}

// Load reads and validates the persisted bundle. Returns
// ErrCookiesNotFound when the file does not exist.
func (s *Store) Load(_ context.Context) (*model.CredentialBundle, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", driven.ErrCookiesNotFound, s.path)
	}
	if err != nil {
		return nil, fmt.Errorf("read cookie bundle: %w", err)
	}

	var cookies []model.Cookie
	if err := json.Unmarshal(data, &cookies); err != nil {
		return nil, fmt.Errorf("parse cookie bundle %s: %w", s.path, err)
	}

	// The bundle is keyed by (domain, name); a duplicate means the file
	// was assembled by hand or merged badly, and which value wins would
	// be arbitrary.
	seen := make(map[[2]string]struct{}, len(cookies))
	for _, c := range cookies {
		key := [2]string{c.Domain, c.Name}
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("cookie bundle %s: duplicate cookie %q for domain %q", s.path, c.Name, c.Domain)
		}
		seen[key] = struct{}{}
	}

	return &model.CredentialBundle{Cookies: cookies}, nil
}

// Replace atomically overwrites the persisted bundle. Concurrent readers
// see either the previous bundle or the new one, never a torn write.
func (s *Store) Replace(_ context.Context, bundle *model.CredentialBundle) error {
	data, err := json.MarshalIndent(bundle.Cookies, "", "  ")
	if err != nil {
		return fmt.Errorf("encode cookie bundle: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create cookie directory: %w", err)
	}

	if err := atomic.WriteFile(s.path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("write cookie bundle: %w", err)
	}

	return nil
}

// Backup snapshots the current bundle file into the backup directory and
// prunes snapshots beyond the retention count, oldest first. A no-op when
// no bundle exists yet.
func (s *Store) Backup(_ context.Context) error {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read cookie bundle for backup: %w", err)
	}

	if err := os.MkdirAll(s.backupDir, 0o755); err != nil {
		return fmt.Errorf("create backup directory: %w", err)
	}

	name := fmt.Sprintf("cookies_%s.json", s.now().Format("20060102_150405"))
	if err := atomic.WriteFile(filepath.Join(s.backupDir, name), bytes.NewReader(data)); err != nil {
		return fmt.Errorf("write cookie backup: %w", err)
	}

	return s.pruneBackups()
}

// pruneBackups deletes the oldest snapshots until at most
// backupRetention remain. Snapshot names embed the timestamp, so
// lexicographic order is chronological order.
func (s *Store) pruneBackups() error {
	matches, err := filepath.Glob(filepath.Join(s.backupDir, "cookies_*.json"))
	if err != nil {
		return fmt.Errorf("list cookie backups: %w", err)
	}
	if len(matches) <= backupRetention {
		return nil
	}

	sort.Strings(matches)
	for _, old := range matches[:len(matches)-backupRetention] {
		if err := os.Remove(old); err != nil {
			return fmt.Errorf("prune cookie backup %s: %w", old, err)
		}
	}

	return nil
}
