package cookiefile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/promowatch/internal/domain/model"
	"github.com/ericfisherdev/promowatch/internal/domain/port/driven"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "cookies.json"))
}

func TestLoad_MissingFile(t *testing.T) {
	store := testStore(t)

	_, err := store.Load(context.Background())
	assert.ErrorIs(t, err, driven.ErrCookiesNotFound)
}

func TestReplaceLoad_Roundtrip(t *testing.T) {
	store := testStore(t)
	bundle := &model.CredentialBundle{Cookies: []model.Cookie{
		{Name: "EPIC_SSO", Value: "v1", Domain: ".epicgames.com", Path: "/", Expires: -1, HTTPOnly: true, Secure: true},
		{Name: "EPIC_BEARER_TOKEN", Value: "v2", Domain: ".epicgames.com", Expires: 1893456000},
	}}

	require.NoError(t, store.Replace(context.Background(), bundle))

	loaded, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, bundle.Cookies, loaded.Cookies)
}

func TestReplace_CreatesParentDirectory(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "nested", "dir", "cookies.json"))

	err := store.Replace(context.Background(), &model.CredentialBundle{})
	require.NoError(t, err)

	_, err = os.Stat(store.path)
	assert.NoError(t, err)
}

func TestLoad_DuplicateCookieRejected(t *testing.T) {
	store := testStore(t)
	err := os.WriteFile(store.path, []byte(`[
		{"name": "EPIC_SSO", "domain": ".epicgames.com", "value": "a"},
		{"name": "EPIC_SSO", "domain": ".epicgames.com", "value": "b"}
	]`), 0o644)
	require.NoError(t, err)

	_, err = store.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate cookie")
}

func TestLoad_SameNameDifferentDomainAllowed(t *testing.T) {
	store := testStore(t)
	err := os.WriteFile(store.path, []byte(`[
		{"name": "EPIC_SSO", "domain": ".epicgames.com", "value": "a"},
		{"name": "EPIC_SSO", "domain": "store.epicgames.com", "value": "b"}
	]`), 0o644)
	require.NoError(t, err)

	bundle, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, bundle.Cookies, 2)
}

func TestLoad_MalformedJSON(t *testing.T) {
	store := testStore(t)
	require.NoError(t, os.WriteFile(store.path, []byte("{not json"), 0o644))

	_, err := store.Load(context.Background())
	assert.Error(t, err)
	assert.NotErrorIs(t, err, driven.ErrCookiesNotFound)
}

func TestBackup_NoBundleIsNoop(t *testing.T) {
	store := testStore(t)

	require.NoError(t, store.Backup(context.Background()))

	_, err := os.Stat(store.backupDir)
	assert.True(t, os.IsNotExist(err))
}

func TestBackup_SnapshotNameCarriesTimestamp(t *testing.T) {
	store := testStore(t)
	store.now = func() time.Time {
		return time.Date(2026, 8, 29, 14, 30, 5, 0, time.UTC)
	}
	require.NoError(t, store.Replace(context.Background(), &model.CredentialBundle{
		Cookies: []model.Cookie{{Name: "EPIC_SSO"}},
	}))

	require.NoError(t, store.Backup(context.Background()))

	_, err := os.Stat(filepath.Join(store.backupDir, "cookies_20260829_143005.json"))
	assert.NoError(t, err)
}

func TestBackup_PrunesOldestBeyondRetention(t *testing.T) {
	store := testStore(t)
	require.NoError(t, store.Replace(context.Background(), &model.CredentialBundle{
		Cookies: []model.Cookie{{Name: "EPIC_SSO"}},
	}))

	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < backupRetention+3; i++ {
		clock := base.Add(time.Duration(i) * time.Minute)
		store.now = func() time.Time { return clock }
		require.NoError(t, store.Backup(context.Background()))
	}

	matches, err := filepath.Glob(filepath.Join(store.backupDir, "cookies_*.json"))
	require.NoError(t, err)
	require.Len(t, matches, backupRetention)

	// The oldest snapshots are the pruned ones.
	for i := 0; i < 3; i++ {
		old := fmt.Sprintf("cookies_%s.json", base.Add(time.Duration(i)*time.Minute).Format("20060102_150405"))
		assert.NotContains(t, matches, filepath.Join(store.backupDir, old))
	}
}
