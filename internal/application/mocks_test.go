package application_test

import (
	"context"

	"github.com/ericfisherdev/promowatch/internal/domain/model"
)

// mockCookieStore implements driven.CookieStore.
type mockCookieStore struct {
	bundle  *model.CredentialBundle
	loadErr error
}

func (m *mockCookieStore) Load(context.Context) (*model.CredentialBundle, error) {
	return m.bundle, m.loadErr
}

func (m *mockCookieStore) Replace(context.Context, *model.CredentialBundle) error { return nil }
func (m *mockCookieStore) Backup(context.Context) error                           { return nil }

// mockCatalog implements driven.CatalogClient.
type mockCatalog struct {
	items []model.FreeItem
	err   error
}

func (m *mockCatalog) FetchFreeItems(context.Context, string, string) ([]model.FreeItem, error) {
	return m.items, m.err
}

// mockEntitlements implements driven.EntitlementClient.
type mockEntitlements struct {
	namespaces map[string]struct{}
	err        error
	calls      int
}

func (m *mockEntitlements) FetchOwnedNamespaces(context.Context, string) (map[string]struct{}, error) {
	m.calls++
	return m.namespaces, m.err
}

// mockOwnedStore implements driven.OwnedStore.
type mockOwnedStore struct {
	ids     []string
	listErr error
	marked  []string
}

func (m *mockOwnedStore) ListOwned(context.Context) ([]string, error) { return m.ids, m.listErr }

func (m *mockOwnedStore) MarkOwned(_ context.Context, ids ...string) error {
	m.marked = append(m.marked, ids...)
	return nil
}

func (m *mockOwnedStore) Clear(context.Context) error {
	m.ids = nil
	return nil
}

// mockLedger implements driven.LedgerStore.
type mockLedger struct {
	notified  []string
	listErr   error
	recordErr error
	recorded  [][]string
}

func (m *mockLedger) ListNotified(context.Context) ([]string, error) {
	return m.notified, m.listErr
}

func (m *mockLedger) Record(_ context.Context, ids []string) error {
	if m.recordErr != nil {
		return m.recordErr
	}
	m.recorded = append(m.recorded, ids)
	return nil
}

// mockNotifier implements driven.Notifier.
type mockNotifier struct {
	err      error
	sent     int
	subject  string
	textBody string
	htmlBody string
}

func (m *mockNotifier) Send(_ context.Context, subject, textBody, htmlBody string) error {
	if m.err != nil {
		return m.err
	}
	m.sent++
	m.subject = subject
	m.textBody = textBody
	m.htmlBody = htmlBody
	return nil
}
