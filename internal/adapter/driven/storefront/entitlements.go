package storefront

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/ericfisherdev/promowatch/internal/domain/port/driven"
)

// entitlementPageSize is the page size for the start/count-paged
// entitlement query.
const entitlementPageSize = 1000

// entitlement is one record of the entitlements response. CatalogItemID
// is decoded but unused: catalog-item matching is known to be unreliable,
// so namespace membership is the only signal surfaced.
type entitlement struct {
	Namespace     string `json:"namespace"`
	CatalogItemID string `json:"catalogItemId"`
}

// FetchOwnedNamespaces pages through the account's entitlements and
// returns the set of owned namespaces.
func (c *Client) FetchOwnedNamespaces(ctx context.Context, accountID string) (map[string]struct{}, error) {
	owned := make(map[string]struct{})

	for start := 0; ; start += entitlementPageSize {
		page, err := c.fetchEntitlementPage(ctx, accountID, start, entitlementPageSize)
		if err != nil {
			return nil, err
		}

		for _, e := range page {
			if e.Namespace != "" {
				owned[e.Namespace] = struct{}{}
			}
		}

		if len(page) < entitlementPageSize {
			break
		}
	}

	return owned, nil
}

func (c *Client) fetchEntitlementPage(ctx context.Context, accountID string, start, count int) ([]entitlement, error) {
	reqURL := fmt.Sprintf("%s/%s/entitlements?%s", c.endpoints.entitlement, url.PathEscape(accountID), url.Values{
		"start": {strconv.Itoa(start)},
		"count": {strconv.Itoa(count)},
	}.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create entitlements request: %w", err)
	}
	c.decorate(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch entitlements (start %d): %w: %w", start, driven.ErrUpstream, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch entitlements (start %d): %w: HTTP %d", start, driven.ErrUpstream, resp.StatusCode)
	}

	var page []entitlement
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("decode entitlements page (start %d): %w: %w", start, driven.ErrMalformedResponse, err)
	}

	return page, nil
}
