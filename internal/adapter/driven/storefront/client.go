// Package storefront implements the catalog, entitlement, and claim ports
// against the Epic Games Store backend APIs.
package storefront

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gregjones/httpcache"

	"github.com/ericfisherdev/promowatch/internal/domain/model"
	"github.com/ericfisherdev/promowatch/internal/domain/port/driven"
)

// Compile-time interface satisfaction checks.
var (
	_ driven.CatalogClient     = (*Client)(nil)
	_ driven.EntitlementClient = (*Client)(nil)
	_ driven.ClaimClient       = (*Client)(nil)
)

const (
	catalogURL      = "https://store-site-backend-static-ipv4.ak.epicgames.com/freeGamesPromotions"
	graphqlURL      = "https://graphql.epicgames.com/graphql"
	entitlementURL  = "https://entitlement-public-service-prod08.ol.epicgames.com/entitlement/api/account"
	orderPreviewURL = "https://payment-website-pci.ol.epicgames.com/purchase/order-preview"
	orderConfirmURL = "https://payment-website-pci.ol.epicgames.com/purchase/confirm-order"

	storeURL = "https://store.epicgames.com"

	// The storefront refuses requests without a browser-looking agent.
	userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/132.0.0.0 Safari/537.36"

	readTimeout  = 30 * time.Second
	claimTimeout = 60 * time.Second
)

// endpoints groups the upstream URLs so tests can point the whole client
// at a single httptest server.
type endpoints struct {
	catalog      string
	graphql      string
	entitlement  string
	orderPreview string
	orderConfirm string
	store        string
}

// Client talks to the storefront backend. It implements the catalog,
// entitlement, and claim ports. The credential bundle is optional: a nil
// bundle produces unauthenticated requests, which is sufficient for the
// public promotions catalog.
type Client struct {
	http      *http.Client // Read path: 30s timeout, caching transport.
	claimHTTP *http.Client // Mutation path: 60s timeout, no cache.
	endpoints endpoints
	bundle    *model.CredentialBundle
	country   string
}

// NewClient creates a storefront client with the following transport stack
// on the read path:
//  1. httpcache (in-memory response caching for repeated catalog polls)
//  2. net/http with a fixed per-call timeout
//
// Mutating calls bypass the cache and get a longer timeout.
func NewClient(bundle *model.CredentialBundle, country string) *Client {
	cacheTransport := httpcache.NewMemoryCacheTransport()

	return &Client{
		http: &http.Client{
			Transport: cacheTransport,
			Timeout:   readTimeout,
		},
		claimHTTP: &http.Client{Timeout: claimTimeout},
		endpoints: endpoints{
			catalog:      catalogURL,
			graphql:      graphqlURL,
			entitlement:  entitlementURL,
			orderPreview: orderPreviewURL,
			orderConfirm: orderConfirmURL,
			store:        storeURL,
		},
		bundle:  bundle,
		country: country,
	}
}

// NewClientWithBaseURL creates a Client whose endpoints are all derived
// from baseURL. This constructor is intended for testing, allowing
// injection of an httptest server.
func NewClientWithBaseURL(httpClient *http.Client, baseURL string, bundle *model.CredentialBundle, country string) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	base := strings.TrimRight(u.String(), "/")

	return &Client{
		http:      httpClient,
		claimHTTP: httpClient,
		endpoints: endpoints{
			catalog:      base + "/freeGamesPromotions",
			graphql:      base + "/graphql",
			entitlement:  base + "/entitlement/api/account",
			orderPreview: base + "/purchase/order-preview",
			orderConfirm: base + "/purchase/confirm-order",
			store:        base,
		},
		bundle:  bundle,
		country: country,
	}, nil
}

// decorate applies the headers and session cookies every storefront
// request needs. The bundle's cookies are sent to all backend hosts; the
// storefront's services share the parent domain.
func (c *Client) decorate(req *http.Request) {
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json, text/plain, */*")
	req.Header.Set("Origin", c.endpoints.store)
	req.Header.Set("Referer", c.endpoints.store+"/")

	if c.bundle == nil {
		return
	}

	for _, cookie := range c.bundle.Cookies {
		req.AddCookie(&http.Cookie{Name: cookie.Name, Value: cookie.Value})
	}
	if token := c.bundle.BearerToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}
