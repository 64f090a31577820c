// Package driven defines the outbound port interfaces of promowatch.
package driven

import (
	"context"
	"errors"

	"github.com/ericfisherdev/promowatch/internal/domain/model"
)

var (
	// ErrUpstream indicates the storefront answered with a non-2xx status
	// or the transport failed outright.
	ErrUpstream = errors.New("storefront request failed")

	// ErrMalformedResponse indicates a 2xx response whose payload did not
	// match the expected schema.
	ErrMalformedResponse = errors.New("malformed storefront response")
)

// CatalogClient fetches the storefront's current free-promotion catalog.
type CatalogClient interface {
	// FetchFreeItems returns the currently-free catalog entries in
	// upstream response order. An entry qualifies only when it carries an
	// active promotion and its discounted price is exactly zero. A
	// promotion-free catalog yields an empty slice, not an error.
	FetchFreeItems(ctx context.Context, locale, country string) ([]model.FreeItem, error)
}
