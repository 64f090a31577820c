package storefront

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/ericfisherdev/promowatch/internal/domain/model"
	"github.com/ericfisherdev/promowatch/internal/domain/port/driven"
)

// catalogResponse mirrors the relevant slice of the freeGamesPromotions
// payload: data.Catalog.searchStore.elements.
type catalogResponse struct {
	Data struct {
		Catalog struct {
			SearchStore struct {
				Elements []catalogElement `json:"elements"`
			} `json:"searchStore"`
		} `json:"Catalog"`
	} `json:"data"`
}

type catalogElement struct {
	ID          string `json:"id"`
	Namespace   string `json:"namespace"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URLSlug     string `json:"urlSlug"`
	ProductSlug string `json:"productSlug"`
	Promotions  *struct {
		PromotionalOffers []struct {
			PromotionalOffers []struct {
				EndDate string `json:"endDate"`
			} `json:"promotionalOffers"`
		} `json:"promotionalOffers"`
	} `json:"promotions"`
	Price struct {
		TotalPrice struct {
			DiscountPrice int `json:"discountPrice"`
		} `json:"totalPrice"`
	} `json:"price"`
	OfferMappings []pageMapping `json:"offerMappings"`
	CatalogNs     struct {
		Mappings []pageMapping `json:"mappings"`
	} `json:"catalogNs"`
}

type pageMapping struct {
	PageSlug string `json:"pageSlug"`
}

// FetchFreeItems queries the promotions endpoint and returns the entries
// that are currently free, in upstream order. An entry is free iff it has
// a non-empty promotions block and its discounted price is exactly zero;
// price reductions that do not reach zero are excluded.
func (c *Client) FetchFreeItems(ctx context.Context, locale, country string) ([]model.FreeItem, error) {
	reqURL := fmt.Sprintf("%s?%s", c.endpoints.catalog, url.Values{
		"locale":  {locale},
		"country": {country},
	}.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create catalog request: %w", err)
	}
	c.decorate(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch promotions: %w: %w", driven.ErrUpstream, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch promotions: %w: HTTP %d", driven.ErrUpstream, resp.StatusCode)
	}

	var payload catalogResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode promotions payload: %w: %w", driven.ErrMalformedResponse, err)
	}

	items := []model.FreeItem{}
	for _, el := range payload.Data.Catalog.SearchStore.Elements {
		if !hasActivePromotion(el) {
			continue
		}
		if el.Price.TotalPrice.DiscountPrice != 0 {
			continue
		}

		slug := resolveSlug(el)
		items = append(items, model.FreeItem{
			ID:           el.ID,
			Namespace:    el.Namespace,
			Title:        el.Title,
			Description:  el.Description,
			URL:          c.productURL(locale, slug),
			Slug:         slug,
			PromotionEnd: promotionEnd(el),
		})
	}

	return items, nil
}

// hasActivePromotion checks for a non-empty promotions block with at
// least one concrete offer window.
func hasActivePromotion(el catalogElement) bool {
	if el.Promotions == nil || len(el.Promotions.PromotionalOffers) == 0 {
		return false
	}
	return len(el.Promotions.PromotionalOffers[0].PromotionalOffers) > 0
}

// resolveSlug picks the page slug with a tiered fallback, first match
// wins:
//  1. the primary catalog-offer mapping,
//  2. the namespace mapping,
//  3. the legacy urlSlug/productSlug fields.
//
// The legacy fields come last on purpose: upstream documents them as
// frequently inaccurate. An empty result means no slug resolved at all.
func resolveSlug(el catalogElement) string {
	if len(el.OfferMappings) > 0 && el.OfferMappings[0].PageSlug != "" {
		return el.OfferMappings[0].PageSlug
	}
	if len(el.CatalogNs.Mappings) > 0 && el.CatalogNs.Mappings[0].PageSlug != "" {
		return el.CatalogNs.Mappings[0].PageSlug
	}
	if el.URLSlug != "" {
		return el.URLSlug
	}
	return el.ProductSlug
}

// productURL builds the store page URL for a resolved slug, falling back
// to the generic free-games listing when no slug resolved.
func (c *Client) productURL(locale, slug string) string {
	if slug == "" {
		return fmt.Sprintf("%s/%s/free-games", c.endpoints.store, locale)
	}
	return fmt.Sprintf("%s/%s/p/%s", c.endpoints.store, locale, slug)
}

// promotionEnd extracts the end of the first active offer window. A zero
// time is returned when the date is absent or unparseable; the digest
// simply omits it then.
func promotionEnd(el catalogElement) time.Time {
	offers := el.Promotions.PromotionalOffers[0].PromotionalOffers
	if len(offers) == 0 || offers[0].EndDate == "" {
		return time.Time{}
	}
	end, err := time.Parse(time.RFC3339, offers[0].EndDate)
	if err != nil {
		return time.Time{}
	}
	return end
}
