package storefront

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/ericfisherdev/promowatch/internal/domain/port/driven"
)

const ownedInformationQuery = `query($namespace: String!, $offerId: String!) {
	Catalog {
		catalogOffer(namespace: $namespace, id: $offerId) {
			ownedInformation {
				owned
			}
		}
	}
}`

const freeOrderMutation = `mutation($namespace: String!, $offerId: String!, $lineOffers: [LineOfferInput!]!) {
	Purchase {
		freeOrder(namespace: $namespace, offerId: $offerId, lineOffers: $lineOffers) {
			orderId
			orderState
			message
		}
	}
}`

// graphqlRequest is the JSON body sent to the storefront GraphQL API.
type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type graphqlError struct {
	Message string `json:"message"`
}

// ownedResponse is the expected shape of the ownership query result.
type ownedResponse struct {
	Data struct {
		Catalog struct {
			CatalogOffer *struct {
				OwnedInformation *struct {
					Owned bool `json:"owned"`
				} `json:"ownedInformation"`
			} `json:"catalogOffer"`
		} `json:"Catalog"`
	} `json:"data"`
	Errors []graphqlError `json:"errors"`
}

// freeOrderResponse is the expected shape of the free-order mutation
// result.
type freeOrderResponse struct {
	Data struct {
		Purchase struct {
			FreeOrder *struct {
				OrderID    string `json:"orderId"`
				OrderState string `json:"orderState"`
				Message    string `json:"message"`
			} `json:"freeOrder"`
		} `json:"Purchase"`
	} `json:"data"`
	Errors []graphqlError `json:"errors"`
}

// OfferOwned asks the storefront whether the account already owns the
// offer. known is false when the query failed or the response carried no
// ownership block; callers proceed with the claim in that case.
func (c *Client) OfferOwned(ctx context.Context, namespace, offerID string) (owned, known bool, err error) {
	var resp ownedResponse
	if err := c.graphql(ctx, c.http, ownedInformationQuery, map[string]any{
		"namespace": namespace,
		"offerId":   offerID,
	}, &resp); err != nil {
		return false, false, err
	}

	if len(resp.Errors) > 0 {
		return false, false, fmt.Errorf("ownership query: %w: %s", driven.ErrUpstream, resp.Errors[0].Message)
	}

	offer := resp.Data.Catalog.CatalogOffer
	if offer == nil || offer.OwnedInformation == nil {
		return false, false, nil
	}
	return offer.OwnedInformation.Owned, true, nil
}

// PlaceFreeOrder issues the free-order mutation for the offer. Any
// application-level error in the response is reported as
// ErrClaimRejected so the orchestrator can route to the fallback
// strategy.
func (c *Client) PlaceFreeOrder(ctx context.Context, namespace, offerID string) error {
	var resp freeOrderResponse
	if err := c.graphql(ctx, c.claimHTTP, freeOrderMutation, map[string]any{
		"namespace": namespace,
		"offerId":   offerID,
		"lineOffers": []map[string]any{
			{"offerId": offerID, "quantity": 1},
		},
	}, &resp); err != nil {
		return err
	}

	if len(resp.Errors) > 0 {
		return fmt.Errorf("free order: %w: %s", driven.ErrClaimRejected, resp.Errors[0].Message)
	}
	if resp.Data.Purchase.FreeOrder == nil {
		return fmt.Errorf("free order: %w: no order in response", driven.ErrClaimRejected)
	}

	return nil
}

// orderPayload is the body shared by the preview and confirm phases of
// the fallback checkout.
type orderPayload struct {
	UseDefault    bool     `json:"useDefault"`
	SetDefault    bool     `json:"setDefault"`
	Namespace     string   `json:"namespace"`
	Country       string   `json:"country"`
	OrderID       *string  `json:"orderId"`
	OrderComplete bool     `json:"orderComplete"`
	OrderError    *string  `json:"orderError"`
	OrderPending  bool     `json:"orderPending"`
	Offers        []string `json:"offers"`
}

// PlaceOrderFallback runs the two-phase preview-then-confirm checkout.
// The confirm request fires immediately after a successful preview: the
// preview's transaction token is short-lived, so no pacing delay is
// inserted between the phases.
func (c *Client) PlaceOrderFallback(ctx context.Context, namespace, offerID string) error {
	payload := orderPayload{
		UseDefault: true,
		Namespace:  namespace,
		Country:    c.country,
		Offers:     []string{offerID},
	}

	if err := c.postOrder(ctx, c.endpoints.orderPreview, payload); err != nil {
		return fmt.Errorf("order preview: %w", err)
	}

	payload.OrderComplete = true
	if err := c.postOrder(ctx, c.endpoints.orderConfirm, payload); err != nil {
		return fmt.Errorf("confirm order: %w", err)
	}

	return nil
}

func (c *Client) postOrder(ctx context.Context, endpoint string, payload orderPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal order payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create order request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.decorate(req)

	resp, err := c.claimHTTP.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", driven.ErrUpstream, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: HTTP %d", driven.ErrClaimRejected, resp.StatusCode)
	}

	return nil
}

// graphql posts a query/mutation and decodes the response into out.
func (c *Client) graphql(ctx context.Context, httpClient *http.Client, query string, variables map[string]any, out any) error {
	body, err := json.Marshal(graphqlRequest{Query: query, Variables: variables})
	if err != nil {
		return fmt.Errorf("marshal graphql request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoints.graphql, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create graphql request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.decorate(req)

	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("graphql request: %w: %w", driven.ErrUpstream, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("graphql request: %w: HTTP %d", driven.ErrUpstream, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode graphql response: %w: %w", driven.ErrMalformedResponse, err)
	}

	return nil
}
