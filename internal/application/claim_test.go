package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/promowatch/internal/domain/model"
)

// stubCall records one upstream call made by the claim state machine.
type stubCall struct {
	op      string // "owned", "primary", "fallback"
	offerID string
}

// stubClaims implements driven.ClaimClient with scriptable per-offer
// behavior.
type stubClaims struct {
	owned       map[string]bool // Offers the ownership check reports owned.
	ownedErr    error
	unknown     bool // Ownership check answers known=false.
	primaryErr  map[string]error
	fallbackErr map[string]error
	calls       []stubCall
}

func (s *stubClaims) OfferOwned(_ context.Context, _, offerID string) (bool, bool, error) {
	s.calls = append(s.calls, stubCall{op: "owned", offerID: offerID})
	if s.ownedErr != nil {
		return false, false, s.ownedErr
	}
	if s.unknown {
		return false, false, nil
	}
	return s.owned[offerID], true, nil
}

func (s *stubClaims) PlaceFreeOrder(_ context.Context, _, offerID string) error {
	s.calls = append(s.calls, stubCall{op: "primary", offerID: offerID})
	return s.primaryErr[offerID]
}

func (s *stubClaims) PlaceOrderFallback(_ context.Context, _, offerID string) error {
	s.calls = append(s.calls, stubCall{op: "fallback", offerID: offerID})
	return s.fallbackErr[offerID]
}

func newTestClaimService(claims *stubClaims) (*ClaimService, *[]time.Duration) {
	svc := NewClaimService(claims, 3*time.Second, 6*time.Second)
	var slept []time.Duration
	svc.sleep = func(d time.Duration) { slept = append(slept, d) }
	return svc, &slept
}

func TestClaimAll_AlreadyOwnedShortCircuits(t *testing.T) {
	claims := &stubClaims{owned: map[string]bool{"offer-1": true}}
	svc, _ := newTestClaimService(claims)

	results := svc.ClaimAll(context.Background(), []model.FreeItem{
		{ID: "offer-1", Namespace: "ns", Title: "Owned Game"},
	})

	require.Len(t, results, 1)
	assert.Equal(t, model.ClaimAlreadyOwned, results[0].Outcome)
	assert.Equal(t, []stubCall{{op: "owned", offerID: "offer-1"}}, claims.calls)
}

func TestClaimAll_PrimarySucceeds(t *testing.T) {
	claims := &stubClaims{}
	svc, _ := newTestClaimService(claims)

	results := svc.ClaimAll(context.Background(), []model.FreeItem{
		{ID: "offer-1", Namespace: "ns"},
	})

	require.Len(t, results, 1)
	assert.Equal(t, model.ClaimClaimed, results[0].Outcome)
	assert.Empty(t, results[0].Detail)
	assert.Equal(t, []stubCall{
		{op: "owned", offerID: "offer-1"},
		{op: "primary", offerID: "offer-1"},
	}, claims.calls)
}

func TestClaimAll_FallbackRescuesPrimaryFailure(t *testing.T) {
	claims := &stubClaims{
		primaryErr: map[string]error{"offer-1": errors.New("captcha wall")},
	}
	svc, _ := newTestClaimService(claims)

	results := svc.ClaimAll(context.Background(), []model.FreeItem{
		{ID: "offer-1", Namespace: "ns"},
	})

	require.Len(t, results, 1)
	assert.Equal(t, model.ClaimClaimed, results[0].Outcome)
	assert.Equal(t, []stubCall{
		{op: "owned", offerID: "offer-1"},
		{op: "primary", offerID: "offer-1"},
		{op: "fallback", offerID: "offer-1"},
	}, claims.calls)
}

func TestClaimAll_BothStrategiesFail(t *testing.T) {
	claims := &stubClaims{
		primaryErr:  map[string]error{"offer-1": errors.New("refused")},
		fallbackErr: map[string]error{"offer-1": errors.New("order preview: HTTP 409")},
	}
	svc, _ := newTestClaimService(claims)

	results := svc.ClaimAll(context.Background(), []model.FreeItem{
		{ID: "offer-1", Namespace: "ns"},
	})

	require.Len(t, results, 1)
	assert.Equal(t, model.ClaimFailed, results[0].Outcome)
	assert.Equal(t, "order preview: HTTP 409", results[0].Detail)
}

func TestClaimAll_OwnershipErrorProceedsToClaim(t *testing.T) {
	claims := &stubClaims{ownedErr: errors.New("graphql down")}
	svc, _ := newTestClaimService(claims)

	results := svc.ClaimAll(context.Background(), []model.FreeItem{
		{ID: "offer-1", Namespace: "ns"},
	})

	require.Len(t, results, 1)
	assert.Equal(t, model.ClaimClaimed, results[0].Outcome)
}

func TestClaimAll_UnknownOwnershipProceedsToClaim(t *testing.T) {
	claims := &stubClaims{unknown: true}
	svc, _ := newTestClaimService(claims)

	results := svc.ClaimAll(context.Background(), []model.FreeItem{
		{ID: "offer-1", Namespace: "ns"},
	})

	require.Len(t, results, 1)
	assert.Equal(t, model.ClaimClaimed, results[0].Outcome)
}

func TestClaimAll_OneFailureDoesNotStopTheRest(t *testing.T) {
	claims := &stubClaims{
		primaryErr:  map[string]error{"offer-1": errors.New("refused")},
		fallbackErr: map[string]error{"offer-1": errors.New("refused again")},
	}
	svc, _ := newTestClaimService(claims)

	results := svc.ClaimAll(context.Background(), []model.FreeItem{
		{ID: "offer-1", Namespace: "ns"},
		{ID: "offer-2", Namespace: "ns"},
	})

	require.Len(t, results, 2)
	assert.Equal(t, model.ClaimFailed, results[0].Outcome)
	assert.Equal(t, model.ClaimClaimed, results[1].Outcome)
}

func TestClaimAll_DelaysBetweenItemsOnly(t *testing.T) {
	svc, slept := newTestClaimService(&stubClaims{})

	svc.ClaimAll(context.Background(), []model.FreeItem{
		{ID: "a"}, {ID: "b"}, {ID: "c"},
	})

	require.Len(t, *slept, 2, "no pause after the last item")
	for _, d := range *slept {
		assert.GreaterOrEqual(t, d, 3*time.Second)
		assert.Less(t, d, 6*time.Second)
	}
}

func TestClaimAll_NoItemsNoDelay(t *testing.T) {
	svc, slept := newTestClaimService(&stubClaims{})

	results := svc.ClaimAll(context.Background(), nil)

	assert.Empty(t, results)
	assert.Empty(t, *slept)
}

func TestJitter_EqualBoundsFixedDelay(t *testing.T) {
	svc := NewClaimService(&stubClaims{}, 4*time.Second, 4*time.Second)
	assert.Equal(t, 4*time.Second, svc.jitter())
}

func TestSummarize_GroupsByOutcome(t *testing.T) {
	results := []model.ClaimResult{
		{ItemID: "a", Outcome: model.ClaimClaimed},
		{ItemID: "b", Outcome: model.ClaimFailed},
		{ItemID: "c", Outcome: model.ClaimAlreadyOwned},
		{ItemID: "d", Outcome: model.ClaimClaimed},
	}

	claimed, alreadyOwned, failed := Summarize(results)

	assert.Len(t, claimed, 2)
	assert.Len(t, alreadyOwned, 1)
	assert.Len(t, failed, 1)
	assert.Equal(t, "b", failed[0].ItemID)
}
