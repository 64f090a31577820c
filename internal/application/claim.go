package application

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/ericfisherdev/promowatch/internal/domain/model"
	"github.com/ericfisherdev/promowatch/internal/domain/port/driven"
)

// claimState is a node of the per-item claim state machine.
type claimState int

const (
	stateCheckOwnership claimState = iota
	stateAttemptPrimary
	stateAttemptFallback
	stateAlreadyOwned
	stateSuccess
	stateFailed
)

// ClaimService attempts best-effort automated claiming. Each item walks a
// fixed state machine: ownership short-circuit, then the free-order
// mutation, then the preview/confirm checkout pair. There are no retries
// beyond those two strategies, and one item's failure never prevents
// attempting the next.
type ClaimService struct {
	claims   driven.ClaimClient
	delayMin time.Duration
	delayMax time.Duration
	sleep    func(time.Duration) // Injectable for tests.
}

// NewClaimService creates a ClaimService. delayMin/delayMax bound the
// randomized pause between items, a courtesy toward upstream rate
// defenses.
func NewClaimService(claims driven.ClaimClient, delayMin, delayMax time.Duration) *ClaimService {
	return &ClaimService{
		claims:   claims,
		delayMin: delayMin,
		delayMax: delayMax,
		sleep:    time.Sleep,
	}
}

// ClaimAll runs the claim state machine over each item in order, with a
// jittered delay between items (none after the last).
func (s *ClaimService) ClaimAll(ctx context.Context, items []model.FreeItem) []model.ClaimResult {
	results := make([]model.ClaimResult, 0, len(items))

	for i, item := range items {
		slog.Info("claiming", "title", item.Title, "namespace", item.Namespace, "offer", item.ID)
		result := s.claimOne(ctx, item)
		results = append(results, result)
		slog.Info("claim finished", "title", item.Title, "outcome", string(result.Outcome), "detail", result.Detail)

		if i < len(items)-1 {
			s.sleep(s.jitter())
		}
	}

	return results
}

// claimOne walks one item through the state machine to a terminal state.
func (s *ClaimService) claimOne(ctx context.Context, item model.FreeItem) model.ClaimResult {
	result := model.ClaimResult{ItemID: item.ID, Title: item.Title}
	state := stateCheckOwnership

	for {
		switch state {
		case stateCheckOwnership:
			owned, known, err := s.claims.OfferOwned(ctx, item.Namespace, item.ID)
			switch {
			case err != nil:
				// Unknown ownership blocks nothing; claiming an owned
				// offer just fails downstream.
				slog.Warn("ownership check failed, attempting claim anyway", "title", item.Title, "error", err)
				state = stateAttemptPrimary
			case known && owned:
				state = stateAlreadyOwned
			default:
				state = stateAttemptPrimary
			}

		case stateAttemptPrimary:
			if err := s.claims.PlaceFreeOrder(ctx, item.Namespace, item.ID); err != nil {
				slog.Warn("free-order claim failed, trying checkout fallback", "title", item.Title, "error", err)
				state = stateAttemptFallback
			} else {
				state = stateSuccess
			}

		case stateAttemptFallback:
			if err := s.claims.PlaceOrderFallback(ctx, item.Namespace, item.ID); err != nil {
				result.Detail = err.Error()
				state = stateFailed
			} else {
				state = stateSuccess
			}

		case stateAlreadyOwned:
			result.Outcome = model.ClaimAlreadyOwned
			return result

		case stateSuccess:
			result.Outcome = model.ClaimClaimed
			return result

		case stateFailed:
			result.Outcome = model.ClaimFailed
			return result
		}
	}
}

// jitter picks a random delay in [delayMin, delayMax).
func (s *ClaimService) jitter() time.Duration {
	if s.delayMax <= s.delayMin {
		return s.delayMin
	}
	return s.delayMin + rand.N(s.delayMax-s.delayMin)
}

// Summarize groups claim results by outcome for end-of-run logging.
func Summarize(results []model.ClaimResult) (claimed, alreadyOwned, failed []model.ClaimResult) {
	for _, r := range results {
		switch r.Outcome {
		case model.ClaimClaimed:
			claimed = append(claimed, r)
		case model.ClaimAlreadyOwned:
			alreadyOwned = append(alreadyOwned, r)
		case model.ClaimFailed:
			failed = append(failed, r)
		}
	}
	return claimed, alreadyOwned, failed
}
