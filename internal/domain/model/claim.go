package model

// ClaimOutcome is the terminal state of a claim attempt for one item.
type ClaimOutcome string

const (
	// ClaimAlreadyOwned means the ownership check short-circuited the attempt.
	ClaimAlreadyOwned ClaimOutcome = "already_owned"
	// ClaimClaimed means one of the claim strategies succeeded.
	ClaimClaimed ClaimOutcome = "claimed"
	// ClaimFailed means both claim strategies were exhausted.
	ClaimFailed ClaimOutcome = "failed"
)

// ClaimResult records the outcome of a claim attempt for a single item.
type ClaimResult struct {
	ItemID  string
	Title   string
	Outcome ClaimOutcome
	Detail  string // Failing strategy or upstream message; empty on success.
}
