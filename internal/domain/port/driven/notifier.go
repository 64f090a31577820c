package driven

import "context"

// Notifier delivers a free-items digest to the account holder. A nil
// error means delivery was confirmed; only then may the ledger be
// advanced.
type Notifier interface {
	Send(ctx context.Context, subject, textBody, htmlBody string) error
}
