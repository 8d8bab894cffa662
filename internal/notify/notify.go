// Package notify delivers out-of-band reports (startup balances, trade
// summaries). Notifiers are fire-and-forget collaborators: the engine
// invokes them after a decision is finalized, never inside the decision
// path.
package notify

import (
	"context"
	"errors"
)

type Notifier interface {
	Notify(ctx context.Context, subject, body string) error
}

// Multi fans a notification out to every configured notifier and joins
// their failures. An empty Multi is a valid no-op notifier.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, subject, body string) error {
	var errs []error
	for _, notifier := range m {
		if err := notifier.Notify(ctx, subject, body); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
