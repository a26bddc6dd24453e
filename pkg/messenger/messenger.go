package messenger

import (
	"context"
)

// Result reports the outcome of one batched send. A send can partially
// succeed; failed addresses are keyed to a provider error message.
type Result struct {
	Delivered []string
	Failed    map[string]string
}

// AllDelivered reports whether every address received the message
func (r Result) AllDelivered() bool {
	return len(r.Failed) == 0
}

// Messenger delivers a message to a batch of external channel addresses.
// It is a best-effort, independent failure domain: callers treat any error
// as a delivery problem to log, never as a reason to fail the mutation that
// triggered the message.
type Messenger interface {
	Send(ctx context.Context, addresses []string, message string) (Result, error)
}

// Nop discards every message and reports full delivery
type Nop struct{}

func (Nop) Send(_ context.Context, addresses []string, _ string) (Result, error) {
	return Result{Delivered: append([]string(nil), addresses...)}, nil
}
