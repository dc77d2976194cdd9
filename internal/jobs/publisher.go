package jobs

import "context"

// Publisher hands a job id to the push broker. Delivery is asynchronous and
// at-least-once; Publish only guarantees the trigger was accepted for
// dispatch, and returns the broker-assigned message id.
type Publisher interface {
	Publish(ctx context.Context, jobID string) (messageID string, err error)
}
