// Package messaging wraps the push provider behind a small Sender
// interface. One call is one message to one device token, or one message
// to a named topic for broadcast-style sends.
package messaging

import (
	"context"
	"fmt"
)

// Options carries platform-specific delivery hints.
type Options struct {
	Sound     string // notification sound on Android/iOS
	ChannelID string // Android notification channel
	Icon      string // Android small icon resource
	Link      string // web push click-through URL
}

// Sender delivers a push message and returns the provider's message id.
// Delivery failures are returned as *DeliveryError; callers must not
// record dedup state after a failed send.
type Sender interface {
	Send(ctx context.Context, token, title, body string, opts Options) (string, error)
	SendToTopic(ctx context.Context, topic, title, body string) (string, error)
}

// DeliveryError is a push-provider rejection: invalid token, auth failure,
// quota. The target is the token or "topic:<name>" the send addressed.
type DeliveryError struct {
	Target string
	Err    error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("deliver to %s: %v", e.Target, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }
