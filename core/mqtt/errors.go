package mqtt

import "errors"

// ErrPublishFailed is returned when a message could not be delivered after
// every retry.
var ErrPublishFailed = errors.New("mqtt publish failed")
