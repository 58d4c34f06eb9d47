package mqtt

import "errors"

// ErrNotConnected is returned when a publish is attempted while the
// broker connection is down.
var ErrNotConnected = errors.New("mqtt client not connected")
