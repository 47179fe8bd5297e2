package ps2

import (
	"errors"
	"fmt"
)

var (
	// ErrTimeout indicates the device did not clock within the spin budget.
	ErrTimeout = errors.New("ps2: timeout")
	// ErrNoAck indicates the device did not pull data low in the ack slot.
	ErrNoAck = errors.New("ps2: no acknowledge bit")
	// ErrFraming indicates a bad start or stop bit.
	ErrFraming = errors.New("ps2: framing error")
	// ErrParity indicates a parity mismatch.
	ErrParity = errors.New("ps2: parity error")
	// ErrResendExhausted indicates the device kept asking for a resend.
	ErrResendExhausted = errors.New("ps2: resend retries exhausted")
	// ErrUnsupportedDevice indicates the device is not a mouse.
	ErrUnsupportedDevice = errors.New("ps2: unsupported device")
)

// ResponseError is returned when the device replies with an unexpected byte.
type ResponseError struct {
	Sent  byte
	Reply byte
}

// Error implements error.
func (e *ResponseError) Error() string {
	return fmt.Sprintf("ps2: unexpected reply 0x%02x to 0x%02x", e.Reply, e.Sent)
}
