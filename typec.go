// Package typec defines the interface between a USB Type-C power delivery
// policy engine and the physical layer transport of a port controller, along
// with the errors the transport reports.
package typec

import "errors"

// PHY provides raw power delivery message transport over a Type-C port
// controller, such as FUSB302. The implementer handles the physical layer:
// framing, CRC generation and checking, GoodCRC responses and hardware
// retries. Message semantics, message ID tracking and negotiation are left to
// the caller.
//
// PHY implementations are not safe for concurrent use. Callers sharing a bus
// with other devices must serialize access themselves.
type PHY interface {

	// Init (re-)initializes the controller to a known working state. Init must
	// be called at least once and before any other method of this interface.
	// If Init fails, the controller state is undefined and Init must succeed
	// before any other method is called.
	Init() error

	// Transmit sends a single power delivery message consisting of the header
	// and data objects. CRC is calculated and appended by the hardware.
	// Transmit blocks until a GoodCRC response is received, all retries have
	// failed or a deadline has passed. ErrTxDiscarded is returned for the
	// latter two and ErrTxHardReset if a hard reset was signalled by the port
	// partner during transmission.
	Transmit(data []byte) error

	// TransmitHardReset sends hard reset signalling to the port partner and
	// blocks until it has been sent. ErrTxDiscarded is returned if the
	// controller did not confirm the send in time.
	TransmitHardReset() error

	// Receive waits for a single message and copies its header and data
	// objects into buf, returning the number of bytes copied. CRC is checked
	// by the hardware and not included. ErrRxDiscarded is returned if no valid
	// message arrived in time or if the message does not fit buf.
	// ErrRxHardReset is returned if hard reset signalling was received.
	Receive(buf []byte) (int, error)
}

// Errors returned by PHY implementations. The errors may be wrapped with the
// underlying cause, so callers must use errors.Is to test for them.
//
// A hard reset requires renegotiation by the policy engine whereas a discarded
// message may be retried at the protocol layer.
var (
	// ErrTxDiscarded is returned when a message could not be sent.
	ErrTxDiscarded = errors.New("pd message discarded on transmit")

	// ErrTxHardReset is returned when a hard reset interrupted transmission.
	ErrTxHardReset = errors.New("hard reset during transmit")

	// ErrRxDiscarded is returned when no valid message could be received.
	ErrRxDiscarded = errors.New("pd message discarded on receive")

	// ErrRxHardReset is returned when a hard reset was received.
	ErrRxHardReset = errors.New("hard reset received")
)
