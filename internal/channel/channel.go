// Package channel provides generic channel interfaces for decoupled
// communication between the frame pipeline and asynchronous consumers.
package channel

// Receiver provides read access to a channel.
type Receiver[T any] interface {
	Receive() <-chan T
	Len() int
}

// Sender provides write access to a channel.
type Sender[T any] interface {
	Send(T)

	// TrySend sends without blocking, reporting false when the channel is
	// full. Frame-phase publishers use it so a slow consumer can never
	// stall the frame.
	TrySend(T) bool
}

// Channel combines read and write access.
type Channel[T any] interface {
	Receiver[T]
	Sender[T]
	Close()
}
