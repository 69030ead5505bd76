package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidState is returned if engine method cannot be executed at this moment.
	ErrInvalidState = errors.New("invalid state")
	// ErrEndOfStream is reported by finite devices when they don't need
	// more samples. Play returns nil when it's received.
	ErrEndOfStream = errors.New("end of stream")
	// ErrNoDevice is returned when output device is not available.
	ErrNoDevice = errors.New("no output device")
	// ErrChannels is returned when device doesn't support the number of
	// channels required by config or source.
	ErrChannels = errors.New("unsupported number of channels")
	// ErrSampleRate is returned when sample rate cannot be negotiated.
	ErrSampleRate = errors.New("invalid sample rate")
)

// ErrorPlay is returned if engine was successfully started, but streaming
// and/or closing the stream failed.
type ErrorPlay struct {
	ErrStream error
	ErrClose  error
}

func (e *ErrorPlay) Error() string {
	switch {
	case e.ErrStream != nil && e.ErrClose != nil:
		return fmt.Sprintf("close error: %v after stream error: %v", e.ErrClose, e.ErrStream)
	case e.ErrStream != nil:
		return fmt.Sprintf("stream error: %v", e.ErrStream)
	case e.ErrClose != nil:
		return fmt.Sprintf("close error: %v", e.ErrClose)
	}
	return ""
}

// Is checks if any of errors match provided sentinel error.
func (e *ErrorPlay) Is(err error) bool {
	if e.ErrStream != nil && errors.Is(e.ErrStream, err) {
		return true
	}
	if e.ErrClose != nil && errors.Is(e.ErrClose, err) {
		return true
	}
	return false
}

// ret returns untyped nil if no errors occurred.
func (e *ErrorPlay) ret() error {
	if e.ErrStream == nil && e.ErrClose == nil {
		return nil
	}
	return e
}
