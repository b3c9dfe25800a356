package objstore

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument reports a malformed request (empty range, empty
	// child name, duplicate creation).
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotFound reports an operation on an object, attribute or child
	// record that does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAllocFailed reports that the device allocator could not provide
	// space for a new extent.
	ErrAllocFailed = errors.New("allocation failed")

	// ErrCorrupt reports an on-disk record that violates the schema
	// (undecodable bytes, or a value kind paired with the wrong key kind).
	// It is detected defensively and never expected in a correct system.
	ErrCorrupt = errors.New("corrupt record")
)

// RecordError describes a record that failed to decode, with enough of the
// raw bytes to diagnose the corruption.
type RecordError struct {
	Data []byte
	Off  int
	Err  error
	Msg  string
}

func recordErrf(data []byte, off int, err error, format string, args ...any) error {
	return &RecordError{data, off, err, fmt.Sprintf(format, args...)}
}

func (e *RecordError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrCorrupt, e.Err}
	}
	return []error{ErrCorrupt}
}

func (e *RecordError) Error() string {
	const prefixLen = 64
	const suffixLen = 32
	n := len(e.Data)
	if n <= prefixLen+suffixLen {
		if e.Err != nil {
			return fmt.Sprintf("%s: %v: (%d) %x", e.Msg, e.Err, n, e.Data)
		} else {
			return fmt.Sprintf("%s: (%d) %x", e.Msg, n, e.Data)
		}
	} else {
		p, s := e.Data[:prefixLen], e.Data[n-suffixLen:]
		if e.Err != nil {
			return fmt.Sprintf("%s: %v: (%d) %x...%x", e.Msg, e.Err, n, p, s)
		} else {
			return fmt.Sprintf("%s: (%d) %x...%x", e.Msg, n, p, s)
		}
	}
}
