package resolve

import "fmt"

// InputParseError reports a selection token that is not an unsigned integer.
type InputParseError struct {
	Token string
	Err   error
}

func (e *InputParseError) Error() string {
	return fmt.Sprintf("cannot parse number %q: %v", e.Token, e.Err)
}

func (e *InputParseError) Unwrap() error {
	return e.Err
}

// RangeError reports a selection outside 1..Size.
type RangeError struct {
	Index uint64
	Size  int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("number %d is out of range (1-%d)", e.Index, e.Size)
}

// SoftDeleteError reports a member that could not be moved to the trash.
type SoftDeleteError struct {
	Path string
	Err  error
}

func (e *SoftDeleteError) Error() string {
	return fmt.Sprintf("cannot move %q to the trash: %v", e.Path, e.Err)
}

func (e *SoftDeleteError) Unwrap() error {
	return e.Err
}
