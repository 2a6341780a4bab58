package util

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies the underlying cause of an Error
type Kind string

const (
	KindIO          Kind = "io"
	KindParse       Kind = "parse"
	KindSerialize   Kind = "serialize"
	KindDeserialize Kind = "deserialize"
	KindColumn      Kind = "column"
)

// Error is returned by every helper in this package. Err holds the original
// cause wrapped with the stack at the failing call.
type Error struct {
	Op       string
	Path     string
	Kind     Kind
	Location string
	Err      error
}

func (e *Error) Error() string {
	msg := e.Op
	if e.Path != "" {
		msg += " " + e.Path
	}
	return fmt.Sprintf("%s: %s error at %s: %v", msg, e.Kind, e.Location, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Format prints the cause stack with %+v
func (e *Error) Format(s fmt.State, verb rune) {
	if verb == 'v' && s.Flag('+') {
		fmt.Fprintf(s, "%s\n%+v", e.Error(), e.Err)
		return
	}
	fmt.Fprint(s, e.Error())
}

// IsKind reports whether err is an *Error of the given kind
func IsKind(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

type stackTracer interface {
	StackTrace() errors.StackTrace
}

// wrap must be called directly from the failing helper: frame 1 of the
// recorded stack is taken as the location.
func wrap(op, path string, kind Kind, err error) error {
	cause := errors.WithStack(err)

	location := "unknown"
	if st, ok := cause.(stackTracer); ok {
		frames := st.StackTrace()
		if len(frames) > 1 {
			f := frames[1]
			location = fmt.Sprintf("%n (%s:%d)", f, f, f)
		}
	}

	return &Error{
		Op:       op,
		Path:     path,
		Kind:     kind,
		Location: location,
		Err:      cause,
	}
}
