package dispatch

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mattjoyce/ghost/internal/command"
)

// Kind classifies why an Outcome is not a plain success.
type Kind string

const (
	KindUnsupportedPlatform Kind = "UnsupportedPlatform"
	KindPrivilegeDenied     Kind = "PrivilegeDenied"
	KindSubprocessFailure   Kind = "SubprocessFailure"
	KindInvalidCommand      Kind = "InvalidCommand"
)

var (
	ErrUnsupportedPlatform = errors.New("unsupported on this platform")
	ErrPrivilegeDenied     = errors.New("elevation required")
	ErrSubprocessFailure   = errors.New("subprocess failure")
	ErrInvalidCommand      = errors.New("invalid command")
)

var kindErrors = map[Kind]error{
	KindUnsupportedPlatform: ErrUnsupportedPlatform,
	KindPrivilegeDenied:     ErrPrivilegeDenied,
	KindSubprocessFailure:   ErrSubprocessFailure,
	KindInvalidCommand:      ErrInvalidCommand,
}

// Outcome is the result of one dispatch. It is returned to the caller and
// never retained.
type Outcome struct {
	Tag      command.Tag
	OK       bool
	Kind     Kind // empty on plain success
	Message  string
	Stdout   string
	Stderr   string
	ExitCode int
	Duration time.Duration
}

// Err returns the taxonomy sentinel wrapped with the outcome message, or nil
// when Kind is empty.
func (o Outcome) Err() error {
	sentinel, ok := kindErrors[o.Kind]
	if !ok {
		return nil
	}
	return fmt.Errorf("%s: %w", o.Message, sentinel)
}

// Text renders the outcome for a human. Shell commands report their raw
// output; every other outcome reports its message, plus stderr on failure.
func (o Outcome) Text() string {
	var b strings.Builder
	if o.Tag == command.Shell && o.Kind == "" {
		b.WriteString(o.Stdout)
		if o.Stderr != "" {
			if b.Len() > 0 && !strings.HasSuffix(b.String(), "\n") {
				b.WriteByte('\n')
			}
			b.WriteString(o.Stderr)
		}
		return b.String()
	}

	b.WriteString(o.Message)
	if !o.OK && o.Stderr != "" {
		b.WriteByte('\n')
		b.WriteString(strings.TrimRight(o.Stderr, "\n"))
	}
	return b.String()
}

func success(msg string) Outcome {
	return Outcome{OK: true, Message: msg}
}

func failure(kind Kind, msg string) Outcome {
	return Outcome{Kind: kind, Message: msg}
}

func subprocessFailure(err error) Outcome {
	return failure(KindSubprocessFailure, err.Error())
}
