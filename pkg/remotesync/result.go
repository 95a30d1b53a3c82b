package remotesync

import (
	"errors"

	"go.uber.org/zap"

	"github.com/m-kr/cms-nano/pkg/apierr"
)

// Result is the outcome of one remote operation: a value on success, a
// user-facing message and the underlying error on failure.
type Result[T any] struct {
	Value   T
	Message string
	Err     error
}

// OK reports whether the operation succeeded.
func (r Result[T]) OK() bool { return r.Err == nil }

func succeed[T any](value T, message string) Result[T] {
	return Result[T]{Value: value, Message: message}
}

func fail[T any](err error) Result[T] {
	return Result[T]{Message: failureMessage(err), Err: err}
}

// Kind classifies a Notice.
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

// Notice is what a Notifier is asked to show.
type Notice struct {
	Kind    Kind
	Message string
	Err     error
}

// Notifier surfaces operation outcomes to the user.
type Notifier interface {
	Notify(Notice)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notice)

func (f NotifierFunc) Notify(n Notice) { f(n) }

// LogNotifier reports notices through logger.
func LogNotifier(logger *zap.Logger) Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return NotifierFunc(func(n Notice) {
		if n.Kind == KindError {
			logger.Warn(n.Message, zap.Error(n.Err))
			return
		}
		logger.Info(n.Message)
	})
}

type discardNotifier struct{}

func (discardNotifier) Notify(Notice) {}

// notify hands r to the notifier. Successes without a message stay silent.
func notify[T any](n Notifier, r Result[T]) Result[T] {
	switch {
	case r.Err != nil:
		n.Notify(Notice{Kind: KindError, Message: r.Message, Err: r.Err})
	case r.Message != "":
		n.Notify(Notice{Kind: KindSuccess, Message: r.Message})
	}
	return r
}

func failureMessage(err error) string {
	if err == nil {
		return ""
	}
	var validation *apierr.ValidationError
	if errors.As(err, &validation) {
		if validation.Field != "" {
			return validation.Field + ": " + validation.Message
		}
		return validation.Message
	}
	var notFound *apierr.NotFoundError
	if errors.As(err, &notFound) {
		return notFound.Error()
	}
	var persistence *apierr.PersistenceError
	if errors.As(err, &persistence) {
		if persistence.Err != nil {
			return "Server error: " + persistence.Err.Error()
		}
		return "Server error"
	}
	return err.Error()
}
