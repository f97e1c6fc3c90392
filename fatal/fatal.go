// Package fatal is the single reporting channel for programmer errors: exhausted fixed-capacity
// pools, invalid handles, unhandled enum values and native calls that fail while commands are
// being replayed. None of these are recoverable, so the default handler panics. Tests and
// embedders can swap the handler to intercept them.
package fatal

import (
	"sync"

	"github.com/cockroachdb/errors"
)

// Handler receives every fatal error. A handler that returns normally leaves the caller to
// continue with undefined results, so handlers that do not panic should stop the goroutine.
type Handler func(err error)

var (
	handlerLock sync.RWMutex
	handler     Handler = panicHandler
)

func panicHandler(err error) {
	panic(err)
}

// SetHandler installs h as the fatal error handler and returns a function that restores the
// previous one.
func SetHandler(h Handler) (restore func()) {
	handlerLock.Lock()
	defer handlerLock.Unlock()

	previous := handler
	if h == nil {
		h = panicHandler
	}
	handler = h

	return func() {
		handlerLock.Lock()
		defer handlerLock.Unlock()
		handler = previous
	}
}

// Report forwards err to the current handler.
func Report(err error) {
	handlerLock.RLock()
	h := handler
	handlerLock.RUnlock()

	h(errors.WithStackDepth(err, 1))
}

// Reportf builds an error from format and forwards it to the current handler.
func Reportf(format string, args ...any) {
	handlerLock.RLock()
	h := handler
	handlerLock.RUnlock()

	h(errors.NewWithDepthf(1, format, args...))
}

// Check reports a fatal error built from format when cond is false.
func Check(cond bool, format string, args ...any) {
	if cond {
		return
	}

	handlerLock.RLock()
	h := handler
	handlerLock.RUnlock()

	h(errors.NewWithDepthf(1, format, args...))
}

// Must reports err if it is not nil, wrapping it with msg.
func Must(err error, msg string) {
	if err == nil {
		return
	}

	handlerLock.RLock()
	h := handler
	handlerLock.RUnlock()

	h(errors.WrapWithDepth(1, err, msg))
}
