// Package navigation resolves navigation intents against the route table,
// running every registered before-each hook once per intent.
package navigation

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ghaggin/pastemate/internal/guard"
	"github.com/ghaggin/pastemate/internal/route"
	"go.uber.org/zap"
)

const (
	MaxRedirects = 10
)

var (
	ErrRouteNotFound         = errors.New("route not found")
	ErrContinuationNotCalled = errors.New("navigation hook did not call its continuation")
	ErrRedirectLoop          = errors.New("too many navigation redirects")
	ErrAborted               = errors.New("navigation aborted")
)

// Hook runs before a navigation commits. It must call next exactly once
// before returning; next may be called from another goroutine, but a call
// made after the hook returns is ignored.
type Hook func(ctx context.Context, to, from route.Descriptor, next guard.Continuation)

// Result is a committed navigation.
type Result struct {
	Route route.Descriptor
	Path  string
	// Chain lists every path visited, starting with the requested one.
	Chain []string
}

func (r Result) Redirected() bool {
	return len(r.Chain) > 1
}

type Navigator struct {
	table *route.Table
	log   *zap.Logger

	mu     sync.RWMutex
	hooks  []*hookEntry
	nextID int
}

type hookEntry struct {
	id   int
	hook Hook
}

func New(table *route.Table, log *zap.Logger) *Navigator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Navigator{
		table: table,
		log:   log,
	}
}

// BeforeEach registers hook after the ones already registered. The returned
// func removes it.
func (n *Navigator) BeforeEach(hook Hook) (remove func()) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.nextID++
	id := n.nextID
	n.hooks = append(n.hooks, &hookEntry{id: id, hook: hook})

	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()

		for i, e := range n.hooks {
			if e.id == id {
				n.hooks = append(n.hooks[:i:i], n.hooks[i+1:]...)
				return
			}
		}
	}
}

// Navigate resolves the intent from -> to. Redirects issued by hooks restart
// resolution at the new path.
func (n *Navigator) Navigate(ctx context.Context, from, to string) (Result, error) {
	fromRoute, _ := n.table.Lookup(from)
	chain := []string{to}

	for redirects := 0; ; redirects++ {
		target, ok := n.table.Lookup(to)
		if !ok {
			return Result{}, fmt.Errorf("%w: %s", ErrRouteNotFound, to)
		}

		decision, err := n.runHooks(ctx, target, fromRoute)
		if err != nil {
			return Result{}, fmt.Errorf("navigate %s: %w", to, err)
		}

		if decision.Proceeds() {
			return Result{Route: target, Path: to, Chain: chain}, nil
		}
		if decision.Abort {
			return Result{}, fmt.Errorf("%w: %s", ErrAborted, to)
		}

		if redirects >= MaxRedirects {
			return Result{}, fmt.Errorf("%w: %v", ErrRedirectLoop, chain)
		}

		n.log.Debug("navigation redirected",
			zap.String("from", to),
			zap.String("to", decision.Redirect),
		)
		to = decision.Redirect
		chain = append(chain, to)
	}
}

func (n *Navigator) runHooks(ctx context.Context, to, from route.Descriptor) (guard.Decision, error) {
	n.mu.RLock()
	hooks := make([]*hookEntry, len(n.hooks))
	copy(hooks, n.hooks)
	n.mu.RUnlock()

	for _, e := range hooks {
		decision, err := n.runHook(ctx, e, to, from)
		if err != nil {
			return guard.Decision{}, err
		}
		if !decision.Proceeds() {
			return decision, nil
		}
	}
	return guard.Proceed(), nil
}

// runHook calls e.hook and collects the decision it passes to next. A call
// after the hook has returned is too late to count and is only logged.
func (n *Navigator) runHook(ctx context.Context, e *hookEntry, to, from route.Descriptor) (guard.Decision, error) {
	var (
		mu       sync.Mutex
		decision guard.Decision
		calls    int
		returned bool
	)

	e.hook(ctx, to, from, func(d guard.Decision) {
		mu.Lock()
		defer mu.Unlock()

		switch {
		case returned:
			n.log.Warn("navigation continuation called after hook returned",
				zap.Int("hook", e.id),
				zap.String("route", to.Path),
				zap.Stringer("ignored", d),
			)
		case calls > 0:
			calls++
			n.log.Warn("navigation continuation called more than once",
				zap.Int("hook", e.id),
				zap.String("route", to.Path),
				zap.Stringer("ignored", d),
			)
		default:
			calls++
			decision = d
		}
	})

	mu.Lock()
	defer mu.Unlock()
	returned = true

	if calls == 0 {
		return guard.Decision{}, fmt.Errorf("%w: hook %d on %s", ErrContinuationNotCalled, e.id, to.Path)
	}
	return decision, nil
}
