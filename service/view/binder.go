// Package view connects presentational views to the store and to their local
// UI state. A Binder re-renders its view whenever any bound source changes and
// releases every subscription and timer when it is unmounted.
package view

import (
	"sync"

	"github.com/brojonat/walletdash/service/scope"
)

// Source is anything that can report changes: store cells, the store
// identity, UI-state values.
type Source interface {
	Subscribe(fn func()) (unsubscribe func())
}

// SourceFunc adapts a subscribe function to Source.
type SourceFunc func(fn func()) func()

// Subscribe implements Source.
func (f SourceFunc) Subscribe(fn func()) func() { return f(fn) }

// Binder owns one mounted view.
type Binder struct {
	scope  *scope.Scope
	render func()

	mu      sync.Mutex
	renders int
}

// Mount subscribes render to sources, renders once and returns the binder.
// Every subscription is released when the scope closes.
func Mount(sc *scope.Scope, render func(), sources ...Source) *Binder {
	b := &Binder{scope: sc, render: render}
	for _, src := range sources {
		sc.Defer(src.Subscribe(b.Rerender))
	}
	b.Rerender()
	return b
}

// Effect runs fn now and again after every change of src, for as long as the
// view is mounted. Effects are how views dispatch actions; renders never do.
func (b *Binder) Effect(src Source, fn func()) {
	b.scope.Defer(src.Subscribe(func() {
		if !b.scope.Closed() {
			fn()
		}
	}))
	fn()
}

// Rerender renders the view. Renders are serialised, so a render must not
// change a source it is bound to. After unmount it does nothing.
func (b *Binder) Rerender() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.scope.Closed() {
		return
	}
	b.renders++
	b.render()
}

// Renders returns how many times the view has rendered.
func (b *Binder) Renders() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.renders
}

// Scope returns the scope that owns the view's side effects.
func (b *Binder) Scope() *scope.Scope {
	return b.scope
}

// Unmount releases subscriptions and cancels timers owned by the view.
func (b *Binder) Unmount() {
	b.scope.Close()
}
