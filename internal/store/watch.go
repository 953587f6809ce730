package store

import (
	"sync"

	"github.com/rs/zerolog/log"
)

// Listener receives the full current store list. Every invocation is an
// authoritative-as-of-now snapshot, never a delta: listeners must replace
// whatever they previously held rather than diff against it.
type Listener func(stores []MerchantStore)

// Unsubscribe detaches a listener registered with SubscribeAll.
type Unsubscribe func()

// watcher fans registry snapshots out to listeners.
type watcher struct {
	mu        sync.Mutex
	nextID    int
	listeners map[int]Listener
}

func newWatcher() *watcher {
	return &watcher{listeners: make(map[int]Listener)}
}

func (w *watcher) subscribe(l Listener) Unsubscribe {
	w.mu.Lock()
	id := w.nextID
	w.nextID++
	w.listeners[id] = l
	w.mu.Unlock()

	return func() {
		w.mu.Lock()
		delete(w.listeners, id)
		w.mu.Unlock()
	}
}

func (w *watcher) publish(stores []MerchantStore) {
	w.mu.Lock()
	listeners := make([]Listener, 0, len(w.listeners))
	for _, l := range w.listeners {
		listeners = append(listeners, l)
	}
	w.mu.Unlock()

	for _, l := range listeners {
		notify(l, stores)
	}
}

func notify(l Listener, stores []MerchantStore) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic_value", r).Msg("store: listener panicked on snapshot")
		}
	}()
	l(stores)
}
