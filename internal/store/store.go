package store

import (
	"errors"
	"fmt"
	"slices"
	"sync"
)

var ErrNotStore = errors.New("value is not a store")

// Key names the record field a write touched.
type Key string

// Listener is called synchronously after every effective write with a copy of the record.
type Listener[T any] func(key Key, record T)

type ListenerID uint64

type subscription[T any] struct {
	id ListenerID
	fn Listener[T]
}

// Store wraps a plain record so that field writes made through Set notify listeners.
// Invalidation is coarse-grained: any field write notifies every listener of the store.
type Store[T any] struct {
	mu        sync.Mutex
	record    T
	listeners []subscription[T]
	nextID    ListenerID
}

// New - wraps the record into a reactive store.
func New[T any](record T) *Store[T] {
	return &Store[T]{record: record}
}

// Get - returns a copy of the current record. A nil store yields the zero record.
func (that *Store[T]) Get() T {
	if that == nil {
		var zero T
		return zero
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	return that.record
}

// Listen - registers fn and returns the id used to stop listening.
func (that *Store[T]) Listen(fn Listener[T]) (ListenerID, error) {
	if that == nil {
		return 0, fmt.Errorf("%w: listen", ErrNotStore)
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	that.nextID++
	that.listeners = append(that.listeners, subscription[T]{id: that.nextID, fn: fn})

	return that.nextID, nil
}

// StopListening - removes the listener; unknown ids are ignored.
func (that *Store[T]) StopListening(id ListenerID) error {
	if that == nil {
		return fmt.Errorf("%w: stop listening", ErrNotStore)
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	that.listeners = slices.DeleteFunc(that.listeners, func(s subscription[T]) bool {
		return s.id == id
	})

	return nil
}

// Set - writes value into the field selected by field when it differs from the current one,
// then notifies every listener before returning. It reports whether a write happened.
func Set[T any, V comparable](s *Store[T], key Key, field func(*T) *V, value V) (bool, error) {
	if s == nil {
		return false, fmt.Errorf("%w: set %s", ErrNotStore, key)
	}

	s.mu.Lock()

	current := field(&s.record)
	if *current == value {
		s.mu.Unlock()
		return false, nil
	}

	*current = value
	record := s.record
	listeners := slices.Clone(s.listeners)

	s.mu.Unlock()

	// listeners run outside the lock so they may read the store again
	for _, l := range listeners {
		l.fn(key, record)
	}

	return true, nil
}
