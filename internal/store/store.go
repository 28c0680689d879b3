// Package store holds the client-side state for one resource type: the list
// last fetched from the server, the selected item and the loading/error flags
// a screen mirrors.
//
// Local state changes only after the server confirms an operation. Every
// operation takes a generation number and only the most recent one may settle
// the shared Loading and Error fields, so an older response that resolves late
// cannot clear the spinner or overwrite the error of a newer one.
package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ErrNotFound is returned by gateways that resolve an id locally and miss.
var ErrNotFound = errors.New("not found")

// Entity is anything with a server-assigned identifier.
type Entity interface {
	Key() int64
}

// Gateway is the CRUD capability a store drives. P is the create/update
// payload.
type Gateway[T Entity, P any] interface {
	List(ctx context.Context) ([]T, error)
	Get(ctx context.Context, id int64) (T, error)
	Create(ctx context.Context, in P) (T, error)
	Update(ctx context.Context, id int64, in P) (T, error)
	Delete(ctx context.Context, id int64) error
}

// State is a point-in-time copy of a store.
type State[T Entity] struct {
	Items       []T
	Selected    *T
	Loading     bool
	Error       string
	LastFetched *time.Time
}

// Option configures a Store.
type Option func(*options)

type options struct {
	now    func() time.Time
	logger zerolog.Logger
}

// WithClock replaces time.Now, which stamps LastFetched.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithLogger sets the logger failures are reported to.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// Store is the state container for one resource type.
type Store[T Entity, P any] struct {
	name   string
	gw     Gateway[T, P]
	now    func() time.Time
	logger zerolog.Logger

	mu    sync.Mutex
	state State[T]
	// gen is the generation of the most recently started operation.
	gen uint64
	// mutations counts confirmed creates, updates and deletes.
	mutations uint64
	// loadedGen is the generation of the last LoadAll applied to Items.
	loadedGen uint64
	watchers  map[int]func(State[T])
	nextWatch int
}

// New creates an empty store named name backed by gw.
func New[T Entity, P any](name string, gw Gateway[T, P], opts ...Option) *Store[T, P] {
	o := options{now: time.Now, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	return &Store[T, P]{
		name:     name,
		gw:       gw,
		now:      o.now,
		logger:   o.logger.With().Str("store", name).Logger(),
		state:    State[T]{Items: []T{}},
		watchers: make(map[int]func(State[T])),
	}
}

// Name returns the name the store was created with.
func (s *Store[T, P]) Name() string {
	return s.name
}

// ticket identifies one in-flight operation.
type ticket struct {
	gen       uint64
	mutations uint64
}

// begin marks the store loading and hands out the next generation.
func (s *Store[T, P]) begin() ticket {
	s.mu.Lock()
	s.gen++
	t := ticket{gen: s.gen, mutations: s.mutations}
	s.state.Loading = true
	s.state.Error = ""
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snap)
	return t
}

// settle applies fn under the lock and then, if t is still the newest
// operation, clears Loading and records err. fn runs only on success.
func (s *Store[T, P]) settle(t ticket, op string, err error, fn func()) {
	s.mu.Lock()
	if err == nil && fn != nil {
		fn()
	}
	if t.gen == s.gen {
		s.state.Loading = false
		if err != nil {
			s.state.Error = err.Error()
		} else {
			s.state.Error = ""
		}
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()

	if err != nil {
		s.logger.Error().Err(err).Str("op", op).Uint64("generation", t.gen).Msg("store operation failed")
	}
	s.notify(snap)
}

// LoadAll replaces Items with the server's list. On failure Items is kept as
// it was. A list that started loading before a confirmed mutation, or before
// a LoadAll that already landed, is dropped.
func (s *Store[T, P]) LoadAll(ctx context.Context) error {
	t := s.begin()
	items, err := s.gw.List(ctx)
	s.settle(t, "load_all", err, func() {
		if t.mutations != s.mutations || t.gen < s.loadedGen {
			s.logger.Debug().Uint64("generation", t.gen).Msg("discarding stale list")
			return
		}
		if items == nil {
			items = []T{}
		}
		s.state.Items = dedupe(items)
		now := s.now()
		s.state.LastFetched = &now
		s.loadedGen = t.gen
	})
	return err
}

// LoadOne fetches one item and selects it.
func (s *Store[T, P]) LoadOne(ctx context.Context, id int64) (T, error) {
	t := s.begin()
	item, err := s.gw.Get(ctx, id)
	s.settle(t, "load_one", err, func() {
		s.state.Selected = &item
	})
	return item, err
}

// Create adds the server's representation of in to Items. If the returned id
// is already listed the entry is replaced, keeping ids unique.
func (s *Store[T, P]) Create(ctx context.Context, in P) (T, error) {
	t := s.begin()
	item, err := s.gw.Create(ctx, in)
	s.settle(t, "create", err, func() {
		s.mutations++
		if i := s.indexLocked(item.Key()); i >= 0 {
			s.state.Items = replaceAt(s.state.Items, i, item)
			return
		}
		s.state.Items = append(append(make([]T, 0, len(s.state.Items)+1), s.state.Items...), item)
	})
	return item, err
}

// Update replaces the matching item and selects the updated version. An id
// that is neither listed nor selected leaves Items and Selected alone.
func (s *Store[T, P]) Update(ctx context.Context, id int64, in P) (T, error) {
	t := s.begin()
	item, err := s.gw.Update(ctx, id, in)
	s.settle(t, "update", err, func() {
		s.mutations++
		i := s.indexLocked(item.Key())
		if i >= 0 {
			s.state.Items = replaceAt(s.state.Items, i, item)
		}
		if i >= 0 || (s.state.Selected != nil && (*s.state.Selected).Key() == item.Key()) {
			s.state.Selected = &item
		}
	})
	return item, err
}

// Delete removes the item and clears the selection if it pointed at it.
func (s *Store[T, P]) Delete(ctx context.Context, id int64) error {
	t := s.begin()
	err := s.gw.Delete(ctx, id)
	s.settle(t, "delete", err, func() {
		s.mutations++
		kept := make([]T, 0, len(s.state.Items))
		for _, it := range s.state.Items {
			if it.Key() != id {
				kept = append(kept, it)
			}
		}
		s.state.Items = kept
		if s.state.Selected != nil && (*s.state.Selected).Key() == id {
			s.state.Selected = nil
		}
	})
	return err
}

// Reset empties the store. Operations still in flight can no longer land a
// list or clear the flags.
func (s *Store[T, P]) Reset() {
	s.mu.Lock()
	s.gen++
	s.mutations++
	s.loadedGen = s.gen
	s.state = State[T]{Items: []T{}}
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(snap)
}

// ClearError resets Error and nothing else.
func (s *Store[T, P]) ClearError() {
	s.mu.Lock()
	s.state.Error = ""
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(snap)
}

// Select sets or clears the selection without a round trip.
func (s *Store[T, P]) Select(item *T) {
	s.mu.Lock()
	if item == nil {
		s.state.Selected = nil
	} else {
		v := *item
		s.state.Selected = &v
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(snap)
}

// Snapshot returns a copy of the current state.
func (s *Store[T, P]) Snapshot() State[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Items returns a copy of the listed items.
func (s *Store[T, P]) Items() []T {
	return s.Snapshot().Items
}

func (s *Store[T, P]) Selected() *T {
	return s.Snapshot().Selected
}

func (s *Store[T, P]) Loading() bool {
	return s.Snapshot().Loading
}

// Err returns the last error message, or "" if there is none.
func (s *Store[T, P]) Err() string {
	return s.Snapshot().Error
}

func (s *Store[T, P]) LastFetched() *time.Time {
	return s.Snapshot().LastFetched
}

// Count returns the number of listed items.
func (s *Store[T, P]) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.state.Items)
}

// Find looks id up in Items.
func (s *Store[T, P]) Find(id int64) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexLocked(id); i >= 0 {
		return s.state.Items[i], true
	}
	var zero T
	return zero, false
}

// Watch registers fn to receive a snapshot after every state change. The
// returned func unregisters it.
func (s *Store[T, P]) Watch(fn func(State[T])) (cancel func()) {
	s.mu.Lock()
	id := s.nextWatch
	s.nextWatch++
	s.watchers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.watchers, id)
		s.mu.Unlock()
	}
}

func (s *Store[T, P]) notify(snap State[T]) {
	s.mu.Lock()
	fns := make([]func(State[T]), 0, len(s.watchers))
	for _, fn := range s.watchers {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

func (s *Store[T, P]) indexLocked(id int64) int {
	for i, it := range s.state.Items {
		if it.Key() == id {
			return i
		}
	}
	return -1
}

func (s *Store[T, P]) snapshotLocked() State[T] {
	out := State[T]{
		Items:   append([]T(nil), s.state.Items...),
		Loading: s.state.Loading,
		Error:   s.state.Error,
	}
	if out.Items == nil {
		out.Items = []T{}
	}
	if s.state.Selected != nil {
		v := *s.state.Selected
		out.Selected = &v
	}
	if s.state.LastFetched != nil {
		v := *s.state.LastFetched
		out.LastFetched = &v
	}
	return out
}

// replaceAt returns a copy of items with items[i] set to item.
func replaceAt[T any](items []T, i int, item T) []T {
	out := append([]T(nil), items...)
	out[i] = item
	return out
}

// dedupe keeps the last occurrence of each id, in first-seen order.
func dedupe[T Entity](items []T) []T {
	pos := make(map[int64]int, len(items))
	out := make([]T, 0, len(items))
	for _, it := range items {
		if i, ok := pos[it.Key()]; ok {
			out[i] = it
			continue
		}
		pos[it.Key()] = len(out)
		out = append(out, it)
	}
	return out
}
