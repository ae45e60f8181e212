package hook

import (
	"cmp"
	"context"
	"log/slog"
	"reflect"
	"runtime"
	"slices"
	"strconv"
	"sync"
	"unsafe"

	"github.com/ivupcn/restina-framework/pkg/logger"
)

// DefaultPriority is used when no WithPriority option is given.
const DefaultPriority = 10

// ActionFunc is a side-effect subscriber. Returned errors abort DoAction.
type ActionFunc func(ctx context.Context, args ...any) error

// FilterFunc transforms value and returns the value passed to the next filter.
type FilterFunc func(ctx context.Context, value any, args ...any) (any, error)

// HookOption configures a single registration.
type HookOption func(*registration)

// WithPriority sets the registration priority. Higher runs first.
func WithPriority(p int) HookOption {
	return func(r *registration) {
		r.priority = p
	}
}

// WithID sets an explicit identity for the callback.
// Registrations with the same identity on the same hook are deduplicated.
// Without it the identity is the function value itself: registering the same
// value twice is a no-op, while two closures or method values are distinct
// even when built by the same code.
func WithID(id string) HookOption {
	return func(r *registration) {
		r.id = id
	}
}

// BusOption configures a Bus.
type BusOption func(*Bus)

// WithLogger sets the logger used for registration diagnostics.
func WithLogger(l *slog.Logger) BusOption {
	return func(b *Bus) {
		if l != nil {
			b.logger = l
		}
	}
}

type registration struct {
	action   ActionFunc
	filter   FilterFunc
	id       string
	priority int
}

// Bus is a registry of named action and filter hooks.
//
// Registration is expected to happen during boot; Freeze rejects it
// afterwards. Dispatch works on a snapshot of the registrations and never
// holds the lock while callbacks run.
type Bus struct {
	logger  *slog.Logger
	actions map[string][]registration
	filters map[string][]registration
	mu      sync.RWMutex
	loaded  bool
	frozen  bool
}

// New creates an empty Bus.
func New(opts ...BusOption) *Bus {
	b := &Bus{
		logger:  logger.NewNope(),
		actions: make(map[string][]registration),
		filters: make(map[string][]registration),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// AddAction subscribes fn to the named action hook.
// Registering a callback with an identity already present is a no-op.
func (b *Bus) AddAction(name string, fn ActionFunc, opts ...HookOption) error {
	if fn == nil {
		return ErrNilCallback
	}
	r := newRegistration(funcID(fn), opts)
	r.action = fn
	return b.add(actionKind, name, r)
}

// AddFilter subscribes fn to the named filter hook.
// Registering a callback with an identity already present is a no-op.
func (b *Bus) AddFilter(name string, fn FilterFunc, opts ...HookOption) error {
	if fn == nil {
		return ErrNilCallback
	}
	r := newRegistration(funcID(fn), opts)
	r.filter = fn
	return b.add(filterKind, name, r)
}

// DoAction invokes every action registered under name in priority order.
// The first callback error stops the chain and is returned unchanged.
func (b *Bus) DoAction(ctx context.Context, name string, args ...any) error {
	for _, r := range b.snapshot(actionKind, name) {
		if err := r.action(ctx, args...); err != nil {
			return err
		}
	}
	return nil
}

// ApplyFilters threads value through every filter registered under name.
// With no filters the input is returned unchanged.
func (b *Bus) ApplyFilters(ctx context.Context, name string, value any, args ...any) (any, error) {
	for _, r := range b.snapshot(filterKind, name) {
		var err error
		value, err = r.filter(ctx, value, args...)
		if err != nil {
			return value, err
		}
	}
	return value, nil
}

// RemoveAction removes fn from the named hook. A nil fn clears the hook.
// Pass the same WithID used at registration to remove by explicit identity.
func (b *Bus) RemoveAction(name string, fn ActionFunc, opts ...HookOption) error {
	id := ""
	if fn != nil {
		id = newRegistration(funcID(fn), opts).id
	} else if len(opts) > 0 {
		id = newRegistration("", opts).id
	}
	return b.remove(actionKind, name, id)
}

// RemoveFilter removes fn from the named hook. A nil fn clears the hook.
func (b *Bus) RemoveFilter(name string, fn FilterFunc, opts ...HookOption) error {
	id := ""
	if fn != nil {
		id = newRegistration(funcID(fn), opts).id
	} else if len(opts) > 0 {
		id = newRegistration("", opts).id
	}
	return b.remove(filterKind, name, id)
}

// HasAction reports whether name has at least one action.
func (b *Bus) HasAction(name string) bool {
	return b.Actions(name) > 0
}

// HasFilter reports whether name has at least one filter.
func (b *Bus) HasFilter(name string) bool {
	return b.Filters(name) > 0
}

// Actions returns the number of actions registered under name.
func (b *Bus) Actions(name string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.actions[name])
}

// Filters returns the number of filters registered under name.
func (b *Bus) Filters(name string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.filters[name])
}

// Freeze rejects any further registration or removal with ErrFrozen.
func (b *Bus) Freeze() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.frozen = true
}

// Frozen reports whether Freeze has been called.
func (b *Bus) Frozen() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.frozen
}

// Reset drops every registration and clears the loaded and frozen flags.
// Intended for tests.
func (b *Bus) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.actions = make(map[string][]registration)
	b.filters = make(map[string][]registration)
	b.loaded = false
	b.frozen = false
}

type kind int

const (
	actionKind kind = iota
	filterKind
)

// table returns the registrations for k. Caller must hold the mutex.
func (b *Bus) table(k kind) map[string][]registration {
	if k == filterKind {
		return b.filters
	}
	return b.actions
}

func (b *Bus) add(k kind, name string, r registration) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	table := b.table(k)

	if b.frozen {
		return ErrFrozen
	}

	for _, existing := range table[name] {
		if existing.id == r.id {
			b.logger.Debug("hook already registered",
				slog.String("hook", name),
				slog.String("callback", r.id),
			)
			return nil
		}
	}

	list := append(table[name], r)
	slices.SortStableFunc(list, func(x, y registration) int {
		return cmp.Compare(y.priority, x.priority)
	})
	table[name] = list
	return nil
}

func (b *Bus) remove(k kind, name, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	table := b.table(k)

	if b.frozen {
		return ErrFrozen
	}

	if id == "" {
		delete(table, name)
		return nil
	}

	table[name] = slices.DeleteFunc(table[name], func(r registration) bool {
		return r.id == id
	})
	if len(table[name]) == 0 {
		delete(table, name)
	}
	return nil
}

func (b *Bus) snapshot(k kind, name string) []registration {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return slices.Clone(b.table(k)[name])
}

func newRegistration(id string, opts []HookOption) registration {
	r := registration{id: id, priority: DefaultPriority}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// funcID identifies fn by its symbol name and the address of its closure
// object. A top-level function has one static closure object; each evaluated
// capturing closure or method value gets its own.
func funcID[F ActionFunc | FilterFunc](fn F) string {
	name := "func"
	if f := runtime.FuncForPC(reflect.ValueOf(fn).Pointer()); f != nil {
		name = f.Name()
	}
	obj := *(*uintptr)(unsafe.Pointer(&fn))
	return name + "@" + strconv.FormatUint(uint64(obj), 16)
}
