package property

// ListenerID identifies a registered observer for later removal.
type ListenerID uint64

// Observer receives the new and the previous value.
type Observer[T any] func(newValue, oldValue T)

// Dependency is anything a Derived value can recompute from.
type Dependency interface {
	Subscribe(fn func()) ListenerID
	Unlink(id ListenerID) bool
}

// ReadOnly is the consumer surface shared by Property and Derived.
type ReadOnly[T comparable] interface {
	Dependency
	Get() T
	Link(fn Observer[T]) ListenerID
	LazyLink(fn Observer[T]) ListenerID
}

// Options configures a Property. Every field is optional.
type Options[T any] struct {
	// Name is used in error messages.
	Name string
	// Validate rejects illegal values. Set never clamps.
	Validate func(T) error
}

type listener[T any] struct {
	id ListenerID
	fn Observer[T]
}

// Property is a mutable value with synchronous change notification.
type Property[T comparable] struct {
	name      string
	value     T
	initial   T
	validate  func(T) error
	listeners []listener[T]
	nextID    ListenerID
	notifying bool
}

// New creates an unvalidated property.
func New[T comparable](initial T) *Property[T] {
	return &Property[T]{value: initial, initial: initial}
}

// NewWithOptions creates a property and validates the initial value.
func NewWithOptions[T comparable](initial T, opts Options[T]) (*Property[T], error) {
	if opts.Validate != nil {
		if err := opts.Validate(initial); err != nil {
			return nil, err
		}
	}
	return &Property[T]{
		name:     opts.Name,
		value:    initial,
		initial:  initial,
		validate: opts.Validate,
	}, nil
}

// NewNumber creates a float property restricted to r.
func NewNumber(name string, initial float64, r Range) (*Property[float64], error) {
	return NewWithOptions(initial, Options[float64]{Name: name, Validate: r.Validator(name)})
}

func (p *Property[T]) Name() string { return p.name }
func (p *Property[T]) Get() T       { return p.value }
func (p *Property[T]) Initial() T   { return p.initial }

// Set validates v, stores it and, if it differs from the current value,
// notifies every observer before returning.
func (p *Property[T]) Set(v T) error {
	if p.validate != nil {
		if err := p.validate(v); err != nil {
			return err
		}
	}
	return p.set(v)
}

// Reset restores the construction-time value.
func (p *Property[T]) Reset() error {
	return p.set(p.initial)
}

func (p *Property[T]) set(v T) error {
	old := p.value
	if v == old {
		return nil
	}
	if p.notifying {
		return &ReentryError{Name: p.name}
	}
	p.value = v
	p.notify(v, old)
	return nil
}

func (p *Property[T]) notify(v, old T) {
	snapshot := make([]listener[T], len(p.listeners))
	copy(snapshot, p.listeners)

	p.notifying = true
	defer func() { p.notifying = false }()

	for _, l := range snapshot {
		l.fn(v, old)
	}
}

// Link registers fn and calls it once with the current value.
func (p *Property[T]) Link(fn Observer[T]) ListenerID {
	id := p.LazyLink(fn)
	fn(p.value, p.value)
	return id
}

// LazyLink registers fn without calling it.
func (p *Property[T]) LazyLink(fn Observer[T]) ListenerID {
	p.nextID++
	p.listeners = append(p.listeners, listener[T]{id: p.nextID, fn: fn})
	return p.nextID
}

// Subscribe registers a change callback that ignores the values.
func (p *Property[T]) Subscribe(fn func()) ListenerID {
	return p.LazyLink(func(T, T) { fn() })
}

// Unlink removes a registered observer. It is safe to call from inside a
// notification; the running notification still uses its snapshot.
func (p *Property[T]) Unlink(id ListenerID) bool {
	for i, l := range p.listeners {
		if l.id == id {
			p.listeners = append(p.listeners[:i:i], p.listeners[i+1:]...)
			return true
		}
	}
	return false
}

// Listeners returns the number of registered observers.
func (p *Property[T]) Listeners() int {
	return len(p.listeners)
}
