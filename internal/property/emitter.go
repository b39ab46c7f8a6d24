package property

// Emitter fans discrete events out to listeners, one call per Emit.
type Emitter[T any] struct {
	listeners []emitterListener[T]
	nextID    ListenerID
}

type emitterListener[T any] struct {
	id ListenerID
	fn func(T)
}

func (e *Emitter[T]) AddListener(fn func(T)) ListenerID {
	e.nextID++
	e.listeners = append(e.listeners, emitterListener[T]{id: e.nextID, fn: fn})
	return e.nextID
}

func (e *Emitter[T]) RemoveListener(id ListenerID) bool {
	for i, l := range e.listeners {
		if l.id == id {
			e.listeners = append(e.listeners[:i:i], e.listeners[i+1:]...)
			return true
		}
	}
	return false
}

// Emit calls every listener registered at the time of the call.
func (e *Emitter[T]) Emit(v T) {
	snapshot := make([]emitterListener[T], len(e.listeners))
	copy(snapshot, e.listeners)
	for _, l := range snapshot {
		l.fn(v)
	}
}

func (e *Emitter[T]) Len() int {
	return len(e.listeners)
}
