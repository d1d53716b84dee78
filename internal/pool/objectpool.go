package pool

import "sync"

// ObjectPool is a bounded free list. Unlike sync.Pool it never drops objects behind the
// caller's back, so buffers retain their grown capacity between uses.
type ObjectPool[T any] struct {
	mu    sync.Mutex
	queue []T
}

func NewObjectPool[T any](queueSize int) *ObjectPool[T] {
	return &ObjectPool[T]{
		queue: make([]T, 0, queueSize),
	}
}

// Acquire returns a pooled object, if any.
func (o *ObjectPool[T]) Acquire() (obj T, ok bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if len(o.queue) != 0 {
		obj = o.queue[len(o.queue)-1]
		o.queue = o.queue[:len(o.queue)-1]
		return obj, true
	}

	return obj, false
}

// Release returns the object into the pool. Once the pool is full, the object is dropped.
func (o *ObjectPool[T]) Release(obj T) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if len(o.queue) == cap(o.queue) {
		return
	}

	o.queue = append(o.queue, obj)
}

// Buffers pools byte slices of a fixed initial capacity, refusing to keep the ones grown
// beyond the limit.
type Buffers struct {
	objects        *ObjectPool[[]byte]
	initial, limit int
}

func NewBuffers(queueSize, initial, limit int) *Buffers {
	return &Buffers{
		objects: NewObjectPool[[]byte](queueSize),
		initial: initial,
		limit:   limit,
	}
}

// Acquire returns an empty buffer.
func (b *Buffers) Acquire() []byte {
	if buff, ok := b.objects.Acquire(); ok {
		return buff[:0]
	}

	return make([]byte, 0, b.initial)
}

func (b *Buffers) Release(buff []byte) {
	if cap(buff) > b.limit {
		return
	}

	b.objects.Release(buff)
}
