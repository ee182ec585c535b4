package transport

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/valyala/bytebufferpool"
)

// ErrQueueFull is returned by TryEnqueue when the queue is at capacity.
var ErrQueueFull = errors.New("delivery queue full")

// maxPooledBuffer controls the largest buffer returned to the pool.
// Larger buffers are dropped so a single oversized payload cannot pin
// resident memory.
const maxPooledBuffer = 256 * 1024 // 256 KiB

var itemPool = sync.Pool{New: func() any { return &Item{} }}

// Item wraps a Delivery whose payload is backed by a pooled buffer.
// Consumers MUST call Done() exactly once after processing.
type Item struct {
	Delivery Delivery

	buf  *bytebufferpool.ByteBuffer
	once sync.Once
}

// Done releases the pooled payload buffer and returns the item to the
// pool. The Delivery payload must not be retained past this call.
func (it *Item) Done() {
	it.once.Do(func() {
		if it.buf != nil {
			if cap(it.buf.B) > maxPooledBuffer {
				it.buf = nil
			} else {
				bytebufferpool.Put(it.buf)
				it.buf = nil
			}
		}
		it.Delivery = Delivery{}
		itemPool.Put(it)
	})
}

// Queue is the bounded inbound delivery queue between a transport's read
// loop and the session. Producers copy payloads into pooled buffers; the
// single consumer ranges over Out().
type Queue struct {
	ch       chan *Item
	capacity int
	dropped  uint64
}

// NewQueue creates a bounded queue. Non-positive capacities fall back to
// the default.
func NewQueue(capacity int) *Queue {
	if capacity <= 0 {
		capacity = 1024
	}
	return &Queue{ch: make(chan *Item, capacity), capacity: capacity}
}

// Out returns the read-only consumer side of the queue.
func (q *Queue) Out() <-chan *Item { return q.ch }

// TryEnqueue copies payload into a pooled buffer and enqueues a delivery
// without blocking. A full queue drops the delivery and returns
// ErrQueueFull; the transport stream must never stall on a slow consumer.
func (q *Queue) TryEnqueue(kind DeliveryKind, channel string, payload []byte) error {
	it := itemPool.Get().(*Item)
	it.once = sync.Once{}
	it.Delivery = Delivery{Kind: kind, Channel: channel}

	var bb *bytebufferpool.ByteBuffer
	if len(payload) > 0 {
		bb = bytebufferpool.Get()
		bb.B = append(bb.B[:0], payload...)
		it.Delivery.Payload = bb.B[:len(payload)]
		it.buf = bb
	}

	select {
	case q.ch <- it:
		return nil
	default:
		if bb != nil {
			bytebufferpool.Put(bb)
			it.buf = nil
		}
		it.Delivery = Delivery{}
		itemPool.Put(it)
		atomic.AddUint64(&q.dropped, 1)
		return ErrQueueFull
	}
}

// Close closes the consumer channel. Only the producing side may call it,
// exactly once; the consumer drains remaining items as usual.
func (q *Queue) Close() { close(q.ch) }

// CloseAndDrain closes the queue and releases any undelivered items. Use
// only when no consumer is attached.
func (q *Queue) CloseAndDrain() {
	close(q.ch)
	for it := range q.ch {
		it.Done()
	}
}

// Len returns the number of queued items.
func (q *Queue) Len() int { return len(q.ch) }

// Cap returns the configured capacity.
func (q *Queue) Cap() int { return q.capacity }

// Dropped returns how many deliveries were dropped on a full queue.
func (q *Queue) Dropped() uint64 { return atomic.LoadUint64(&q.dropped) }
