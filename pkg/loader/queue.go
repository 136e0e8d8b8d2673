package loader

import "sync"

// notifyQueue is an unbounded FIFO of notifications. Pushes never block, so
// they are safe while holding the loader's registry lock; pop blocks until
// an item arrives or the queue is closed and drained.
type notifyQueue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	items  []notification
	closed bool
}

func newNotifyQueue() *notifyQueue {
	q := &notifyQueue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

func (q *notifyQueue) push(n notification) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.items = append(q.items, n)
	q.cond.Signal()
}

func (q *notifyQueue) pop() (notification, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.items) == 0 && !q.closed {
		q.cond.Wait()
	}
	if len(q.items) == 0 {
		return notification{}, false
	}
	n := q.items[0]
	q.items = q.items[1:]
	return n, true
}

func (q *notifyQueue) close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	q.cond.Broadcast()
}
