package session

import (
	"context"
	"sync"

	"github.com/verte-zerg/beattype/internal/challenge"
)

// submitter delivers word results from a single goroutine so the challenge
// service receives them in the order the words were finished. push never
// blocks on the network.
type submitter struct {
	send func(challenge.WordResult)

	mu      sync.Mutex
	pending []challenge.WordResult
	closed  bool
	wake    chan struct{}
	done    chan struct{}
}

func newSubmitter(send func(challenge.WordResult)) *submitter {
	q := &submitter{
		send: send,
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	go q.run()
	return q
}

func (q *submitter) push(result challenge.WordResult) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.pending = append(q.pending, result)
	q.mu.Unlock()
	q.signal()
}

// close stops accepting results; queued ones are still delivered.
func (q *submitter) close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.signal()
}

// wait blocks until every queued result was delivered or ctx is done.
func (q *submitter) wait(ctx context.Context) error {
	select {
	case <-q.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *submitter) signal() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

func (q *submitter) run() {
	defer close(q.done)
	for {
		q.mu.Lock()
		if len(q.pending) == 0 {
			closed := q.closed
			q.mu.Unlock()
			if closed {
				return
			}
			<-q.wake
			continue
		}
		result := q.pending[0]
		q.pending = q.pending[1:]
		q.mu.Unlock()
		q.send(result)
	}
}
