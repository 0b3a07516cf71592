// Package queue implements the interlock's single MPSC event queue: many
// Connection producers enqueue Messages, and exactly one consumer (the
// Interlock's event loop) dequeues them in FIFO order.
package queue

import "github.com/dallas-makerspace/interlock/message"

// Queue is a many-producer, single-consumer channel of messages. The zero
// value is not usable; construct with New.
type Queue struct {
	ch chan message.Message
}

// New returns a Queue buffered to hold n pending messages without blocking
// producers. A small buffer absorbs bursts (e.g. a badge swipe arriving
// while the loop is mid-fanout) without changing ordering semantics.
func New(n int) *Queue {
	return &Queue{ch: make(chan message.Message, n)}
}

// Enqueue pushes msg onto the queue. Safe for concurrent use by any number
// of producers.
func (q *Queue) Enqueue(msg message.Message) {
	q.ch <- msg
}

// Dequeue blocks until a message is available and returns it. Only the
// Interlock's event loop should call this.
func (q *Queue) Dequeue() message.Message {
	return <-q.ch
}

// C exposes the underlying channel for use in select statements alongside
// timers.
func (q *Queue) C() <-chan message.Message {
	return q.ch
}
