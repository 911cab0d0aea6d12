// Package engine serializes store operations through a single writer.
//
// The core store assumes that one operation fully commits before the next
// begins. Hosts with more than one goroutine (the CLI, the scenario harness,
// anything serving requests) submit operations to an Engine instead of
// calling the store directly.
//
// Single-Writer Loop:
//
// 1. Submit enqueues a request on a FIFO queue and waits for its reply.
// 2. Engine.Run dequeues requests one at a time.
// 3. Each request is stamped with a request id and a sequence number.
// 4. The operation runs against the todo.Store and the reply is sent back.
//
// Operations are applied in submission order and never overlap. Domain
// errors (todo.ErrNotFound, todo.ErrInvalidInput) are returned to the
// submitter unchanged.
//
// Sequence numbers come from Clock, never from wall time.
package engine
