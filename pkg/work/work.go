// Package work runs deferred work on a single goroutine.
//
// An Item executes its handler at most once per submission. Submissions made while the
// item is already pending are coalesced, submissions made while the handler is running
// schedule one more execution.
package work

// Item is a unit of deferred work.
type Item struct {
	// handler is the function executed for each pending submission.
	handler func()
	// pending holds at most one submission.
	pending chan struct{}
}

// New initials a new work item for handler.
func New(handler func()) *Item {
	return &Item{
		handler: handler,
		pending: make(chan struct{}, 1),
	}
}

// Submit schedules an execution of the handler. It never blocks.
// The return value is false if an execution was already pending.
func (w *Item) Submit() bool {
	select {
	case w.pending <- struct{}{}:
		return true
	default:
		return false
	}
}

// Run executes submissions until quit is closed.
// Run must be called from exactly one goroutine, so the handler never runs concurrently with itself.
func (w *Item) Run(quit <-chan struct{}) {
	for {
		select {
		case <-quit:
			return
		case <-w.pending:
			w.handler()
		}
	}
}
