package rpc

import (
	"fmt"
	"strings"
	"time"
)

// Route describes how one operation is dispatched: which durable queue the
// request goes to, whether the operation mutates state (mutating operations
// are never auto-retried by the gateway), and an optional timeout override.
type Route struct {
	Queue    string
	Mutating bool
	Timeout  time.Duration
}

// RoutingTable maps operation names to routes. It is built once at startup
// and treated as immutable afterwards.
type RoutingTable struct {
	routes map[string]Route
}

// QueueNames groups the durable queue names for the three domain services.
type QueueNames struct {
	Job         string
	Application string
	Interview   string
}

// NewRoutingTable builds the static operation routing table. The prefix of
// an operation name selects the owning service; notification reads are
// served by the application service.
func NewRoutingTable(q QueueNames) *RoutingTable {
	t := &RoutingTable{routes: make(map[string]Route)}

	// job service
	t.add("job.create", q.Job, true)
	t.add("job.getById", q.Job, false)
	t.add("job.search", q.Job, false)
	t.add("job.update", q.Job, true)
	t.add("job.delete", q.Job, true)
	t.add("job.apply", q.Job, true)
	t.add("job.save", q.Job, true)
	t.add("job.unsave", q.Job, true)
	t.add("job.getSaved", q.Job, false)

	// application service
	t.add("application.getById", q.Application, false)
	t.add("application.updateStatus", q.Application, true)
	t.add("application.getByJob", q.Application, false)
	t.add("notification.list", q.Application, false)
	t.add("notification.markRead", q.Application, true)
	t.add("notification.markAllRead", q.Application, true)

	// interview service
	t.add("interview.create", q.Interview, true)
	t.add("interview.update", q.Interview, true)
	t.add("interview.cancel", q.Interview, true)
	t.add("interview.getUpcoming", q.Interview, false)

	return t
}

func (t *RoutingTable) add(op, queue string, mutating bool) {
	t.routes[op] = Route{Queue: queue, Mutating: mutating}
}

// SetTimeout installs a per-operation timeout override
func (t *RoutingTable) SetTimeout(op string, d time.Duration) error {
	r, ok := t.routes[op]
	if !ok {
		return fmt.Errorf("unknown operation %q", op)
	}
	r.Timeout = d
	t.routes[op] = r
	return nil
}

// Resolve returns the route for an operation name
func (t *RoutingTable) Resolve(op string) (Route, error) {
	r, ok := t.routes[op]
	if !ok {
		return Route{}, fmt.Errorf("no route for operation %q", op)
	}
	return r, nil
}

// Prefix returns the service prefix of an operation name
func Prefix(op string) string {
	if i := strings.IndexByte(op, '.'); i > 0 {
		return op[:i]
	}
	return op
}
