// Package rpc implements request/reply messaging over RabbitMQ. The gateway
// publishes a request to a domain service's durable queue with a fresh
// correlation id and a reply-to queue; the service executes the named
// operation and publishes a reply frame back. The gateway never resends a
// request: a missing reply within the deadline surfaces as UNAVAILABLE.
package rpc

import (
	"encoding/json"

	"github.com/jobdeck/jobdeck-be/internal/domain"
)

// Request is the typed envelope carried for every operation. Args is the
// per-operation payload, validated at the gateway before dispatch. An empty
// ActorID means the caller presented no (or an invalid) credential on an
// optional-identity operation.
type Request struct {
	Op        string          `json:"op"`
	ActorID   string          `json:"actor_id,omitempty"`
	ActorRole string          `json:"actor_role,omitempty"`
	Args      json.RawMessage `json:"args"`
}

// Reply is the frame a service publishes back to the caller's reply queue.
type Reply struct {
	OK        bool            `json:"ok"`
	Data      json.RawMessage `json:"data,omitempty"`
	ErrorKind string          `json:"error_kind,omitempty"`
	Message   string          `json:"message,omitempty"`
}

// NewErrorReply builds a reply frame from a handler error
func NewErrorReply(err error) *Reply {
	return &Reply{
		OK:        false,
		ErrorKind: string(domain.KindOf(err)),
		Message:   domain.MessageOf(err),
	}
}

// NewDataReply builds a success reply, marshaling data into the frame
func NewDataReply(data any) (*Reply, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return &Reply{OK: true, Data: raw}, nil
}

// Err converts an error reply back into a typed domain error. Unknown kinds
// map to INTERNAL so unexpected frames never masquerade as caller mistakes.
func (r *Reply) Err() error {
	if r.OK {
		return nil
	}
	kind := domain.Kind(r.ErrorKind)
	switch kind {
	case domain.KindNotFound, domain.KindForbidden, domain.KindConflict,
		domain.KindBadRequest, domain.KindUnavailable:
		return &domain.Error{Kind: kind, Message: r.Message}
	}
	return &domain.Error{Kind: domain.KindInternal, Message: r.Message}
}
