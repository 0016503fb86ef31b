// Package handler implements the gateway's HTTP handlers. Each handler
// translates an HTTP request into one RPC request, forwards it to the
// owning service, and renders the reply.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/jobdeck/jobdeck-be/internal/cache"
	"github.com/jobdeck/jobdeck-be/internal/gateway/auth"
	"github.com/jobdeck/jobdeck-be/internal/notify"
	"github.com/jobdeck/jobdeck-be/internal/rpc"
)

// Dependencies holds all dependencies needed by handlers
type Dependencies struct {
	Logger  *slog.Logger
	Caller  rpc.Caller
	Cache   *cache.Cache
	Limiter *cache.Limiter
	Hub     *notify.Hub
}

// buildRequest marshals args and attaches the actor identity
func buildRequest(c *gin.Context, op string, args any) (*rpc.Request, error) {
	raw, err := json.Marshal(args)
	if err != nil {
		return nil, err
	}

	identity := auth.FromContext(c)
	return &rpc.Request{
		Op:        op,
		ActorID:   identity.ID,
		ActorRole: identity.Role,
		Args:      raw,
	}, nil
}

// call forwards one operation to its owning service
func call(ctx context.Context, caller rpc.Caller, c *gin.Context, op string, args any) (json.RawMessage, error) {
	req, err := buildRequest(c, op, args)
	if err != nil {
		return nil, err
	}
	return caller.Call(ctx, req)
}
