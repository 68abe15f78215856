package main

import (
	"github.com/hibiken/asynq"

	"pubops-backend/internal/shared"
	"pubops-backend/pkg/container"
)

// HandlerRegistry holds every task handler the worker serves
type HandlerRegistry struct {
	consolidate  asynq.Handler
	deleteObject asynq.Handler
}

func newHandlerRegistry(c *container.Container) *HandlerRegistry {
	return &HandlerRegistry{
		consolidate:  c.ConsolidateJob,
		deleteObject: c.DeleteObjectJob,
	}
}

// Mux routes task types to their handlers
func (r *HandlerRegistry) Mux() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.Handle(shared.TypeConsolidateContributors, r.consolidate)
	mux.Handle(shared.TypeDeleteAttachmentObject, r.deleteObject)
	return mux
}
