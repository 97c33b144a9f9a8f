package router

import (
	"fmt"

	"github.com/gin-gonic/gin"
)

type Registry struct {
	Engine      *gin.Engine
	API         *gin.RouterGroup
	middlewares []gin.HandlerFunc
	modules     []Module
	names       map[string]struct{}
}

func NewRegistry(engine *gin.Engine) *Registry {
	return &Registry{Engine: engine, API: engine.Group("/api"), names: map[string]struct{}{}}
}

// Use adds middleware applied to every module route.
func (r *Registry) Use(mw ...gin.HandlerFunc) {
	r.middlewares = append(r.middlewares, mw...)
}

// Add queues a module; adding the same name twice is a wiring bug and panics.
func (r *Registry) Add(mod Module) {
	if _, dup := r.names[mod.Name()]; dup {
		panic(fmt.Sprintf("router: module %q added twice", mod.Name()))
	}
	r.names[mod.Name()] = struct{}{}
	r.modules = append(r.modules, mod)
}

// Modules lists module names in registration order.
func (r *Registry) Modules() []string {
	out := make([]string, 0, len(r.modules))
	for _, m := range r.modules {
		out = append(out, m.Name())
	}
	return out
}

func (r *Registry) RegisterAll() {
	if len(r.middlewares) > 0 {
		r.API.Use(r.middlewares...)
	}
	for _, m := range r.modules {
		m.Register(r.API)
	}
}
