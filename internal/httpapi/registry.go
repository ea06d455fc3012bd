package httpapi

import (
	"log/slog"
	"sync"

	"github.com/ready2shop/storefront/internal/cart"
	"github.com/ready2shop/storefront/internal/checkout"
	"github.com/ready2shop/storefront/internal/events"
	"github.com/ready2shop/storefront/internal/refdata"
)

// shopSession is everything one visitor owns: their cart engine and the
// checkout session driving it.
type shopSession struct {
	cart     *cart.Engine
	checkout *checkout.Session
}

// Registry hands out per-visitor sessions, creating them lazily on first
// use. Purely in-memory; sessions vanish on restart.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*shopSession

	refdata refdata.Provider
	gateway checkout.OrderGateway
	events  events.Publisher
	log     *slog.Logger
}

func NewRegistry(provider refdata.Provider, gw checkout.OrderGateway, publisher events.Publisher, log *slog.Logger) *Registry {
	return &Registry{
		sessions: make(map[string]*shopSession),
		refdata:  provider,
		gateway:  gw,
		events:   publisher,
		log:      log,
	}
}

func (r *Registry) session(sessionID string) *shopSession {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[sessionID]; ok {
		return s
	}

	engine := cart.NewEngine()
	s := &shopSession{
		cart:     engine,
		checkout: checkout.NewSession(engine, r.refdata, r.gateway, r.events, r.log),
	}
	r.sessions[sessionID] = s
	return s
}
