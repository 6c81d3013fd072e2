// Package keva attaches a typed record store to a host application: pick a
// backend, hand out collections and views over it and report trouble on the
// host's event bus.
package keva

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mazzegi/log"

	"github.com/mazzegi/keva/model"
	"github.com/mazzegi/keva/signal"
	"github.com/mazzegi/keva/store"
	"github.com/mazzegi/keva/syncx"
	"github.com/mazzegi/keva/view"
)

// Bus is the host's event channel. A nil bus drops all events.
type Bus interface {
	Emit(event string, args ...any)
}

// Events emitted on the host bus.
const (
	EventReady = "keva:ready"
	EventError = "keva:error"
)

const (
	readyTopic       = "ready"
	waitReadyTimeout = 30 * time.Second
)

// Client is one attached backend plus the key root everything below it uses.
type Client struct {
	*log.Hook
	st      store.Store
	keys    store.Keys
	signals *signal.Signals

	mu    sync.RWMutex
	ready bool
}

// Attach validates the config, opens the selected backend and announces
// readiness on the bus. Every store error passing the client is emitted as
// EventError before it returns to the caller.
func Attach(bus Bus, cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	st, err := openBackend(cfg)
	if err != nil {
		return nil, fmt.Errorf("open backend %q: %w", cfg.Backend, err)
	}
	cl := &Client{
		Hook:    log.ComponentHook("keva"),
		st:      &busStore{Store: st, bus: bus},
		keys:    store.NewKeys(cfg.Root),
		signals: signal.New(),
	}
	cl.mu.Lock()
	cl.ready = true
	cl.mu.Unlock()
	cl.signals.Emit(readyTopic)
	if bus != nil {
		bus.Emit(EventReady, cfg.Backend)
	}
	cl.Infof("attached backend %q", cfg.Backend)
	return cl, nil
}

func openBackend(cfg Config) (store.Store, error) {
	switch cfg.Backend {
	case BackendMemory:
		return store.NewMemStore(), nil
	case BackendBolt:
		return store.NewBoltStore(cfg.File)
	case BackendSqlite:
		return store.NewSqliteStore(cfg.File)
	case BackendRedis:
		return store.NewRedisStore(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}

func (cl *Client) Store() store.Store {
	return cl.st
}

func (cl *Client) Keys() store.Keys {
	return cl.keys
}

// Key builds a key under the client's root.
func (cl *Client) Key(segments ...string) string {
	return cl.keys.Build(segments...)
}

// Collection creates a collection bound to the client's store and key root.
func (cl *Client) Collection(name string, schema model.Schema) (*model.Collection, error) {
	return model.New(cl.st, cl.keys, name, schema)
}

// View creates a view bound to the client's store and key root.
func (cl *Client) View(cfg view.Config, colls ...*model.Collection) (*view.View, error) {
	return view.New(cl.st, cl.keys, cfg, colls...)
}

func (cl *Client) isReady() bool {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	return cl.ready
}

// WaitReady blocks until the client is attached, the context is done or the
// wait times out.
func (cl *Client) WaitReady(ctx context.Context) error {
	if syncx.IsContextDone(ctx) {
		return ctx.Err()
	}
	if cl.isReady() {
		return nil
	}
	if !cl.signals.WaitContext(ctx, readyTopic, waitReadyTimeout) {
		return fmt.Errorf("not ready within %s", waitReadyTimeout)
	}
	return nil
}

// Close closes the backend. The client is unusable afterwards.
func (cl *Client) Close() error {
	cl.mu.Lock()
	cl.ready = false
	cl.mu.Unlock()
	cl.signals.Close()
	return cl.st.Close()
}
