package goOwner

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/MrEthical07/goOwner/internal/backendtest"
	"github.com/MrEthical07/goOwner/storage"
)

type facadeFixture struct {
	facade  *Facade
	backend *backendtest.Server
	store   storage.Store
}

func newFixture(t *testing.T, opts backendtest.Options, configure func(*Builder)) *facadeFixture {
	t.Helper()

	backend := backendtest.New(opts)
	t.Cleanup(backend.Close)

	store := storage.NewMemory()
	cfg := DefaultConfig()
	cfg.Backend.URL = backend.URL

	b := New().WithConfig(cfg).WithStore(store)
	if configure != nil {
		configure(b)
	}
	f, err := b.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(f.Close)

	return &facadeFixture{facade: f, backend: backend, store: store}
}

func (fx *facadeFixture) stored(t *testing.T) (string, bool) {
	t.Helper()
	v, found, err := fx.store.Get(context.Background(), "ownerToken")
	if err != nil {
		t.Fatalf("store get: %v", err)
	}
	return v, found
}

func (fx *facadeFixture) seed(t *testing.T, token string) {
	t.Helper()
	if err := fx.store.Set(context.Background(), "ownerToken", token); err != nil {
		t.Fatalf("store set: %v", err)
	}
}

// gatedTransport holds requests whose path ends in suffix until release is closed.
type gatedTransport struct {
	base    http.RoundTripper
	suffix  string
	entered chan struct{}
	arrived chan struct{}
	release chan struct{}
	once    sync.Once
}

func newGatedTransport(suffix string) *gatedTransport {
	return &gatedTransport{
		base:    http.DefaultTransport,
		suffix:  suffix,
		entered: make(chan struct{}),
		arrived: make(chan struct{}, 16),
		release: make(chan struct{}),
	}
}

func (g *gatedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if strings.HasSuffix(req.URL.Path, g.suffix) {
		g.once.Do(func() { close(g.entered) })
		select {
		case g.arrived <- struct{}{}:
		default:
		}
		select {
		case <-g.release:
		case <-req.Context().Done():
			return nil, req.Context().Err()
		}
	}
	return g.base.RoundTrip(req)
}

type failingStore struct {
	err error
}

func (s failingStore) Get(context.Context, string) (string, bool, error) { return "", false, s.err }
func (s failingStore) Set(context.Context, string, string) error         { return s.err }
func (s failingStore) Delete(context.Context, string) error              { return s.err }

var errStoreDown = errors.New("store down")

// blockingStore wraps a store and parks Set calls until release is closed.
type blockingStore struct {
	storage.Store
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func newBlockingStore(inner storage.Store) *blockingStore {
	return &blockingStore{
		Store:   inner,
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
}

func (s *blockingStore) Set(ctx context.Context, key, value string) error {
	s.once.Do(func() { close(s.entered) })
	<-s.release
	return s.Store.Set(ctx, key, value)
}
