// Package registry caches normalized schemas per endpoint for the instances
// referencing them and resynchronizes tracked nodes when a schema changes.
package registry

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"net/http"
	"slices"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/Yamashou/gqlblock/client"
	"github.com/Yamashou/gqlblock/node"
	"github.com/Yamashou/gqlblock/schema"
	"github.com/Yamashou/gqlblock/template"
)

const defaultTemplateCacheSize = 256

// Resyncer is a node kept in step with its endpoint's schema.
type Resyncer interface {
	ID() string
	Resync(src node.SchemaSource) error
}

type Registry struct {
	fetcher   Fetcher
	logger    *zap.Logger
	metrics   *metrics
	promReg   prometheus.Registerer
	cacheSize int
	templates *template.Cache

	mu        sync.RWMutex
	instances map[string]string
	schemas   map[string]*schema.Schema
	nodes     map[string]map[string]Resyncer

	// edit is held while tracked nodes are read or resynced. It is taken
	// before mu, never after.
	edit sync.Mutex

	wg sync.WaitGroup
}

type Option func(*Registry)

func WithLogger(logger *zap.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// WithMetrics registers the refresh metrics with reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(r *Registry) {
		r.promReg = reg
	}
}

func WithTemplateCacheSize(size int) Option {
	return func(r *Registry) {
		if size > 0 {
			r.cacheSize = size
		}
	}
}

func New(fetcher Fetcher, options ...Option) (*Registry, error) {
	r := &Registry{
		fetcher:   fetcher,
		logger:    zap.NewNop(),
		metrics:   newMetrics(),
		cacheSize: defaultTemplateCacheSize,
		instances: make(map[string]string),
		schemas:   make(map[string]*schema.Schema),
		nodes:     make(map[string]map[string]Resyncer),
	}
	for _, option := range options {
		option(r)
	}

	templates, err := template.NewCache(r.cacheSize)
	if err != nil {
		return nil, err
	}
	r.templates = templates

	if r.promReg != nil {
		if err := r.metrics.register(r.promReg); err != nil {
			return nil, fmt.Errorf("register metrics: %w", err)
		}
	}

	return r, nil
}

// Register records the instance and starts a refresh of its endpoint in the
// background. Refreshes are not deduplicated; the last one to finish wins.
// The instance is not recorded when headersJSON is malformed.
func (r *Registry) Register(ctx context.Context, id, endpoint, headersJSON string) error {
	header, err := client.ParseHeaders(headersJSON)
	if err != nil {
		return fmt.Errorf("register instance %q: %w", id, err)
	}

	r.mu.Lock()
	prev, replaced := r.instances[id]
	r.instances[id] = endpoint
	var evicted []Resyncer
	if replaced && prev != endpoint && !r.referenced(prev) {
		evicted = r.evict(prev)
	}
	r.mu.Unlock()

	r.resync(evicted)

	ctx = context.WithoutCancel(ctx)
	r.wg.Go(func() {
		if err := r.Refresh(ctx, endpoint, header); err != nil {
			r.logger.Warn("schema refresh failed, keeping the cached schema",
				zap.String("instance", id), zap.String("endpoint", endpoint), zap.Error(err))
		}
	})

	return nil
}

// Unregister removes the instance. The endpoint's schema is evicted when no
// other instance references it.
func (r *Registry) Unregister(id string) {
	r.mu.Lock()
	endpoint, ok := r.instances[id]
	if !ok {
		r.mu.Unlock()
		return
	}
	delete(r.instances, id)

	var evicted []Resyncer
	if !r.referenced(endpoint) {
		evicted = r.evict(endpoint)
	}
	r.mu.Unlock()

	r.resync(evicted)
}

// Wait blocks until every refresh started by Register so far has finished.
func (r *Registry) Wait() {
	r.wg.Wait()
}

// Refresh fetches and normalizes the endpoint's schema, stores it, and
// resyncs the nodes tracked for the endpoint. On failure the cached schema
// is kept. A schema arriving after its last instance was unregistered is
// dropped.
func (r *Registry) Refresh(ctx context.Context, endpoint string, header http.Header) error {
	q, err := r.fetcher.Fetch(ctx, endpoint, header)
	if err != nil {
		r.metrics.refreshes.WithLabelValues(resultFailure).Inc()
		return fmt.Errorf("fetch schema of %s: %w", endpoint, err)
	}

	s, err := schema.FromIntrospection(q)
	if err != nil {
		r.metrics.refreshes.WithLabelValues(resultFailure).Inc()
		return fmt.Errorf("normalize schema of %s: %w", endpoint, err)
	}

	r.mu.Lock()
	if !r.referenced(endpoint) {
		r.mu.Unlock()
		r.logger.Debug("dropping schema of an unreferenced endpoint", zap.String("endpoint", endpoint))

		return nil
	}
	r.schemas[endpoint] = s
	r.metrics.cached.Set(float64(len(r.schemas)))
	nodes := slices.Collect(maps.Values(r.nodes[endpoint]))
	r.mu.Unlock()

	r.templates.Forget(endpoint)
	r.metrics.refreshes.WithLabelValues(resultSuccess).Inc()
	r.logger.Info("schema refreshed",
		zap.String("endpoint", endpoint), zap.Int("types", len(s.Types())), zap.Int("nodes", len(nodes)))

	r.resync(nodes)

	return nil
}

// referenced must be called with mu held.
func (r *Registry) referenced(endpoint string) bool {
	for _, e := range r.instances {
		if e == endpoint {
			return true
		}
	}

	return false
}

// evict must be called with mu held. It returns the nodes to resync.
func (r *Registry) evict(endpoint string) []Resyncer {
	if _, ok := r.schemas[endpoint]; !ok {
		return nil
	}

	delete(r.schemas, endpoint)
	r.metrics.cached.Set(float64(len(r.schemas)))
	r.templates.Forget(endpoint)
	r.logger.Debug("schema evicted", zap.String("endpoint", endpoint))

	return slices.Collect(maps.Values(r.nodes[endpoint]))
}

func (r *Registry) resync(nodes []Resyncer) {
	if len(nodes) == 0 {
		return
	}

	r.edit.Lock()
	defer r.edit.Unlock()

	for _, n := range nodes {
		if err := n.Resync(r); err != nil {
			r.logger.Warn("node no longer matches its schema", zap.String("node", n.ID()), zap.Error(err))
		}
	}
}

// Locker returns the lock held while tracked nodes are resynced. Code reading
// or changing tracked nodes while refreshes may run holds it too, for
// instance through check.WithLocker. Registry methods must not be called
// with it held.
func (r *Registry) Locker() sync.Locker {
	return &r.edit
}

// Track keeps n in step with the schema of endpoint and resyncs it right
// away. Tracking the same node again replaces the earlier entry.
// Tracked nodes are resynced from the goroutine completing a refresh, under
// the lock returned by Locker.
func (r *Registry) Track(endpoint string, n Resyncer) error {
	r.edit.Lock()
	defer r.edit.Unlock()

	return r.track(endpoint, n)
}

func (r *Registry) track(endpoint string, n Resyncer) error {
	r.mu.Lock()
	if r.nodes[endpoint] == nil {
		r.nodes[endpoint] = make(map[string]Resyncer)
	}
	r.nodes[endpoint][n.ID()] = n
	r.mu.Unlock()

	return n.Resync(r)
}

func (r *Registry) Untrack(endpoint string, n Resyncer) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.nodes[endpoint], n.ID())
	if len(r.nodes[endpoint]) == 0 {
		delete(r.nodes, endpoint)
	}
}

// TrackTree tracks every schema-bound node below root.
func (r *Registry) TrackTree(root *node.Node) error {
	r.edit.Lock()
	defer r.edit.Unlock()

	var errs []error
	node.Walk(root, func(n *node.Node) {
		if n.Endpoint == "" {
			return
		}
		if err := r.track(n.Endpoint, n); err != nil {
			errs = append(errs, err)
		}
	})

	return errors.Join(errs...)
}

// UntrackTree reverses TrackTree.
func (r *Registry) UntrackTree(root *node.Node) {
	r.edit.Lock()
	defer r.edit.Unlock()

	node.Walk(root, func(n *node.Node) {
		if n.Endpoint != "" {
			r.Untrack(n.Endpoint, n)
		}
	})
}

func (r *Registry) Schema(endpoint string) (*schema.Schema, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.schemas[endpoint]
	return s, ok
}

func (r *Registry) Endpoint(instanceID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	endpoint, ok := r.instances[instanceID]
	return endpoint, ok
}

// TemplatesForInstance returns the root templates of the instance's schema,
// or nil while the instance or its schema is unknown.
func (r *Registry) TemplatesForInstance(id string) []*template.Template {
	endpoint, ok := r.Endpoint(id)
	if !ok {
		return nil
	}

	return r.Templates(endpoint, schema.RootTypeName)
}

// Templates returns the templates offered under baseType. The result is
// shared and must not be modified.
func (r *Registry) Templates(endpoint, baseType string) []*template.Template {
	s, ok := r.Schema(endpoint)
	if !ok {
		return nil
	}

	return r.templates.Synthesize(s, endpoint, baseType)
}

// ValueTemplates returns the picker content for a value of typeString.
func (r *Registry) ValueTemplates(endpoint, typeString string) []*template.Template {
	s, ok := r.Schema(endpoint)
	if !ok {
		return nil
	}

	return template.ValueTemplates(s, endpoint, typeString)
}
