package propsource

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sort"
	"strings"

	"github.com/aretw0/canvas/internal/logging"
	"github.com/aretw0/canvas/pkg/domain"
	"github.com/aretw0/canvas/pkg/ports"
	"github.com/aretw0/canvas/pkg/registry"
	"github.com/google/uuid"
)

// Recorder observes resolution outcomes. result is "ok" or "error".
type Recorder interface {
	ObserveResolution(source, result string)
}

// Resolver evaluates component inputs against a host entity.
type Resolver struct {
	adapters *registry.Registry
	baseURL  *url.URL
	cache    *RequestCache
	recorder Recorder
	logger   *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithAdapters replaces the adapter registry (default: DefaultAdapters()).
func WithAdapters(r *registry.Registry) Option {
	return func(res *Resolver) { res.adapters = r }
}

// WithBaseURL sets the site base URL used for relative and absolute URLs.
func WithBaseURL(u *url.URL) Option {
	return func(r *Resolver) { r.baseURL = u }
}

// WithCache memoizes resolved inputs per request. See ContextWithRequestID.
func WithCache(c *RequestCache) Option {
	return func(r *Resolver) { r.cache = c }
}

// WithRecorder sets the metrics recorder.
func WithRecorder(rec Recorder) Option {
	return func(r *Resolver) { r.recorder = rec }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) { r.logger = l }
}

// NewResolver creates a Resolver.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		baseURL: &url.URL{Scheme: "http", Host: "localhost"},
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.adapters == nil {
		r.adapters = DefaultAdapters()
	}
	return r
}

// Resolve evaluates every input of item. Props with no stored input fall
// back to their default static value, if they have one.
//
// Returns *domain.MissingInputsError when item has no inputs and the
// component has required props, and *ResolutionError when an input
// cannot be evaluated.
func (r *Resolver) Resolve(ctx context.Context, host ports.HostEntity, item domain.ComponentTreeItem, version *domain.ComponentVersion) (map[string]any, error) {
	if item.Inputs == nil && len(version.RequiredProps()) > 0 {
		return nil, &domain.MissingInputsError{UUID: item.UUID, ComponentID: item.ComponentID}
	}

	cacheKey := ""
	if r.cache != nil && host != nil {
		cacheKey = strings.Join([]string{host.HostType(), host.HostID(), item.UUID, version.Version}, ":")
		if cached, ok := r.cache.Get(ctx, cacheKey); ok {
			return cached, nil
		}
	}

	out := make(map[string]any, len(item.Inputs))
	for _, prop := range propNames(item, version) {
		def := defaultSource(version, prop)
		raw, ok := item.Inputs[prop]
		if !ok {
			if def != nil && def.DefaultValue != nil {
				out[prop] = defaultValue(*def)
			}
			continue
		}
		src, err := Parse(raw, def)
		if err != nil {
			return nil, &ResolutionError{Prop: prop, Source: domain.SourceKindStatic, Reason: "invalid input", Err: err}
		}
		value, err := r.ResolveSource(ctx, host, prop, src)
		if err != nil {
			return nil, err
		}
		out[prop] = value
	}

	if cacheKey != "" {
		r.cache.Put(ctx, cacheKey, out)
	}
	return out, nil
}

// ResolveTree resolves the inputs of every item in the host's tree, keyed by
// instance UUID. Items whose component cannot be loaded are skipped.
// When ctx carries no request id and a cache is configured, the call is
// treated as its own request.
func (r *Resolver) ResolveTree(ctx context.Context, host ports.HostEntity, definitions ports.ComponentDefinitionProvider) (map[string]map[string]any, error) {
	if _, ok := RequestIDFromContext(ctx); !ok && r.cache != nil {
		id := uuid.NewString()
		r.cache.Begin(id)
		defer r.cache.End(id)
		ctx = ContextWithRequestID(ctx, id)
	}

	out := make(map[string]map[string]any)
	for _, item := range host.ComponentTree() {
		version, err := definitions.GetVersion(ctx, item.ComponentID, item.ComponentVersion)
		if errors.Is(err, domain.ErrComponentNotFound) || errors.Is(err, domain.ErrVersionNotFound) {
			r.logger.Warn("skipping component instance", "uuid", item.UUID, "component", item.ComponentID, "error", err)
			continue
		}
		if err != nil {
			return nil, err
		}
		inputs, err := r.Resolve(ctx, host, item, version)
		if err != nil {
			return nil, fmt.Errorf("component instance %s: %w", item.UUID, err)
		}
		out[item.UUID] = inputs
	}
	return out, nil
}

// ResolveSource evaluates a single source for prop.
func (r *Resolver) ResolveSource(ctx context.Context, host ports.HostEntity, prop string, src Source) (any, error) {
	value, err := r.evaluate(ctx, host, prop, src)
	result := "ok"
	if err != nil {
		result = "error"
		r.logger.Debug("prop source resolution failed", "prop", prop, "source", src.Kind(), "error", err)
	}
	if r.recorder != nil {
		r.recorder.ObserveResolution(string(src.Kind()), result)
	}
	return value, err
}

func (r *Resolver) evaluate(ctx context.Context, host ports.HostEntity, prop string, src Source) (any, error) {
	switch s := src.(type) {
	case Static:
		return s.Value, nil

	case Dynamic:
		if host == nil {
			return nil, &ResolutionError{Prop: prop, Source: s.Kind(), Reason: "no host entity", Err: domain.ErrHostNotFound}
		}
		value, err := host.FieldValue(strings.Split(s.Expression, "."))
		if err != nil {
			return nil, &ResolutionError{Prop: prop, Source: s.Kind(), Reason: fmt.Sprintf("cannot evaluate %q", s.Expression), Err: err}
		}
		return value, nil

	case Adapted:
		args := make(map[string]any, len(s.Inputs))
		for name, in := range s.Inputs {
			v, err := r.evaluate(ctx, host, prop, in)
			if err != nil {
				return nil, err
			}
			args[name] = v
		}
		value, err := r.adapters.Execute(ctx, s.Adapter, args)
		if err != nil {
			return nil, &ResolutionError{Prop: prop, Source: s.Kind(), Reason: fmt.Sprintf("adapter %q failed", s.Adapter), Err: err}
		}
		return value, nil

	case DefaultRelativeURL:
		path, ok := s.Value.(string)
		if !ok {
			return nil, &ResolutionError{Prop: prop, Source: s.Kind(), Reason: fmt.Sprintf("value %v is not a path", s.Value)}
		}
		ref, err := url.Parse(path)
		if err != nil {
			return nil, &ResolutionError{Prop: prop, Source: s.Kind(), Reason: "invalid path", Err: err}
		}
		return r.baseURL.ResolveReference(ref).String(), nil

	case HostEntityURL:
		if host == nil {
			return nil, &ResolutionError{Prop: prop, Source: s.Kind(), Reason: "no host entity", Err: domain.ErrHostNotFound}
		}
		canonical := host.CanonicalURL()
		if !s.Absolute {
			return canonical, nil
		}
		ref, err := url.Parse(canonical)
		if err != nil {
			return nil, &ResolutionError{Prop: prop, Source: s.Kind(), Reason: "invalid canonical URL", Err: err}
		}
		return r.baseURL.ResolveReference(ref).String(), nil
	}
	return nil, &ResolutionError{Prop: prop, Source: src.Kind(), Reason: "unsupported source"}
}

// propNames returns declared props first, in order, then any extra stored inputs.
func propNames(item domain.ComponentTreeItem, version *domain.ComponentVersion) []string {
	var names []string
	seen := map[string]bool{}
	if version.Metadata.Props != nil {
		for _, name := range version.Metadata.Props.Properties.Keys() {
			names = append(names, name)
			seen[name] = true
		}
	}
	var extra []string
	for name := range item.Inputs {
		if !seen[name] {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	return append(names, extra...)
}

func defaultSource(version *domain.ComponentVersion, prop string) *domain.PropFieldDefinition {
	def, ok := version.Settings.PropFieldDefinitions[prop]
	if !ok {
		return nil
	}
	return &def
}

// defaultValue extracts the prop value from a field default value,
// e.g. [{"value": "Hello"}] becomes "Hello".
func defaultValue(def domain.PropFieldDefinition) any {
	v := def.DefaultValue
	if list, ok := v.([]any); ok && len(list) == 1 {
		v = list[0]
	}
	if m, ok := v.(map[string]any); ok && len(m) == 1 {
		if value, ok := m["value"]; ok {
			return value
		}
	}
	return v
}
