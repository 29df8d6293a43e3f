package constraint

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/aretw0/canvas/internal/logging"
	"github.com/aretw0/canvas/pkg/observability"
	"github.com/aretw0/canvas/pkg/ports"
	"github.com/aretw0/canvas/pkg/validation"
)

// Kind names a constraint.
type Kind string

const (
	KindComponentTreeStructure Kind = "component_tree_structure"
	KindValidComponentTree     Kind = "valid_component_tree"
	KindMeetsRequirements      Kind = "component_tree_meets_requirements"
	KindCollapsedInputs        Kind = "collapsed_inputs"
)

// ErrUnknownKind is returned when building a kind that was never registered.
var ErrUnknownKind = errors.New("unknown constraint kind")

// Validator validates a value exposing a component tree.
type Validator interface {
	Validate(ctx context.Context, value any, vctx *validation.Context) error
}

// ValidatorFunc adapts a function to Validator.
type ValidatorFunc func(ctx context.Context, value any, vctx *validation.Context) error

func (f ValidatorFunc) Validate(ctx context.Context, value any, vctx *validation.Context) error {
	return f(ctx, value, vctx)
}

// Factory builds a validator from its configuration.
type Factory func(config map[string]any) (Validator, error)

// Registry maps kinds to factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[Kind]Factory
	metrics   *observability.Metrics
}

// NewRegistry creates an empty registry. Validators it builds report to
// metrics, which may be nil.
func NewRegistry(metrics *observability.Metrics) *Registry {
	return &Registry{factories: make(map[Kind]Factory), metrics: metrics}
}

// Register adds or replaces the factory for kind.
func (r *Registry) Register(kind Kind, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[kind] = f
}

// Kinds returns the registered kinds, sorted.
func (r *Registry) Kinds() []Kind {
	r.mu.RLock()
	defer r.mu.RUnlock()
	kinds := make([]Kind, 0, len(r.factories))
	for k := range r.factories {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// Build creates the validator for kind.
func (r *Registry) Build(kind Kind, config map[string]any) (Validator, error) {
	r.mu.RLock()
	f, ok := r.factories[kind]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}
	v, err := f(config)
	if err != nil {
		return nil, fmt.Errorf("configuring %s: %w", kind, err)
	}
	return &observed{kind: kind, inner: v, metrics: r.metrics}, nil
}

// Dependencies are the collaborators of the built-in constraints.
type Dependencies struct {
	Definitions ports.ComponentDefinitionProvider
	Metrics     *observability.Metrics
	Logger      *slog.Logger
}

// DefaultRegistry returns a registry with every built-in kind.
func DefaultRegistry(deps Dependencies) *Registry {
	if deps.Logger == nil {
		deps.Logger = logging.NewNop()
	}
	r := NewRegistry(deps.Metrics)
	r.Register(KindComponentTreeStructure, func(config map[string]any) (Validator, error) {
		if len(config) > 0 {
			return nil, fmt.Errorf("%s takes no configuration", KindComponentTreeStructure)
		}
		return NewStructure(deps.Definitions), nil
	})
	r.Register(KindValidComponentTree, func(config map[string]any) (Validator, error) {
		if len(config) > 0 {
			return nil, fmt.Errorf("%s takes no configuration", KindValidComponentTree)
		}
		return NewValidComponentTree(deps.Definitions, WithLogger(deps.Logger)), nil
	})
	r.Register(KindMeetsRequirements, func(config map[string]any) (Validator, error) {
		set, err := DecodeRequirementSet(config)
		if err != nil {
			return nil, err
		}
		return NewMeetsRequirements(deps.Definitions, set), nil
	})
	r.Register(KindCollapsedInputs, func(config map[string]any) (Validator, error) {
		if len(config) > 0 {
			return nil, fmt.Errorf("%s takes no configuration", KindCollapsedInputs)
		}
		return NewCollapsedInputs(deps.Definitions), nil
	})
	return r
}

type observed struct {
	kind    Kind
	inner   Validator
	metrics *observability.Metrics
}

func (o *observed) Validate(ctx context.Context, value any, vctx *validation.Context) error {
	if vctx == nil {
		return fmt.Errorf("%s: nil validation context", o.kind)
	}
	before := vctx.Count()
	if err := o.inner.Validate(ctx, value, vctx); err != nil {
		return err
	}
	o.metrics.ObserveValidation(string(o.kind), vctx.Count()-before)
	return nil
}
