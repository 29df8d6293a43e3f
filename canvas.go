package canvas

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/aretw0/canvas/internal/logging"
	loamAdapter "github.com/aretw0/canvas/pkg/adapters/loam"
	"github.com/aretw0/canvas/pkg/constraint"
	"github.com/aretw0/canvas/pkg/domain"
	"github.com/aretw0/canvas/pkg/observability"
	"github.com/aretw0/canvas/pkg/ports"
	"github.com/aretw0/canvas/pkg/requirements"
	"github.com/aretw0/canvas/pkg/shape"
	"github.com/aretw0/canvas/pkg/tree"
	"github.com/aretw0/canvas/pkg/validation"
	"github.com/aretw0/loam"
)

// Watchable reports changes to component definitions.
type Watchable interface {
	Watch(ctx context.Context) (<-chan string, error)
}

// Canvas is the high-level entry point of the library. It binds a component
// definition provider to the tree validator and the requirements checker.
type Canvas struct {
	definitions ports.ComponentDefinitionProvider
	validator   constraint.Validator
	matcher     *shape.Matcher
	metrics     *observability.Metrics
	logger      *slog.Logger
	Name        string
}

// Option configures a Canvas.
type Option func(*Canvas)

// WithDefinitions injects a definition provider, bypassing the default Loam
// directory.
func WithDefinitions(p ports.ComponentDefinitionProvider) Option {
	return func(c *Canvas) {
		c.definitions = p
	}
}

// WithMatcher replaces the shape matcher used for requirement checks.
func WithMatcher(m *shape.Matcher) Option {
	return func(c *Canvas) {
		c.matcher = m
	}
}

// WithMetrics records validation outcomes.
func WithMetrics(m *observability.Metrics) Option {
	return func(c *Canvas) {
		c.metrics = m
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Canvas) {
		c.logger = logger
	}
}

// New opens the component definitions stored under componentsDir.
// If WithDefinitions is given, componentsDir can be empty and Loam is skipped.
func New(componentsDir string, opts ...Option) (*Canvas, error) {
	c := &Canvas{}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logging.NewNop()
	}

	if c.definitions == nil {
		if componentsDir == "" {
			return nil, fmt.Errorf("componentsDir is required when no definition provider is given")
		}
		absPath, err := filepath.Abs(componentsDir)
		if err != nil {
			return nil, fmt.Errorf("invalid path: %w", err)
		}
		c.Name = filepath.Base(absPath)

		// Strict mode keeps numbers as json.Number across markdown, yaml and
		// json files. Definitions are never written back.
		repo, err := loam.Init(absPath,
			loam.WithStrict(true),
			loam.WithReadOnly(true),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize loam: %w", err)
		}
		typed := loam.NewTypedRepository[loamAdapter.ComponentMetadata](repo)
		c.definitions = loamAdapter.New(typed, loamAdapter.WithLogger(c.logger))
	} else if componentsDir != "" {
		c.Name = filepath.Base(componentsDir)
	}

	if c.Name != "" {
		c.logger = c.logger.With("library", c.Name)
	}
	if c.matcher == nil {
		c.matcher = shape.NewMatcher()
	}

	registry := constraint.DefaultRegistry(constraint.Dependencies{
		Definitions: c.definitions,
		Metrics:     c.metrics,
		Logger:      c.logger,
	})
	v, err := registry.Build(constraint.KindValidComponentTree, nil)
	if err != nil {
		return nil, err
	}
	c.validator = v
	return c, nil
}

// Definitions returns the component definition provider.
func (c *Canvas) Definitions() ports.ComponentDefinitionProvider {
	return c.definitions
}

// Validator returns the full tree validator.
func (c *Canvas) Validator() constraint.Validator {
	return c.validator
}

// Matcher returns the shape matcher.
func (c *Canvas) Matcher() *shape.Matcher {
	return c.matcher
}

// Logger returns the logger, annotated with the library name.
func (c *Canvas) Logger() *slog.Logger {
	return c.logger
}

// Validate runs structural and input validation over t. Violations are
// returned, not reported as an error; the error is for provider failures.
func (c *Canvas) Validate(ctx context.Context, t domain.ComponentTree) ([]validation.Violation, error) {
	vctx := validation.NewContext("")
	if err := c.validator.Validate(ctx, t, vctx); err != nil {
		return nil, err
	}
	return vctx.Violations(), nil
}

// ValidateHost validates the tree exposed by v, e.g. a host entity.
func (c *Canvas) ValidateHost(ctx context.Context, v tree.HasComponentTree) ([]validation.Violation, error) {
	return c.Validate(ctx, v.ComponentTree())
}

// CheckRequirements reports whether the active version of component id can
// be used in the editor. A failure is a
// *requirements.ComponentDoesNotMeetRequirementsError.
func (c *Canvas) CheckRequirements(ctx context.Context, id string) error {
	err := requirements.ForDefinition(ctx, c.definitions, id, c.matcher)
	if err != nil && c.metrics != nil {
		var reqErr *requirements.ComponentDoesNotMeetRequirementsError
		if errors.As(err, &reqErr) {
			c.metrics.ObserveRequirementsFailure()
		}
	}
	return err
}

// Watch returns a channel that reports the id of every changed definition.
// It fails if the provider does not support watching.
func (c *Canvas) Watch(ctx context.Context) (<-chan string, error) {
	if w, ok := c.definitions.(Watchable); ok {
		return w.Watch(ctx)
	}
	return nil, fmt.Errorf("current definition provider does not support watching")
}
