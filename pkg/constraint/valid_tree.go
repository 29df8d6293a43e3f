package constraint

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"

	"github.com/aretw0/canvas/internal/logging"
	"github.com/aretw0/canvas/pkg/domain"
	"github.com/aretw0/canvas/pkg/ports"
	"github.com/aretw0/canvas/pkg/propsource"
	"github.com/aretw0/canvas/pkg/schema"
	"github.com/aretw0/canvas/pkg/tree"
	"github.com/aretw0/canvas/pkg/validation"
)

// Violation messages of ValidComponentTree.
const (
	MsgComponentMissing = "The component %s does not exist."
	MsgVersionMissing   = "The version %s of component %s does not exist."
	MsgRequiredProp     = "The required prop %q has no input."
	MsgUnknownProp      = "The component %s does not have a prop %q."
	MsgInvalidSource    = "The input for the %q prop is not a valid prop source: %v"
)

// Structure runs the structural checks of package tree.
type Structure struct {
	validator *tree.Validator
	opts      []tree.Option
}

// NewStructure creates a structural validator.
func NewStructure(definitions ports.ComponentDefinitionProvider, opts ...tree.Option) *Structure {
	return &Structure{validator: tree.NewValidator(tree.NewSlotResolver(definitions)), opts: opts}
}

func (s *Structure) Validate(ctx context.Context, value any, vctx *validation.Context) error {
	t, err := tree.Of(value)
	if err != nil {
		return err
	}
	return s.validator.Validate(ctx, t, vctx, s.opts...)
}

// ValidComponentTree checks structure, the referenced definitions, the
// inputs of every item and that inputs are stored collapsed.
type ValidComponentTree struct {
	definitions ports.ComponentDefinitionProvider
	structure   *Structure
	logger      *slog.Logger
}

// Option configures ValidComponentTree.
type Option func(*ValidComponentTree)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(v *ValidComponentTree) { v.logger = l }
}

// WithTreeOptions passes options to the structural checks, e.g. a template tree.
func WithTreeOptions(opts ...tree.Option) Option {
	return func(v *ValidComponentTree) { v.structure.opts = append(v.structure.opts, opts...) }
}

// NewValidComponentTree creates the full tree validator.
func NewValidComponentTree(definitions ports.ComponentDefinitionProvider, opts ...Option) *ValidComponentTree {
	v := &ValidComponentTree{
		definitions: definitions,
		structure:   NewStructure(definitions),
		logger:      logging.NewNop(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

func (v *ValidComponentTree) Validate(ctx context.Context, value any, vctx *validation.Context) error {
	t, err := tree.Of(value)
	if err != nil {
		return err
	}
	if err := v.structure.validator.Validate(ctx, t, vctx, v.structure.opts...); err != nil {
		return err
	}

	for i, item := range t {
		if item.ComponentID == "" {
			continue
		}
		itemCtx := vctx.AtPath(strconv.Itoa(i))
		version, err := lookupVersion(ctx, v.definitions, item, itemCtx)
		if err != nil {
			return err
		}
		if version == nil {
			continue
		}
		v.checkInputs(item, version, itemCtx)
		propsource.ValidateCollapsed(item, version, itemCtx)
	}
	v.logger.Debug("validated component tree", "items", len(t), "violations", vctx.Count())
	return nil
}

func (v *ValidComponentTree) checkInputs(item domain.ComponentTreeItem, version *domain.ComponentVersion, vctx *validation.Context) {
	if item.Inputs == nil {
		// Reported by the structural checks.
		return
	}
	for _, prop := range version.RequiredProps() {
		if _, ok := item.Inputs[prop]; !ok {
			vctx.AddViolation(validation.Join("inputs", prop), fmt.Sprintf(MsgRequiredProp, prop), nil)
		}
	}

	props := version.Metadata.Props
	names := make([]string, 0, len(item.Inputs))
	for name := range item.Inputs {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, prop := range names {
		path := validation.Join("inputs", prop)
		var propSchema *domain.PropSchema
		if props != nil {
			propSchema, _ = props.Properties.Get(prop)
		}
		if propSchema == nil {
			vctx.AddViolation(path, fmt.Sprintf(MsgUnknownProp, item.ComponentID, prop), nil)
			continue
		}

		var def *domain.PropFieldDefinition
		if d, ok := version.Settings.PropFieldDefinitions[prop]; ok {
			def = &d
		}
		src, err := propsource.Parse(item.Inputs[prop], def)
		if err != nil {
			vctx.AddViolation(path, fmt.Sprintf(MsgInvalidSource, prop, err), nil)
			continue
		}
		static, ok := src.(propsource.Static)
		if !ok {
			continue
		}
		if err := schema.ValidateValue(prop, propSchema, static.Value); err != nil {
			vctx.AddViolation(path, err.Error(), nil)
		}
	}
}

// lookupVersion loads the version an item uses. Missing components and
// versions are reported on vctx and yield a nil version.
func lookupVersion(ctx context.Context, definitions ports.ComponentDefinitionProvider, item domain.ComponentTreeItem, vctx *validation.Context) (*domain.ComponentVersion, error) {
	version, err := definitions.GetVersion(ctx, item.ComponentID, item.ComponentVersion)
	switch {
	case err == nil:
		return version, nil
	case errors.Is(err, domain.ErrComponentNotFound):
		vctx.AddViolation("component_id", fmt.Sprintf(MsgComponentMissing, item.ComponentID), nil)
		return nil, nil
	case errors.Is(err, domain.ErrVersionNotFound):
		vctx.AddViolation("component_version", fmt.Sprintf(MsgVersionMissing, item.ComponentVersion, item.ComponentID), nil)
		return nil, nil
	}
	return nil, fmt.Errorf("loading %s: %w", item.ComponentID, err)
}

// CollapsedInputs checks only that inputs are stored collapsed.
type CollapsedInputs struct {
	definitions ports.ComponentDefinitionProvider
}

// NewCollapsedInputs creates the collapse validator.
func NewCollapsedInputs(definitions ports.ComponentDefinitionProvider) *CollapsedInputs {
	return &CollapsedInputs{definitions: definitions}
}

func (c *CollapsedInputs) Validate(ctx context.Context, value any, vctx *validation.Context) error {
	t, err := tree.Of(value)
	if err != nil {
		return err
	}
	for i, item := range t {
		if item.ComponentID == "" || item.Inputs == nil {
			continue
		}
		version, err := c.definitions.GetVersion(ctx, item.ComponentID, item.ComponentVersion)
		if errors.Is(err, domain.ErrComponentNotFound) || errors.Is(err, domain.ErrVersionNotFound) {
			continue
		}
		if err != nil {
			return fmt.Errorf("loading %s: %w", item.ComponentID, err)
		}
		propsource.ValidateCollapsed(item, version, vctx.AtPath(strconv.Itoa(i)))
	}
	return nil
}
