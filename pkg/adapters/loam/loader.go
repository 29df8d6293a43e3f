package loam

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/aretw0/canvas/internal/logging"
	"github.com/aretw0/canvas/pkg/domain"
	"github.com/aretw0/canvas/pkg/ports"
	"github.com/aretw0/canvas/pkg/propsource"
	"github.com/aretw0/loam"
	"github.com/mitchellh/mapstructure"
)

// definitionExtensions are stripped from document ids. Component ids contain
// dots themselves, so only these suffixes count as extensions.
var definitionExtensions = []string{".md", ".json", ".yaml", ".yml"}

// Loader adapts a Loam repository of component definition files to
// ports.ComponentDefinitionProvider.
//
// The parsed index is cached until Invalidate is called or Watch reports a
// change.
type Loader struct {
	Repo   *loam.TypedRepository[ComponentMetadata]
	logger *slog.Logger

	mu    sync.RWMutex
	index map[string]*domain.ComponentDefinition
}

var _ ports.ComponentDefinitionProvider = (*Loader)(nil)

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets the logger used for reload notices.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		l.logger = logger
	}
}

// New creates a new Loam adapter.
func New(repo *loam.TypedRepository[ComponentMetadata], opts ...Option) *Loader {
	l := &Loader{
		Repo:   repo,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Get returns the definition with the given id.
func (l *Loader) Get(ctx context.Context, id string) (*domain.ComponentDefinition, error) {
	index, err := l.load(ctx)
	if err != nil {
		return nil, err
	}
	def, ok := index[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", id, domain.ErrComponentNotFound)
	}
	return def, nil
}

// GetVersion returns a specific version, or the active one when version is empty.
func (l *Loader) GetVersion(ctx context.Context, id, version string) (*domain.ComponentVersion, error) {
	def, err := l.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return def.Version(version)
}

// List returns every component id, sorted.
func (l *Loader) List(ctx context.Context) ([]string, error) {
	index, err := l.load(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(index))
	for id := range index {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Invalidate drops the cached index; the next lookup re-reads the repository.
func (l *Loader) Invalidate() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.index = nil
}

func (l *Loader) load(ctx context.Context) (map[string]*domain.ComponentDefinition, error) {
	l.mu.RLock()
	index := l.index
	l.mu.RUnlock()
	if index != nil {
		return index, nil
	}

	docs, err := l.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	seen := make(map[string]string)
	index = make(map[string]*domain.ComponentDefinition, len(docs))
	for _, doc := range docs {
		// Use the ID from metadata if available, otherwise filename ID
		rawID := doc.Data.ID
		if rawID == "" {
			rawID = doc.ID
		}
		id := trimExtension(rawID)

		if existingPath, ok := seen[id]; ok {
			return nil, fmt.Errorf("collision detected: ID '%s' is defined in both '%s' and '%s'", id, existingPath, doc.ID)
		}
		seen[id] = doc.ID

		def, err := buildDefinition(id, doc.Data)
		if err != nil {
			return nil, fmt.Errorf("component %s (%s): %w", id, doc.ID, err)
		}
		index[id] = def
	}

	l.mu.Lock()
	l.index = index
	l.mu.Unlock()
	return index, nil
}

func buildDefinition(id string, meta ComponentMetadata) (*domain.ComponentDefinition, error) {
	source := domain.ComponentSource(meta.Source)
	if source == "" {
		source = sourceFromID(id)
	}
	if !source.Valid() {
		return nil, fmt.Errorf("unknown component source %q", meta.Source)
	}

	status := true
	if meta.Status != nil {
		status = *meta.Status
	}

	label := meta.Label
	if label == "" {
		label = meta.Name
	}

	def := &domain.ComponentDefinition{
		ID:       id,
		Label:    label,
		Category: meta.Category,
		Source:   source,
		Status:   status,
	}

	base := domain.ComponentMetadata{
		MachineName: meta.MachineName,
		Name:        meta.Name,
		Group:       meta.Group,
		Status:      meta.ComponentStatus,
		NoUI:        meta.NoUI,
	}
	if base.MachineName == "" {
		base.MachineName = machineName(id)
	}
	if base.Name == "" {
		base.Name = label
	}
	if base.Group == "" {
		base.Group = meta.Category
	}

	for _, past := range meta.PastVersions {
		if past.Version == "" {
			return nil, fmt.Errorf("past version without a version identifier")
		}
		v, err := buildVersion(past.Version, base, past.Required, past.Props, past.Slots)
		if err != nil {
			return nil, fmt.Errorf("version %s: %w", past.Version, err)
		}
		def.AddVersion(v)
	}

	active, err := buildVersion(meta.Version, base, meta.Required, meta.Props, meta.Slots)
	if err != nil {
		return nil, err
	}
	def.AddVersion(active)
	return def, nil
}

func buildVersion(version string, base domain.ComponentMetadata, required []string, props []map[string]any, slots []SlotEntry) (*domain.ComponentVersion, error) {
	md := base
	settings := domain.VersionSettings{}

	if props != nil {
		md.Props = &domain.PropsSchema{Type: "object", Required: required}
		for i, raw := range props {
			name, schema, field, err := decodeProp(raw)
			if err != nil {
				return nil, fmt.Errorf("props[%d]: %w", i, err)
			}
			if md.Props.Properties.Has(name) {
				return nil, fmt.Errorf("props[%d]: duplicate prop %q", i, name)
			}
			md.Props.Properties.Set(name, schema)
			if field != nil {
				if settings.PropFieldDefinitions == nil {
					settings.PropFieldDefinitions = make(map[string]domain.PropFieldDefinition)
				}
				settings.PropFieldDefinitions[name] = *field
			}
		}
	}

	for i, s := range slots {
		if s.Name == "" {
			return nil, fmt.Errorf("slots[%d]: missing name", i)
		}
		if md.Slots.Has(s.Name) {
			return nil, fmt.Errorf("slots[%d]: duplicate slot %q", i, s.Name)
		}
		md.Slots.Set(s.Name, domain.SlotDefinition{
			Title:       s.Title,
			Description: s.Description,
			Examples:    s.Examples,
		})
	}

	if version == "" {
		hash, err := propsource.Hash(struct {
			Props    *domain.PropsSchema                   `json:"props"`
			Slots    domain.Ordered[domain.SlotDefinition] `json:"slots"`
			Settings domain.VersionSettings                `json:"settings"`
		}{md.Props, md.Slots, settings})
		if err != nil {
			return nil, fmt.Errorf("failed to derive version: %w", err)
		}
		version = hash
	}

	return &domain.ComponentVersion{
		Version:  version,
		Metadata: md,
		Settings: settings,
	}, nil
}

// decodeProp splits one prop entry into its name, its JSON Schema and the
// optional "field" block describing how the prop is stored.
func decodeProp(raw map[string]any) (string, *domain.PropSchema, *domain.PropFieldDefinition, error) {
	name, _ := raw["name"].(string)
	if name == "" {
		return "", nil, nil, fmt.Errorf("missing name")
	}

	rest := make(map[string]any, len(raw))
	for k, v := range raw {
		if k != "name" && k != "field" {
			rest[k] = v
		}
	}

	// The schema keys ("$ref", "meta:enum", "x-formatting-context") are not
	// valid mapstructure names, so the schema goes through its JSON tags.
	data, err := json.Marshal(rest)
	if err != nil {
		return "", nil, nil, fmt.Errorf("prop %s: %w", name, err)
	}
	var schema domain.PropSchema
	if err := json.Unmarshal(data, &schema); err != nil {
		return "", nil, nil, fmt.Errorf("prop %s: invalid schema: %w", name, err)
	}

	rawField, ok := raw["field"]
	if !ok || rawField == nil {
		return name, &schema, nil, nil
	}
	var field domain.PropFieldDefinition
	if err := mapstructure.Decode(rawField, &field); err != nil {
		return "", nil, nil, fmt.Errorf("prop %s: failed to decode field: %w", name, err)
	}
	return name, &schema, &field, nil
}

// sourceFromID reads the source plugin from the id prefix, e.g. "sdc.".
func sourceFromID(id string) domain.ComponentSource {
	prefix, _, _ := strings.Cut(id, ".")
	return domain.ComponentSource(prefix)
}

func machineName(id string) string {
	if i := strings.LastIndex(id, "."); i >= 0 {
		return id[i+1:]
	}
	return id
}

func trimExtension(id string) string {
	id = filepath.ToSlash(id)
	for _, ext := range definitionExtensions {
		if strings.HasSuffix(id, ext) {
			return strings.TrimSuffix(id, ext)
		}
	}
	return id
}

// Watch reports the id of every changed definition file and invalidates
// the cached index before doing so.
func (l *Loader) Watch(ctx context.Context) (<-chan string, error) {
	events, err := l.Repo.Watch(ctx, "**/*.{md,json,yaml,yml}")
	if err != nil {
		return nil, fmt.Errorf("failed to start loam watcher: %w", err)
	}

	ch := make(chan string, 1)

	go func() {
		defer close(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case evt, ok := <-events:
				if !ok {
					return
				}
				l.Invalidate()
				id := trimExtension(evt.ID)
				l.logger.Debug("component definitions changed", "id", id)
				select {
				case ch <- id:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return ch, nil
}
