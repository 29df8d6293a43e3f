package propsource_test

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/aretw0/canvas/internal/testutils"
	"github.com/aretw0/canvas/pkg/adapters/memory"
	"github.com/aretw0/canvas/pkg/domain"
	"github.com/aretw0/canvas/pkg/propsource"
	"github.com/aretw0/canvas/pkg/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func headingVersion(t *testing.T) *domain.ComponentVersion {
	t.Helper()
	v, err := testutils.Heading().Version("")
	require.NoError(t, err)
	return v
}

func expandedText(value any) map[string]any {
	return map[string]any{
		"sourceType": "static:field_item:string",
		"value":      value,
		"expression": "value",
	}
}

func TestParse(t *testing.T) {
	def := &domain.PropFieldDefinition{FieldType: "string", Expression: "value"}

	t.Run("collapsed uses default static source", func(t *testing.T) {
		src, err := propsource.Parse("Hello", def)
		require.NoError(t, err)
		assert.Equal(t, propsource.Static{SourceType: "static:field_item:string", Value: "Hello", Expression: "value"}, src)
	})

	t.Run("collapsed without default", func(t *testing.T) {
		_, err := propsource.Parse("Hello", nil)
		assert.Error(t, err)
	})

	t.Run("dynamic", func(t *testing.T) {
		src, err := propsource.Parse(map[string]any{"sourceType": "dynamic", "expression": "title"}, nil)
		require.NoError(t, err)
		assert.Equal(t, propsource.Dynamic{Expression: "title"}, src)
	})

	t.Run("adapter with nested inputs", func(t *testing.T) {
		src, err := propsource.Parse(map[string]any{
			"sourceType": "adapter:day_count",
			"adapterInputs": map[string]any{
				"oldest": map[string]any{"sourceType": "dynamic", "expression": "created"},
				"newest": map[string]any{"sourceType": "static:field_item:datetime", "value": "2024-01-10"},
			},
		}, nil)
		require.NoError(t, err)
		adapted, ok := src.(propsource.Adapted)
		require.True(t, ok)
		assert.Equal(t, "day_count", adapted.Adapter)
		assert.Equal(t, propsource.Dynamic{Expression: "created"}, adapted.Inputs["oldest"])
		assert.Equal(t, domain.SourceKindAdapted, src.Kind())
		assert.Equal(t, "adapter:day_count", src.Expanded().SourceType)
	})

	t.Run("host entity url", func(t *testing.T) {
		src, err := propsource.Parse(map[string]any{"sourceType": "host-entity-url", "sourceTypeSettings": map[string]any{"absolute": true}}, nil)
		require.NoError(t, err)
		assert.Equal(t, propsource.HostEntityURL{Absolute: true}, src)
	})

	t.Run("unknown kind", func(t *testing.T) {
		_, err := propsource.Parse(map[string]any{"sourceType": "magic"}, nil)
		assert.Error(t, err)
	})

	t.Run("dynamic without expression", func(t *testing.T) {
		_, err := propsource.Parse(map[string]any{"sourceType": "dynamic"}, nil)
		assert.Error(t, err)
	})
}

func TestResolver_Resolve(t *testing.T) {
	ctx := context.Background()
	version := headingVersion(t)
	host := &memory.Entity{Type: "node", ID: "1", Fields: map[string]any{
		"title": map[string]any{"value": "Katherine Johnson"},
	}}
	r := propsource.NewResolver()

	t.Run("static and default", func(t *testing.T) {
		item := domain.ComponentTreeItem{UUID: "a", ComponentID: testutils.HeadingID, Inputs: map[string]any{"text": "Hi"}}
		out, err := r.Resolve(ctx, host, item, version)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"text": "Hi", "level": "h2"}, out)
	})

	t.Run("dynamic", func(t *testing.T) {
		item := domain.ComponentTreeItem{UUID: "a", Inputs: map[string]any{
			"text": map[string]any{"sourceType": "dynamic", "expression": "title.value"},
		}}
		out, err := r.Resolve(ctx, host, item, version)
		require.NoError(t, err)
		assert.Equal(t, "Katherine Johnson", out["text"])
	})

	t.Run("dynamic path not traversable", func(t *testing.T) {
		item := domain.ComponentTreeItem{UUID: "a", Inputs: map[string]any{
			"text": map[string]any{"sourceType": "dynamic", "expression": "body.value"},
		}}
		_, err := r.Resolve(ctx, host, item, version)
		var resErr *propsource.ResolutionError
		require.ErrorAs(t, err, &resErr)
		assert.Equal(t, "text", resErr.Prop)
		assert.Equal(t, domain.SourceKindDynamic, resErr.Source)
	})

	t.Run("dynamic without host", func(t *testing.T) {
		item := domain.ComponentTreeItem{UUID: "a", Inputs: map[string]any{
			"text": map[string]any{"sourceType": "dynamic", "expression": "title.value"},
		}}
		_, err := r.Resolve(ctx, nil, item, version)
		assert.ErrorIs(t, err, domain.ErrHostNotFound)
	})

	t.Run("missing inputs", func(t *testing.T) {
		item := domain.ComponentTreeItem{UUID: "a", ComponentID: testutils.HeadingID}
		_, err := r.Resolve(ctx, host, item, version)
		var missing *domain.MissingInputsError
		require.ErrorAs(t, err, &missing)
		assert.Equal(t, "a", missing.UUID)
	})

	t.Run("missing inputs tolerated without required props", func(t *testing.T) {
		spacer, err := testutils.Spacer().Version("")
		require.NoError(t, err)
		out, err := r.Resolve(ctx, host, domain.ComponentTreeItem{UUID: "s"}, spacer)
		require.NoError(t, err)
		assert.Empty(t, out)
	})
}

func TestResolver_URLs(t *testing.T) {
	ctx := context.Background()
	base, err := url.Parse("https://example.com/")
	require.NoError(t, err)
	r := propsource.NewResolver(propsource.WithBaseURL(base))
	host := &memory.Entity{Type: "node", ID: "7", Path: "/about-us"}

	out, err := r.ResolveSource(ctx, host, "href", propsource.DefaultRelativeURL{Value: "/contact"})
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/contact", out)

	out, err = r.ResolveSource(ctx, host, "href", propsource.HostEntityURL{})
	require.NoError(t, err)
	assert.Equal(t, "/about-us", out)

	out, err = r.ResolveSource(ctx, host, "href", propsource.HostEntityURL{Absolute: true})
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/about-us", out)

	_, err = r.ResolveSource(ctx, host, "href", propsource.DefaultRelativeURL{Value: 12})
	assert.Error(t, err)
}

func TestResolver_Adapters(t *testing.T) {
	ctx := context.Background()
	host := &memory.Entity{Type: "node", ID: "1", Fields: map[string]any{"created": "2024-01-01", "first": "Ada"}}
	r := propsource.NewResolver()

	days, err := r.ResolveSource(ctx, host, "age", propsource.Adapted{Adapter: "day_count", Inputs: map[string]propsource.Source{
		"oldest": propsource.Dynamic{Expression: "created"},
		"newest": propsource.Static{Value: "2024-01-31"},
	}})
	require.NoError(t, err)
	assert.Equal(t, 30, days)

	date, err := r.ResolveSource(ctx, host, "date", propsource.Adapted{Adapter: "unix_to_date", Inputs: map[string]propsource.Source{
		"timestamp": propsource.Static{Value: float64(86400)},
	}})
	require.NoError(t, err)
	assert.Equal(t, "1970-01-02", date)

	joined, err := r.ResolveSource(ctx, host, "name", propsource.Adapted{Adapter: "string_join", Inputs: map[string]propsource.Source{
		"first":     propsource.Dynamic{Expression: "first"},
		"second":    propsource.Static{Value: "Lovelace"},
		"separator": propsource.Static{Value: "-"},
	}})
	require.NoError(t, err)
	assert.Equal(t, "Ada-Lovelace", joined)

	_, err = r.ResolveSource(ctx, host, "x", propsource.Adapted{Adapter: "nope"})
	var resErr *propsource.ResolutionError
	require.ErrorAs(t, err, &resErr)
	assert.Equal(t, domain.SourceKindAdapted, resErr.Source)
}

type countingRecorder struct{ results map[string]int }

func (c *countingRecorder) ObserveResolution(source, result string) {
	c.results[source+"/"+result]++
}

func TestResolver_Recorder(t *testing.T) {
	rec := &countingRecorder{results: map[string]int{}}
	r := propsource.NewResolver(propsource.WithRecorder(rec))

	_, _ = r.ResolveSource(context.Background(), nil, "p", propsource.Static{Value: 1})
	_, _ = r.ResolveSource(context.Background(), nil, "p", propsource.Dynamic{Expression: "x"})

	assert.Equal(t, map[string]int{"static/ok": 1, "dynamic/error": 1}, rec.results)
}

func TestRequestCache(t *testing.T) {
	cache := propsource.NewRequestCache()
	r := propsource.NewResolver(propsource.WithCache(cache))
	version := headingVersion(t)
	host := &memory.Entity{Type: "node", ID: "1", Fields: map[string]any{"title": "First"}}
	item := domain.ComponentTreeItem{UUID: "a", Inputs: map[string]any{
		"text": map[string]any{"sourceType": "dynamic", "expression": "title"},
	}}

	ctx := propsource.ContextWithRequestID(context.Background(), "req-1")
	cache.Begin("req-1")

	out, err := r.Resolve(ctx, host, item, version)
	require.NoError(t, err)
	assert.Equal(t, "First", out["text"])

	host.Fields["title"] = "Second"
	out, err = r.Resolve(ctx, host, item, version)
	require.NoError(t, err)
	assert.Equal(t, "First", out["text"], "served from the request cache")

	cache.End("req-1")
	assert.Equal(t, 0, cache.Len())

	out, err = r.Resolve(ctx, host, item, version)
	require.NoError(t, err)
	assert.Equal(t, "Second", out["text"])
}

func TestResolver_ResolveTree(t *testing.T) {
	cache := propsource.NewRequestCache()
	r := propsource.NewResolver(propsource.WithCache(cache))
	defs := memory.NewDefinitionStore(testutils.Definitions()...)
	host := &memory.Entity{Type: "node", ID: "1", Tree: domain.ComponentTree{
		{UUID: "a", ComponentID: testutils.HeadingID, Inputs: map[string]any{"text": "Hi"}},
		{UUID: "b", ComponentID: "sdc.canvas.removed", Inputs: map[string]any{}},
	}}

	out, err := r.ResolveTree(context.Background(), host, defs)
	require.NoError(t, err)
	assert.Equal(t, map[string]map[string]any{"a": {"text": "Hi", "level": "h2"}}, out)
	assert.Equal(t, 0, cache.Len(), "the implicit request is closed")
}

func TestCollapse(t *testing.T) {
	version := headingVersion(t)
	inputs := map[string]any{
		"text":  expandedText("Hello"),
		"level": map[string]any{"sourceType": "dynamic", "expression": "level"},
	}

	collapsed, err := propsource.Collapse(inputs, version)
	require.NoError(t, err)
	assert.Equal(t, "Hello", collapsed["text"])
	assert.Equal(t, inputs["level"], collapsed["level"], "non-default sources stay expanded")

	expanded, err := propsource.Expand(collapsed, version)
	require.NoError(t, err)
	assert.Equal(t, expandedText("Hello"), expanded["text"])

	nilInputs, err := propsource.Collapse(nil, version)
	require.NoError(t, err)
	assert.Nil(t, nilInputs)

	_, err = propsource.Expand(map[string]any{"undeclared": "x"}, version)
	assert.Error(t, err)
}

func TestCollapse_SettingsPreventCollapse(t *testing.T) {
	version := headingVersion(t)
	raw := expandedText("Hello")
	raw["sourceTypeSettings"] = map[string]any{"storage": map[string]any{"max_length": 10}}

	collapsed, err := propsource.Collapse(map[string]any{"text": raw}, version)
	require.NoError(t, err)
	assert.Equal(t, raw, collapsed["text"])
}

func TestCollapse_IdempotentHash(t *testing.T) {
	version := headingVersion(t)
	inputs := map[string]any{
		"text":  expandedText("Hello"),
		"level": "h3",
	}

	once, err := propsource.Collapse(inputs, version)
	require.NoError(t, err)
	twice, err := propsource.Collapse(once, version)
	require.NoError(t, err)

	h1, err := propsource.Hash(once)
	require.NoError(t, err)
	h2, err := propsource.Hash(twice)
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 16)

	h3, err := propsource.Hash(inputs)
	require.NoError(t, err)
	assert.NotEqual(t, h1, h3)
}

func TestCollapseTree(t *testing.T) {
	version := headingVersion(t)
	tree := domain.ComponentTree{
		{UUID: "a", ComponentID: testutils.HeadingID, Inputs: map[string]any{"text": expandedText("A")}},
		{UUID: "b", ComponentID: "other", Inputs: map[string]any{"text": expandedText("B")}},
	}

	out, err := propsource.CollapseTree(tree, map[string]*domain.ComponentVersion{"a": version})
	require.NoError(t, err)
	assert.Equal(t, "A", out[0].Inputs["text"])
	assert.Equal(t, expandedText("B"), out[1].Inputs["text"])
	assert.Equal(t, expandedText("A"), tree[0].Inputs["text"], "input tree is not modified")
}

func TestValidateCollapsed(t *testing.T) {
	version := headingVersion(t)
	vctx := validation.NewContext("")
	item := domain.ComponentTreeItem{UUID: "a", Inputs: map[string]any{
		"text":  expandedText("Hello"),
		"level": "h1",
	}}

	propsource.ValidateCollapsed(item, version, vctx.AtPath("3"))

	vs := vctx.Violations()
	require.Len(t, vs, 1)
	assert.Equal(t, "3.inputs.text", vs[0].PropertyPath)
	assert.Equal(t, propsource.MsgNotCollapsed, vs[0].Message)
}

func TestResolutionError(t *testing.T) {
	err := &propsource.ResolutionError{Prop: "text", Source: domain.SourceKindDynamic, Reason: "boom", Err: domain.ErrHostNotFound}
	assert.True(t, errors.Is(err, domain.ErrHostNotFound))
	assert.Contains(t, err.Error(), `cannot resolve prop "text" from dynamic source: boom`)
}
