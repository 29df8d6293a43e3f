package validation

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslatePath(t *testing.T) {
	tests := []struct {
		base, path, want string
	}{
		{"", "[0][parent_uuid]", "0.parent_uuid"},
		{"", "0.parent_uuid", "0.parent_uuid"},
		{"components", "[3][slot]", "components.3.slot"},
		{"components", "components.3.slot", "components.3.slot"},
		{"components", "components", "components"},
		{"tree", "tree_items.0", "tree.tree_items.0"},
		{"a[0]", "[1][b]", "a.0.1.b"},
		{"", "", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, TranslatePath(tt.base, tt.path), "base=%q path=%q", tt.base, tt.path)
	}
}

func TestContext_NestedViewsShareCollector(t *testing.T) {
	root := NewContext("components")
	item := root.AtPath("[2]")

	item.AddViolation("slot", "bad slot", nil)
	root.AddViolation("components.0.uuid", "blank", map[string]any{"uuid": ""})

	vs := root.Violations()
	require.Len(t, vs, 2)
	assert.Equal(t, "components.2.slot", vs[0].PropertyPath)
	assert.Equal(t, "components.0.uuid", vs[1].PropertyPath, "established prefix must not be duplicated")
	assert.Equal(t, 2, item.Count())
	assert.Equal(t, "components.2", item.BasePath())
}

func TestContext_Err(t *testing.T) {
	vctx := NewContext("")
	assert.NoError(t, vctx.Err())

	vctx.AddViolation("0.slot", "first", nil)
	err := vctx.Err()
	require.Error(t, err)
	assert.Equal(t, "0.slot: first", err.Error())

	vctx.AddViolation("", "second", nil)
	err = vctx.Err()
	assert.Contains(t, err.Error(), "2 violations")
	assert.Equal(t, []string{"first", "second"}, Messages(Violations(err)))
}

func TestContext_ConcurrentAdds(t *testing.T) {
	vctx := NewContext("")
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			vctx.AtPath("x").AddViolation("y", "m", nil)
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, vctx.Count())
}

func TestViolations_NonListError(t *testing.T) {
	assert.Nil(t, Violations(assert.AnError))
}
