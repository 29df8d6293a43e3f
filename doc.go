/*
Package canvas validates component trees: the ordered lists of component
instances that make up a page, a content template or a page region.

Each instance names a component definition and, optionally, the slot of a
parent instance it is placed in. Canvas checks that the tree is well formed
(unique UUIDs, existing parents, declared slots), that every instance's inputs
satisfy the prop schemas of its component version, and that components can be
edited at all (the requirements check). Prop sources stored in inputs can be
resolved against a host entity to produce the final values.

# Architecture

The core packages are independent of storage and transport:

  - pkg/domain: trees, component definitions and versions, errors.
  - pkg/tree, pkg/constraint: structural and full tree validation.
  - pkg/requirements, pkg/shape: whether a component can be edited.
  - pkg/propsource: static, dynamic and adapted prop source evaluation.
  - pkg/autosave: per-host drafts with publish-time validation.

Adapters provide definitions from a directory of markdown, YAML or JSON files
(Loam), drafts in memory or Redis, and an HTTP API and MCP tool server.

# Usage

	c, err := canvas.New("./components")
	if err != nil {
		log.Fatal(err)
	}

	violations, err := c.Validate(ctx, tree)
	if err != nil {
		log.Fatal(err)
	}
	for _, v := range violations {
		fmt.Println(v)
	}

Definitions can also be built in Go with pkg/dsl and injected with
WithDefinitions.
*/
package canvas
