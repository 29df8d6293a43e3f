package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/canvas/pkg/domain"
	"github.com/aretw0/canvas/pkg/requirements"
	"github.com/aretw0/canvas/pkg/validation"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"gopkg.in/yaml.v3"
)

func newInstanceUUID() string {
	return uuid.NewString()
}

// render encodes a tool response as YAML.
func render(v map[string]any) *mcp.CallToolResult {
	out, err := yaml.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("error: Failed to encode response: %v\n", err))
	}
	return mcp.NewToolResultText(string(out))
}

// failure reports err as {error: "Failed to process <what> data: ..."}.
func failure(what string, err error) *mcp.CallToolResult {
	out, _ := yaml.Marshal(map[string]any{
		"error": fmt.Sprintf("Failed to process %s data: %v", what, err),
	})
	return mcp.NewToolResultError(string(out))
}

// parseTree accepts YAML or JSON. An empty string is an empty tree.
func parseTree(raw string) (domain.ComponentTree, error) {
	var t domain.ComponentTree
	if raw == "" {
		return t, nil
	}
	if err := yaml.Unmarshal([]byte(raw), &t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Server) validate(ctx context.Context, t domain.ComponentTree) ([]validation.Violation, error) {
	vctx := validation.NewContext("")
	if err := s.validator.Validate(ctx, t, vctx); err != nil {
		return nil, err
	}
	return vctx.Violations(), nil
}

func (s *Server) handleValidate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	t, err := parseTree(request.GetString("tree", ""))
	if err != nil {
		return failure("component tree", err), nil
	}
	violations, err := s.validate(ctx, t)
	if err != nil {
		return failure("component tree", err), nil
	}
	return render(map[string]any{
		"valid":      len(violations) == 0,
		"violations": violations,
	}), nil
}

func (s *Server) handleRequirements(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := request.GetString("component_id", "")
	if id == "" {
		return failure("component", fmt.Errorf("component_id is required")), nil
	}

	err := requirements.ForDefinition(ctx, s.definitions, id, s.matcher)
	var reqErr *requirements.ComponentDoesNotMeetRequirementsError
	switch {
	case err == nil:
		return render(map[string]any{"component_id": id, "meets_requirements": true}), nil
	case errors.As(err, &reqErr):
		return render(map[string]any{
			"component_id":       id,
			"meets_requirements": false,
			"messages":           reqErr.Messages,
		}), nil
	default:
		return failure("component", err), nil
	}
}

func (s *Server) handleAddInstance(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	t, err := parseTree(request.GetString("tree", ""))
	if err != nil {
		return failure("component tree", err), nil
	}

	componentID := request.GetString("component_id", "")
	version, err := s.definitions.GetVersion(ctx, componentID, "")
	if err != nil {
		return failure("component", err), nil
	}

	inputs := map[string]any{}
	if raw := request.GetString("inputs", ""); raw != "" {
		if err := yaml.Unmarshal([]byte(raw), &inputs); err != nil {
			return failure("component inputs", err), nil
		}
	} else {
		inputs = exampleInputs(version)
	}

	item := domain.ComponentTreeItem{
		UUID:             s.newUUID(),
		ComponentID:      componentID,
		ComponentVersion: version.Version,
		ParentUUID:       request.GetString("parent_uuid", ""),
		Slot:             request.GetString("slot", ""),
		Label:            request.GetString("label", ""),
		Inputs:           inputs,
	}
	t = append(t, item)

	violations, err := s.validate(ctx, t)
	if err != nil {
		return failure("component instance", err), nil
	}
	if len(violations) > 0 {
		return failure("component instance", &validation.ViolationListError{Violations: violations}), nil
	}

	s.logger.Debug("component instance added", "uuid", item.UUID, "component", componentID)
	return render(map[string]any{"uuid": item.UUID, "tree": t}), nil
}

// exampleInputs fills every prop that declares examples with its first one.
func exampleInputs(version *domain.ComponentVersion) map[string]any {
	inputs := map[string]any{}
	if version.Metadata.Props == nil {
		return inputs
	}
	version.Metadata.Props.Properties.Each(func(name string, prop *domain.PropSchema) {
		if prop != nil && len(prop.Examples) > 0 {
			inputs[name] = prop.Examples[0]
		}
	})
	return inputs
}

func (s *Server) handleResolve(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	host, err := s.hosts.Load(ctx, request.GetString("host_type", ""), request.GetString("host_id", ""))
	if err != nil {
		return failure("host", err), nil
	}
	inputs, err := s.resolver.ResolveTree(ctx, host, s.definitions)
	if err != nil {
		return failure("component inputs", err), nil
	}
	return render(map[string]any{"inputs": inputs}), nil
}
