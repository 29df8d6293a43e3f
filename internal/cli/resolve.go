package cli

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/aretw0/canvas"
	"github.com/aretw0/canvas/internal/config"
	"github.com/aretw0/canvas/pkg/propsource"
)

// ResolveOptions select the host whose tree is resolved.
type ResolveOptions struct {
	HostsPath string
	HostType  string
	HostID    string
	Format    string
}

// RunResolve evaluates the inputs of every instance in the host's tree.
func RunResolve(ctx context.Context, c *canvas.Canvas, cfg *config.Config, opts ResolveOptions, w io.Writer) error {
	if opts.HostsPath == "" {
		return fmt.Errorf("a hosts file is required")
	}
	hosts, err := loadHostStore(opts.HostsPath)
	if err != nil {
		return err
	}
	host, err := hosts.Load(ctx, opts.HostType, opts.HostID)
	if err != nil {
		return err
	}

	resolver := propsource.NewResolver(
		propsource.WithBaseURL(cfg.BaseURL()),
		propsource.WithCache(propsource.NewRequestCache()),
		propsource.WithLogger(c.Logger()),
	)
	inputs, err := resolver.ResolveTree(ctx, host, c.Definitions())
	if err != nil {
		return err
	}

	return writeResult(w, opts.Format, map[string]any{"inputs": inputs}, func() string {
		return inputsReport(opts.HostType+":"+opts.HostID, inputs)
	})
}

func inputsReport(title string, inputs map[string]map[string]any) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", title)
	uuids := make([]string, 0, len(inputs))
	for id := range inputs {
		uuids = append(uuids, id)
	}
	sort.Strings(uuids)
	for _, id := range uuids {
		fmt.Fprintf(&sb, "## %s\n\n", id)
		props := make([]string, 0, len(inputs[id]))
		for p := range inputs[id] {
			props = append(props, p)
		}
		sort.Strings(props)
		for _, p := range props {
			fmt.Fprintf(&sb, "- **%s**: `%v`\n", p, inputs[id][p])
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
