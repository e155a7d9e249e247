// Package render exports a resolved package closure as a Graphviz
// node-link diagram, for inspecting what an environment would install.
package render

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"

	"github.com/stanza-dev/stanza/pkg/lockfile"
)

// ToDOT converts a package closure to Graphviz DOT format. Nodes are the
// unique packages in the closure, labeled name and version; edges follow
// requirement declarations between closure members. Requirements pointing
// outside the closure (pruned or allowed-missing packages) are omitted.
func ToDOT(packages []*lockfile.Package) string {
	members := make(map[string]*lockfile.Package, len(packages))
	var order []string
	for _, p := range packages {
		if _, ok := members[p.Name]; !ok {
			members[p.Name] = p
			order = append(order, p.Name)
		}
	}

	var buf bytes.Buffer
	buf.WriteString("digraph deps {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, margin=\"0.2,0.1\"];\n")
	buf.WriteString("\n")

	for _, name := range order {
		p := members[name]
		fmt.Fprintf(&buf, "  %q [label=%q];\n", p.Name, p.Name+"\n"+p.Version)
	}

	buf.WriteString("\n")
	for _, name := range order {
		for _, dep := range members[name].Requires {
			if _, ok := members[dep.Name]; ok {
				fmt.Fprintf(&buf, "  %q -> %q;\n", name, dep.Name)
			}
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
