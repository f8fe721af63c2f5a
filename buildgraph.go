// Copyright 2015 Google Inc. All rights reserved
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ebuild

import (
	"fmt"
	"html"
	"io"
	"sort"
)

// BuildGraphWriter renders a resolved Graph as a human-readable text or
// HTML dependency listing, walking module-declaration nodes the same way
// the executor does: each node visited once, its public and private
// children recursed into afterward.
type BuildGraphWriter struct {
	done map[*Node]bool
}

// NewBuildGraphWriter returns a writer ready to render one Graph.
func NewBuildGraphWriter() *BuildGraphWriter {
	return &BuildGraphWriter{done: map[*Node]bool{}}
}

// WriteText writes an indented plain-text module tree to w.
func (bw *BuildGraphWriter) WriteText(w io.Writer, g *Graph) {
	bw.writeTextNode(w, g.Root, 0)
}

func (bw *BuildGraphWriter) writeTextNode(w io.Writer, n *Node, depth int) {
	if bw.done[n] {
		fmt.Fprintf(w, "%*s%s (visited)\n", depth*2, "", n.Name)
		return
	}
	bw.done[n] = true
	fmt.Fprintf(w, "%*s%s\n", depth*2, "", n.Name)
	for _, c := range sortedModuleChildren(n) {
		bw.writeTextNode(w, c, depth+1)
	}
}

// WriteHTML writes a minimal self-contained HTML page with a nested <ul>
// module tree to w.
func (bw *BuildGraphWriter) WriteHTML(w io.Writer, g *Graph) {
	fmt.Fprintln(w, "<!DOCTYPE html>")
	fmt.Fprintln(w, "<html><head><meta charset=\"utf-8\"><title>build graph</title></head><body>")
	bw.writeHTMLNode(w, g.Root)
	fmt.Fprintln(w, "</body></html>")
}

func (bw *BuildGraphWriter) writeHTMLNode(w io.Writer, n *Node) {
	if bw.done[n] {
		fmt.Fprintf(w, "<li>%s (visited)</li>\n", html.EscapeString(n.Name))
		return
	}
	bw.done[n] = true
	children := sortedModuleChildren(n)
	if len(children) == 0 {
		fmt.Fprintf(w, "<li>%s</li>\n", html.EscapeString(n.Name))
		return
	}
	fmt.Fprintf(w, "<li>%s<ul>\n", html.EscapeString(n.Name))
	for _, c := range children {
		bw.writeHTMLNode(w, c)
	}
	fmt.Fprintln(w, "</ul></li>")
}

func sortedModuleChildren(n *Node) []*Node {
	var out []*Node
	for _, c := range n.Children() {
		if c.Kind == NodeModuleDeclaration {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
