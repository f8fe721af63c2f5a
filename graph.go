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
	"context"
	"sync"
)

// Graph is a fully-resolved module-declaration dependency graph rooted at a
// single ModuleReference.
type Graph struct {
	Root  *Node
	store *NodeStore

	cycleOnce sync.Once
	cycleHas  bool
	cyclePath []string
}

func (g *Graph) newNode(kind NodeKind, name string, parent *Node) *Node {
	return g.store.New(kind, name, parent)
}

// HasCycle reports whether the dependency graph contains a cycle. The
// result is memoized on first call.
func (g *Graph) HasCycle() bool {
	has, _ := g.cycle()
	return has
}

// CyclePath returns the node names along a discovered cycle, from the first
// repeated node back to itself (the closing node included), or nil if the
// graph is acyclic.
func (g *Graph) CyclePath() []string {
	_, path := g.cycle()
	return path
}

func (g *Graph) cycle() (bool, []string) {
	g.cycleOnce.Do(func() {
		color := map[*Node]int{} // 0 = white, 1 = gray, 2 = black
		var stack []*Node

		var dfs func(n *Node) []string
		dfs = func(n *Node) []string {
			color[n] = 1
			stack = append(stack, n)
			for _, c := range n.Children() {
				if c.Kind != NodeModuleDeclaration {
					continue
				}
				switch color[c] {
				case 1:
					idx := 0
					for i, s := range stack {
						if s == c {
							idx = i
							break
						}
					}
					cyc := make([]string, 0, len(stack)-idx+1)
					for _, s := range stack[idx:] {
						cyc = append(cyc, s.Name)
					}
					cyc = append(cyc, c.Name)
					return cyc
				case 0:
					if p := dfs(c); p != nil {
						return p
					}
				}
			}
			stack = stack[:len(stack)-1]
			color[n] = 2
			return nil
		}

		g.cyclePath = dfs(g.Root)
		g.cycleHas = g.cyclePath != nil
	})
	return g.cycleHas, g.cyclePath
}

// EffectingDeclarations returns, for a ModuleDeclaration node n, the set of
// module-declaration nodes whose public attributes must be merged into n's
// own compile settings: each of n's public and private child declarations,
// plus the transitive closure reachable from each of those through public
// edges only.
func EffectingDeclarations(n *Node) []*Node {
	seen := map[*Node]bool{}
	var out []*Node

	var addPublicClosure func(x *Node)
	addPublicClosure = func(x *Node) {
		if x.Kind != NodeModuleDeclaration || seen[x] {
			return
		}
		seen[x] = true
		out = append(out, x)
		for _, c := range x.PublicChildren {
			addPublicClosure(c)
		}
	}

	for _, c := range n.PublicChildren {
		addPublicClosure(c)
	}
	for _, c := range n.PrivateChildren {
		addPublicClosure(c)
	}
	return out
}

// Resolver builds a Graph from a root ModuleReference, constructing
// ModuleConfigs via a ModuleInstanceCache and tolerating dependency cycles
// by reusing the in-progress node for a module currently being resolved
// further up the same recursion.
type Resolver struct {
	Instances *ModuleInstanceCache
	Files     *ModuleFileCache
	store     *NodeStore
}

// NewResolver returns a Resolver backed by the given instance and file
// caches.
func NewResolver(instances *ModuleInstanceCache, files *ModuleFileCache) *Resolver {
	return &Resolver{Instances: instances, Files: files, store: &NodeStore{}}
}

// resolveState is scoped to a single Build call: the constructing and
// declByPath maps must not leak across independent graph builds sharing the
// same Resolver.
type resolveState struct {
	constructing map[string]*Node
	declByPath   map[string]*Node
}

// Build resolves ref into a complete dependency Graph.
func (r *Resolver) Build(ctx context.Context, ref ModuleReference, mctx ModuleContext) (*Graph, error) {
	st := &resolveState{
		constructing: map[string]*Node{},
		declByPath:   map[string]*Node{},
	}
	root, err := r.resolveModule(ctx, ref, mctx, st)
	if err != nil {
		return nil, err
	}
	return &Graph{Root: root, store: r.store}, nil
}

func (r *Resolver) resolveModule(ctx context.Context, ref ModuleReference, mctx ModuleContext, st *resolveState) (*Node, error) {
	canonical, err := r.Files.Resolve(ref.FilePath)
	if err != nil {
		return nil, err
	}
	ref.FilePath = canonical
	key := ref.Key()

	if n, ok := st.constructing[key]; ok {
		return n, nil // cycle: reuse the node currently being built
	}
	if n, ok := st.declByPath[key]; ok {
		return n, nil // already fully resolved earlier in this graph build
	}

	mctx.Reference = ref
	cfg, err := r.Instances.Get(ctx, ref, mctx)
	if err != nil {
		return nil, err
	}

	node := r.store.New(NodeModuleDeclaration, cfg.Name, nil)
	node.Module = cfg
	st.constructing[key] = node

	for _, dep := range cfg.Dependencies.Public() {
		child, err := r.resolveModule(ctx, dep, mctx, st)
		if err != nil {
			delete(st.constructing, key)
			return nil, err
		}
		node.PublicChildren = append(node.PublicChildren, child)
	}
	for _, dep := range cfg.Dependencies.Private() {
		child, err := r.resolveModule(ctx, dep, mctx, st)
		if err != nil {
			delete(st.constructing, key)
			return nil, err
		}
		node.PrivateChildren = append(node.PrivateChildren, child)
	}

	delete(st.constructing, key)
	st.declByPath[key] = node
	return node, nil
}
