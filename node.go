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

import "sync"

// NodeKind discriminates the kinds of node that appear in a resolved build
// graph / action plan.
type NodeKind int

const (
	NodeModuleDeclaration NodeKind = iota
	NodeCompileSourceFile
	NodeLinker
	NodeBuildStepPreBuild
	NodeBuildStepPostBuild
	NodeCopySharedLibraryToRootBin
	NodeAdditionalDependency
)

func (k NodeKind) String() string {
	switch k {
	case NodeModuleDeclaration:
		return "ModuleDeclaration"
	case NodeCompileSourceFile:
		return "CompileSourceFile"
	case NodeLinker:
		return "Linker"
	case NodeBuildStepPreBuild:
		return "PreBuildStep"
	case NodeBuildStepPostBuild:
		return "PostBuildStep"
	case NodeCopySharedLibraryToRootBin:
		return "CopySharedLibrary"
	case NodeAdditionalDependency:
		return "AdditionalDependency"
	}
	return "Unknown"
}

// Node is a single vertex in the resolved dependency graph / build-action
// DAG. ModuleDeclaration nodes carry a *ModuleConfig and public/private
// child ModuleDeclaration edges (the dependency graph proper); the planner
// attaches further non-declaration children (compile/link/build-step/copy
// actions) directly beneath the declaration node they belong to.
type Node struct {
	ID     int
	Kind   NodeKind
	Name   string
	Parent *Node

	PublicChildren  []*Node
	PrivateChildren []*Node

	Module          *ModuleConfig
	CompileSettings *CompileSettings
	LinkSettings    *LinkSettings
	BuildStep       *BuildStep

	CopySource string
	CopyDest   string

	AdditionalDependency string

	Compiler Compiler
	Linker   Linker
}

// Children returns every public and private child, public first.
func (n *Node) Children() []*Node {
	out := make([]*Node, 0, len(n.PublicChildren)+len(n.PrivateChildren))
	out = append(out, n.PublicChildren...)
	out = append(out, n.PrivateChildren...)
	return out
}

// OwningModule walks Parent pointers up to the nearest ModuleDeclaration
// node and returns its ModuleConfig, or nil if n has no such ancestor.
func (n *Node) OwningModule() *ModuleConfig {
	for p := n; p != nil; p = p.Parent {
		if p.Kind == NodeModuleDeclaration && p.Module != nil {
			return p.Module
		}
	}
	return nil
}

// OwningDeclarationNode walks Parent pointers up to the nearest
// ModuleDeclaration node and returns it (regardless of whether its Module
// has been populated yet), or nil if n has no such ancestor. Used to key
// per-module output, e.g. the generate-mode compile-commands registry.
func (n *Node) OwningDeclarationNode() *Node {
	for p := n; p != nil; p = p.Parent {
		if p.Kind == NodeModuleDeclaration {
			return p
		}
	}
	return nil
}

// NodeStore owns the lifetime and ID assignment of every Node created while
// resolving and planning a single build.
type NodeStore struct {
	mu    sync.Mutex
	nodes []*Node
}

// New allocates and registers a node.
func (s *NodeStore) New(kind NodeKind, name string, parent *Node) *Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := &Node{ID: len(s.nodes), Kind: kind, Name: name, Parent: parent}
	s.nodes = append(s.nodes, n)
	return n
}

// All returns every node this store has allocated, in allocation order.
func (s *NodeStore) All() []*Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Node, len(s.nodes))
	copy(out, s.nodes)
	return out
}
