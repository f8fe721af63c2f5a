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
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// compileCommandEntry is one clangd-compatible compile_commands.json record.
type compileCommandEntry struct {
	Directory string   `json:"directory"`
	File      string   `json:"file"`
	Output    string   `json:"output,omitempty"`
	Arguments []string `json:"arguments"`
}

// CompileCommandsGenerator accumulates compile_commands.json entries as the
// Executor walks a planned Graph in GenerateOnly mode, rather than actually
// invoking a compiler. Entries are kept in a per-module registry keyed on
// the owning module's declaration node, in the order each module's first
// compile was emitted, so WriteFile's flat output stays deterministic
// without depending on map iteration order.
type CompileCommandsGenerator struct {
	// TargetModule, if set, restricts emission to compiles owned by this
	// declaration node; compiles belonging to any other module are
	// dropped. Nil means emit everything reachable from the plan.
	TargetModule *Node

	mu       sync.Mutex
	order    []*Node
	byModule map[*Node][]compileCommandEntry
}

// NewCompileCommandsGenerator returns an empty generator.
func NewCompileCommandsGenerator() *CompileCommandsGenerator {
	return &CompileCommandsGenerator{byModule: map[*Node][]compileCommandEntry{}}
}

// Emit records one compile action's settings, keyed by n's owning module
// declaration node.
func (g *CompileCommandsGenerator) Emit(n *Node, cs CompileSettings) {
	decl := n.OwningDeclarationNode()
	if g.TargetModule != nil && decl != g.TargetModule {
		return
	}
	dir := ""
	if decl != nil && decl.Module != nil {
		dir = decl.Module.Dir
	}
	args := append([]string{"cc", "-c", cs.SourceFile, "-o", cs.OutputFile}, cs.OtherFlags...)
	for _, d := range cs.Definitions {
		args = append(args, "-D"+d)
	}
	for _, i := range cs.IncludePaths {
		args = append(args, "-I"+i)
	}
	entry := compileCommandEntry{
		Directory: dir,
		File:      cs.SourceFile,
		Output:    cs.OutputFile,
		Arguments: args,
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.byModule[decl]; !ok {
		g.order = append(g.order, decl)
	}
	g.byModule[decl] = append(g.byModule[decl], entry)
}

// WriteFile writes the accumulated entries, flattened module-by-module in
// first-seen order, as compile_commands.json to path.
func (g *CompileCommandsGenerator) WriteFile(path string) error {
	g.mu.Lock()
	entries := []compileCommandEntry{}
	for _, decl := range g.order {
		entries = append(entries, g.byModule[decl]...)
	}
	g.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal compile_commands.json: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
