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

// CompileSettings is the fully-resolved, per-source-file input to a
// Compiler. Everything in it has already been merged from effecting
// declarations and made absolute (see planner.go).
type CompileSettings struct {
	SourceFile         string
	OutputFile         string
	TargetArchitecture string
	ModuleType         ModuleType
	IntermediateDir    string

	CPUExtension            string
	EnableExceptions         bool
	EnableFastFP             bool
	EnableRTTI               bool
	IsDebugBuild             bool
	EnableDebugFileCreation  bool
	CppStandard              string
	CStandard                string
	Definitions              []string
	IncludePaths             []string
	ForceIncludes            []string
	Optimization             string
	OtherFlags               []string
}

// LinkSettings is the fully-resolved input to a Linker.
type LinkSettings struct {
	InputFiles             []string
	OutputFile             string
	OutputType             ModuleType
	TargetArchitecture     string
	IntermediateDir        string
	LibraryPaths           []string
	LinkerFlags            []string
	ShouldCreateDebugFiles bool
	IsDebugBuild           bool
	DelayLoadLibraries     []string
}

// Compiler runs a single compile action.
type Compiler interface {
	Compile(ctx context.Context, s CompileSettings) error
}

// Linker runs a single link or archive action.
type Linker interface {
	Link(ctx context.Context, s LinkSettings) error
}

// CompilerFactory decides whether it can service a module/instancing
// combination and, if so, builds the Compiler for it.
type CompilerFactory interface {
	CanCreate(m *ModuleConfig, params InstancingParams) bool
	New(m *ModuleConfig, params InstancingParams) (Compiler, error)
}

// LinkerFactory is the Linker analogue of CompilerFactory. The same
// interface serves both the real linker (shared library / executable
// output) and the archiver (static library output): ArchiverFactory on
// Toolchain is just a LinkerFactory restricted to static-library output.
type LinkerFactory interface {
	CanCreate(m *ModuleConfig, params InstancingParams) bool
	New(m *ModuleConfig, params InstancingParams) (Linker, error)
}

// Toolchain bundles the factories needed to build every module type for one
// named tool family (gcc, clang, msvc, ...).
type Toolchain struct {
	Name                    string
	CompilerFactory         CompilerFactory
	ResourceCompilerFactory CompilerFactory // nil if this toolchain has no resource compiler
	LinkerFactory           LinkerFactory
	ArchiverFactory         LinkerFactory
}

// ToolchainRegistry maps toolchain names to their Toolchain.
type ToolchainRegistry struct {
	mu         sync.RWMutex
	toolchains map[string]*Toolchain
}

// NewToolchainRegistry returns an empty registry.
func NewToolchainRegistry() *ToolchainRegistry {
	return &ToolchainRegistry{toolchains: map[string]*Toolchain{}}
}

// Register adds or overwrites t under t.Name.
func (r *ToolchainRegistry) Register(t *Toolchain) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.toolchains[t.Name] = t
}

// Get looks up a toolchain by name.
func (r *ToolchainRegistry) Get(name string) (*Toolchain, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.toolchains[name]
	return t, ok
}

// DefaultToolchains is the process-wide registry populated by
// toolchain_unix.go/toolchain_windows.go init functions.
var DefaultToolchains = NewToolchainRegistry()
