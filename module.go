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
	"fmt"
)

// ModuleType is the kind of build output a module declaration produces.
type ModuleType int

const (
	ModuleTypeStaticLibrary ModuleType = iota
	ModuleTypeSharedLibrary
	ModuleTypeExecutable
	ModuleTypeExecutableWin32
	// ModuleTypeLibraryLoader declares no sources or linked output of its
	// own; it only contributes effecting declarations (includes,
	// definitions, dependencies) to whatever declares it as a dependency.
	ModuleTypeLibraryLoader
)

func (t ModuleType) String() string {
	switch t {
	case ModuleTypeStaticLibrary:
		return "StaticLibrary"
	case ModuleTypeSharedLibrary:
		return "SharedLibrary"
	case ModuleTypeExecutable:
		return "Executable"
	case ModuleTypeExecutableWin32:
		return "ExecutableWin32"
	case ModuleTypeLibraryLoader:
		return "LibraryLoader"
	}
	return "Unknown"
}

// VariantOption is a single named build option. ChangesResultBinary marks
// options that must be folded into the variant-id hash used to separate
// output directories (see variantID in planner.go); options that don't
// affect the binary (e.g. a verbose-logging toggle) are left out so they
// don't cause spurious rebuild-directory churn.
type VariantOption struct {
	Value               string
	ChangesResultBinary bool
}

// BuildStep is a named hook a module declaration runs before or after its
// own compile/link actions. Run is supplied by the module's own
// construction code (the external collaborator surface); the executor
// invokes it with the owning module's fully-constructed configuration.
type BuildStep struct {
	Name string
	Run  func(ctx context.Context, m *ModuleConfig) error
}

// ModuleConfig is the fully-constructed, in-memory description of a single
// module declaration: its sources, its access-scoped compiler/linker
// inputs, and its dependency edges. It is built once per ModuleReference by
// a ModuleLoader and then memoized by ModuleInstanceCache.
type ModuleConfig struct {
	Name string
	Type ModuleType

	Sources []string // ordered; relative to Dir unless absolute

	Includes            AccessScoped[string]
	Definitions         AccessScoped[string]
	ForceIncludes       AccessScoped[string]
	Libraries           AccessScoped[string]
	LibrarySearchPaths  AccessScoped[string]
	Dependencies        AccessScoped[ModuleReference]
	ResourceIncludes    AccessScoped[string]
	ResourceDefinitions AccessScoped[string]

	CppStandard             string
	CStandard               string
	OptimizationLevel       string
	EnableExceptions        bool
	EnableRTTI              bool
	EnableFastFP            bool
	CPUExtension            string
	EnableDebugFileCreation bool
	CompilerOptions         []string
	LinkerOptions           []string
	DelayLoadLibraries      []string
	PreBuildSteps           []BuildStep
	PostBuildSteps          []BuildStep
	AdditionalDependencies  []string

	OutputDirectory string
	OutputFileName  string

	// UseVariants enables variant-id output-directory hashing over
	// VariantOptions whose ChangesResultBinary is true.
	UseVariants    bool
	VariantOptions map[string]VariantOption

	Reference ModuleReference
	// Dir is the directory containing the module's declaration file; the
	// base against which its own relative Sources/Includes/etc. are
	// resolved to absolute paths.
	Dir string

	Diagnostics []Diagnostic
}

// NewModuleConfig returns an empty configuration anchored at dir, ready for
// a ModuleLoader to populate.
func NewModuleConfig(ref ModuleReference, dir string) *ModuleConfig {
	return &ModuleConfig{
		Reference:      ref,
		Dir:            dir,
		VariantOptions: map[string]VariantOption{},
	}
}

// AddDiagnostic records a construction-time diagnostic against the module.
func (m *ModuleConfig) AddDiagnostic(sev Severity, format string, args ...interface{}) {
	m.Diagnostics = append(m.Diagnostics, Diagnostic{Severity: sev, Message: fmt.Sprintf(format, args...)})
}

// HasErrors reports whether any Error-severity diagnostic was recorded.
func (m *ModuleConfig) HasErrors() bool {
	for _, d := range m.Diagnostics {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// InstancingParams carries the per-build-invocation extras a toolchain
// factory may need beyond the module itself (extra flags threaded in from
// the command line, extra dependency search paths contributed by a remote
// cache hydration step, etc).
type InstancingParams struct {
	ExtraCompilerFlags         []string
	ExtraLinkerFlags           []string
	ExtraDependencySearchPaths []string
}

// ModuleContext carries the build-wide parameters every module is
// constructed and planned against: which platform and toolchain to target,
// the requested architecture and configuration, and free-form options
// passed through -D on the command line.
type ModuleContext struct {
	Reference          ModuleReference
	Platform           *Platform
	Toolchain          *Toolchain
	TargetArchitecture string
	Configuration      string // "debug" or "release"
	Options            map[string]string
	Instancing         InstancingParams
}
