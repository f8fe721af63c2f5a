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
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// jsonModuleDecl is the on-disk shape of a declarative .ebuild.cs module
// file: the reasonable concrete loader the core's ModuleLoader trait
// anticipates, in place of a full embedded scripting surface.
type jsonModuleDecl struct {
	Name string `json:"name"`
	Type string `json:"type"`

	Sources []string `json:"sources"`

	PublicIncludes  []string `json:"publicIncludes"`
	PrivateIncludes []string `json:"privateIncludes"`

	PublicDefinitions  []string `json:"publicDefinitions"`
	PrivateDefinitions []string `json:"privateDefinitions"`

	PublicLibraries  []string `json:"publicLibraries"`
	PrivateLibraries []string `json:"privateLibraries"`

	PublicLibrarySearchPaths  []string `json:"publicLibrarySearchPaths"`
	PrivateLibrarySearchPaths []string `json:"privateLibrarySearchPaths"`

	PublicDependencies  []jsonModuleRef `json:"publicDependencies"`
	PrivateDependencies []jsonModuleRef `json:"privateDependencies"`

	ForceIncludes []string `json:"forceIncludes"`

	CppStandard             string   `json:"cppStandard"`
	CStandard               string   `json:"cStandard"`
	OptimizationLevel       string   `json:"optimizationLevel"`
	EnableExceptions        bool     `json:"enableExceptions"`
	EnableRTTI              bool     `json:"enableRtti"`
	EnableFastFP            bool     `json:"enableFastFp"`
	EnableDebugFileCreation bool     `json:"enableDebugFileCreation"`
	CompilerOptions         []string `json:"compilerOptions"`
	LinkerOptions           []string `json:"linkerOptions"`
	DelayLoadLibraries      []string `json:"delayLoadLibraries"`
}

type jsonModuleRef struct {
	Path    string            `json:"path"`
	Variant string            `json:"variant"`
	Version string            `json:"version"`
	Options map[string]string `json:"options"`
}

func (r jsonModuleRef) toReference() ModuleReference {
	return ModuleReference{
		OutputVariantTag: r.Variant,
		FilePath:         r.Path,
		Version:          r.Version,
		Options:          r.Options,
	}
}

func parseModuleType(s string) (ModuleType, error) {
	switch s {
	case "StaticLibrary", "":
		return ModuleTypeStaticLibrary, nil
	case "SharedLibrary":
		return ModuleTypeSharedLibrary, nil
	case "Executable":
		return ModuleTypeExecutable, nil
	case "ExecutableWin32":
		return ModuleTypeExecutableWin32, nil
	case "LibraryLoader":
		return ModuleTypeLibraryLoader, nil
	}
	return 0, fmt.Errorf("unknown module type %q", s)
}

// JSONModuleLoader loads module declarations from a declarative JSON
// document at each reference's resolved file path. It is the default
// ModuleLoader cmd/ebuild wires in; a deployment that needs richer
// build-time scripting can supply its own ModuleLoader instead.
type JSONModuleLoader struct{}

// Load implements ModuleLoader.
func (JSONModuleLoader) Load(ctx context.Context, ref ModuleReference, mctx ModuleContext) (*ModuleConfig, error) {
	data, err := os.ReadFile(ref.FilePath)
	if err != nil {
		return nil, err
	}
	var decl jsonModuleDecl
	if err := json.Unmarshal(data, &decl); err != nil {
		return nil, fmt.Errorf("parse %s: %w", ref.FilePath, err)
	}

	typ, err := parseModuleType(decl.Type)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ref.FilePath, err)
	}

	dir := filepath.Dir(ref.FilePath)
	m := NewModuleConfig(ref, dir)
	m.Name = decl.Name
	if m.Name == "" {
		m.Name = filepath.Base(dir)
	}
	m.Type = typ
	m.Sources = absAll(dir, decl.Sources)

	for _, v := range decl.PublicIncludes {
		m.Includes.AddPublic(v)
	}
	for _, v := range decl.PrivateIncludes {
		m.Includes.AddPrivate(v)
	}
	for _, v := range decl.PublicDefinitions {
		m.Definitions.AddPublic(v)
	}
	for _, v := range decl.PrivateDefinitions {
		m.Definitions.AddPrivate(v)
	}
	for _, v := range decl.PublicLibraries {
		m.Libraries.AddPublic(v)
	}
	for _, v := range decl.PrivateLibraries {
		m.Libraries.AddPrivate(v)
	}
	for _, v := range decl.PublicLibrarySearchPaths {
		m.LibrarySearchPaths.AddPublic(v)
	}
	for _, v := range decl.PrivateLibrarySearchPaths {
		m.LibrarySearchPaths.AddPrivate(v)
	}
	for _, v := range decl.PublicDependencies {
		m.Dependencies.AddPublic(v.toReference())
	}
	for _, v := range decl.PrivateDependencies {
		m.Dependencies.AddPrivate(v.toReference())
	}
	for _, v := range decl.ForceIncludes {
		m.ForceIncludes.AddPublic(v)
	}

	m.CppStandard = decl.CppStandard
	m.CStandard = decl.CStandard
	m.OptimizationLevel = decl.OptimizationLevel
	m.EnableExceptions = decl.EnableExceptions
	m.EnableRTTI = decl.EnableRTTI
	m.EnableFastFP = decl.EnableFastFP
	m.EnableDebugFileCreation = decl.EnableDebugFileCreation
	m.CompilerOptions = decl.CompilerOptions
	m.LinkerOptions = decl.LinkerOptions
	m.DelayLoadLibraries = decl.DelayLoadLibraries

	m.OutputDirectory = filepath.Join(dir, ".ebuild", m.Name, "out")
	return m, nil
}
