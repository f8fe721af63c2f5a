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
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/golang/glog"
)

// Planner lowers a resolved dependency Graph into an action DAG: it walks
// every module-declaration node once and attaches the compile, link,
// build-step, and copy nodes that realize it.
type Planner struct {
	Platforms  *PlatformRegistry
	Toolchains *ToolchainRegistry
}

// NewPlanner returns a Planner backed by the given registries.
func NewPlanner(platforms *PlatformRegistry, toolchains *ToolchainRegistry) *Planner {
	return &Planner{Platforms: platforms, Toolchains: toolchains}
}

// Compile lowers every module-declaration node reachable from g.Root.
func (p *Planner) Compile(ctx context.Context, g *Graph, mctx ModuleContext) error {
	visited := map[*Node]bool{}
	return p.compileNode(ctx, g, g.Root, mctx, visited)
}

func (p *Planner) compileNode(ctx context.Context, g *Graph, n *Node, mctx ModuleContext, visited map[*Node]bool) error {
	if visited[n] {
		return nil
	}
	visited[n] = true
	m := n.Module
	if m == nil {
		return nil
	}

	for _, c := range n.Children() {
		if err := p.compileNode(ctx, g, c, mctx, visited); err != nil {
			return err
		}
	}

	for i := range m.PreBuildSteps {
		sn := g.newNode(NodeBuildStepPreBuild, fmt.Sprintf("%s:prebuild:%d", m.Name, i), n)
		sn.BuildStep = &m.PreBuildSteps[i]
		n.PrivateChildren = append(n.PrivateChildren, sn)
	}

	effecting := EffectingDeclarations(n)
	platform := mctx.Platform
	if platform == nil {
		return fmt.Errorf("planner: no platform selected for module %s", m.Name)
	}

	var objectOutputs []string
	if m.Type != ModuleTypeLibraryLoader {
		for _, src := range m.Sources {
			out, err := p.planCompile(g, n, m, src, effecting, mctx)
			if err != nil {
				return err
			}
			if out != "" {
				objectOutputs = append(objectOutputs, out)
			}
		}
	}

	if m.Type != ModuleTypeLibraryLoader {
		if err := p.planLink(g, n, m, objectOutputs, effecting, mctx); err != nil {
			return err
		}
		for _, dep := range m.AdditionalDependencies {
			adn := g.newNode(NodeAdditionalDependency, dep, n)
			adn.AdditionalDependency = dep
			n.PrivateChildren = append(n.PrivateChildren, adn)
		}
	}

	for i := range m.PostBuildSteps {
		sn := g.newNode(NodeBuildStepPostBuild, fmt.Sprintf("%s:postbuild:%d", m.Name, i), n)
		sn.BuildStep = &m.PostBuildSteps[i]
		n.PrivateChildren = append(n.PrivateChildren, sn)
	}

	return nil
}

func (p *Planner) planCompile(g *Graph, n *Node, m *ModuleConfig, src string, effecting []*Node, mctx ModuleContext) (string, error) {
	platform := mctx.Platform
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(src), "."))
	switch ext {
	case "h", "hpp", "hh", "inl", "":
		return "", nil
	}

	isResource := platform.ResourceSourceExt != "" && ext == platform.ResourceSourceExt
	var factory CompilerFactory
	if isResource {
		if mctx.Toolchain.ResourceCompilerFactory == nil {
			glog.Warningf("no resource compiler registered for toolchain %s; skipping %s", mctx.Toolchain.Name, src)
			return "", nil
		}
		factory = mctx.Toolchain.ResourceCompilerFactory
	} else {
		factory = mctx.Toolchain.CompilerFactory
	}
	if !factory.CanCreate(m, mctx.Instancing) {
		return "", &ErrFactoryCannotCreate{Factory: "compiler"}
	}
	compiler, err := factory.New(m, mctx.Instancing)
	if err != nil {
		return "", err
	}

	defs := mergeDefs(effecting, m, platform, isResource)
	incs := mergeIncludes(effecting, m, isResource)

	stem := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	objExt := platform.CompiledSourceExt
	if isResource {
		objExt = platform.CompiledResourceExt
	}
	interDir := filepath.Join(m.Dir, ".ebuild", m.Name, "intermediate")
	out := filepath.Join(interDir, stem+"."+objExt)

	cs := CompileSettings{
		SourceFile:              absPath(m.Dir, src),
		OutputFile:              out,
		TargetArchitecture:      mctx.TargetArchitecture,
		ModuleType:              m.Type,
		IntermediateDir:         interDir,
		CPUExtension:            m.CPUExtension,
		EnableExceptions:        m.EnableExceptions,
		EnableFastFP:            m.EnableFastFP,
		EnableRTTI:              m.EnableRTTI,
		IsDebugBuild:            mctx.Configuration == "debug",
		EnableDebugFileCreation: m.EnableDebugFileCreation,
		CppStandard:             m.CppStandard,
		CStandard:               m.CStandard,
		Definitions:             defs,
		IncludePaths:            incs,
		ForceIncludes:           absAll(m.Dir, m.ForceIncludes.Joined()),
		Optimization:            m.OptimizationLevel,
		OtherFlags:              append(append([]string{}, m.CompilerOptions...), mctx.Instancing.ExtraCompilerFlags...),
	}

	cn := g.newNode(NodeCompileSourceFile, src, n)
	cn.CompileSettings = &cs
	cn.Compiler = compiler
	n.PrivateChildren = append(n.PrivateChildren, cn)
	return out, nil
}

func (p *Planner) planLink(g *Graph, n *Node, m *ModuleConfig, objectOutputs []string, effecting []*Node, mctx ModuleContext) error {
	platform := mctx.Platform
	var inputs []string
	inputs = append(inputs, objectOutputs...)
	inputs = append(inputs, m.Libraries.Joined()...)
	for _, e := range effecting {
		inputs = append(inputs, e.Module.Libraries.Public()...)
	}
	if platform.InjectedLibraries != nil {
		inputs = append(inputs, platform.InjectedLibraries(m)...)
	}

	for _, c := range n.Children() {
		if c.Kind != NodeModuleDeclaration || c.Module == nil {
			continue
		}
		cm := c.Module
		switch cm.Type {
		case ModuleTypeStaticLibrary:
			inputs = append(inputs, binaryOutputPath(cm, platform, platform.StaticLibraryExt))
		case ModuleTypeSharedLibrary:
			if platform.Name == "windows" {
				inputs = append(inputs, binaryOutputPath(cm, platform, platform.StaticLibraryExt))
			} else {
				inputs = append(inputs, binaryOutputPath(cm, platform, platform.SharedLibraryExt))
			}
			copyNode := g.newNode(NodeCopySharedLibraryToRootBin, cm.Name, n)
			copyNode.CopySource = binaryOutputPath(cm, platform, platform.SharedLibraryExt)
			copyNode.CopyDest = filepath.Join(outputDir(m, platform), filepath.Base(copyNode.CopySource))
			n.PrivateChildren = append(n.PrivateChildren, copyNode)
		case ModuleTypeLibraryLoader:
			// contributes only through effecting declarations
		default:
			return &ErrUnsupportedLinkType{Want: "non-executable dependency", Got: cm.Type.String()}
		}
	}

	var libPaths []string
	libPaths = append(libPaths, m.LibrarySearchPaths.Joined()...)
	for _, e := range effecting {
		libPaths = append(libPaths, e.Module.LibrarySearchPaths.Public()...)
	}

	ls := LinkSettings{
		InputFiles:              inputs,
		OutputFile:              binaryOutputPath(m, platform, extForType(m.Type, platform)),
		OutputType:              m.Type,
		TargetArchitecture:      mctx.TargetArchitecture,
		IntermediateDir:         filepath.Join(m.Dir, ".ebuild", m.Name, "intermediate"),
		LibraryPaths:            libPaths,
		LinkerFlags:             append(append([]string{}, m.LinkerOptions...), mctx.Instancing.ExtraLinkerFlags...),
		ShouldCreateDebugFiles:  m.EnableDebugFileCreation,
		IsDebugBuild:            mctx.Configuration == "debug",
		DelayLoadLibraries:      m.DelayLoadLibraries,
	}

	var factory LinkerFactory
	if m.Type == ModuleTypeStaticLibrary {
		factory = mctx.Toolchain.ArchiverFactory
	} else {
		factory = mctx.Toolchain.LinkerFactory
	}
	if factory == nil || !factory.CanCreate(m, mctx.Instancing) {
		return &ErrFactoryCannotCreate{Factory: "linker"}
	}
	linker, err := factory.New(m, mctx.Instancing)
	if err != nil {
		return err
	}

	ln := g.newNode(NodeLinker, m.Name, n)
	ln.LinkSettings = &ls
	ln.Linker = linker
	n.PrivateChildren = append(n.PrivateChildren, ln)
	return nil
}

func mergeDefs(effecting []*Node, m *ModuleConfig, platform *Platform, resource bool) []string {
	var out []string
	if resource {
		for _, e := range effecting {
			out = append(out, e.Module.ResourceDefinitions.Public()...)
		}
		out = append(out, m.ResourceDefinitions.Joined()...)
		return out
	}
	for _, e := range effecting {
		out = append(out, e.Module.Definitions.Public()...)
	}
	out = append(out, m.Definitions.Joined()...)
	if platform != nil && platform.Defs != nil {
		out = append(out, platform.Defs(m)...)
	}
	return out
}

func mergeIncludes(effecting []*Node, m *ModuleConfig, resource bool) []string {
	var out []string
	if resource {
		for _, e := range effecting {
			out = append(out, absAll(e.Module.Dir, e.Module.ResourceIncludes.Public())...)
		}
		out = append(out, absAll(m.Dir, m.ResourceIncludes.Joined())...)
		return out
	}
	for _, e := range effecting {
		out = append(out, absAll(e.Module.Dir, e.Module.Includes.Public())...)
	}
	out = append(out, absAll(m.Dir, m.Includes.Joined())...)
	return out
}

// variantID returns a stable short hash over the module's variant options
// that change the result binary, used to separate output directories for
// different option combinations of the same module. Map iteration order is
// randomized in Go, so option keys are sorted before hashing.
func variantID(m *ModuleConfig) string {
	if !m.UseVariants {
		return "default"
	}
	keys := make([]string, 0, len(m.VariantOptions))
	for k, opt := range m.VariantOptions {
		if opt.ChangesResultBinary {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return "default"
	}
	sort.Strings(keys)
	h := sha256.New()
	for _, k := range keys {
		h.Write([]byte(k))
		h.Write([]byte{0})
		h.Write([]byte(m.VariantOptions[k].Value))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}

func outputDir(m *ModuleConfig, platform *Platform) string {
	base := m.OutputDirectory
	if base == "" {
		base = filepath.Join(m.Dir, "bin")
	}
	return filepath.Join(base, variantID(m))
}

func extForType(t ModuleType, platform *Platform) string {
	switch t {
	case ModuleTypeStaticLibrary:
		return platform.StaticLibraryExt
	case ModuleTypeSharedLibrary:
		return platform.SharedLibraryExt
	case ModuleTypeExecutable, ModuleTypeExecutableWin32:
		return platform.ExecutableExt
	}
	return ""
}

func binaryOutputPath(m *ModuleConfig, platform *Platform, ext string) string {
	name := m.OutputFileName
	if name == "" {
		name = m.Name
	}
	if ext != "" {
		name = name + "." + ext
	}
	return filepath.Join(outputDir(m, platform), name)
}
