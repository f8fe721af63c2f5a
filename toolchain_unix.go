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

//go:build !windows

package ebuild

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// gccCompilerFactory adapts a gcc-or-clang-compatible frontend binary.
type gccCompilerFactory struct{ binary string }

func (f *gccCompilerFactory) CanCreate(m *ModuleConfig, p InstancingParams) bool {
	return toolAvailable(f.binary)
}

func (f *gccCompilerFactory) New(m *ModuleConfig, p InstancingParams) (Compiler, error) {
	if !toolAvailable(f.binary) {
		return nil, &ErrToolchainUnavailable{Name: f.binary}
	}
	return &gccCompiler{binary: f.binary}, nil
}

type gccCompiler struct{ binary string }

func (c *gccCompiler) Compile(ctx context.Context, s CompileSettings) error {
	args := []string{"-c", s.SourceFile, "-o", s.OutputFile}
	for _, d := range s.Definitions {
		args = append(args, "-D"+d)
	}
	for _, i := range s.IncludePaths {
		args = append(args, "-I"+i)
	}
	for _, fi := range s.ForceIncludes {
		args = append(args, "-include", fi)
	}
	if s.CppStandard != "" {
		args = append(args, "-std="+s.CppStandard)
	}
	if s.Optimization != "" {
		args = append(args, "-O"+s.Optimization)
	}
	if !s.EnableExceptions {
		args = append(args, "-fno-exceptions")
	}
	if !s.EnableRTTI {
		args = append(args, "-fno-rtti")
	}
	if s.EnableFastFP {
		args = append(args, "-ffast-math")
	}
	if s.EnableDebugFileCreation {
		args = append(args, "-g")
	}
	args = append(args, s.OtherFlags...)
	return execRunner{path: c.binary}.runMaybeResponseFile(ctx, args, s.IntermediateDir)
}

// gccLinkerFactory adapts a gcc-or-clang-compatible frontend for shared
// library / executable link steps. Static-library output is rejected; that
// is arArchiverFactory's job.
type gccLinkerFactory struct{ binary string }

func (f *gccLinkerFactory) CanCreate(m *ModuleConfig, p InstancingParams) bool {
	return toolAvailable(f.binary) && m.Type != ModuleTypeStaticLibrary
}

func (f *gccLinkerFactory) New(m *ModuleConfig, p InstancingParams) (Linker, error) {
	if m.Type == ModuleTypeStaticLibrary {
		return nil, &ErrUnsupportedLinkType{Want: "shared/executable", Got: "StaticLibrary"}
	}
	if !toolAvailable(f.binary) {
		return nil, &ErrToolchainUnavailable{Name: f.binary}
	}
	return &gccLinker{binary: f.binary}, nil
}

type gccLinker struct{ binary string }

func (l *gccLinker) Link(ctx context.Context, s LinkSettings) error {
	if s.OutputType == ModuleTypeStaticLibrary {
		return &ErrUnsupportedLinkType{Want: "shared/executable", Got: "StaticLibrary"}
	}
	args := append([]string{}, s.InputFiles...)
	for _, p := range s.LibraryPaths {
		args = append(args, "-L"+p)
	}
	if s.OutputType == ModuleTypeSharedLibrary {
		args = append(args, "-shared")
	}
	args = append(args, "-o", s.OutputFile)
	args = append(args, s.LinkerFlags...)
	return execRunner{path: l.binary}.runMaybeResponseFile(ctx, args, s.IntermediateDir)
}

// arArchiverFactory adapts POSIX ar for static-library output.
type arArchiverFactory struct{ binary string }

func (f *arArchiverFactory) CanCreate(m *ModuleConfig, p InstancingParams) bool {
	return toolAvailable(f.binary) && m.Type == ModuleTypeStaticLibrary
}

func (f *arArchiverFactory) New(m *ModuleConfig, p InstancingParams) (Linker, error) {
	if m.Type != ModuleTypeStaticLibrary {
		return nil, &ErrUnsupportedLinkType{Want: "StaticLibrary", Got: m.Type.String()}
	}
	if !toolAvailable(f.binary) {
		return nil, &ErrToolchainUnavailable{Name: f.binary}
	}
	return &arArchiver{binary: f.binary}, nil
}

type arArchiver struct{ binary string }

// Link merges any archive inputs (other static libraries contributed by
// dependencies) by extracting them into a scratch directory and handing ar
// the union of loose object files, since POSIX ar has no native way to
// absorb one archive's members into another.
func (a *arArchiver) Link(ctx context.Context, s LinkSettings) error {
	if s.OutputType != ModuleTypeStaticLibrary {
		return &ErrUnsupportedLinkType{Want: "StaticLibrary", Got: s.OutputType.String()}
	}
	objects, tempDirs, err := a.expandArchives(ctx, s.InputFiles, s.IntermediateDir)
	defer func() {
		for _, d := range tempDirs {
			os.RemoveAll(d)
		}
	}()
	if err != nil {
		return err
	}
	os.Remove(s.OutputFile)
	if err := os.MkdirAll(filepath.Dir(s.OutputFile), 0o755); err != nil {
		return err
	}
	args := append([]string{"rcs", s.OutputFile}, objects...)
	return execRunner{path: a.binary}.run(ctx, args, "")
}

func (a *arArchiver) expandArchives(ctx context.Context, inputs []string, intermediateDir string) ([]string, []string, error) {
	var objects []string
	var tempDirs []string
	for _, in := range inputs {
		if !strings.HasSuffix(in, ".a") {
			objects = append(objects, in)
			continue
		}
		dir, err := os.MkdirTemp(intermediateDir, "ebuild-archive-"+uuid.NewString()+"-")
		if err != nil {
			return nil, tempDirs, err
		}
		tempDirs = append(tempDirs, dir)
		r := execRunner{path: a.binary}
		if err := r.run(ctx, []string{"x", in}, dir); err != nil {
			return nil, tempDirs, err
		}
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, tempDirs, err
		}
		for _, e := range entries {
			if !e.IsDir() {
				objects = append(objects, filepath.Join(dir, e.Name()))
			}
		}
	}
	return objects, tempDirs, nil
}

func init() {
	DefaultToolchains.Register(&Toolchain{
		Name:            "gcc",
		CompilerFactory: &gccCompilerFactory{binary: "gcc"},
		LinkerFactory:   &gccLinkerFactory{binary: "gcc"},
		ArchiverFactory: &arArchiverFactory{binary: "ar"},
	})
	DefaultToolchains.Register(&Toolchain{
		Name:            "clang",
		CompilerFactory: &gccCompilerFactory{binary: "clang"},
		LinkerFactory:   &gccLinkerFactory{binary: "clang"},
		ArchiverFactory: &arArchiverFactory{binary: "ar"},
	})
}
