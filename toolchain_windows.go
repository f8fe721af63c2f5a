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

//go:build windows

package ebuild

import (
	"context"
	"os"
)

// msvcCompilerFactory adapts cl.exe.
type msvcCompilerFactory struct{ binary string }

func (f *msvcCompilerFactory) CanCreate(m *ModuleConfig, p InstancingParams) bool {
	return toolAvailable(f.binary)
}

func (f *msvcCompilerFactory) New(m *ModuleConfig, p InstancingParams) (Compiler, error) {
	if !toolAvailable(f.binary) {
		return nil, &ErrToolchainUnavailable{Name: f.binary}
	}
	return &msvcCompiler{binary: f.binary}, nil
}

type msvcCompiler struct{ binary string }

func (c *msvcCompiler) Compile(ctx context.Context, s CompileSettings) error {
	args := []string{"/nologo", "/c", s.SourceFile, "/Fo" + s.OutputFile}
	for _, d := range s.Definitions {
		args = append(args, "/D"+d)
	}
	for _, i := range s.IncludePaths {
		args = append(args, "/I"+i)
	}
	for _, fi := range s.ForceIncludes {
		args = append(args, "/FI"+fi)
	}
	if s.EnableExceptions {
		args = append(args, "/EHsc")
	}
	if s.EnableDebugFileCreation {
		args = append(args, "/Zi")
	}
	args = append(args, s.OtherFlags...)
	return execRunner{path: c.binary}.runMaybeResponseFile(ctx, args, s.IntermediateDir)
}

// rcCompilerFactory adapts rc.exe, the windows resource compiler.
type rcCompilerFactory struct{ binary string }

func (f *rcCompilerFactory) CanCreate(m *ModuleConfig, p InstancingParams) bool {
	return toolAvailable(f.binary)
}

func (f *rcCompilerFactory) New(m *ModuleConfig, p InstancingParams) (Compiler, error) {
	if !toolAvailable(f.binary) {
		return nil, &ErrToolchainUnavailable{Name: f.binary}
	}
	return &rcCompiler{binary: f.binary}, nil
}

type rcCompiler struct{ binary string }

func (c *rcCompiler) Compile(ctx context.Context, s CompileSettings) error {
	args := []string{"/nologo", "/fo", s.OutputFile}
	for _, d := range s.Definitions {
		args = append(args, "/D"+d)
	}
	for _, i := range s.IncludePaths {
		args = append(args, "/I"+i)
	}
	args = append(args, s.SourceFile)
	return execRunner{path: c.binary}.run(ctx, args, "")
}

// msvcLinkerFactory adapts link.exe for shared library / executable output.
type msvcLinkerFactory struct{ binary string }

func (f *msvcLinkerFactory) CanCreate(m *ModuleConfig, p InstancingParams) bool {
	return toolAvailable(f.binary) && m.Type != ModuleTypeStaticLibrary
}

func (f *msvcLinkerFactory) New(m *ModuleConfig, p InstancingParams) (Linker, error) {
	if m.Type == ModuleTypeStaticLibrary {
		return nil, &ErrUnsupportedLinkType{Want: "shared/executable", Got: "StaticLibrary"}
	}
	if !toolAvailable(f.binary) {
		return nil, &ErrToolchainUnavailable{Name: f.binary}
	}
	return &msvcLinker{binary: f.binary}, nil
}

type msvcLinker struct{ binary string }

func (l *msvcLinker) Link(ctx context.Context, s LinkSettings) error {
	if s.OutputType == ModuleTypeStaticLibrary {
		return &ErrUnsupportedLinkType{Want: "shared/executable", Got: "StaticLibrary"}
	}
	args := []string{"/nologo"}
	args = append(args, s.InputFiles...)
	for _, p := range s.LibraryPaths {
		args = append(args, "/LIBPATH:"+p)
	}
	if s.OutputType == ModuleTypeSharedLibrary {
		args = append(args, "/DLL")
	}
	for _, d := range s.DelayLoadLibraries {
		args = append(args, "/DELAYLOAD:"+d)
	}
	args = append(args, "/OUT:"+s.OutputFile)
	args = append(args, s.LinkerFlags...)
	return execRunner{path: l.binary}.runMaybeResponseFile(ctx, args, s.IntermediateDir)
}

// msvcArchiverFactory adapts lib.exe for static-library output. Unlike
// POSIX ar, lib.exe accepts other .lib files directly as inputs and merges
// their members itself, so there is no archive-extraction step here.
type msvcArchiverFactory struct{ binary string }

func (f *msvcArchiverFactory) CanCreate(m *ModuleConfig, p InstancingParams) bool {
	return toolAvailable(f.binary) && m.Type == ModuleTypeStaticLibrary
}

func (f *msvcArchiverFactory) New(m *ModuleConfig, p InstancingParams) (Linker, error) {
	if m.Type != ModuleTypeStaticLibrary {
		return nil, &ErrUnsupportedLinkType{Want: "StaticLibrary", Got: m.Type.String()}
	}
	if !toolAvailable(f.binary) {
		return nil, &ErrToolchainUnavailable{Name: f.binary}
	}
	return &msvcArchiver{binary: f.binary}, nil
}

type msvcArchiver struct{ binary string }

func (a *msvcArchiver) Link(ctx context.Context, s LinkSettings) error {
	if s.OutputType != ModuleTypeStaticLibrary {
		return &ErrUnsupportedLinkType{Want: "StaticLibrary", Got: s.OutputType.String()}
	}
	os.Remove(s.OutputFile)
	args := []string{"/nologo", "/OUT:" + s.OutputFile}
	args = append(args, s.InputFiles...)
	return execRunner{path: a.binary}.runMaybeResponseFile(ctx, args, s.IntermediateDir)
}

func init() {
	DefaultToolchains.Register(&Toolchain{
		Name:                    "msvc",
		CompilerFactory:         &msvcCompilerFactory{binary: "cl.exe"},
		ResourceCompilerFactory: &rcCompilerFactory{binary: "rc.exe"},
		LinkerFactory:           &msvcLinkerFactory{binary: "link.exe"},
		ArchiverFactory:         &msvcArchiverFactory{binary: "lib.exe"},
	})
}
