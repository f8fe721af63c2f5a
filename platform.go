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
	"runtime"
	"sync"
)

// Platform describes the file-extension and system-include conventions of
// a target operating system, independent of which toolchain compiles for
// it.
type Platform struct {
	Name string

	CompiledSourceExt   string // object file extension, no dot: "o", "obj"
	CompiledResourceExt string
	StaticLibraryExt    string // "a", "lib"
	SharedLibraryExt    string // "so", "dylib", "dll"
	ImportLibraryExt    string // windows import-library extension, usually "lib"
	ExecutableExt       string // "", "exe"
	ResourceSourceExt   string // "rc" on windows, "" elsewhere

	// SystemIncludeRoots lists path prefixes the include scanner treats as
	// system headers: resolved includes under one of these are not
	// recorded as compilation-database dependencies and are not recursed
	// into.
	SystemIncludeRoots []string

	DefaultToolchain string

	// InjectedLibraries, if set, returns extra link inputs every module
	// built for this platform implicitly needs (e.g. libc/libm stand-ins).
	InjectedLibraries func(m *ModuleConfig) []string
	// Defs, if set, returns extra preprocessor definitions every module
	// built for this platform implicitly gets.
	Defs func(m *ModuleConfig) []string
}

// PlatformRegistry maps platform names to their Platform description.
type PlatformRegistry struct {
	mu        sync.RWMutex
	platforms map[string]*Platform
}

// NewPlatformRegistry returns an empty registry.
func NewPlatformRegistry() *PlatformRegistry {
	return &PlatformRegistry{platforms: map[string]*Platform{}}
}

// Register adds or overwrites p under p.Name.
func (r *PlatformRegistry) Register(p *Platform) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.platforms[p.Name] = p
}

// Get looks up a platform by name.
func (r *PlatformRegistry) Get(name string) (*Platform, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.platforms[name]
	return p, ok
}

// HostDefault returns the platform matching runtime.GOOS, or nil if none is
// registered.
func (r *PlatformRegistry) HostDefault() *Platform {
	name := runtime.GOOS
	p, _ := r.Get(name)
	return p
}

// DefaultPlatforms is the process-wide registry populated by the
// platform_unix.go/platform_windows.go init functions.
var DefaultPlatforms = NewPlatformRegistry()
