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

func init() {
	DefaultPlatforms.Register(&Platform{
		Name:                "linux",
		CompiledSourceExt:   "o",
		CompiledResourceExt: "o",
		StaticLibraryExt:    "a",
		SharedLibraryExt:    "so",
		ImportLibraryExt:    "",
		ExecutableExt:       "",
		ResourceSourceExt:   "",
		SystemIncludeRoots: []string{
			"/usr/include",
			"/usr/local/include",
		},
		DefaultToolchain: "gcc",
		Defs: func(m *ModuleConfig) []string {
			return []string{"__linux__"}
		},
	})

	DefaultPlatforms.Register(&Platform{
		Name:                "darwin",
		CompiledSourceExt:   "o",
		CompiledResourceExt: "o",
		StaticLibraryExt:    "a",
		SharedLibraryExt:    "dylib",
		ImportLibraryExt:    "",
		ExecutableExt:       "",
		ResourceSourceExt:   "",
		SystemIncludeRoots: []string{
			"/usr/include",
			"/Library/Developer/CommandLineTools/usr/include",
		},
		DefaultToolchain: "clang",
		Defs: func(m *ModuleConfig) []string {
			return []string{"__APPLE__"}
		},
	})
}
