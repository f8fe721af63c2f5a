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

func init() {
	DefaultPlatforms.Register(&Platform{
		Name:                "windows",
		CompiledSourceExt:   "obj",
		CompiledResourceExt: "res",
		StaticLibraryExt:    "lib",
		SharedLibraryExt:    "dll",
		ImportLibraryExt:    "lib",
		ExecutableExt:       "exe",
		ResourceSourceExt:   "rc",
		SystemIncludeRoots: []string{
			`C:\Program Files (x86)\Windows Kits\10\Include`,
		},
		DefaultToolchain: "msvc",
		Defs: func(m *ModuleConfig) []string {
			return []string{"_WIN32", "WIN32"}
		},
	})
}
