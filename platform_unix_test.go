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

import "testing"

func TestDefaultPlatformsRegistersLinuxAndDarwin(t *testing.T) {
	linux, ok := DefaultPlatforms.Get("linux")
	if !ok {
		t.Fatal("DefaultPlatforms should register \"linux\"")
	}
	if linux.SharedLibraryExt != "so" || linux.DefaultToolchain != "gcc" {
		t.Errorf("linux platform = %+v, want SharedLibraryExt=so DefaultToolchain=gcc", linux)
	}
	if defs := linux.Defs(nil); len(defs) != 1 || defs[0] != "__linux__" {
		t.Errorf("linux Defs() = %v, want [__linux__]", defs)
	}

	darwin, ok := DefaultPlatforms.Get("darwin")
	if !ok {
		t.Fatal("DefaultPlatforms should register \"darwin\"")
	}
	if darwin.SharedLibraryExt != "dylib" || darwin.DefaultToolchain != "clang" {
		t.Errorf("darwin platform = %+v, want SharedLibraryExt=dylib DefaultToolchain=clang", darwin)
	}
}
