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

import "testing"

func TestDefaultPlatformsRegistersWindows(t *testing.T) {
	windows, ok := DefaultPlatforms.Get("windows")
	if !ok {
		t.Fatal("DefaultPlatforms should register \"windows\"")
	}
	if windows.SharedLibraryExt != "dll" || windows.ExecutableExt != "exe" || windows.DefaultToolchain != "msvc" {
		t.Errorf("windows platform = %+v, want SharedLibraryExt=dll ExecutableExt=exe DefaultToolchain=msvc", windows)
	}
	if defs := windows.Defs(nil); len(defs) != 2 {
		t.Errorf("Defs() = %v, want 2 entries", defs)
	}
}
