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

import "testing"

func TestModuleTypeString(t *testing.T) {
	cases := map[ModuleType]string{
		ModuleTypeStaticLibrary:   "StaticLibrary",
		ModuleTypeSharedLibrary:   "SharedLibrary",
		ModuleTypeExecutable:      "Executable",
		ModuleTypeExecutableWin32: "ExecutableWin32",
		ModuleTypeLibraryLoader:   "LibraryLoader",
		ModuleType(99):            "Unknown",
	}
	for typ, want := range cases {
		if got := typ.String(); got != want {
			t.Errorf("ModuleType(%d).String() = %q, want %q", typ, got, want)
		}
	}
}

func TestNewModuleConfig(t *testing.T) {
	ref := ModuleReference{FilePath: "/a/b.ebuild.cs"}
	m := NewModuleConfig(ref, "/a")

	if m.Reference != ref {
		t.Errorf("Reference = %v, want %v", m.Reference, ref)
	}
	if m.Dir != "/a" {
		t.Errorf("Dir = %q, want %q", m.Dir, "/a")
	}
	if m.VariantOptions == nil {
		t.Error("VariantOptions should be initialized to an empty map, not nil")
	}
	if len(m.VariantOptions) != 0 {
		t.Errorf("VariantOptions = %v, want empty", m.VariantOptions)
	}
}

func TestModuleConfigAddDiagnosticAndHasErrors(t *testing.T) {
	m := NewModuleConfig(ModuleReference{FilePath: "a.ebuild.cs"}, "/a")

	if m.HasErrors() {
		t.Error("HasErrors() on a freshly built config should be false")
	}

	m.AddDiagnostic(SeverityWarning, "missing optional field %s", "foo")
	if m.HasErrors() {
		t.Error("HasErrors() should stay false after only a warning-severity diagnostic")
	}
	if len(m.Diagnostics) != 1 || m.Diagnostics[0].Message != "missing optional field foo" {
		t.Errorf("Diagnostics = %v, want one formatted warning", m.Diagnostics)
	}

	m.AddDiagnostic(SeverityError, "cannot find source %s", "main.cc")
	if !m.HasErrors() {
		t.Error("HasErrors() should be true once an Error-severity diagnostic is recorded")
	}
	if len(m.Diagnostics) != 2 {
		t.Errorf("Diagnostics has %d entries, want 2", len(m.Diagnostics))
	}
}
