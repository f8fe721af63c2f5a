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
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestIncludeScannerTransitiveClosure(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "b.h", "int b();\n")
	writeTestFile(t, dir, "a.h", `#include "b.h"
int a();
`)
	main := writeTestFile(t, dir, "main.cc", `#include "a.h"
#include <system.h>
int main() { return a(); }
`)

	sysDir := t.TempDir()
	writeTestFile(t, sysDir, "system.h", "void sys();\n")

	scanner := NewIncludeScanner(16)
	got, err := scanner.Scan(main, nil, []string{sysDir})
	if err != nil {
		t.Fatal(err)
	}

	aAbs, _ := filepath.Abs(filepath.Join(dir, "a.h"))
	bAbs, _ := filepath.Abs(filepath.Join(dir, "b.h"))
	want := []string{filepath.Clean(aAbs), filepath.Clean(bAbs)}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("Scan() = %v, want %v (system header must be excluded)", got, want)
	}
}

func TestIncludeScannerMissingIncludeSilentlyDropped(t *testing.T) {
	dir := t.TempDir()
	main := writeTestFile(t, dir, "main.cc", `#include "missing.h"
int main() { return 0; }
`)
	scanner := NewIncludeScanner(16)
	got, err := scanner.Scan(main, nil, nil)
	if err != nil {
		t.Fatalf("Scan() should not error on an unresolvable include, got %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Scan() = %v, want empty for an unresolvable include", got)
	}
}

func TestIncludeScannerCachesRawIncludes(t *testing.T) {
	dir := t.TempDir()
	path := writeTestFile(t, dir, "main.cc", `#include "a.h"
`)
	scanner := NewIncludeScanner(16)
	if _, err := scanner.rawIncludes(mustAbs(t, path)); err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	// second call must be served from cache, not fail on the missing file
	names, err := scanner.rawIncludes(mustAbs(t, path))
	if err != nil {
		t.Fatalf("rawIncludes() on an evicted-from-disk but cached path should succeed, got %v", err)
	}
	if len(names) != 1 || names[0] != "a.h" {
		t.Errorf("rawIncludes() = %v, want [a.h]", names)
	}
}

func mustAbs(t *testing.T, p string) string {
	t.Helper()
	abs, err := filepath.Abs(p)
	if err != nil {
		t.Fatal(err)
	}
	return filepath.Clean(abs)
}

func TestIsUnderAnyRoot(t *testing.T) {
	roots := []string{"/usr/include", ""}
	if !isUnderAnyRoot("/usr/include/stdio.h", roots) {
		t.Error("isUnderAnyRoot() = false, want true for a path under a listed root")
	}
	if isUnderAnyRoot("/home/me/proj/a.h", roots) {
		t.Error("isUnderAnyRoot() = true, want false for a path outside every root")
	}
}

func TestResolveIncludePrefersSourceDir(t *testing.T) {
	srcDir := t.TempDir()
	incDir := t.TempDir()
	writeTestFile(t, srcDir, "a.h", "")
	writeTestFile(t, incDir, "a.h", "")

	resolved, ok := resolveInclude("a.h", srcDir, []string{incDir}, nil)
	if !ok {
		t.Fatal("resolveInclude() = false, want true")
	}
	want := mustAbs(t, filepath.Join(srcDir, "a.h"))
	if resolved != want {
		t.Errorf("resolveInclude() = %q, want %q (source dir takes priority)", resolved, want)
	}
}
