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
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sergi/go-diff/diffmatchpatch"
)

func TestCompileCommandsGeneratorEmitAndWriteFile(t *testing.T) {
	store := &NodeStore{}
	m := NewModuleConfig(ModuleReference{}, "/proj")
	m.Name = "mod"
	decl := store.New(NodeModuleDeclaration, "mod", nil)
	decl.Module = m
	src := store.New(NodeCompileSourceFile, "a.cc", decl)

	cs := CompileSettings{
		SourceFile:   "/proj/a.cc",
		OutputFile:   "/proj/.ebuild/mod/intermediate/a.o",
		Definitions:  []string{"FOO"},
		IncludePaths: []string{"/proj/include"},
		OtherFlags:   []string{"-Wall"},
	}

	gen := NewCompileCommandsGenerator()
	gen.Emit(src, cs)

	dir := t.TempDir()
	out := filepath.Join(dir, "compile_commands.json")
	if err := gen.WriteFile(out); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	var entries []map[string]interface{}
	if err := json.Unmarshal(data, &entries); err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("len(entries) = %d, want 1", len(entries))
	}
	e := entries[0]
	if e["directory"] != "/proj" {
		t.Errorf("directory = %v, want /proj", e["directory"])
	}
	if e["file"] != "/proj/a.cc" {
		t.Errorf("file = %v, want /proj/a.cc", e["file"])
	}
	args, _ := e["arguments"].([]interface{})
	var joined []string
	for _, a := range args {
		joined = append(joined, a.(string))
	}
	full := strings.Join(joined, " ")
	if !strings.Contains(full, "-DFOO") {
		t.Errorf("arguments = %v, want a -DFOO flag", joined)
	}
	if !strings.Contains(full, "-I/proj/include") {
		t.Errorf("arguments = %v, want an -I/proj/include flag", joined)
	}
	if !strings.Contains(full, "-Wall") {
		t.Errorf("arguments = %v, want the -Wall passthrough flag", joined)
	}
}

func TestCompileCommandsGeneratorEmptyDirectoryWhenNoOwningModule(t *testing.T) {
	gen := NewCompileCommandsGenerator()
	n := &Node{Kind: NodeCompileSourceFile}
	gen.Emit(n, CompileSettings{SourceFile: "a.cc", OutputFile: "a.o"})

	dir := t.TempDir()
	out := filepath.Join(dir, "cc.json")
	if err := gen.WriteFile(out); err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(out)
	if strings.Contains(string(data), `"directory": "nil"`) {
		t.Error("directory should fall back to empty string, not a literal nil")
	}
}

func TestCompileCommandsGeneratorGroupsByOwningModuleInFirstSeenOrder(t *testing.T) {
	store := &NodeStore{}
	modA := NewModuleConfig(ModuleReference{}, "/a")
	modA.Name = "a"
	declA := store.New(NodeModuleDeclaration, "a", nil)
	declA.Module = modA

	modB := NewModuleConfig(ModuleReference{}, "/b")
	modB.Name = "b"
	declB := store.New(NodeModuleDeclaration, "b", nil)
	declB.Module = modB

	srcA1 := store.New(NodeCompileSourceFile, "a1.cc", declA)
	srcB1 := store.New(NodeCompileSourceFile, "b1.cc", declB)
	srcA2 := store.New(NodeCompileSourceFile, "a2.cc", declA)

	gen := NewCompileCommandsGenerator()
	// Module a's entries are emitted on either side of module b's; the
	// registry groups by owning module in first-seen order, so module b's
	// entry comes first and module a's two entries follow it, adjacent.
	gen.Emit(srcB1, CompileSettings{SourceFile: "/b/b1.cc", OutputFile: "/b/b1.o"})
	gen.Emit(srcA1, CompileSettings{SourceFile: "/a/a1.cc", OutputFile: "/a/a1.o"})
	gen.Emit(srcA2, CompileSettings{SourceFile: "/a/a2.cc", OutputFile: "/a/a2.o"})

	dir := t.TempDir()
	out := filepath.Join(dir, "compile_commands.json")
	if err := gen.WriteFile(out); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	var entries []map[string]interface{}
	if err := json.Unmarshal(data, &entries); err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 {
		t.Fatalf("len(entries) = %d, want 3", len(entries))
	}
	got := []string{entries[0]["file"].(string), entries[1]["file"].(string), entries[2]["file"].(string)}
	want := []string{"/b/b1.cc", "/a/a1.cc", "/a/a2.cc"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entries[%d].file = %q, want %q (modules ordered by first emission, not interleaved)", i, got[i], want[i])
		}
	}
}

func TestCompileCommandsGeneratorTargetModuleFiltersOtherModules(t *testing.T) {
	store := &NodeStore{}
	declA := store.New(NodeModuleDeclaration, "a", nil)
	declA.Module = NewModuleConfig(ModuleReference{}, "/a")
	declB := store.New(NodeModuleDeclaration, "b", nil)
	declB.Module = NewModuleConfig(ModuleReference{}, "/b")

	srcA := store.New(NodeCompileSourceFile, "a.cc", declA)
	srcB := store.New(NodeCompileSourceFile, "b.cc", declB)

	gen := NewCompileCommandsGenerator()
	gen.TargetModule = declA
	gen.Emit(srcA, CompileSettings{SourceFile: "/a/a.cc", OutputFile: "/a/a.o"})
	gen.Emit(srcB, CompileSettings{SourceFile: "/b/b.cc", OutputFile: "/b/b.o"})

	dir := t.TempDir()
	out := filepath.Join(dir, "compile_commands.json")
	if err := gen.WriteFile(out); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	var entries []map[string]interface{}
	if err := json.Unmarshal(data, &entries); err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0]["file"] != "/a/a.cc" {
		t.Errorf("entries = %v, want only module a's compile once TargetModule is set", entries)
	}
}

// TestCompileCommandsGeneratorMatchesGoldenOutput pins the exact bytes
// WriteFile produces for a single-module, single-source plan. A mismatch
// prints a readable diff instead of a raw byte dump.
func TestCompileCommandsGeneratorMatchesGoldenOutput(t *testing.T) {
	store := &NodeStore{}
	m := NewModuleConfig(ModuleReference{}, "/proj")
	m.Name = "mod"
	decl := store.New(NodeModuleDeclaration, "mod", nil)
	decl.Module = m
	src := store.New(NodeCompileSourceFile, "a.cc", decl)

	gen := NewCompileCommandsGenerator()
	gen.Emit(src, CompileSettings{
		SourceFile:   "/proj/a.cc",
		OutputFile:   "/proj/.ebuild/mod/intermediate/a.o",
		Definitions:  []string{"FOO"},
		IncludePaths: []string{"/proj/include"},
	})

	dir := t.TempDir()
	out := filepath.Join(dir, "compile_commands.json")
	if err := gen.WriteFile(out); err != nil {
		t.Fatal(err)
	}
	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}

	want := `[
  {
    "directory": "/proj",
    "file": "/proj/a.cc",
    "output": "/proj/.ebuild/mod/intermediate/a.o",
    "arguments": [
      "cc",
      "-c",
      "/proj/a.cc",
      "-o",
      "/proj/.ebuild/mod/intermediate/a.o",
      "-DFOO",
      "-I/proj/include"
    ]
  }
]`

	if string(got) != want {
		dmp := diffmatchpatch.New()
		diffs := dmp.DiffMain(want, string(got), true)
		diffs = dmp.DiffCleanupSemantic(diffs)
		t.Errorf("compile_commands.json differs from golden output (red) to generated (green):\n%s", dmp.DiffPrettyText(diffs))
	}
}
