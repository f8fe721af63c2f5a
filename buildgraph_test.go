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
	"strings"
	"testing"

	"github.com/sergi/go-diff/diffmatchpatch"
)

func TestBuildGraphWriterWriteTextSortsChildrenAndMarksRevisits(t *testing.T) {
	store := &NodeStore{}
	shared := store.New(NodeModuleDeclaration, "shared", nil)
	zeta := store.New(NodeModuleDeclaration, "zeta", nil)
	alpha := store.New(NodeModuleDeclaration, "alpha", nil)
	zeta.PublicChildren = []*Node{shared}
	alpha.PublicChildren = []*Node{shared}

	root := store.New(NodeModuleDeclaration, "root", nil)
	root.PublicChildren = []*Node{zeta, alpha}

	var buf strings.Builder
	NewBuildGraphWriter().WriteText(&buf, &Graph{Root: root, store: store})
	out := buf.String()

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) < 3 {
		t.Fatalf("output too short: %q", out)
	}
	// alpha sorts before zeta among root's children
	alphaIdx := strings.Index(out, "alpha")
	zetaIdx := strings.Index(out, "zeta")
	if alphaIdx == -1 || zetaIdx == -1 || alphaIdx > zetaIdx {
		t.Errorf("children should be sorted by name (alpha before zeta), got:\n%s", out)
	}
	if strings.Count(out, "shared") != 2 {
		t.Errorf("shared should appear once per parent, got:\n%s", out)
	}
	if !strings.Contains(out, "shared (visited)") {
		t.Errorf("the second visit of shared should be marked (visited), got:\n%s", out)
	}
}

func TestBuildGraphWriterWriteHTMLEscapesAndNests(t *testing.T) {
	store := &NodeStore{}
	leaf := store.New(NodeModuleDeclaration, "<leaf>", nil)
	root := store.New(NodeModuleDeclaration, "root", nil)
	root.PublicChildren = []*Node{leaf}

	var buf strings.Builder
	NewBuildGraphWriter().WriteHTML(&buf, &Graph{Root: root, store: store})
	out := buf.String()

	if !strings.Contains(out, "&lt;leaf&gt;") {
		t.Errorf("WriteHTML() should escape node names, got:\n%s", out)
	}
	if !strings.Contains(out, "<ul>") {
		t.Errorf("WriteHTML() should nest children under a <ul>, got:\n%s", out)
	}
	if !strings.HasPrefix(out, "<!DOCTYPE html>") {
		t.Error("WriteHTML() should start with a doctype")
	}
}

func TestSortedModuleChildrenExcludesNonDeclarationKinds(t *testing.T) {
	store := &NodeStore{}
	root := store.New(NodeModuleDeclaration, "root", nil)
	compile := store.New(NodeCompileSourceFile, "a.cc", root)
	dep := store.New(NodeModuleDeclaration, "dep", nil)
	root.PrivateChildren = []*Node{compile}
	root.PublicChildren = []*Node{dep}

	children := sortedModuleChildren(root)
	if len(children) != 1 || children[0].Name != "dep" {
		t.Errorf("sortedModuleChildren() = %v, want only the module-declaration child", children)
	}
}

// TestBuildGraphWriterWriteTextMatchesGoldenOutput pins the exact text tree
// WriteText produces for a small fixed graph, printing a readable diff
// instead of a raw byte dump on mismatch.
func TestBuildGraphWriterWriteTextMatchesGoldenOutput(t *testing.T) {
	store := &NodeStore{}
	leaf := store.New(NodeModuleDeclaration, "leaf", nil)
	mid := store.New(NodeModuleDeclaration, "mid", nil)
	mid.PublicChildren = []*Node{leaf}
	root := store.New(NodeModuleDeclaration, "root", nil)
	root.PublicChildren = []*Node{mid}

	var buf strings.Builder
	NewBuildGraphWriter().WriteText(&buf, &Graph{Root: root, store: store})
	got := buf.String()

	want := "root\n  mid\n    leaf\n"
	if got != want {
		dmp := diffmatchpatch.New()
		diffs := dmp.DiffMain(want, got, true)
		diffs = dmp.DiffCleanupSemantic(diffs)
		t.Errorf("WriteText() output differs from golden output (red) to generated (green):\n%s", dmp.DiffPrettyText(diffs))
	}
}
