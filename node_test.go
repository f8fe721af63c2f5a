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

func TestNodeKindString(t *testing.T) {
	cases := map[NodeKind]string{
		NodeModuleDeclaration:          "ModuleDeclaration",
		NodeCompileSourceFile:          "CompileSourceFile",
		NodeLinker:                     "Linker",
		NodeBuildStepPreBuild:          "PreBuildStep",
		NodeBuildStepPostBuild:         "PostBuildStep",
		NodeCopySharedLibraryToRootBin: "CopySharedLibrary",
		NodeAdditionalDependency:       "AdditionalDependency",
		NodeKind(99):                   "Unknown",
	}
	for k, want := range cases {
		if got := k.String(); got != want {
			t.Errorf("NodeKind(%d).String() = %q, want %q", k, got, want)
		}
	}
}

func TestNodeChildrenPublicBeforePrivate(t *testing.T) {
	store := &NodeStore{}
	root := store.New(NodeModuleDeclaration, "root", nil)
	pub := store.New(NodeModuleDeclaration, "pub", root)
	priv := store.New(NodeModuleDeclaration, "priv", root)
	root.PublicChildren = []*Node{pub}
	root.PrivateChildren = []*Node{priv}

	got := root.Children()
	if len(got) != 2 || got[0] != pub || got[1] != priv {
		t.Errorf("Children() = %v, want [pub, priv]", got)
	}
}

func TestNodeOwningModuleWalksToNearestDeclaration(t *testing.T) {
	store := &NodeStore{}
	decl := store.New(NodeModuleDeclaration, "mod", nil)
	decl.Module = NewModuleConfig(ModuleReference{FilePath: "mod.ebuild.cs"}, "/a")
	compile := store.New(NodeCompileSourceFile, "a.cc", decl)

	got := compile.OwningModule()
	if got != decl.Module {
		t.Errorf("OwningModule() = %v, want %v", got, decl.Module)
	}
}

func TestNodeOwningModuleNilWhenNoAncestorDeclaration(t *testing.T) {
	store := &NodeStore{}
	orphan := store.New(NodeCompileSourceFile, "a.cc", nil)
	if got := orphan.OwningModule(); got != nil {
		t.Errorf("OwningModule() = %v, want nil", got)
	}
}

func TestNodeStoreNewAssignsSequentialIDs(t *testing.T) {
	store := &NodeStore{}
	a := store.New(NodeModuleDeclaration, "a", nil)
	b := store.New(NodeModuleDeclaration, "b", nil)
	if a.ID != 0 || b.ID != 1 {
		t.Errorf("IDs = %d, %d, want 0, 1", a.ID, b.ID)
	}
}

func TestNodeStoreAllReturnsAllocationOrder(t *testing.T) {
	store := &NodeStore{}
	a := store.New(NodeModuleDeclaration, "a", nil)
	b := store.New(NodeModuleDeclaration, "b", nil)

	all := store.All()
	if len(all) != 2 || all[0] != a || all[1] != b {
		t.Errorf("All() = %v, want [a, b]", all)
	}
}
