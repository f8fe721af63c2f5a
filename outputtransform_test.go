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

func TestOutputTransformerRegistryLookupMissing(t *testing.T) {
	r := NewOutputTransformerRegistry()
	if fn := r.Lookup("static"); fn != nil {
		t.Error("Lookup() on an empty registry should return nil")
	}
}

func TestOutputTransformerRegistryRegisterAndLookup(t *testing.T) {
	r := NewOutputTransformerRegistry()
	called := false
	r.Register("custom", func(cfg *ModuleConfig, mctx ModuleContext) error {
		called = true
		return nil
	})
	fn := r.Lookup("custom")
	if fn == nil {
		t.Fatal("Lookup() = nil after Register()")
	}
	if err := fn(NewModuleConfig(ModuleReference{}, "/a"), ModuleContext{}); err != nil {
		t.Fatal(err)
	}
	if !called {
		t.Error("the registered transform was not invoked")
	}
}

func TestRegisterDefaultTransformersStaticAndShared(t *testing.T) {
	r := NewOutputTransformerRegistry()
	RegisterDefaultTransformers(r)

	m := NewModuleConfig(ModuleReference{}, "/a")
	m.Type = ModuleTypeExecutable

	staticFn := r.Lookup("static")
	if staticFn == nil {
		t.Fatal("default registry should have a \"static\" transformer")
	}
	if err := staticFn(m, ModuleContext{}); err != nil {
		t.Fatal(err)
	}
	if m.Type != ModuleTypeStaticLibrary {
		t.Errorf("Type = %v after the static transform, want StaticLibrary", m.Type)
	}

	sharedFn := r.Lookup("shared")
	if sharedFn == nil {
		t.Fatal("default registry should have a \"shared\" transformer")
	}
	if err := sharedFn(m, ModuleContext{}); err != nil {
		t.Fatal(err)
	}
	if m.Type != ModuleTypeSharedLibrary {
		t.Errorf("Type = %v after the shared transform, want SharedLibrary", m.Type)
	}
}
