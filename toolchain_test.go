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

func TestToolchainRegistryRegisterAndGet(t *testing.T) {
	r := NewToolchainRegistry()
	tc := &Toolchain{Name: "custom"}
	r.Register(tc)

	got, ok := r.Get("custom")
	if !ok {
		t.Fatal("Get() = false after Register()")
	}
	if got != tc {
		t.Error("Get() returned a different pointer than the one registered")
	}
}

func TestToolchainRegistryGetMissing(t *testing.T) {
	r := NewToolchainRegistry()
	if _, ok := r.Get("nonexistent"); ok {
		t.Error("Get() should report false for a name that was never registered")
	}
}

func TestDefaultToolchainsRegistersHostToolchain(t *testing.T) {
	if p := DefaultPlatforms.HostDefault(); p != nil {
		if _, ok := DefaultToolchains.Get(p.DefaultToolchain); !ok {
			t.Errorf("DefaultToolchains should register %q (this host platform's DefaultToolchain)", p.DefaultToolchain)
		}
	}
}
