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
	"reflect"
	"testing"
)

func TestAccessScopedOrderAndDuplicates(t *testing.T) {
	var a AccessScoped[string]
	a.AddPublic("pub1", "pub2")
	a.AddPrivate("priv1")
	a.AddPublic("pub1") // duplicates preserved

	if got, want := a.Public(), []string{"pub1", "pub2", "pub1"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Public() = %v, want %v", got, want)
	}
	if got, want := a.Private(), []string{"priv1"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Private() = %v, want %v", got, want)
	}
	if got, want := a.Joined(), []string{"pub1", "pub2", "pub1", "priv1"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Joined() = %v, want %v", got, want)
	}
	if got, want := a.Len(), 4; got != want {
		t.Errorf("Len() = %d, want %d", got, want)
	}
}

func TestAccessScopedMutationIsolation(t *testing.T) {
	var a AccessScoped[int]
	a.AddPublic(1, 2, 3)

	out := a.Public()
	out[0] = 99

	if a.Public()[0] != 1 {
		t.Error("mutating the slice returned by Public() must not affect the underlying collection")
	}
}

func TestAccessScopedEmpty(t *testing.T) {
	var a AccessScoped[string]
	if a.Len() != 0 {
		t.Errorf("Len() on an empty AccessScoped = %d, want 0", a.Len())
	}
	if got := a.Joined(); len(got) != 0 {
		t.Errorf("Joined() on an empty AccessScoped = %v, want empty", got)
	}
}
