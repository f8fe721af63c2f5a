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

const bogusBinary = "ebuild-definitely-not-a-real-binary-xyz"

func TestToolAvailableFalseForBogusBinary(t *testing.T) {
	if toolAvailable(bogusBinary) {
		t.Error("toolAvailable() = true for a binary name that shouldn't exist on PATH")
	}
}

func TestCommandLineLen(t *testing.T) {
	got := commandLineLen([]string{"a", "bb", "ccc"})
	want := 2 + 3 + 4 // each arg plus one separator
	if got != want {
		t.Errorf("commandLineLen() = %d, want %d", got, want)
	}
}
