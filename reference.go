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
	"fmt"
	"sort"
	"strings"
)

// ModuleReference is the identity tuple under which a constructed
// ModuleConfig is memoized: an output-variant tag, a canonical module file
// path, a version string, and an options map. Two references with the same
// Key() resolve to the same *ModuleConfig instance.
type ModuleReference struct {
	OutputVariantTag string
	FilePath         string
	Version          string
	Options          map[string]string
}

// Key returns a deterministic string encoding of the reference, suitable as
// a map key or singleflight/LRU cache key. Map iteration order in Go is
// randomized, so Options is sorted by key before being folded in.
func (r ModuleReference) Key() string {
	var sb strings.Builder
	sb.WriteString(r.OutputVariantTag)
	sb.WriteByte(0)
	sb.WriteString(r.FilePath)
	sb.WriteByte(0)
	sb.WriteString(r.Version)
	sb.WriteByte(0)
	if len(r.Options) > 0 {
		keys := make([]string, 0, len(r.Options))
		for k := range r.Options {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for i, k := range keys {
			if i > 0 {
				sb.WriteByte(',')
			}
			fmt.Fprintf(&sb, "%s=%s", k, r.Options[k])
		}
	}
	return sb.String()
}

func (r ModuleReference) String() string {
	if r.OutputVariantTag == "" {
		return r.FilePath
	}
	return fmt.Sprintf("%s[%s]", r.FilePath, r.OutputVariantTag)
}
