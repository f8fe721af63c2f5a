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

import "sync"

// OutputTransformFunc mutates a freshly-constructed ModuleConfig in place to
// realize an output-variant tag (e.g. "static" forcing a library module to
// build as a static archive rather than whatever its declaration defaulted
// to).
type OutputTransformFunc func(cfg *ModuleConfig, mctx ModuleContext) error

// OutputTransformerRegistry maps variant tags to the transform that
// realizes them.
type OutputTransformerRegistry struct {
	mu           sync.RWMutex
	transformers map[string]OutputTransformFunc
}

// NewOutputTransformerRegistry returns an empty registry.
func NewOutputTransformerRegistry() *OutputTransformerRegistry {
	return &OutputTransformerRegistry{transformers: map[string]OutputTransformFunc{}}
}

// Register associates tag with fn, overwriting any previous registration.
func (r *OutputTransformerRegistry) Register(tag string, fn OutputTransformFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transformers[tag] = fn
}

// Lookup returns the transformer for tag, or nil if none is registered.
func (r *OutputTransformerRegistry) Lookup(tag string) OutputTransformFunc {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.transformers[tag]
}

// DefaultTransformers is the process-wide registry populated by
// RegisterDefaultTransformers at init time; callers are free to register
// additional tags on it or build their own registry instead.
var DefaultTransformers = NewOutputTransformerRegistry()

func init() {
	RegisterDefaultTransformers(DefaultTransformers)
}

// RegisterDefaultTransformers installs the "static" and "shared" variant
// tags, which force a module's output type regardless of what its
// declaration requested.
func RegisterDefaultTransformers(r *OutputTransformerRegistry) {
	r.Register("static", func(cfg *ModuleConfig, _ ModuleContext) error {
		cfg.Type = ModuleTypeStaticLibrary
		return nil
	})
	r.Register("shared", func(cfg *ModuleConfig, _ ModuleContext) error {
		cfg.Type = ModuleTypeSharedLibrary
		return nil
	})
}
