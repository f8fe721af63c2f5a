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

import "context"

// ModuleLoader constructs the ModuleConfig a ModuleReference points to. It
// is the external collaborator surface: a real deployment supplies one that
// reads and evaluates a module declaration file (e.g. a Lua, Starlark, or
// compiled-plugin definition) and returns the resulting configuration.
type ModuleLoader interface {
	Load(ctx context.Context, ref ModuleReference, mctx ModuleContext) (*ModuleConfig, error)
}

// ModuleLoaderFunc adapts a plain function to ModuleLoader.
type ModuleLoaderFunc func(ctx context.Context, ref ModuleReference, mctx ModuleContext) (*ModuleConfig, error)

// Load calls f.
func (f ModuleLoaderFunc) Load(ctx context.Context, ref ModuleReference, mctx ModuleContext) (*ModuleConfig, error) {
	return f(ctx, ref, mctx)
}
