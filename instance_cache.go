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
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
)

// candidateModuleFileNames is tried, in order, against a directory path
// when resolving a reference that names a directory rather than a file.
var candidateModuleFileNames = []string{
	"index.ebuild.cs",
	"ebuild.cs",
}

// ModuleFileCache resolves reference file paths to canonical, existing
// absolute paths and memoizes the result so repeated references to the same
// module don't repeat filesystem probing.
type ModuleFileCache struct {
	mu    sync.Mutex
	files map[string]string // input path -> canonical resolved path
}

// NewModuleFileCache returns an empty cache.
func NewModuleFileCache() *ModuleFileCache {
	return &ModuleFileCache{files: map[string]string{}}
}

// Resolve returns the canonical absolute path a reference's FilePath names,
// trying path itself, then <path>/index.ebuild.cs, <path>/ebuild.cs, and
// finally <path>/<base(path)>.ebuild.cs.
func (c *ModuleFileCache) Resolve(path string) (string, error) {
	c.mu.Lock()
	if v, ok := c.files[path]; ok {
		c.mu.Unlock()
		return v, nil
	}
	c.mu.Unlock()

	resolved, err := c.resolveUncached(path)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	c.files[path] = resolved
	c.mu.Unlock()
	return resolved, nil
}

func (c *ModuleFileCache) resolveUncached(path string) (string, error) {
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		return filepath.Abs(path)
	}
	base := filepath.Base(path)
	candidates := append([]string{}, candidateModuleFileNames...)
	candidates = append(candidates, base+".ebuild.cs")
	for _, name := range candidates {
		p := filepath.Join(path, name)
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return filepath.Abs(p)
		}
	}
	return "", &ErrModuleFileNotFound{Path: path}
}

// ModuleInstanceCache memoizes constructed ModuleConfigs by ModuleReference
// identity, using singleflight to collapse concurrent duplicate
// constructions of the same reference into a single ModuleLoader.Load call.
type ModuleInstanceCache struct {
	group        singleflight.Group
	cache        *lru.Cache[string, *ModuleConfig]
	loader       ModuleLoader
	transformers *OutputTransformerRegistry
}

// NewModuleInstanceCache returns a cache backed by an LRU of the given size
// that constructs modules via loader and applies transformers registered in
// transformers.
func NewModuleInstanceCache(loader ModuleLoader, transformers *OutputTransformerRegistry, size int) (*ModuleInstanceCache, error) {
	if size <= 0 {
		size = 1024
	}
	c, err := lru.New[string, *ModuleConfig](size)
	if err != nil {
		return nil, fmt.Errorf("instance cache: %w", err)
	}
	if transformers == nil {
		transformers = DefaultTransformers
	}
	return &ModuleInstanceCache{cache: c, loader: loader, transformers: transformers}, nil
}

// Get returns the memoized ModuleConfig for ref, constructing (and, if
// ref.OutputVariantTag is set, transforming) it on first request.
func (c *ModuleInstanceCache) Get(ctx context.Context, ref ModuleReference, mctx ModuleContext) (*ModuleConfig, error) {
	key := ref.Key()
	if v, ok := c.cache.Get(key); ok {
		return v, nil
	}

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		if v, ok := c.cache.Get(key); ok {
			return v, nil
		}
		cfg, err := c.loader.Load(ctx, ref, mctx)
		if err != nil {
			return nil, &ErrModuleConstruction{Reference: ref, Cause: err}
		}
		if cfg.HasErrors() {
			return nil, &ErrModuleConstruction{Reference: ref, Diagnostics: cfg.Diagnostics}
		}
		if ref.OutputVariantTag != "" {
			transform := c.transformers.Lookup(ref.OutputVariantTag)
			if transform == nil {
				return nil, &ErrOutputTransformerNotFound{Tag: ref.OutputVariantTag}
			}
			if err := transform(cfg, mctx); err != nil {
				return nil, err
			}
		}
		c.cache.Add(key, cfg)
		return cfg, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*ModuleConfig), nil
}
