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
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

var includeDirectiveRE = regexp.MustCompile(`^\s*#\s*include\s*["<]([^">]+)[">]`)

// IncludeScanner recovers the transitive #include closure of a source file
// by regex rather than by running the preprocessor, so it stays cheap
// enough to run on every compile-skip decision.
type IncludeScanner struct {
	cache *lru.Cache[string, []string] // absolute file path -> raw #include operands
}

// NewIncludeScanner returns a scanner backed by an LRU of the given size for
// per-file raw include extraction.
func NewIncludeScanner(cacheSize int) *IncludeScanner {
	if cacheSize <= 0 {
		cacheSize = 4096
	}
	c, _ := lru.New[string, []string](cacheSize)
	return &IncludeScanner{cache: c}
}

// Scan returns the sorted, deduplicated set of absolute paths the file at
// sourceFile transitively includes, resolving each #include against the
// including file's own directory, then includePaths, then platformRoots in
// order. An include that cannot be resolved against any of those is
// silently dropped (it may be a generated or conditionally-compiled
// header). An include that resolves under one of platformRoots is treated
// as a system header: it is not added to the result and is not recursed
// into.
func (s *IncludeScanner) Scan(sourceFile string, includePaths []string, platformRoots []string) ([]string, error) {
	visited := map[string]bool{}
	var result []string

	var visit func(file string) error
	visit = func(file string) error {
		abs, err := filepath.Abs(file)
		if err != nil {
			return err
		}
		abs = filepath.Clean(abs)
		if visited[abs] {
			return nil
		}
		visited[abs] = true

		names, err := s.rawIncludes(abs)
		if err != nil {
			return err
		}
		for _, name := range names {
			resolved, ok := resolveInclude(name, filepath.Dir(abs), includePaths, platformRoots)
			if !ok {
				continue
			}
			if isUnderAnyRoot(resolved, platformRoots) {
				continue
			}
			if visited[resolved] {
				continue
			}
			result = append(result, resolved)
			if err := visit(resolved); err != nil {
				return err
			}
		}
		return nil
	}

	if err := visit(sourceFile); err != nil {
		return nil, err
	}
	sort.Strings(result)
	return result, nil
}

func (s *IncludeScanner) rawIncludes(abs string) ([]string, error) {
	if v, ok := s.cache.Get(abs); ok {
		return v, nil
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, line := range strings.Split(string(data), "\n") {
		if m := includeDirectiveRE.FindStringSubmatch(line); m != nil {
			names = append(names, m[1])
		}
	}
	s.cache.Add(abs, names)
	return names, nil
}

func resolveInclude(name, sourceDir string, includePaths, platformRoots []string) (string, bool) {
	candidates := make([]string, 0, 1+len(includePaths)+len(platformRoots))
	candidates = append(candidates, sourceDir)
	candidates = append(candidates, includePaths...)
	candidates = append(candidates, platformRoots...)
	for _, dir := range candidates {
		p := filepath.Join(dir, name)
		if fileExists(p) {
			abs, err := filepath.Abs(p)
			if err != nil {
				continue
			}
			return filepath.Clean(abs), true
		}
	}
	return "", false
}

func isUnderAnyRoot(path string, roots []string) bool {
	for _, r := range roots {
		if r == "" {
			continue
		}
		if strings.HasPrefix(path, filepath.Clean(r)) {
			return true
		}
	}
	return false
}
