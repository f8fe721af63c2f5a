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
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/golang/glog"

	"github.com/yldrefruz/ebuild/cache"
)

// CompDBEntry is the JSON-per-source record that lets a rebuild decide
// whether a compile can be skipped.
type CompDBEntry struct {
	SourceFile    string    `json:"SourceFile"`
	OutputFile    string    `json:"OutputFile"`
	LastCompiled  time.Time `json:"LastCompiled"`
	Definitions   []string  `json:"Definitions"`
	IncludePaths  []string  `json:"IncludePaths"`
	ForceIncludes []string  `json:"ForceIncludes"`
	Dependencies  []string  `json:"Dependencies"`
}

func compDBPath(moduleDir, moduleName, sourceFile string) string {
	sum := sha256.Sum256([]byte(sourceFile))
	hexd := hex.EncodeToString(sum[:])
	stem := strings.TrimSuffix(filepath.Base(sourceFile), filepath.Ext(sourceFile))
	return filepath.Join(moduleDir, ".ebuild", moduleName, "compdb", fmt.Sprintf("%s-%s.compile.json", stem, hexd))
}

func compDBKey(moduleName, sourceFile string) string {
	sum := sha256.Sum256([]byte(moduleName + "\x00" + sourceFile))
	return hex.EncodeToString(sum[:]) + ".json"
}

// CompDB is the incremental-build cache: a JSON file per compiled source
// that records the flags and dependency fingerprint it was last compiled
// with, optionally mirrored into a remote cache.Backend.
type CompDB struct {
	Scanner *IncludeScanner
	Remote  cache.Backend // nil disables the remote tier
}

func (c *CompDB) loadEntry(path string, moduleName, sourceFile string) (*CompDBEntry, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) && c.Remote != nil {
		remote, rerr := c.Remote.GetCompDB(context.Background(), compDBKey(moduleName, sourceFile))
		if rerr == nil {
			data = remote
			err = nil
		}
	}
	if err != nil {
		return nil, err
	}
	var e CompDBEntry
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, &ErrIncrementalCacheCorrupt{Path: path, Cause: err}
	}
	return &e, nil
}

// ShouldSkip decides whether a compile of cs can be skipped, following the
// eight conditions the incremental cache applies in order. Any unexpected
// error during the check is treated conservatively: compile rather than
// risk a stale skip.
func (c *CompDB) ShouldSkip(m *ModuleConfig, cs CompileSettings, platformRoots []string) bool {
	skip, err := c.evaluate(m, cs, platformRoots)
	if err != nil {
		glog.V(1).Infof("compdb: %v; recompiling %s", err, cs.SourceFile)
		return false
	}
	return skip
}

func (c *CompDB) evaluate(m *ModuleConfig, cs CompileSettings, platformRoots []string) (skip bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			skip, err = false, fmt.Errorf("recovered panic in skip decision: %v", r)
		}
	}()

	outInfo, statErr := os.Stat(cs.OutputFile) // (1) output must exist
	if statErr != nil {
		return false, nil
	}
	srcInfo, statErr := os.Stat(cs.SourceFile)
	if statErr != nil {
		return false, statErr
	}
	if outInfo.ModTime().Before(srcInfo.ModTime()) { // (2) output must be newer than source
		return false, nil
	}

	dbPath := compDBPath(m.Dir, m.Name, cs.SourceFile)
	entry, loadErr := c.loadEntry(dbPath, m.Name, cs.SourceFile)
	if loadErr != nil { // (3) a missing/corrupt entry forces a compile
		if !os.IsNotExist(loadErr) {
			glog.Warningf("compdb: %v; recompiling %s", loadErr, cs.SourceFile)
		}
		return false, nil
	}

	if !sortedEqual(cs.Definitions, entry.Definitions) { // (4)
		return false, nil
	}
	if !sortedEqual(cs.IncludePaths, entry.IncludePaths) { // (5)
		return false, nil
	}
	if !sortedEqual(cs.ForceIncludes, entry.ForceIncludes) { // (6)
		return false, nil
	}

	deps, scanErr := c.scanDependencies(cs, platformRoots)
	if scanErr != nil {
		return false, scanErr
	}
	if !sortedEqual(deps, entry.Dependencies) { // (7) dependency set must be unchanged
		return false, nil
	}

	maxDepMtime := srcInfo.ModTime()
	for _, d := range deps { // (8) no dependency newer than the output
		di, statErr := os.Stat(d)
		if statErr != nil {
			continue
		}
		if di.ModTime().After(maxDepMtime) {
			maxDepMtime = di.ModTime()
		}
	}
	if maxDepMtime.After(outInfo.ModTime()) {
		return false, nil
	}

	return true, nil
}

func (c *CompDB) scanDependencies(cs CompileSettings, platformRoots []string) ([]string, error) {
	deps, err := c.Scanner.Scan(cs.SourceFile, cs.IncludePaths, platformRoots)
	if err != nil {
		return nil, err
	}
	for _, fi := range cs.ForceIncludes {
		deps = append(deps, fi)
		fiDeps, err := c.Scanner.Scan(fi, cs.IncludePaths, platformRoots)
		if err == nil {
			deps = append(deps, fiDeps...)
		}
	}
	sort.Strings(deps)
	return deps, nil
}

// RecordSuccess writes a fresh CompDBEntry after a successful compile and
// mirrors it to the remote tier if one is configured.
func (c *CompDB) RecordSuccess(m *ModuleConfig, cs CompileSettings, platformRoots []string) error {
	deps, err := c.scanDependencies(cs, platformRoots)
	if err != nil {
		glog.Warningf("compdb: include scan failed for %s: %v", cs.SourceFile, err)
		deps = nil
	}
	entry := CompDBEntry{
		SourceFile:    cs.SourceFile,
		OutputFile:    cs.OutputFile,
		LastCompiled:  time.Now().UTC(),
		Definitions:   append([]string{}, cs.Definitions...),
		IncludePaths:  append([]string{}, cs.IncludePaths...),
		ForceIncludes: append([]string{}, cs.ForceIncludes...),
		Dependencies:  deps,
	}
	data, err := json.MarshalIndent(&entry, "", "  ")
	if err != nil {
		return err
	}
	dbPath := compDBPath(m.Dir, m.Name, cs.SourceFile)
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(dbPath, data, 0o644); err != nil {
		return err
	}
	if c.Remote != nil {
		if err := c.Remote.PutCompDB(context.Background(), compDBKey(m.Name, cs.SourceFile), data); err != nil {
			glog.Warningf("compdb: remote tier put failed for %s: %v", cs.SourceFile, err)
		}
	}
	return nil
}

func sortedEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	sa := append([]string{}, a...)
	sb := append([]string{}, b...)
	sort.Strings(sa)
	sort.Strings(sb)
	for i := range sa {
		if sa[i] != sb[i] {
			return false
		}
	}
	return true
}

// LinkShouldSkip reports whether a link action can be skipped: the output
// must exist and be newer than every resolvable input. An input that can't
// be resolved against the library search paths forces the link to run.
func LinkShouldSkip(ls LinkSettings) bool {
	outInfo, err := os.Stat(ls.OutputFile)
	if err != nil {
		return false
	}
	for _, in := range ls.InputFiles {
		p, ok := resolveLinkInput(in, ls.LibraryPaths)
		if !ok {
			return false
		}
		info, err := os.Stat(p)
		if err != nil {
			return false
		}
		if info.ModTime().After(outInfo.ModTime()) {
			return false
		}
	}
	return true
}

func resolveLinkInput(name string, searchPaths []string) (string, bool) {
	if filepath.IsAbs(name) || strings.ContainsAny(name, "/\\") {
		return name, fileExists(name)
	}
	for _, dir := range searchPaths {
		p := filepath.Join(dir, name)
		if fileExists(p) {
			return p, true
		}
	}
	return name, false
}
