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
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/golang/glog"
)

// ExecutorOptions configures an Executor.
type ExecutorOptions struct {
	MaxWorkers    int
	GenerateOnly  bool // compile-commands/buildgraph generation: actions are recorded, not run
	CompDB        *CompDB
	PlatformRoots []string
	Generator     *CompileCommandsGenerator // required when GenerateOnly
	Stats         *BuildStats               // nil disables stat collection
}

// Executor walks a planned Graph and runs its action nodes in the
// phase-bucketed order the build-plan compiler requires: pre-build steps,
// then bounded-parallel compiles, then linking, then shared-library copies,
// then additional dependencies, then post-build steps -- serially bucket by
// bucket, with every descendant module's own phases fully finished before
// its dependent's phases begin.
type Executor struct {
	opts ExecutorOptions
}

// NewExecutor returns an Executor configured by opts.
func NewExecutor(opts ExecutorOptions) *Executor {
	if opts.MaxWorkers < 1 {
		opts.MaxWorkers = 1
	}
	return &Executor{opts: opts}
}

// Exec runs every action node reachable from g.Root.
func (ex *Executor) Exec(ctx context.Context, g *Graph) error {
	visited := map[*Node]bool{}
	return ex.execNode(ctx, g.Root, visited)
}

func (ex *Executor) execNode(ctx context.Context, n *Node, visited map[*Node]bool) error {
	if visited[n] {
		return nil
	}
	visited[n] = true
	if err := ctx.Err(); err != nil {
		return err
	}

	for _, c := range n.Children() {
		if c.Kind == NodeModuleDeclaration {
			if err := ex.execNode(ctx, c, visited); err != nil {
				return err
			}
		}
	}

	var pre, compile, link, copyNodes, addl, post []*Node
	for _, c := range n.Children() {
		switch c.Kind {
		case NodeBuildStepPreBuild:
			pre = append(pre, c)
		case NodeCompileSourceFile:
			compile = append(compile, c)
		case NodeLinker:
			link = append(link, c)
		case NodeCopySharedLibraryToRootBin:
			copyNodes = append(copyNodes, c)
		case NodeAdditionalDependency:
			addl = append(addl, c)
		case NodeBuildStepPostBuild:
			post = append(post, c)
		}
	}

	for _, s := range pre {
		if err := ex.runBuildStep(ctx, s); err != nil {
			return err
		}
	}

	if err := runBounded(ctx, ex.opts.MaxWorkers, compile, ex.runCompile); err != nil {
		return err
	}

	for _, l := range link {
		if err := ex.runLink(ctx, l); err != nil {
			return err
		}
	}
	for _, c := range copyNodes {
		if err := ex.runCopy(ctx, c); err != nil {
			return err
		}
	}
	for _, a := range addl {
		if err := ex.runAdditionalDependency(ctx, a); err != nil {
			return err
		}
	}
	for _, s := range post {
		if err := ex.runBuildStep(ctx, s); err != nil {
			return err
		}
	}
	return nil
}

func (ex *Executor) runCompile(ctx context.Context, n *Node) error {
	cs := *n.CompileSettings
	if ex.opts.GenerateOnly {
		ex.opts.Generator.Emit(n, cs)
		return nil
	}
	if ex.opts.CompDB != nil && ex.opts.CompDB.ShouldSkip(n.OwningModule(), cs, ex.opts.PlatformRoots) {
		glog.V(1).Infof("skip (up to date): %s", cs.SourceFile)
		if ex.opts.Stats != nil {
			ex.opts.Stats.RecordSkip("compile")
		}
		return nil
	}
	if err := os.MkdirAll(cs.IntermediateDir, 0o755); err != nil {
		return err
	}
	start := time.Now()
	err := n.Compiler.Compile(ctx, cs)
	if ex.opts.Stats != nil {
		ex.opts.Stats.Record("compile", time.Since(start))
	}
	if err != nil {
		return &ErrCompileFailed{Source: cs.SourceFile, ExitCode: exitCodeOf(err)}
	}
	if ex.opts.CompDB != nil {
		if err := ex.opts.CompDB.RecordSuccess(n.OwningModule(), cs, ex.opts.PlatformRoots); err != nil {
			glog.Warningf("compdb: failed to record %s: %v", cs.SourceFile, err)
		}
	}
	return nil
}

func (ex *Executor) runLink(ctx context.Context, n *Node) error {
	ls := *n.LinkSettings
	if ex.opts.GenerateOnly {
		return nil
	}
	if LinkShouldSkip(ls) {
		glog.V(1).Infof("skip link (up to date): %s", ls.OutputFile)
		if ex.opts.Stats != nil {
			ex.opts.Stats.RecordSkip("link")
		}
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(ls.OutputFile), 0o755); err != nil {
		return err
	}
	start := time.Now()
	err := n.Linker.Link(ctx, ls)
	if ex.opts.Stats != nil {
		ex.opts.Stats.Record("link", time.Since(start))
	}
	if err != nil {
		return &ErrLinkFailed{Output: ls.OutputFile, ExitCode: exitCodeOf(err)}
	}
	return nil
}

func (ex *Executor) runCopy(ctx context.Context, n *Node) error {
	if ex.opts.GenerateOnly {
		return nil
	}
	info, err := os.Stat(n.CopySource)
	if err != nil {
		return err
	}
	if dstInfo, err := os.Stat(n.CopyDest); err == nil && !dstInfo.ModTime().Before(info.ModTime()) {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(n.CopyDest), 0o755); err != nil {
		return err
	}
	return copyFile(n.CopySource, n.CopyDest)
}

func (ex *Executor) runAdditionalDependency(ctx context.Context, n *Node) error {
	if ex.opts.GenerateOnly {
		return nil
	}
	if !fileExists(n.AdditionalDependency) {
		glog.Warningf("additional dependency missing: %s", n.AdditionalDependency)
	}
	return nil
}

func (ex *Executor) runBuildStep(ctx context.Context, n *Node) error {
	if ex.opts.GenerateOnly {
		return nil
	}
	if n.BuildStep == nil || n.BuildStep.Run == nil {
		return nil
	}
	if err := n.BuildStep.Run(ctx, n.OwningModule()); err != nil {
		return &ErrBuildStepFailed{Step: n.Name, Cause: err}
	}
	return nil
}

func exitCodeOf(err error) int {
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		return ee.ExitCode()
	}
	return 1
}
