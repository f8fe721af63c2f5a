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
	"os/exec"
)

// maxCommandLineLength is a conservative threshold past which we fall back
// to a compiler/linker response file rather than risk an OS argv limit.
const maxCommandLineLength = 8000

func toolAvailable(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

func commandLineLen(args []string) int {
	n := 0
	for _, a := range args {
		n += len(a) + 1
	}
	return n
}

func writeResponseFile(dir string, args []string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	f, err := os.CreateTemp(dir, "ebuild-rsp-*.rsp")
	if err != nil {
		return "", err
	}
	defer f.Close()
	for _, a := range args {
		fmt.Fprintf(f, "%q\n", a)
	}
	return f.Name(), nil
}

// execRunner invokes a single toolchain binary (compiler, linker, or
// archiver) as a subprocess, shared by both the unix and windows factory
// implementations.
type execRunner struct {
	path string
}

func (r execRunner) run(ctx context.Context, args []string, dir string) error {
	cmd := exec.CommandContext(ctx, r.path, args...)
	cmd.Dir = dir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// runMaybeResponseFile runs args directly, or through an "@file" response
// file when the command line would be too long.
func (r execRunner) runMaybeResponseFile(ctx context.Context, args []string, intermediateDir string) error {
	if commandLineLen(args) <= maxCommandLineLength {
		return r.run(ctx, args, "")
	}
	rsp, err := writeResponseFile(intermediateDir, args)
	if err != nil {
		return err
	}
	defer os.Remove(rsp)
	return r.run(ctx, []string{"@" + rsp}, "")
}
