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
	"io"
)

// PrintDependencies writes a human-readable dependency tree for n to w. A
// node visited more than once prints only its label and id on repeat
// visits, rather than re-expanding its children.
func PrintDependencies(w io.Writer, n *Node, indent int, seen map[string]int) {
	id, present := seen[n.Name]
	if !present {
		id = len(seen)
		seen[n.Name] = id
	}
	fmt.Fprintf(w, "%*c%s (%d)\n", indent, ' ', n.Name, id)
	if present {
		return
	}
	for _, c := range n.Children() {
		PrintDependencies(w, c, indent+1, seen)
	}
}

// CheckCircularDependencies reports the first dependency cycle found in g,
// if any. ok is false and path names the cycle, root to repeated node,
// when one exists.
func CheckCircularDependencies(g *Graph) (ok bool, path []string) {
	if g.HasCycle() {
		return false, g.CyclePath()
	}
	return true, nil
}

// CheckPrintDependencies writes g's dependency tree starting from its root.
func CheckPrintDependencies(w io.Writer, g *Graph) {
	seen := make(map[string]int)
	PrintDependencies(w, g.Root, 0, seen)
}
