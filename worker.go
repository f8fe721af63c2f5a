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
	"sync"

	"github.com/golang/glog"
	"golang.org/x/sync/errgroup"
)

// runBounded runs fn(n) for every node in nodes, at most maxWorkers at a
// time, through ctx's cancellation. Individual failures are accumulated
// rather than cancelling siblings: the whole set runs to completion (or to
// ctx cancellation) before a single aggregated error, if any, is returned.
func runBounded(ctx context.Context, maxWorkers int, nodes []*Node, fn func(context.Context, *Node) error) error {
	if len(nodes) == 0 {
		return nil
	}
	if maxWorkers < 1 {
		maxWorkers = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, maxWorkers)
	var mu sync.Mutex
	var failures []error

	for _, n := range nodes {
		n := n
		g.Go(func() error {
			select {
			case sem <- struct{}{}:
			case <-gctx.Done():
				return gctx.Err()
			}
			defer func() { <-sem }()

			glog.V(1).Infof("run: %s (%s)", n.Name, n.Kind)
			if err := fn(gctx, n); err != nil {
				mu.Lock()
				failures = append(failures, err)
				mu.Unlock()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err // context cancelled/deadline exceeded
	}
	return aggregateErrors(failures)
}
