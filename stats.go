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
	"sort"
	"sync"
	"time"
)

// actionStat accumulates timing for one action name ("compile", "link",
// "archive", ...).
type actionStat struct {
	Name    string
	Count   int
	Skipped int
	Longest time.Duration
	Total   time.Duration
}

// BuildStats collects per-action-kind counters over the lifetime of one
// Executor.Exec call.
type BuildStats struct {
	mu   sync.Mutex
	data map[string]*actionStat
}

// NewBuildStats returns an empty BuildStats.
func NewBuildStats() *BuildStats {
	return &BuildStats{data: make(map[string]*actionStat)}
}

// Record adds one completed action of the given kind.
func (s *BuildStats) Record(kind string, d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sd := s.data[kind]
	if sd == nil {
		sd = &actionStat{Name: kind}
		s.data[kind] = sd
	}
	sd.Count++
	sd.Total += d
	if d > sd.Longest {
		sd.Longest = d
	}
}

// RecordSkip notes one action of the given kind that the incremental cache
// allowed to be skipped.
func (s *BuildStats) RecordSkip(kind string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sd := s.data[kind]
	if sd == nil {
		sd = &actionStat{Name: kind}
		s.data[kind] = sd
	}
	sd.Skipped++
}

// Count reports how many actions of kind completed and how many were
// skipped by the incremental cache.
func (s *BuildStats) Count(kind string) (count, skipped int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sd := s.data[kind]
	if sd == nil {
		return 0, 0
	}
	return sd.Count, sd.Skipped
}

// Dump writes a sorted-by-total-time summary table to w.
func (s *BuildStats) Dump(w io.Writer) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rows byTotalTime
	for _, v := range s.data {
		rows = append(rows, *v)
	}
	sort.Sort(rows)
	fmt.Fprintln(w, "kind,count,skipped,longest,total")
	for _, r := range rows {
		fmt.Fprintf(w, "%s,%d,%d,%v,%v\n", r.Name, r.Count, r.Skipped, r.Longest, r.Total)
	}
}

type byTotalTime []actionStat

func (b byTotalTime) Len() int      { return len(b) }
func (b byTotalTime) Swap(i, j int) { b[i], b[j] = b[j], b[i] }
func (b byTotalTime) Less(i, j int) bool {
	return b[i].Total > b[j].Total
}
