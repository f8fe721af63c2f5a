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

// AccessScoped holds an ordered, insertion-preserving multiset of values of
// type T, partitioned into a public and a private half. Order is
// significant: these collections usually end up as compiler or linker flags,
// and flag order can change behavior.
//
// Public entries propagate to dependents through public edges; private
// entries are visible only to the declaring module itself. Joined returns
// public entries followed by private entries, which is the order in which a
// module's own compile/link settings are built.
type AccessScoped[T any] struct {
	public  []T
	private []T
}

// AddPublic appends items to the public half, preserving order and
// duplicates.
func (a *AccessScoped[T]) AddPublic(items ...T) {
	a.public = append(a.public, items...)
}

// AddPrivate appends items to the private half, preserving order and
// duplicates.
func (a *AccessScoped[T]) AddPrivate(items ...T) {
	a.private = append(a.private, items...)
}

// Public returns the public half, in insertion order.
func (a AccessScoped[T]) Public() []T {
	out := make([]T, len(a.public))
	copy(out, a.public)
	return out
}

// Private returns the private half, in insertion order.
func (a AccessScoped[T]) Private() []T {
	out := make([]T, len(a.private))
	copy(out, a.private)
	return out
}

// Joined returns the public half followed by the private half.
func (a AccessScoped[T]) Joined() []T {
	out := make([]T, 0, len(a.public)+len(a.private))
	out = append(out, a.public...)
	out = append(out, a.private...)
	return out
}

// Len returns the total number of entries across both halves.
func (a AccessScoped[T]) Len() int {
	return len(a.public) + len(a.private)
}
