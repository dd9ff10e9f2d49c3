// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The ProbeChain is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the ProbeChain. If not, see <http://www.gnu.org/licenses/>.

// Package xsample implements uniform sampling without replacement, shared
// by the Node (peer sampling) and Wallet (node sampling) actors.
package xsample

import "math/rand"

// Choose returns a random subset of size min(k, len(items)) drawn without
// replacement from items, via a partial Fisher-Yates shuffle. The input
// slice is never mutated.
func Choose[T any](items []T, k int) []T {
	n := len(items)
	if k > n {
		k = n
	}
	if k <= 0 || n == 0 {
		return nil
	}

	pool := make([]T, n)
	copy(pool, items)

	for i := 0; i < k; i++ {
		j := i + rand.Intn(n-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:k]
}
