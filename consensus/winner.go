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

package consensus

import (
	"errors"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// ErrEmptyInput is returned by CalculateWinner and CalculateWinnerParallel
// when given a zero-length entry set.
var ErrEmptyInput = errors.New("consensus: empty entry set")

// CalculateWinner returns the index of the entry with the maximum Mass.
// Ties are broken by lowest index (stable first-wins).
func CalculateWinner(entries []Entry) (int, error) {
	if len(entries) == 0 {
		return 0, ErrEmptyInput
	}
	winner := 0
	for i := 1; i < len(entries); i++ {
		if entries[i].Mass > entries[winner].Mass {
			winner = i
		}
	}
	return winner, nil
}

// CalculateWinnerParallel computes the identical result to CalculateWinner
// via a data-parallel chunked reduction over GOMAXPROCS workers. It MUST
// agree bit-for-bit with CalculateWinner on every input, including the
// tie-break rule.
func CalculateWinnerParallel(entries []Entry) (int, error) {
	n := len(entries)
	if n == 0 {
		return 0, ErrEmptyInput
	}
	if n == 1 {
		return 0, nil
	}

	workers := runtime.GOMAXPROCS(0)
	if workers > n {
		workers = n
	}
	if workers < 1 {
		workers = 1
	}
	chunkSize := (n + workers - 1) / workers

	type chunkBest struct {
		idx  int
		mass uint32
		ok   bool
	}
	results := make([]chunkBest, workers)

	var g errgroup.Group
	for w := 0; w < workers; w++ {
		w := w
		g.Go(func() error {
			start := w * chunkSize
			if start >= n {
				return nil
			}
			end := start + chunkSize
			if end > n {
				end = n
			}
			best := start
			for i := start + 1; i < end; i++ {
				if entries[i].Mass > entries[best].Mass {
					best = i
				}
			}
			results[w] = chunkBest{idx: best, mass: entries[best].Mass, ok: true}
			return nil
		})
	}
	// Chunked reduction never fails: there is nothing to wait on but the
	// workers themselves, so the error return is always nil.
	_ = g.Wait()

	winner := -1
	for _, r := range results {
		if !r.ok {
			continue
		}
		if winner == -1 || r.mass > entries[winner].Mass {
			winner = r.idx
		}
	}
	return winner, nil
}
