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

package simulation

import "errors"

var (
	// ErrMailbox is returned when a message could not be delivered to a
	// peer or its response could not be retrieved.
	ErrMailbox = errors.New("simulation: mailbox delivery failed")

	// ErrResponse is a deliberate simulated failure returned by a node's
	// EntryRequest handler, gated by its configured fault rate.
	ErrResponse = errors.New("simulation: simulated response failure")
)
