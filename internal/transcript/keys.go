// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package transcript

import (
	"strconv"
	"sync/atomic"
)

// KeyAllocator hands out unit keys. Keys are unique for the allocator's
// lifetime and never reused. It is safe for concurrent use.
type KeyAllocator struct {
	next atomic.Uint64
}

// Next returns a new key of the form k-<n>.
func (a *KeyAllocator) Next() string {
	n := a.next.Add(1) - 1
	return "k-" + strconv.FormatUint(n, 10)
}

// processKeys is shared by every State created with NewState, so keys are
// unique across sessions in one process.
var processKeys KeyAllocator
