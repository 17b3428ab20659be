// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package transcript

// =============================================================================
// LIST
// =============================================================================

// List mirrors a State's unit sequence on the consumer side. It is built
// purely from Changes, so a renderer on another goroutine never needs to
// touch the State.
type List struct {
	units []*Unit
	index map[string]int
}

// NewList creates an empty list.
func NewList() *List {
	return &List{index: make(map[string]int)}
}

// Apply applies changes in order and returns the positions that changed.
// A change for a known key replaces in place whatever its Op; a change for
// an unknown key appends.
func (l *List) Apply(changes []Change) []int {
	touched := make([]int, 0, len(changes))
	for _, c := range changes {
		if c.Unit == nil {
			continue
		}
		if i, ok := l.index[c.Key]; ok {
			l.units[i] = c.Unit
			touched = append(touched, i)
			continue
		}
		l.index[c.Key] = len(l.units)
		l.units = append(l.units, c.Unit)
		touched = append(touched, len(l.units)-1)
	}
	return touched
}

// Units returns the units in display order. The slice is a copy.
func (l *List) Units() []*Unit {
	out := make([]*Unit, len(l.units))
	copy(out, l.units)
	return out
}

// Len returns the number of units.
func (l *List) Len() int {
	return len(l.units)
}

// Get returns the unit stored at key, or nil.
func (l *List) Get(key string) *Unit {
	if i, ok := l.index[key]; ok {
		return l.units[i]
	}
	return nil
}

// Reset empties the list.
func (l *List) Reset() {
	l.units = nil
	l.index = make(map[string]int)
}
