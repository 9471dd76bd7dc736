/*
 * ordered.go, part of gopsfgen
 *
 * Copyright 2025 Raul Mera Adasme <rmera_changeforat_chem-dot-helsinki-dot-fi>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License  as published by
 * the Free Software Foundation; either version 2.1 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General Public License
 * along with this program; if not, write to the Free Software
 * Foundation, Inc., 51 Franklin Street, Fifth Floor, Boston,
 * MA 02110-1301, USA.
 */

package mol

import "slices"

// OrderedMap is a map that remembers the order in which its keys were inserted.
type OrderedMap[K comparable, V any] struct {
	keys []K
	vals map[K]V
}

func NewOrderedMap[K comparable, V any]() *OrderedMap[K, V] {
	return &OrderedMap[K, V]{vals: make(map[K]V)}
}

func (O *OrderedMap[K, V]) Len() int { return len(O.keys) }

func (O *OrderedMap[K, V]) Get(k K) (V, bool) {
	v, ok := O.vals[k]
	return v, ok
}

// Set stores v under k. A new key goes to the end of the order,
// an existing one keeps its place.
func (O *OrderedMap[K, V]) Set(k K, v V) {
	if _, ok := O.vals[k]; !ok {
		O.keys = append(O.keys, k)
	}
	O.vals[k] = v
}

// Delete removes k, if present, and returns true if it was.
func (O *OrderedMap[K, V]) Delete(k K) bool {
	if _, ok := O.vals[k]; !ok {
		return false
	}
	delete(O.vals, k)
	O.keys = slices.DeleteFunc(O.keys, func(x K) bool { return x == k })
	return true
}

// Rekey changes the key of an element keeping its place in the order.
// It returns false if old is absent or new is already used.
func (O *OrderedMap[K, V]) Rekey(old, new K) bool {
	v, ok := O.vals[old]
	if !ok {
		return false
	}
	if old == new {
		return true
	}
	if _, taken := O.vals[new]; taken {
		return false
	}
	delete(O.vals, old)
	O.vals[new] = v
	O.keys[slices.Index(O.keys, old)] = new
	return true
}

// Index returns the position of k in the order, or -1.
func (O *OrderedMap[K, V]) Index(k K) int {
	if _, ok := O.vals[k]; !ok {
		return -1
	}
	return slices.Index(O.keys, k)
}

// At returns the value at position i of the order.
func (O *OrderedMap[K, V]) At(i int) V { return O.vals[O.keys[i]] }

// Values returns the values in insertion order.
func (O *OrderedMap[K, V]) Values() []V {
	ret := make([]V, 0, len(O.keys))
	for _, k := range O.keys {
		ret = append(ret, O.vals[k])
	}
	return ret
}
