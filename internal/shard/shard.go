// Package shard spreads the items of a logical domain over several SimpleDB
// domains.
package shard

import (
	"fmt"
	"hash/fnv"
)

// MaxShards bounds how many physical domains a logical domain may span.
const MaxShards = 256

// Domain returns the physical domain holding itemName.
// With numShards<=1 the item stays in base.
// With numShards>1, items are distributed across base-00, base-01, ... by item name hash.
func Domain(base, itemName string, numShards int) string {
	numShards = clamp(numShards)
	if numShards == 1 {
		return base
	}
	h := fnv.New32a()
	h.Write([]byte(itemName))
	return name(base, h.Sum32()%uint32(numShards))
}

// Domains lists every physical domain of base in shard order.
func Domains(base string, numShards int) []string {
	numShards = clamp(numShards)
	if numShards == 1 {
		return []string{base}
	}
	out := make([]string, numShards)
	for i := range out {
		out[i] = name(base, uint32(i))
	}
	return out
}

func name(base string, shard uint32) string {
	return fmt.Sprintf("%s-%02x", base, shard)
}

func clamp(n int) int {
	if n < 1 {
		return 1
	}
	if n > MaxShards {
		return MaxShards
	}
	return n
}
