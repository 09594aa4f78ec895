package utils

import (
	"fmt"
	"hash"
	"hash/fnv"

	"github.com/davecgh/go-spew/spew"
)

// ComputeStructHash returns a stable hash of an arbitrary struct. Spew's
// SortKeys makes the hash independent of map key order, so two
// structurally equal queries always land on the same cache key.
func ComputeStructHash(obj interface{}) string {
	hasher := fnv.New64a()
	DeepHashObject(hasher, obj)
	return fmt.Sprintf("%x", hasher.Sum64())
}

// DeepHashObject writes the object to the hasher via spew, which follows
// pointers and prints actual values of nested objects, so the hash does
// not change when a pointer does.
func DeepHashObject(hasher hash.Hash, objectToWrite interface{}) {
	hasher.Reset()
	printer := spew.ConfigState{
		Indent:         " ",
		SortKeys:       true,
		DisableMethods: true,
		SpewKeys:       true,
	}
	_, _ = printer.Fprintf(hasher, "%#v", objectToWrite)
}
