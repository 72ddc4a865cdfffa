package jsonpatch

import "fmt"

type intOption struct {
	value int
	set   bool
}

func (o intOption) resolved() int {
	if !o.set {
		return 0
	}
	return o.value
}

// ApplyOptions configures patch application limits and leniency.
// The zero value applies patches with strict RFC 6902 semantics and no limits.
type ApplyOptions struct {
	maxOperations        intOption
	maxCopySize          intOption
	allowMissingRemove   bool
	createMissingParents bool
}

type resolvedApplyOptions struct {
	maxOperations        int
	maxCopySize          int
	allowMissingRemove   bool
	createMissingParents bool
}

// NewApplyOptions returns a default, valid apply options value.
func NewApplyOptions() ApplyOptions {
	return ApplyOptions{}
}

// Validate validates apply options values.
func (o ApplyOptions) Validate() error {
	_, err := o.withDefaults()
	return err
}

// WithMaxOperations limits the number of operations in a patch (0 means unlimited).
func (o ApplyOptions) WithMaxOperations(value int) ApplyOptions {
	o.maxOperations = intOption{value: value, set: true}
	return o
}

// WithMaxCopySize limits the accumulated canonical size of values
// duplicated by "copy" operations (0 means unlimited).
func (o ApplyOptions) WithMaxCopySize(value int) ApplyOptions {
	o.maxCopySize = intOption{value: value, set: true}
	return o
}

// WithAllowMissingRemove makes "remove" of an absent object member or
// array index a no-op instead of an error.
func (o ApplyOptions) WithAllowMissingRemove(value bool) ApplyOptions {
	o.allowMissingRemove = value
	return o
}

// WithCreateMissingParents makes "add" create absent intermediate
// object members instead of failing.
func (o ApplyOptions) WithCreateMissingParents(value bool) ApplyOptions {
	o.createMissingParents = value
	return o
}

func (o ApplyOptions) withDefaults() (resolvedApplyOptions, error) {
	maxOperations := o.maxOperations.resolved()
	if maxOperations < 0 {
		return resolvedApplyOptions{}, fmt.Errorf("max operations must be >= 0, got %d", maxOperations)
	}
	maxCopySize := o.maxCopySize.resolved()
	if maxCopySize < 0 {
		return resolvedApplyOptions{}, fmt.Errorf("max copy size must be >= 0, got %d", maxCopySize)
	}
	return resolvedApplyOptions{
		maxOperations:        maxOperations,
		maxCopySize:          maxCopySize,
		allowMissingRemove:   o.allowMissingRemove,
		createMissingParents: o.createMissingParents,
	}, nil
}
