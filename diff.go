package jsonpatch

import (
	"fmt"
	"strconv"

	"github.com/formbird/json-patch/errors"
	"github.com/formbird/json-patch/internal/pointer"
	"github.com/formbird/json-patch/internal/value"
	"github.com/formbird/json-patch/internal/xiter"
)

// Diff computes a patch that turns left into right.
//
// The patch uses only add, remove and replace. Object members are visited
// in sorted key order: members present on both sides first, then added
// members, then removed members. Arrays are compared index by index;
// a shrinking array removes its tail one element at a time at the first
// surplus index. When the two sides have different types (including an
// array against an object) the location is replaced wholesale.
func Diff(left, right any) (Patch, error) {
	l, err := value.Normalize(left)
	if err != nil {
		return nil, fmt.Errorf("diff: left document: %w", errors.Wrap(errors.ErrUnsupportedValue, "", err))
	}
	r, err := value.Normalize(right)
	if err != nil {
		return nil, fmt.Errorf("diff: right document: %w", errors.Wrap(errors.ErrUnsupportedValue, "", err))
	}
	d := &differ{patch: Patch{}}
	d.diff(l, r)
	return d.patch, nil
}

// DiffJSON decodes two JSON documents and diffs them.
func DiffJSON(left, right []byte) (Patch, error) {
	l, err := value.DecodeJSON(left)
	if err != nil {
		return nil, fmt.Errorf("diff: left document: %w", errors.Wrap(errors.ErrDocumentDecode, "", err))
	}
	r, err := value.DecodeJSON(right)
	if err != nil {
		return nil, fmt.Errorf("diff: right document: %w", errors.Wrap(errors.ErrDocumentDecode, "", err))
	}
	d := &differ{patch: Patch{}}
	d.diff(l, r)
	return d.patch, nil
}

// differ accumulates operations while walking both documents in step.
// path is the escaped pointer of the location being compared.
type differ struct {
	path  []byte
	patch Patch
}

func (d *differ) diff(l, r any) {
	switch {
	case value.KindOf(l) != value.KindOf(r):
		d.replace(r)
	case !value.IsContainer(l):
		if !value.Equal(l, r) {
			d.replace(r)
		}
	case value.Equal(l, r):
	default:
		switch lv := l.(type) {
		case map[string]any:
			d.diffObjects(lv, r.(map[string]any))
		case []any:
			d.diffArrays(lv, r.([]any))
		}
	}
}

func (d *differ) diffObjects(l, r map[string]any) {
	for key := range xiter.SortedKeysIn(r, l) {
		mark := d.push(key)
		d.diff(l[key], r[key])
		d.pop(mark)
	}
	for key := range xiter.SortedKeysNotIn(r, l) {
		d.added(key, r[key])
	}
	for key := range xiter.SortedKeysNotIn(l, r) {
		d.removed(key)
	}
}

func (d *differ) diffArrays(l, r []any) {
	common := min(len(l), len(r))
	for i := range common {
		mark := d.push(strconv.Itoa(i))
		d.diff(l[i], r[i])
		d.pop(mark)
	}
	for i := common; i < len(r); i++ {
		d.added(strconv.Itoa(i), r[i])
	}
	// every removal shifts the remaining tail down onto the same index
	tail := strconv.Itoa(common)
	for range len(l) - common {
		d.removed(tail)
	}
}

func (d *differ) push(token string) int {
	mark := len(d.path)
	d.path = append(d.path, '/')
	d.path = pointer.AppendEscaped(d.path, token)
	return mark
}

func (d *differ) pop(mark int) {
	d.path = d.path[:mark]
}

func (d *differ) replace(v any) {
	d.patch = append(d.patch, Replace(string(d.path), v))
}

func (d *differ) added(token string, v any) {
	mark := d.push(token)
	d.patch = append(d.patch, Add(string(d.path), v))
	d.pop(mark)
}

func (d *differ) removed(token string) {
	mark := d.push(token)
	d.patch = append(d.patch, Remove(string(d.path)))
	d.pop(mark)
}
