package jsonpatch

import (
	stderrors "errors"
	"fmt"
	"slices"

	"github.com/formbird/json-patch/errors"
	"github.com/formbird/json-patch/internal/pointer"
	"github.com/formbird/json-patch/internal/value"
	"github.com/formbird/json-patch/internal/valuekey"
)

// Apply applies p to doc and returns the resulting document.
// doc is never modified; on failure no partial result is returned.
func Apply(doc any, p Patch) (any, error) {
	return ApplyWithOptions(doc, p, ApplyOptions{})
}

// ApplyWithOptions applies p to doc with explicit limits and leniency.
func ApplyWithOptions(doc any, p Patch, opts ApplyOptions) (any, error) {
	resolved, err := opts.withDefaults()
	if err != nil {
		return nil, fmt.Errorf("apply patch: %w", err)
	}
	if resolved.maxOperations > 0 && len(p) > resolved.maxOperations {
		return nil, errors.Newf(errors.ErrOperationLimit, "", "patch has %d operations, limit is %d", len(p), resolved.maxOperations)
	}
	// Normalize copies doc, so every mutation below happens on a private tree.
	working, err := value.Normalize(doc)
	if err != nil {
		return nil, errors.Wrap(errors.ErrUnsupportedValue, "", err)
	}
	a := &applier{opts: resolved}
	for i, op := range p {
		working, err = a.apply(working, op)
		if err != nil {
			return nil, attribute(err, i, op)
		}
	}
	return working, nil
}

// ApplyJSON decodes doc, applies p and encodes the result.
func (p Patch) ApplyJSON(doc []byte) ([]byte, error) {
	return p.ApplyJSONWithOptions(doc, ApplyOptions{})
}

// ApplyJSONWithOptions is ApplyJSON with explicit options.
func (p Patch) ApplyJSONWithOptions(doc []byte, opts ApplyOptions) ([]byte, error) {
	decoded, err := value.DecodeJSON(doc)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDocumentDecode, "", err)
	}
	out, err := ApplyWithOptions(decoded, p, opts)
	if err != nil {
		return nil, err
	}
	return marshalDocument(out)
}

type applier struct {
	opts   resolvedApplyOptions
	copied int
}

func (a *applier) apply(doc any, op Operation) (any, error) {
	if !op.Op.Valid() {
		return nil, errors.Newf(errors.ErrInvalidOp, op.Path, "unknown op %q", op.Op)
	}
	path, err := parsePointer(op.Path)
	if err != nil {
		return nil, err
	}

	switch op.Op {
	case OpAdd:
		v, err := value.Normalize(op.Value)
		if err != nil {
			return nil, errors.Wrap(errors.ErrUnsupportedValue, op.Path, err)
		}
		return a.add(doc, path, v)
	case OpRemove:
		return a.remove(doc, path)
	case OpReplace:
		v, err := value.Normalize(op.Value)
		if err != nil {
			return nil, errors.Wrap(errors.ErrUnsupportedValue, op.Path, err)
		}
		return a.replace(doc, path, v)
	case OpMove:
		from, err := parsePointer(op.From)
		if err != nil {
			return nil, err
		}
		return a.move(doc, from, path)
	case OpCopy:
		from, err := parsePointer(op.From)
		if err != nil {
			return nil, err
		}
		return a.copy(doc, from, path)
	default:
		v, err := value.Normalize(op.Value)
		if err != nil {
			return nil, errors.Wrap(errors.ErrUnsupportedValue, op.Path, err)
		}
		return doc, a.test(doc, path, v)
	}
}

func (a *applier) add(doc any, path pointer.Pointer, v any) (any, error) {
	if path.IsRoot() {
		return v, nil
	}
	return a.update(doc, path, 0, a.opts.createMissingParents, func(parent any, token string) (any, error) {
		switch c := parent.(type) {
		case map[string]any:
			c[token] = v
			return c, nil
		case []any:
			idx, err := pointer.ArrayIndex(token, len(c), true)
			if err != nil {
				return nil, indexError(path, err)
			}
			return slices.Insert(c, idx, v), nil
		default:
			return nil, notContainer(path.Parent(), parent)
		}
	})
}

func (a *applier) remove(doc any, path pointer.Pointer) (any, error) {
	if path.IsRoot() {
		return nil, errors.New(errors.ErrRemoveRoot, "cannot remove the document root", "")
	}
	return a.update(doc, path, 0, false, func(parent any, token string) (any, error) {
		switch c := parent.(type) {
		case map[string]any:
			if _, ok := c[token]; !ok {
				if a.opts.allowMissingRemove {
					return c, nil
				}
				return nil, memberNotFound(path)
			}
			delete(c, token)
			return c, nil
		case []any:
			idx, err := pointer.ArrayIndex(token, len(c), false)
			if err != nil {
				if a.opts.allowMissingRemove && stderrors.Is(err, pointer.ErrIndexRange) {
					return c, nil
				}
				return nil, indexError(path, err)
			}
			return slices.Delete(c, idx, idx+1), nil
		default:
			return nil, notContainer(path.Parent(), parent)
		}
	})
}

func (a *applier) replace(doc any, path pointer.Pointer, v any) (any, error) {
	if path.IsRoot() {
		return v, nil
	}
	return a.update(doc, path, 0, false, func(parent any, token string) (any, error) {
		switch c := parent.(type) {
		case map[string]any:
			if _, ok := c[token]; !ok {
				return nil, memberNotFound(path)
			}
			c[token] = v
			return c, nil
		case []any:
			idx, err := pointer.ArrayIndex(token, len(c), false)
			if err != nil {
				return nil, indexError(path, err)
			}
			c[idx] = v
			return c, nil
		default:
			return nil, notContainer(path.Parent(), parent)
		}
	})
}

func (a *applier) move(doc any, from, path pointer.Pointer) (any, error) {
	if from.Equal(path) {
		if _, err := get(doc, from); err != nil {
			return nil, err
		}
		return doc, nil
	}
	if path.HasPrefix(from) {
		return nil, errors.Newf(errors.ErrMoveIntoDescendant, path.String(), "cannot move %q into its own descendant", from.String())
	}
	v, err := get(doc, from)
	if err != nil {
		return nil, err
	}
	doc, err = a.remove(doc, from)
	if err != nil {
		return nil, err
	}
	return a.add(doc, path, v)
}

func (a *applier) copy(doc any, from, path pointer.Pointer) (any, error) {
	v, err := get(doc, from)
	if err != nil {
		return nil, err
	}
	if a.opts.maxCopySize > 0 {
		a.copied += valuekey.Size(v)
		if a.copied > a.opts.maxCopySize {
			return nil, errors.Newf(errors.ErrCopySizeExceeded, path.String(), "copied %d bytes, limit is %d", a.copied, a.opts.maxCopySize)
		}
	}
	return a.add(doc, path, value.Clone(v))
}

func (a *applier) test(doc any, path pointer.Pointer, want any) error {
	got, err := get(doc, path)
	if err != nil {
		return err
	}
	if !value.Equal(got, want) {
		return errors.Newf(errors.ErrTestFailed, path.String(), "value is %s, expected %s", describe(got), describe(want))
	}
	return nil
}

// update walks to the parent of path and lets leaf modify it. Each
// container on the way is written back, since inserting into or deleting
// from an array may produce a new slice header.
func (a *applier) update(node any, path pointer.Pointer, depth int, createParents bool, leaf func(parent any, token string) (any, error)) (any, error) {
	if depth == len(path)-1 {
		return leaf(node, path[depth])
	}
	token := path[depth]
	switch c := node.(type) {
	case map[string]any:
		child, ok := c[token]
		if !ok {
			if !createParents {
				return nil, memberNotFound(path[:depth+1])
			}
			child = map[string]any{}
		}
		updated, err := a.update(child, path, depth+1, createParents, leaf)
		if err != nil {
			return nil, err
		}
		c[token] = updated
		return c, nil
	case []any:
		idx, err := pointer.ArrayIndex(token, len(c), false)
		if err != nil {
			return nil, indexError(path[:depth+1], err)
		}
		updated, err := a.update(c[idx], path, depth+1, createParents, leaf)
		if err != nil {
			return nil, err
		}
		c[idx] = updated
		return c, nil
	default:
		return nil, notContainer(path[:depth], node)
	}
}

// get resolves path against doc.
func get(doc any, path pointer.Pointer) (any, error) {
	node := doc
	for depth, token := range path {
		switch c := node.(type) {
		case map[string]any:
			child, ok := c[token]
			if !ok {
				return nil, memberNotFound(path[:depth+1])
			}
			node = child
		case []any:
			idx, err := pointer.ArrayIndex(token, len(c), false)
			if err != nil {
				return nil, indexError(path[:depth+1], err)
			}
			node = c[idx]
		default:
			return nil, notContainer(path[:depth], node)
		}
	}
	return node, nil
}

func memberNotFound(path pointer.Pointer) error {
	return errors.Newf(errors.ErrPathNotFound, path.String(), "member %q not found", path.Last())
}

func notContainer(path pointer.Pointer, node any) error {
	return errors.Newf(errors.ErrPathNotFound, path.String(), "cannot traverse into %s", value.KindOf(node))
}

func indexError(path pointer.Pointer, err error) error {
	if stderrors.Is(err, pointer.ErrIndexRange) {
		return errors.Wrap(errors.ErrIndexOutOfRange, path.String(), err)
	}
	return errors.Wrap(errors.ErrInvalidIndex, path.String(), err)
}

func describe(v any) string {
	const limit = 64
	data, err := marshalDocument(v)
	if err != nil {
		return value.KindOf(v).String()
	}
	if len(data) > limit {
		return string(data[:limit]) + "..."
	}
	return string(data)
}
