/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package codec implements the envelope codec (pack/unpack of an
// {object, id} record) and the extensible per-type codec registry that
// backs it. The registry maps a type's simple name to a serializer /
// deserializer pair; the envelope codec walks containers structurally and
// dispatches to the registry on any leaf the wire codec cannot natively
// represent.
package codec

import (
	"reflect"
	"sync"

	liberr "github.com/TNO-MPC/communication/errors"
)

// Options is the extra named-options bag forwarded verbatim to nested
// codec calls. Origin carries the opaque handle (a *peer.Handler on the
// receive path) unchanged; custom codecs may read it but are never
// required to resolve it to anything stable.
type Options struct {
	Origin any
	Extra  map[string]any
}

// SerializeFunc turns a value into a wire payload (any JSON/msgpack-shaped
// value: bytes, a map, or a structural container of further codec-native
// values).
type SerializeFunc func(v any, opts Options) (any, error)

// DeserializeFunc reconstructs a value from a wire payload produced by the
// matching SerializeFunc.
type DeserializeFunc func(data any, opts Options) (any, error)

// Serializable is implemented by types that provide their own codec pair;
// RegisterType uses this interface instead of requiring two free functions.
type Serializable interface {
	SerializeValue(opts Options) (any, error)
}

// Deserializable is the reconstruction half of Serializable. A pointer
// receiver is expected so DeserializeValue can populate the zero value in
// place.
type Deserializable interface {
	DeserializeValue(data any, opts Options) error
}

type codecPair struct {
	ser SerializeFunc
	des DeserializeFunc
}

// Registry stores and looks up serializer/deserializer pairs by type name.
// A Registry is safe for concurrent use.
type Registry struct {
	m sync.RWMutex
	c map[string]codecPair
}

// NewRegistry returns an empty registry. Call Clear(true) on it to load
// the built-in codecs.
func NewRegistry() *Registry {
	return &Registry{c: make(map[string]codecPair)}
}

// Register binds a serializer/deserializer pair to one or more type names.
//
// When checkSignatures is true, both functions must be non-nil (a pair
// with only one half defined cannot round-trip and is rejected with
// AnnotationError — the Go analogue of the spec's annotation-agreement
// check, since Go's static typing already guarantees the accepted/returned
// shapes agree at compile time).
//
// Without overwrite, registering a type name that already has a pair
// raises AlreadyRegistered.
func (r *Registry) Register(ser SerializeFunc, des DeserializeFunc, checkSignatures, overwrite bool, types ...string) liberr.Error {
	if len(types) == 0 {
		return ErrorSignatureError.Error(nil)
	}

	if checkSignatures {
		if ser == nil || des == nil {
			return ErrorAnnotationError.Error(nil)
		}
	}

	r.m.Lock()
	defer r.m.Unlock()

	for _, t := range types {
		if _, ok := r.c[t]; ok && !overwrite {
			return ErrorAlreadyRegistered.Error(nil)
		}
	}

	for _, t := range types {
		r.c[t] = codecPair{ser: ser, des: des}
	}

	return nil
}

// RegisterType registers a type using its own Serializable/Deserializable
// implementation, keyed by the type's simple (unqualified) name.
//
// sample must be the zero value of the deserialize target (typically a
// pointer, e.g. (*Point)(nil)) so its reflected type name can be derived
// and so DeserializeValue has a receiver to populate.
func (r *Registry) RegisterType(sample Deserializable, checkSignatures, overwrite bool) liberr.Error {
	t := reflect.TypeOf(sample)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	name := t.Name()

	ser := func(v any, opts Options) (any, error) {
		s, ok := v.(Serializable)
		if !ok {
			return nil, ErrorNoSerializerError.Error(nil)
		}
		return s.SerializeValue(opts)
	}

	des := func(data any, opts Options) (any, error) {
		nv := reflect.New(t).Interface()
		d, ok := nv.(Deserializable)
		if !ok {
			return nil, ErrorNoDeserializerError.Error(nil)
		}
		if e := d.DeserializeValue(data, opts); e != nil {
			return nil, e
		}
		return reflect.ValueOf(nv).Elem().Interface(), nil
	}

	return r.Register(ser, des, checkSignatures, overwrite, name)
}

// Clear empties the registry. When reloadDefaults is true, the
// built-in codecs (see codec/plugins) are re-registered immediately after.
func (r *Registry) Clear(reloadDefaults bool) {
	r.m.Lock()
	r.c = make(map[string]codecPair)
	r.m.Unlock()

	if reloadDefaults {
		for _, b := range builtins {
			_ = r.Register(b.ser, b.des, false, true, b.name)
		}
	}
}

// Lookup returns the registered pair for a type name, if any.
func (r *Registry) Lookup(typeName string) (SerializeFunc, DeserializeFunc, bool) {
	r.m.RLock()
	defer r.m.RUnlock()

	p, ok := r.c[typeName]
	if !ok {
		return nil, nil, false
	}
	return p.ser, p.des, true
}

// builtinCodec is the registration record a codec/plugins provider submits
// via RegisterBuiltin during its package init.
type builtinCodec struct {
	name string
	ser  SerializeFunc
	des  DeserializeFunc
}

var builtins []builtinCodec

// RegisterBuiltin adds a codec to the set reloaded by Clear(true). Plug-in
// packages (codec/plugins) call this from their own init() so that the
// default registry picks them up without this package importing them
// directly.
func RegisterBuiltin(name string, ser SerializeFunc, des DeserializeFunc) {
	builtins = append(builtins, builtinCodec{name: name, ser: ser, des: des})
}

// DefaultRegistry is the process-wide registry. It starts empty; a pool
// loads it with the built-in codecs (codec/plugins) via
// DefaultRegistry.Clear(true) at startup, mirroring the spec's "cleared
// and reloaded with built-ins" startup step (spec.md §4.1). Built-ins only
// appear in the builtins slice once the codec/plugins package has been
// imported (its own init() registers them), so callers must blank-import
// it before relying on Clear(true).
var DefaultRegistry = NewRegistry()
