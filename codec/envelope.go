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

package codec

import (
	"fmt"
	"reflect"

	"github.com/ugorji/go/codec"

	liberr "github.com/TNO-MPC/communication/errors"
)

// SerializedValue is the {type, data} tag the codec wraps a registered
// leaf in during serialization, and recognizes during deserialization.
type SerializedValue struct {
	Type string `codec:"type"`
	Data any    `codec:"data"`
}

// OptionMask is the wire-codec option bitmask a ClientHandler carries;
// broadcast derives a single mask by ANDing the selected handlers' masks.
type OptionMask uint32

const (
	// OptionAllowNonStringKeys permits mapping keys that are not strings
	// (ints, etc) to survive the round trip instead of being coerced.
	OptionAllowNonStringKeys OptionMask = 1 << iota
)

func handle(mask OptionMask) *codec.MsgpackHandle {
	h := &codec.MsgpackHandle{}
	h.MapType = reflect.TypeOf(map[string]any{})
	h.RawToString = true
	if mask&OptionAllowNonStringKeys != 0 {
		h.MapType = reflect.TypeOf(map[any]any{})
	}
	return h
}

func typeName(v any) string {
	t := reflect.TypeOf(v)
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t == nil {
		return ""
	}
	return t.Name()
}

// opaqueSerialize/opaqueDeserialize back the fallback-to-opaque path: a
// last-resort, lossy textual representation used only when the caller
// explicitly opts in and no registered codec applies.
func opaqueSerialize(v any) SerializedValue {
	return SerializedValue{Type: "__opaque__", Data: fmt.Sprintf("%+v", v)}
}

// Pack forms the envelope record {object: v, id: msg_id}, recursively
// wrapping any leaf whose type has a registered codec, and hands the
// result to the wire codec (spec.md §4.2 Pack).
func Pack(reg *Registry, v any, id MessageId, fallbackToOpaque bool, mask OptionMask, opts Options) ([]byte, liberr.Error) {
	obj, err := serializeValue(reg, v, fallbackToOpaque, opts)
	if err != nil {
		return nil, err
	}

	rec := map[string]any{"object": obj}
	if id.IsString() {
		rec["id"] = id.Raw()
	} else {
		rec["id"] = id.Int()
	}

	var buf []byte
	enc := codec.NewEncoderBytes(&buf, handle(mask))
	if e := enc.Encode(rec); e != nil {
		return nil, ErrorPackError.Error(e)
	}

	return buf, nil
}

// Unpack parses bytes into the envelope record and recursively
// deserializes the object field (spec.md §4.2 Unpack).
func Unpack(reg *Registry, data []byte, fallbackToOpaque bool, mask OptionMask, opts Options) (MessageId, any, liberr.Error) {
	var rec map[string]any

	dec := codec.NewDecoderBytes(data, handle(mask))
	if e := dec.Decode(&rec); e != nil {
		return MessageId{}, nil, ErrorUnpackError.Error(e)
	}

	id, lerr := decodeMessageId(rec["id"])
	if lerr != nil {
		return MessageId{}, nil, lerr
	}

	obj, err := deserializeValue(reg, rec["object"], opts)
	if err != nil {
		return MessageId{}, nil, err
	}

	return id, obj, nil
}

func decodeMessageId(raw any) (MessageId, liberr.Error) {
	switch v := raw.(type) {
	case string:
		return NewMessageIdString(v), nil
	case int64:
		return NewMessageIdInt(v), nil
	case int:
		return NewMessageIdInt(int64(v)), nil
	case uint64:
		return NewMessageIdInt(int64(v)), nil
	default:
		return MessageId{}, ErrorUnpackError.Error(nil)
	}
}

func serializeValue(reg *Registry, v any, fallbackToOpaque bool, opts Options) (any, liberr.Error) {
	if v == nil {
		return nil, nil
	}

	switch x := v.(type) {
	case string, bool, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64, []byte:
		return x, nil
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			se, err := serializeValue(reg, e, fallbackToOpaque, opts)
			if err != nil {
				return nil, err
			}
			out[k] = se
		}
		return out, nil
	case map[any]any:
		out := make(map[any]any, len(x))
		for k, e := range x {
			sk, err := serializeValue(reg, k, fallbackToOpaque, opts)
			if err != nil {
				return nil, err
			}
			se, err := serializeValue(reg, e, fallbackToOpaque, opts)
			if err != nil {
				return nil, err
			}
			out[sk] = se
		}
		return out, nil
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			se, err := serializeValue(reg, e, fallbackToOpaque, opts)
			if err != nil {
				return nil, err
			}
			out[i] = se
		}
		return out, nil
	}

	name := typeName(v)
	if ser, _, ok := reg.Lookup(name); ok {
		payload, e := ser(v, opts)
		if e != nil {
			return nil, ErrorPackError.Error(e)
		}
		sp, err := serializeValue(reg, payload, fallbackToOpaque, opts)
		if err != nil {
			return nil, err
		}
		return SerializedValue{Type: name, Data: sp}, nil
	}

	if fallbackToOpaque {
		return opaqueSerialize(v), nil
	}

	return nil, ErrorNoSerializerError.Error(nil)
}

func deserializeValue(reg *Registry, v any, opts Options) (any, liberr.Error) {
	switch x := v.(type) {
	case map[string]any:
		if t, ok := x["type"]; ok && len(x) == 2 {
			if _, ok2 := x["data"]; ok2 {
				return deserializeTagged(reg, t, x["data"], opts)
			}
		}
		out := make(map[string]any, len(x))
		for k, e := range x {
			de, err := deserializeValue(reg, e, opts)
			if err != nil {
				return nil, err
			}
			out[k] = de
		}
		return out, nil
	case map[any]any:
		if t, ok := x["type"]; ok && len(x) == 2 {
			if d, ok2 := x["data"]; ok2 {
				return deserializeTagged(reg, t, d, opts)
			}
		}
		out := make(map[any]any, len(x))
		for k, e := range x {
			dk, err := deserializeValue(reg, k, opts)
			if err != nil {
				return nil, err
			}
			de, err := deserializeValue(reg, e, opts)
			if err != nil {
				return nil, err
			}
			out[dk] = de
		}
		return out, nil
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			de, err := deserializeValue(reg, e, opts)
			if err != nil {
				return nil, err
			}
			out[i] = de
		}
		return out, nil
	default:
		return x, nil
	}
}

func deserializeTagged(reg *Registry, rawType any, data any, opts Options) (any, liberr.Error) {
	typeStr, ok := rawType.(string)
	if !ok {
		return nil, ErrorUnpackError.Error(nil)
	}

	if typeStr == "__opaque__" {
		return data, nil
	}

	if dm, ok := data.(map[string]any); ok {
		dv, err := deserializeValue(reg, dm, opts)
		if err != nil {
			return nil, err
		}
		data = dv
	} else if dm, ok := data.(map[any]any); ok {
		dv, err := deserializeValue(reg, dm, opts)
		if err != nil {
			return nil, err
		}
		data = dv
	}

	_, des, ok := reg.Lookup(typeStr)
	if !ok {
		return nil, ErrorNoDeserializerError.Error(nil)
	}

	v, e := des(data, opts)
	if e != nil {
		return nil, ErrorUnpackError.Error(e)
	}

	return v, nil
}
