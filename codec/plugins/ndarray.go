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

package plugins

import (
	lcdc "github.com/TNO-MPC/communication/codec"
)

// NDArray is an n-dimensional homogeneous array. Shape holds the extent of
// each dimension; Values holds the elements in row-major (nested-list)
// order matching Shape. A zero-length Shape represents a zero-dimensional
// scalar (Values holds exactly one element); a zero-length Values
// represents an empty array of the given (non-scalar) Shape.
type NDArray struct {
	Shape  []int
	Values []any
}

func init() {
	lcdc.RegisterBuiltin("NDArray",
		func(v any, opts lcdc.Options) (any, error) {
			a, ok := v.(NDArray)
			if !ok {
				p, ok2 := v.(*NDArray)
				if !ok2 {
					return nil, ErrorBadPayload.Error(nil)
				}
				a = *p
			}

			shape := make([]any, len(a.Shape))
			for i, s := range a.Shape {
				shape[i] = s
			}

			return map[string]any{"values": a.Values, "shape": shape}, nil
		},
		func(data any, opts lcdc.Options) (any, error) {
			m, ok := data.(map[string]any)
			if !ok {
				return nil, ErrorBadPayload.Error(nil)
			}

			rawShape, _ := m["shape"].([]any)
			shape := make([]int, len(rawShape))
			for i, s := range rawShape {
				n, ok := asInt(s)
				if !ok {
					return nil, ErrorBadPayload.Error(nil)
				}
				shape[i] = n
			}

			values, _ := m["values"].([]any)

			return NDArray{Shape: shape, Values: values}, nil
		},
	)
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case uint64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}
