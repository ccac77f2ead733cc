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

// Tuple is a fixed-length, ordered, heterogeneous sequence — the Go stand
// in for the spec's "ordered finite tuple" (no native tuple type exists in
// Go). It serializes as a plain ordered sequence and is reconstructed as a
// Tuple of the same length.
type Tuple []any

func init() {
	lcdc.RegisterBuiltin("Tuple",
		func(v any, opts lcdc.Options) (any, error) {
			t, ok := v.(Tuple)
			if !ok {
				return nil, ErrorBadPayload.Error(nil)
			}
			return []any(t), nil
		},
		func(data any, opts lcdc.Options) (any, error) {
			seq, ok := data.([]any)
			if !ok {
				return nil, ErrorBadPayload.Error(nil)
			}
			return Tuple(seq), nil
		},
	)
}
