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
	"github.com/bits-and-blooms/bitset"

	lcdc "github.com/TNO-MPC/communication/codec"
)

func init() {
	lcdc.RegisterBuiltin("BitSet",
		func(v any, opts lcdc.Options) (any, error) {
			b, ok := v.(*bitset.BitSet)
			if !ok {
				return nil, ErrorBadPayload.Error(nil)
			}
			raw, err := b.MarshalBinary()
			if err != nil {
				return nil, err
			}
			return raw, nil
		},
		func(data any, opts lcdc.Options) (any, error) {
			raw, ok := data.([]byte)
			if !ok {
				return nil, ErrorBadPayload.Error(nil)
			}
			b := &bitset.BitSet{}
			if err := b.UnmarshalBinary(raw); err != nil {
				return nil, err
			}
			return b, nil
		},
	)
}
