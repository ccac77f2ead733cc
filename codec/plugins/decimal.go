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
	"github.com/shopspring/decimal"

	lcdc "github.com/TNO-MPC/communication/codec"
)

func init() {
	lcdc.RegisterBuiltin("Decimal",
		func(v any, opts lcdc.Options) (any, error) {
			d, ok := v.(decimal.Decimal)
			if !ok {
				p, ok2 := v.(*decimal.Decimal)
				if !ok2 {
					return nil, ErrorBadPayload.Error(nil)
				}
				d = *p
			}
			return d.MarshalBinary()
		},
		func(data any, opts lcdc.Options) (any, error) {
			raw, ok := data.([]byte)
			if !ok {
				return nil, ErrorBadPayload.Error(nil)
			}
			var d decimal.Decimal
			if err := d.UnmarshalBinary(raw); err != nil {
				return nil, err
			}
			return d, nil
		},
	)
}
