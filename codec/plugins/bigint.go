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
	"math/big"

	lcdc "github.com/TNO-MPC/communication/codec"
)

// bigIntToBytes encodes n as little-endian two's complement, with byte
// length ⌈(bit_length+8)/8⌉ so the sign bit always has room regardless of
// magnitude (spec.md §4.1 "integers of arbitrary magnitude").
func bigIntToBytes(n *big.Int) []byte {
	nbytes := (n.BitLen() + 8 + 7) / 8

	mod := new(big.Int).Lsh(big.NewInt(1), uint(nbytes*8))
	v := new(big.Int).Mod(n, mod)

	be := v.Bytes()
	buf := make([]byte, nbytes)
	for i, b := range be {
		buf[len(be)-1-i] = b
	}

	return buf
}

// bigIntFromBytes inverts bigIntToBytes.
func bigIntFromBytes(b []byte) *big.Int {
	n := len(b)
	be := make([]byte, n)
	for i, c := range b {
		be[n-1-i] = c
	}

	v := new(big.Int).SetBytes(be)
	if n > 0 && b[n-1]&0x80 != 0 {
		mod := new(big.Int).Lsh(big.NewInt(1), uint(n*8))
		v.Sub(v, mod)
	}

	return v
}

func init() {
	lcdc.RegisterBuiltin("Int",
		func(v any, opts lcdc.Options) (any, error) {
			switch n := v.(type) {
			case *big.Int:
				return bigIntToBytes(n), nil
			case big.Int:
				return bigIntToBytes(&n), nil
			default:
				return nil, ErrorBadPayload.Error(nil)
			}
		},
		func(data any, opts lcdc.Options) (any, error) {
			b, ok := data.([]byte)
			if !ok {
				return nil, ErrorBadPayload.Error(nil)
			}
			return bigIntFromBytes(b), nil
		},
	)
}
