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

package plugins_test

import (
	"math/big"

	"github.com/bits-and-blooms/bitset"
	"github.com/shopspring/decimal"

	lcdc "github.com/TNO-MPC/communication/codec"
	"github.com/TNO-MPC/communication/codec/plugins"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Built-in codec plugins", func() {
	var reg *lcdc.Registry

	BeforeEach(func() {
		reg = lcdc.NewRegistry()
		reg.Clear(true)
	})

	It("round-trips a 2^1024-magnitude integer", func() {
		n := new(big.Int).Lsh(big.NewInt(1), 1024)

		b, err := lcdc.Pack(reg, n, lcdc.NewMessageIdInt(1), false, 0, lcdc.Options{})
		Expect(err).To(BeNil())

		_, v, uerr := lcdc.Unpack(reg, b, false, 0, lcdc.Options{})
		Expect(uerr).To(BeNil())
		Expect(v.(*big.Int).Cmp(n)).To(Equal(0))
	})

	It("round-trips a negative integer", func() {
		n := big.NewInt(-12345)

		b, err := lcdc.Pack(reg, n, lcdc.NewMessageIdInt(1), false, 0, lcdc.Options{})
		Expect(err).To(BeNil())

		_, v, uerr := lcdc.Unpack(reg, b, false, 0, lcdc.Options{})
		Expect(uerr).To(BeNil())
		Expect(v.(*big.Int).Cmp(n)).To(Equal(0))
	})

	It("round-trips a tuple", func() {
		t := plugins.Tuple{"a", int64(1), true}

		b, err := lcdc.Pack(reg, t, lcdc.NewMessageIdInt(1), false, 0, lcdc.Options{})
		Expect(err).To(BeNil())

		_, v, uerr := lcdc.Unpack(reg, b, false, 0, lcdc.Options{})
		Expect(uerr).To(BeNil())
		Expect(v).To(Equal(plugins.Tuple{"a", int64(1), true}))
	})

	It("round-trips a zero-dimensional scalar array", func() {
		a := plugins.NDArray{Shape: []int{}, Values: []any{int64(42)}}

		b, err := lcdc.Pack(reg, a, lcdc.NewMessageIdInt(1), false, 0, lcdc.Options{})
		Expect(err).To(BeNil())

		_, v, uerr := lcdc.Unpack(reg, b, false, 0, lcdc.Options{})
		Expect(uerr).To(BeNil())
		got := v.(plugins.NDArray)
		Expect(got.Shape).To(BeEmpty())
		Expect(got.Values).To(Equal([]any{int64(42)}))
	})

	It("round-trips an empty array with a non-scalar shape", func() {
		a := plugins.NDArray{Shape: []int{0, 3}, Values: []any{}}

		b, err := lcdc.Pack(reg, a, lcdc.NewMessageIdInt(1), false, 0, lcdc.Options{})
		Expect(err).To(BeNil())

		_, v, uerr := lcdc.Unpack(reg, b, false, 0, lcdc.Options{})
		Expect(uerr).To(BeNil())
		got := v.(plugins.NDArray)
		Expect(got.Shape).To(Equal([]int{0, 3}))
		Expect(got.Values).To(BeEmpty())
	})

	It("round-trips the dataframe fallback record", func() {
		df := plugins.DataFrame{
			Columns: []string{"a", "b"},
			Index:   []any{int64(0), int64(1)},
			Data:    [][]any{{int64(1), int64(2)}, {int64(3), int64(4)}},
		}

		b, err := lcdc.Pack(reg, df, lcdc.NewMessageIdInt(1), false, 0, lcdc.Options{})
		Expect(err).To(BeNil())

		_, v, uerr := lcdc.Unpack(reg, b, false, 0, lcdc.Options{})
		Expect(uerr).To(BeNil())
		Expect(v).To(Equal(df))
	})

	It("round-trips a bitset", func() {
		bs := bitset.New(64)
		bs.Set(3).Set(40)

		b, err := lcdc.Pack(reg, bs, lcdc.NewMessageIdInt(1), false, 0, lcdc.Options{})
		Expect(err).To(BeNil())

		_, v, uerr := lcdc.Unpack(reg, b, false, 0, lcdc.Options{})
		Expect(uerr).To(BeNil())
		got := v.(*bitset.BitSet)
		Expect(got.Test(3)).To(BeTrue())
		Expect(got.Test(40)).To(BeTrue())
		Expect(got.Test(5)).To(BeFalse())
	})

	It("round-trips an arbitrary-precision decimal", func() {
		d := decimal.RequireFromString("123456789012345678901234567890.123456789")

		b, err := lcdc.Pack(reg, d, lcdc.NewMessageIdInt(1), false, 0, lcdc.Options{})
		Expect(err).To(BeNil())

		_, v, uerr := lcdc.Unpack(reg, b, false, 0, lcdc.Options{})
		Expect(uerr).To(BeNil())
		Expect(v.(decimal.Decimal).Equal(d)).To(BeTrue())
	})
})
