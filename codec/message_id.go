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

import "strconv"

// MessageId is a tagged sum of a string or a non-negative integer. The two
// forms are never coerced into each other: a string id "7" and an integer
// id 7 are distinct keys throughout the transport.
type MessageId struct {
	str   string
	num   int64
	isStr bool
}

// NewMessageIdString builds a string-tagged MessageId.
func NewMessageIdString(id string) MessageId {
	return MessageId{str: id, isStr: true}
}

// NewMessageIdInt builds an integer-tagged MessageId.
func NewMessageIdInt(id int64) MessageId {
	return MessageId{num: id, isStr: false}
}

// IsString reports whether this id carries its string tag.
func (m MessageId) IsString() bool {
	return m.isStr
}

// Int returns the integer value. Only meaningful when IsString is false.
func (m MessageId) Int() int64 {
	return m.num
}

// Raw returns the string value if string-tagged, the decimal
// representation of the integer value otherwise.
func (m MessageId) Raw() string {
	if m.isStr {
		return m.str
	}
	return strconv.FormatInt(m.num, 10)
}

// WithPrefix applies a per-pool prefix to a numeric id by string
// concatenation, turning it into a string id (prefix ++ decimal
// representation). An empty prefix, or an id that is already
// string-tagged, leaves the id unchanged — the prefix only ever
// stringifies a numeric id, it never re-prefixes a string one (spec.md
// §4.3 send/recv step 1: "if the prefix is set and the id is numeric").
func (m MessageId) WithPrefix(prefix string) MessageId {
	if prefix == "" || m.isStr {
		return m
	}
	return NewMessageIdString(prefix + m.Raw())
}

// key is the comparable value used to index the codec's inbound buffers: a
// string id and an integer id never collide even when their decimal forms
// match, because the key carries the tag.
type key struct {
	s string
	n int64
	t bool
}

// Key returns the comparable lookup key for this id.
func (m MessageId) Key() key {
	return key{s: m.str, n: m.num, t: m.isStr}
}

func (m MessageId) String() string {
	if m.isStr {
		return m.str
	}
	return strconv.FormatInt(m.num, 10)
}
