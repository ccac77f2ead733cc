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

import "github.com/TNO-MPC/communication/errors"

const (
	ErrorAlreadyRegistered errors.CodeError = iota + errors.MinPkgCodec
	ErrorSignatureError
	ErrorAnnotationError
	ErrorNoSerializerError
	ErrorPackError
	ErrorUnpackError
	ErrorNoDeserializerError
)

var isCodeError = false

func IsCodeError() bool {
	return isCodeError
}

func init() {
	isCodeError = errors.ExistInMapMessage(ErrorAlreadyRegistered)
	errors.RegisterIdFctMessage(ErrorAlreadyRegistered, getMessage)
}

func getMessage(code errors.CodeError) (message string) {
	switch code {
	case errors.UNK_ERROR:
		return ""
	case ErrorAlreadyRegistered:
		return "type is already registered, use overwrite to replace it"
	case ErrorSignatureError:
		return "serializer or deserializer does not have the required call signature"
	case ErrorAnnotationError:
		return "serializer and deserializer type annotations do not agree"
	case ErrorNoSerializerError:
		return "no serializer registered for this type and fallback-to-opaque is disabled"
	case ErrorPackError:
		return "wire codec rejected the envelope"
	case ErrorUnpackError:
		return "bytes do not form a valid envelope"
	case ErrorNoDeserializerError:
		return "no deserializer registered for this type"
	}

	return ""
}
