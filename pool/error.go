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

package pool

import "github.com/TNO-MPC/communication/errors"

const (
	ErrorNoHandler errors.CodeError = iota + errors.MinPkgPool
	ErrorAlreadyHasServer
	ErrorAddrResolve
	ErrorInconsistentPrefixes
	ErrorBroadcastRequiresStringId
	ErrorBroadcastFailed
)

var isCodeError = false

func IsCodeError() bool {
	return isCodeError
}

func init() {
	isCodeError = errors.ExistInMapMessage(ErrorNoHandler)
	errors.RegisterIdFctMessage(ErrorNoHandler, getMessage)
}

func getMessage(code errors.CodeError) (message string) {
	switch code {
	case errors.UNK_ERROR:
		return ""
	case ErrorNoHandler:
		return "no handler registered under that name"
	case ErrorAlreadyHasServer:
		return "pool already has a server"
	case ErrorAddrResolve:
		return "could not resolve the client handler's address"
	case ErrorInconsistentPrefixes:
		return "broadcast targets do not share the same message-id prefix"
	case ErrorBroadcastRequiresStringId:
		return "broadcast requires an explicit string message id"
	case ErrorBroadcastFailed:
		return "broadcast failed to reach one or more targets"
	}

	return ""
}
