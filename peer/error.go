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

package peer

import "github.com/TNO-MPC/communication/errors"

const (
	ErrorNoServer errors.CodeError = iota + errors.MinPkgPeer
	ErrorCertLoad
	ErrorAddrResolve
	ErrorRecvCanceled
	ErrorRecvTimeout
	ErrorTransientTransport
)

var isCodeError = false

func IsCodeError() bool {
	return isCodeError
}

func init() {
	isCodeError = errors.ExistInMapMessage(ErrorNoServer)
	errors.RegisterIdFctMessage(ErrorNoServer, getMessage)
}

func getMessage(code errors.CodeError) (message string) {
	switch code {
	case errors.UNK_ERROR:
		return ""
	case ErrorNoServer:
		return "client handler requires the owning pool to already have a server"
	case ErrorCertLoad:
		return "could not load the peer certificate used to derive its identity"
	case ErrorAddrResolve:
		return "could not resolve the peer address"
	case ErrorRecvCanceled:
		return "recv was canceled before a value arrived"
	case ErrorRecvTimeout:
		return "recv timed out before a value arrived"
	case ErrorTransientTransport:
		return "post failed terminally after exhausting the retry policy"
	}

	return ""
}
