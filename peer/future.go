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

import (
	"context"

	liberr "github.com/TNO-MPC/communication/errors"
)

// Future is the single-assignment box a pending recv() waits on, per
// spec.md §4.3. It is completed at most once, from the server endpoint's
// delivery path; Wait may be called any number of times and from any
// goroutine once completed.
type Future struct {
	done  chan struct{}
	value any
}

func newFuture() *Future {
	return &Future{done: make(chan struct{})}
}

// newResolvedFuture returns a future that is already complete, for the
// case where the inbound value arrived before recv was called.
func newResolvedFuture(v any) *Future {
	f := &Future{done: make(chan struct{}), value: v}
	close(f.done)
	return f
}

// complete resolves the future with v. It returns false if the future was
// already resolved (the caller treats this as an id-reuse event, never a
// silent overwrite, per spec.md §4.3 Deliver).
func (f *Future) complete(v any) bool {
	select {
	case <-f.done:
		return false
	default:
	}
	f.value = v
	close(f.done)
	return true
}

// Wait blocks until the future resolves or ctx is done.
func (f *Future) Wait(ctx context.Context) (any, liberr.Error) {
	select {
	case <-f.done:
		return f.value, nil
	case <-ctx.Done():
		if ctx.Err() == context.DeadlineExceeded {
			return nil, ErrorRecvTimeout.Error(ctx.Err())
		}
		return nil, ErrorRecvCanceled.Error(ctx.Err())
	}
}
