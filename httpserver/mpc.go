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

package httpserver

import (
	"io"
	"net"
	"net/http"
	"sync/atomic"

	"github.com/TNO-MPC/communication/codec"
	liberr "github.com/TNO-MPC/communication/errors"
	liblog "github.com/TNO-MPC/communication/logger"
	"github.com/TNO-MPC/communication/tlsconf"
)

// Deliverer is satisfied by a client handler: the server endpoint hands
// every successfully unpacked value to the handler matching the sender's
// resolved identity. *peer.Handler implements this without modification.
type Deliverer interface {
	Deliver(id codec.MessageId, value any)
}

// HandlerLookup resolves a peer identity string (certificate identity or
// address identity, spec.md §4.4 step 3) to the registered handler, if
// any. The pool is the only implementer: it owns the identity map.
type HandlerLookup interface {
	LookupByIdentity(identity string) (Deliverer, bool)
}

// Endpoint is the MPC message sink: a GET liveness route and a POST
// message route layered over a Server. It owns the received-count and
// bytes-received counters named in spec.md §4.4's server state.
type Endpoint struct {
	srv              Server
	lookup           HandlerLookup
	reg              *codec.Registry
	fallbackToOpaque bool
	mask             codec.OptionMask
	opts             codec.Options

	receivedCount uint64
	bytesReceived uint64
}

// NewEndpoint builds the MPC server endpoint over cfg. lookup resolves
// inbound identities to client handlers; reg/fallbackToOpaque/mask/opts
// configure envelope unpacking exactly as a ClientHandler would for Pack.
func NewEndpoint(cfg *ServerConfig, lookup HandlerLookup, reg *codec.Registry, fallbackToOpaque bool, mask codec.OptionMask, opts codec.Options) *Endpoint {
	return &Endpoint{
		srv:              NewServer(cfg),
		lookup:           lookup,
		reg:              reg,
		fallbackToOpaque: fallbackToOpaque,
		mask:             mask,
		opts:             opts,
	}
}

// Handler builds the endpoint's routing mux: GET / for liveness, POST /
// for the message sink. Exported so it can be exercised directly (e.g. in
// tests) without going through Listen's real socket bind.
func (e *Endpoint) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /", e.handleGet)
	mux.HandleFunc("POST /", e.handlePost)

	return mux
}

// Listen starts the underlying Server with the endpoint's mux.
func (e *Endpoint) Listen() liberr.Error {
	return e.srv.Listen(e.Handler())
}

// Shutdown stops the listening site and logs received-count/bytes-received.
// Idempotent: calling it on an already-stopped endpoint logs the same
// cumulative counters again, matching spec.md §4.4's "Shutdown ... Idempotent".
func (e *Endpoint) Shutdown() {
	e.srv.Shutdown()

	liblog.InfoLevel.Logf("Shutdown server endpoint '%s': received=%d bytes=%d",
		e.srv.GetName(), atomic.LoadUint64(&e.receivedCount), atomic.LoadUint64(&e.bytesReceived))
}

// Server returns the underlying transport Server, e.g. for WaitNotify.
func (e *Endpoint) Server() Server {
	return e.srv
}

// Counters returns the server's received-count and bytes-received.
func (e *Endpoint) Counters() (receivedCount, bytesReceived uint64) {
	return atomic.LoadUint64(&e.receivedCount), atomic.LoadUint64(&e.bytesReceived)
}

func (e *Endpoint) handleGet(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("Connection working (GET)"))
}

func (e *Endpoint) handlePost(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		liblog.ErrorLevel.Logf("reading POST body on '%s': %v", e.srv.GetName(), err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	cookie, cerr := r.Cookie("server_port")
	if cerr != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	var certID string
	if r.TLS != nil {
		certID, _ = tlsconf.PeerIdentityFromState(r.TLS)
	}

	remoteAddr := r.RemoteAddr
	if host, _, serr := net.SplitHostPort(r.RemoteAddr); serr == nil {
		remoteAddr = host
	}
	addrID := remoteAddr + ":" + cookie.Value

	var (
		deliverer Deliverer
		ok        bool
	)
	if certID != "" {
		deliverer, ok = e.lookup.LookupByIdentity(certID)
	}
	if !ok {
		deliverer, ok = e.lookup.LookupByIdentity(addrID)
	}
	if !ok {
		liblog.WarnLevel.Logf("rejected POST on '%s': unknown peer identity (cert=%q addr=%q)", e.srv.GetName(), certID, addrID)
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	opts := e.opts
	opts.Origin = deliverer

	id, value, uerr := codec.Unpack(e.reg, body, e.fallbackToOpaque, e.mask, opts)
	if uerr != nil {
		liblog.ErrorLevel.Logf("unpacking envelope on '%s': %v", e.srv.GetName(), uerr)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	deliverer.Deliver(id, value)

	atomic.AddUint64(&e.receivedCount, 1)
	atomic.AddUint64(&e.bytesReceived, uint64(len(body)))

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("Message received"))
}
