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

// Package pool implements the top-level MPC pool (spec.md §4.5): one
// server endpoint plus N-1 named client handlers, with send/recv/
// broadcast/shutdown operations and the identity-based handler lookup the
// server endpoint delivers into.
package pool

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/TNO-MPC/communication/codec"
	_ "github.com/TNO-MPC/communication/codec/plugins"
	liberr "github.com/TNO-MPC/communication/errors"
	"github.com/TNO-MPC/communication/httpserver"
	liblog "github.com/TNO-MPC/communication/logger"
	"github.com/TNO-MPC/communication/peer"
	"github.com/TNO-MPC/communication/tlsconf"
)

func init() {
	codec.DefaultRegistry.Clear(true)
}

// Pool owns the single server endpoint and the name/identity lookup
// tables for the pool's client handlers, per spec.md §4.5 Construction.
type Pool struct {
	identity          tlsconf.Identity
	defaultTimeout    time.Duration
	defaultMaxRetries int

	mu       sync.Mutex
	endpoint *httpserver.Endpoint
	addr     string
	port     int
	external int

	names      []string
	byName     map[string]*peer.Handler
	byIdentity map[string]*peer.Handler
}

// New builds an empty pool: no server, no handlers. identity carries the
// optional TLS credentials (spec.md §6 configuration surface); a zero
// Identity disables TLS for this pool.
func New(identity tlsconf.Identity, defaultTimeout time.Duration, defaultMaxRetries int) *Pool {
	return &Pool{
		identity:          identity,
		defaultTimeout:    defaultTimeout,
		defaultMaxRetries: defaultMaxRetries,
		byName:            make(map[string]*peer.Handler),
		byIdentity:        make(map[string]*peer.Handler),
	}
}

// LookupByIdentity implements httpserver.HandlerLookup: the server
// endpoint resolves an inbound peer identity to a *peer.Handler through
// this table.
func (p *Pool) LookupByIdentity(identity string) (httpserver.Deliverer, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	h, ok := p.byIdentity[identity]
	if !ok {
		return nil, false
	}
	return h, true
}

// AddServer instantiates the pool's single server endpoint, per spec.md
// §4.5 add_server. port == 0 picks 80 (plaintext) or 443 (TLS); at most
// one server per pool.
//
// externalPort is the deprecated "external_port" (spec.md §9): when
// supplied, it is recorded only as the outbound cookie value client
// handlers advertise, never used for binding.
func (p *Pool) AddServer(addr string, port int, externalPort int) liberr.Error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.endpoint != nil {
		return ErrorAlreadyHasServer.Error(nil)
	}

	tlsCfg, err := p.identity.ServerTLS()
	if err != nil {
		return err
	}

	if port == 0 {
		if tlsCfg != nil {
			port = 443
		} else {
			port = 80
		}
	}

	if externalPort == 0 {
		externalPort = port
	} else {
		liblog.WarnLevel.Logf("pool: add_server external_port is deprecated; recorded only as the outbound cookie value, not used for binding")
	}

	scheme := "http"
	if tlsCfg != nil {
		scheme = "https"
	}

	cfg := &httpserver.ServerConfig{
		Name:              fmt.Sprintf("%s:%d", addr, port),
		Listen:            fmt.Sprintf("%s:%d", addr, port),
		Expose:            fmt.Sprintf("%s://%s:%d", scheme, addr, externalPort),
		TLSConfigOverride: tlsCfg,
	}

	p.endpoint = httpserver.NewEndpoint(cfg, p, codec.DefaultRegistry, true, 0, codec.Options{})
	p.addr = addr
	p.port = port
	p.external = externalPort

	return p.endpoint.Listen()
}

// AddClient builds a client handler for name and registers it both by
// name and by identity, per spec.md §4.5 add_client. Requires AddServer
// to have already run (peer.New reports ErrorNoServer otherwise).
//
// The resolved-address identity is always registered; the certificate
// identity is registered in addition when certPath is given (spec.md
// §4.6: "a peer may be registered under both forms"). port == 0 follows
// the same 80/443 TLS convention as AddServer (spec.md §6 names this
// convention for "the server"; applying it symmetrically to the client
// dial port is this pool's Open Question decision — see DESIGN.md).
func (p *Pool) AddClient(name, addr string, port int, certPath string) (*peer.Handler, liberr.Error) {
	p.mu.Lock()
	serverPort := p.external
	p.mu.Unlock()

	clientTLS, err := p.identity.ClientTLS()
	if err != nil {
		return nil, err
	}

	if port == 0 {
		if clientTLS != nil {
			port = 443
		} else {
			port = 80
		}
	}

	opt := peer.Options{
		TLS:               clientTLS,
		CertFile:          certPath,
		Registry:          codec.DefaultRegistry,
		FallbackToOpaque:  true,
		DefaultTimeout:    p.defaultTimeout,
		DefaultMaxRetries: p.defaultMaxRetries,
	}

	h, herr := peer.New(name, addr, port, serverPort, opt)
	if herr != nil {
		return nil, herr
	}

	ips, rerr := net.LookupHost(addr)
	if rerr != nil || len(ips) == 0 {
		return nil, ErrorAddrResolve.Error(rerr)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.byName[name]; !exists {
		p.names = append(p.names, name)
	}
	p.byName[name] = h

	p.byIdentity[fmt.Sprintf("%s:%d", ips[0], port)] = h
	if h.Identity() != "" {
		p.byIdentity[h.Identity()] = h
	}

	return h, nil
}

func (p *Pool) handlerByName(name string) (*peer.Handler, liberr.Error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	h, ok := p.byName[name]
	if !ok {
		return nil, ErrorNoHandler.Error(nil)
	}
	return h, nil
}

// resolveNames returns names, or every registered handler's name in
// insertion order when names is nil (spec.md §4.5 recv_all/broadcast
// "If names is absent, use every registered handler, in insertion
// order.").
func (p *Pool) resolveNames(names []string) []string {
	if names != nil {
		return names
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]string, len(p.names))
	copy(out, p.names)
	return out
}

// Send looks up name and awaits completion of the outbound POST, per
// spec.md §4.5 send. Unknown name reports ErrorNoHandler immediately;
// a terminal transport failure is surfaced to this synchronous caller
// (see DESIGN.md's Open Question decision on TransientTransportError).
func (p *Pool) Send(ctx context.Context, name string, value any, id *codec.MessageId, retryDelay, timeout time.Duration, maxRetries int) (codec.MessageId, liberr.Error) {
	h, err := p.handlerByName(name)
	if err != nil {
		return codec.MessageId{}, err
	}
	return h.Send(ctx, value, id, retryDelay, timeout, maxRetries)
}

// AsyncSend dispatches the outbound POST and returns immediately; a
// terminal transport failure is logged and discarded (spec.md §7
// TransientTransportError: "async_send swallows").
func (p *Pool) AsyncSend(ctx context.Context, name string, value any, id *codec.MessageId, retryDelay, timeout time.Duration, maxRetries int) {
	h, err := p.handlerByName(name)
	if err != nil {
		liblog.WarnLevel.Logf("pool: async_send to unknown handler '%s'", name)
		return
	}

	go func() {
		if _, serr := h.Send(ctx, value, id, retryDelay, timeout, maxRetries); serr != nil {
			liblog.WarnLevel.Logf("pool: async_send to '%s' failed terminally: %v", name, serr)
		}
	}()
}

// ARecv returns the Future handler.Recv stores/resolves for msg_id,
// per spec.md §4.5 arecv.
func (p *Pool) ARecv(name string, id *codec.MessageId) (codec.MessageId, *peer.Future, liberr.Error) {
	h, err := p.handlerByName(name)
	if err != nil {
		return codec.MessageId{}, nil, err
	}
	mid, fut := h.Recv(id)
	return mid, fut, nil
}

// Recv awaits ARecv's future and returns its value, per spec.md §4.5 recv.
func (p *Pool) Recv(ctx context.Context, name string, id *codec.MessageId) (any, liberr.Error) {
	_, fut, err := p.ARecv(name, id)
	if err != nil {
		return nil, err
	}
	return fut.Wait(ctx)
}

// NamedFuture pairs a handler name with the Future recv_all/arecv_all
// retrieved for it.
type NamedFuture struct {
	Name   string
	ID     codec.MessageId
	Future *peer.Future
}

// ARecvAll calls ARecv on names (or every registered handler, in
// insertion order, when names is nil) with the same msg_id, per spec.md
// §4.5 recv_all/arecv_all.
func (p *Pool) ARecvAll(names []string, id *codec.MessageId) ([]NamedFuture, liberr.Error) {
	resolved := p.resolveNames(names)

	out := make([]NamedFuture, 0, len(resolved))
	for _, n := range resolved {
		mid, fut, err := p.ARecv(n, id)
		if err != nil {
			return nil, err
		}
		out = append(out, NamedFuture{Name: n, ID: mid, Future: fut})
	}
	return out, nil
}

// NamedValue pairs a handler name with the value recv_all resolved for it.
type NamedValue struct {
	Name  string
	Value any
}

// RecvAll awaits every future ARecvAll returns concurrently, failing only
// if one of them fails, per spec.md §4.5 recv_all.
func (p *Pool) RecvAll(ctx context.Context, names []string, id *codec.MessageId) ([]NamedValue, liberr.Error) {
	nf, err := p.ARecvAll(names, id)
	if err != nil {
		return nil, err
	}

	out := make([]NamedValue, len(nf))

	g, gctx := errgroup.WithContext(ctx)
	for i, e := range nf {
		i, e := i, e
		g.Go(func() error {
			v, werr := e.Future.Wait(gctx)
			if werr != nil {
				return werr
			}
			out[i] = NamedValue{Name: e.Name, Value: v}
			return nil
		})
	}

	if gerr := g.Wait(); gerr != nil {
		if e, ok := gerr.(liberr.Error); ok {
			return nil, e
		}
		return nil, ErrorBroadcastFailed.Error(gerr)
	}

	return out, nil
}

// preprocessBroadcast resolves names to handlers and derives the shared
// prefix/fallback/mask, per spec.md §4.5 broadcast preprocessing steps 1-3.
func (p *Pool) preprocessBroadcast(names []string) ([]*peer.Handler, string, bool, codec.OptionMask, liberr.Error) {
	resolved := p.resolveNames(names)

	p.mu.Lock()
	handlers := make([]*peer.Handler, 0, len(resolved))
	for _, n := range resolved {
		h, ok := p.byName[n]
		if !ok {
			p.mu.Unlock()
			return nil, "", false, 0, ErrorNoHandler.Error(nil)
		}
		handlers = append(handlers, h)
	}
	p.mu.Unlock()

	if len(handlers) == 0 {
		return handlers, "", true, 0, nil
	}

	prefix := handlers[0].Prefix()
	fallback := true
	mask := ^codec.OptionMask(0)

	for _, h := range handlers {
		if h.Prefix() != prefix {
			return nil, "", false, 0, ErrorInconsistentPrefixes.Error(nil)
		}
		fallback = fallback && h.FallbackToOpaque()
		mask &= h.Mask()
	}

	return handlers, prefix, fallback, mask, nil
}

// Broadcast packs value once under the common prefix applied to id and
// transmits it concurrently to every selected handler, per spec.md §4.5
// broadcast. id must already be string-tagged (step 4: "which must be
// string").
func (p *Pool) Broadcast(ctx context.Context, value any, id codec.MessageId, names []string, timeout time.Duration, maxRetries int) liberr.Error {
	if !id.IsString() {
		return ErrorBroadcastRequiresStringId.Error(nil)
	}

	handlers, prefix, fallback, mask, err := p.preprocessBroadcast(names)
	if err != nil {
		return err
	}
	if len(handlers) == 0 {
		return nil
	}

	mid := id.WithPrefix(prefix)

	data, perr := codec.Pack(codec.DefaultRegistry, value, mid, fallback, mask, codec.Options{})
	if perr != nil {
		return perr
	}

	for _, h := range handlers {
		h.BumpSendCounter()
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, h := range handlers {
		h := h
		g.Go(func() error {
			return h.PostBytes(gctx, data, 0, timeout, maxRetries)
		})
	}

	if gerr := g.Wait(); gerr != nil {
		if e, ok := gerr.(liberr.Error); ok {
			return e
		}
		return ErrorBroadcastFailed.Error(gerr)
	}

	return nil
}

// AsyncBroadcast dispatches Broadcast and returns immediately; failures
// are logged and discarded, mirroring AsyncSend.
func (p *Pool) AsyncBroadcast(ctx context.Context, value any, id codec.MessageId, names []string, timeout time.Duration, maxRetries int) {
	go func() {
		if err := p.Broadcast(ctx, value, id, names, timeout, maxRetries); err != nil {
			liblog.WarnLevel.Logf("pool: async_broadcast failed: %v", err)
		}
	}()
}

// UpdatePrefix sets the prefix on every registered handler, per spec.md
// §4.5 update_prefix.
func (p *Pool) UpdatePrefix(prefix string) {
	p.mu.Lock()
	handlers := make([]*peer.Handler, 0, len(p.byName))
	for _, h := range p.byName {
		handlers = append(handlers, h)
	}
	p.mu.Unlock()

	for _, h := range handlers {
		h.SetPrefix(prefix)
	}
}

// Shutdown stops the server, then shuts down every handler, sums up
// counters, logs, and clears the handler maps, per spec.md §4.5
// shutdown. Idempotent: a repeat call finds nothing left to stop.
func (p *Pool) Shutdown() {
	p.mu.Lock()
	endpoint := p.endpoint
	handlers := make([]*peer.Handler, 0, len(p.byName))
	for _, h := range p.byName {
		handlers = append(handlers, h)
	}
	p.endpoint = nil
	p.names = nil
	p.byName = make(map[string]*peer.Handler)
	p.byIdentity = make(map[string]*peer.Handler)
	p.mu.Unlock()

	if endpoint != nil {
		endpoint.Shutdown()
	}

	var totalBytes, totalCount uint64
	for _, h := range handlers {
		h.Shutdown()
		b, c := h.Counters()
		totalBytes += b
		totalCount += c
	}

	liblog.InfoLevel.Logf("pool shutdown: %d bytes sent across %d handlers over %d messages", totalBytes, len(handlers), totalCount)
}
