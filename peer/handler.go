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

// Package peer implements the outbound client handler (spec.md §4.3): one
// handler owns an outbound HTTP(S) session to a single remote pool member
// plus the inbound MessageId-keyed rendezvous buffer the server endpoint
// delivers into.
package peer

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/TNO-MPC/communication/codec"
	liberr "github.com/TNO-MPC/communication/errors"
	liblog "github.com/TNO-MPC/communication/logger"
	"github.com/TNO-MPC/communication/tlsconf"
)

// Key is the (address, port) pair two handlers are compared by, per
// spec.md §4.3 Construction ("equality of two handlers is by address,
// port").
type Key struct {
	Addr string
	Port int
}

// Handler is one outbound client handler. Each entry of its inbound map is
// either a resolved value (Future already complete) or a future still
// awaiting delivery; both cases are the same *Future type.
type Handler struct {
	name string
	key  Key

	scheme string
	tlsCfg *tls.Config
	client *http.Client

	reg              *codec.Registry
	opts             codec.Options
	fallbackToOpaque bool
	mask             codec.OptionMask

	defaultTimeout    time.Duration
	defaultRetryDelay time.Duration
	defaultMaxRetries int

	serverPort int
	identity   string

	mu          sync.Mutex
	prefix      string
	sendCounter int64
	recvCounter int64
	inbound     map[codec.MessageId]*Future
	bytesSent   uint64
	sentCount   uint64
}

// Options groups the construction parameters spec.md §4.3 lists, beyond
// the (name, addr, port) identity.
type Options struct {
	TLS               *tls.Config
	CertFile          string // optional: the remote peer's certificate, for identity derivation
	Registry          *codec.Registry
	Codec             codec.Options
	FallbackToOpaque  bool
	Mask              codec.OptionMask
	Prefix            string
	DefaultTimeout    time.Duration
	DefaultRetryDelay time.Duration
	DefaultMaxRetries int
}

// New constructs a ClientHandler. serverPort is the pool's own listening
// port, required because construction needs a server to already exist so
// the handler can advertise it via the outbound cookie (spec.md §4.3
// Construction) — its absence is reported as ErrorNoServer rather than
// panicking, since it is a caller misuse the pool can recover from.
func New(name, addr string, port int, serverPort int, opt Options) (*Handler, liberr.Error) {
	if serverPort <= 0 {
		return nil, ErrorNoServer.Error(nil)
	}

	reg := opt.Registry
	if reg == nil {
		reg = codec.DefaultRegistry
	}

	scheme := "http"
	if opt.TLS != nil {
		scheme = "https"
	}

	h := &Handler{
		name:              name,
		key:               Key{Addr: addr, Port: port},
		scheme:            scheme,
		tlsCfg:            opt.TLS,
		client:            &http.Client{Transport: &http.Transport{TLSClientConfig: opt.TLS}},
		reg:               reg,
		opts:              opt.Codec,
		fallbackToOpaque:  opt.FallbackToOpaque,
		mask:              opt.Mask,
		defaultTimeout:    opt.DefaultTimeout,
		defaultRetryDelay: opt.DefaultRetryDelay,
		defaultMaxRetries: opt.DefaultMaxRetries,
		serverPort:        serverPort,
		prefix:            opt.Prefix,
		inbound:           make(map[codec.MessageId]*Future),
	}

	if opt.CertFile != "" {
		id, err := loadCertIdentity(opt.CertFile)
		if err != nil {
			return nil, err
		}
		h.identity = id
	}

	return h, nil
}

func loadCertIdentity(certFile string) (string, liberr.Error) {
	raw, e := os.ReadFile(certFile)
	if e != nil {
		return "", ErrorCertLoad.Error(e)
	}

	blk, _ := pem.Decode(raw)
	if blk == nil {
		return "", ErrorCertLoad.Error(nil)
	}

	cert, e := x509.ParseCertificate(blk.Bytes)
	if e != nil {
		return "", ErrorCertLoad.Error(e)
	}

	return tlsconf.PeerIdentity(cert), nil
}

func (h *Handler) Name() string    { return h.name }
func (h *Handler) Key() Key        { return h.key }
func (h *Handler) Identity() string { return h.identity }
func (h *Handler) AddrIdentity() string {
	return fmt.Sprintf("%s:%d", h.key.Addr, h.key.Port)
}

func (h *Handler) Prefix() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.prefix
}

// SetPrefix installs a new prefix, per pool.update_prefix (spec.md §4.5).
func (h *Handler) SetPrefix(p string) {
	h.mu.Lock()
	h.prefix = p
	h.mu.Unlock()
}

func (h *Handler) FallbackToOpaque() bool { return h.fallbackToOpaque }
func (h *Handler) Mask() codec.OptionMask { return h.mask }

// NextSendID assigns and increments the send-counter, applying the
// handler's prefix if set, per spec.md §4.3 send step 1.
func (h *Handler) NextSendID() codec.MessageId {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.nextSendIDLocked()
}

func (h *Handler) nextSendIDLocked() codec.MessageId {
	id := codec.NewMessageIdInt(h.sendCounter)
	h.sendCounter++
	return id.WithPrefix(h.prefix)
}

// ApplyPrefix stringifies a numeric id by concatenation with the handler's
// current prefix, or returns id unchanged when no prefix is set or id is
// already a string (spec.md §4.3 send step 1 / recv step 1).
func (h *Handler) ApplyPrefix(id codec.MessageId) codec.MessageId {
	h.mu.Lock()
	defer h.mu.Unlock()
	return id.WithPrefix(h.prefix)
}

func (h *Handler) applyPrefixLocked(id codec.MessageId) codec.MessageId {
	return id.WithPrefix(h.prefix)
}

// BumpSendCounter advances the send-counter without producing or consuming
// an id. pool.Broadcast calls this once per selected handler after packing
// the single shared envelope (spec.md §4.5 step 5): broadcast assigns
// msg_id itself rather than asking each handler for one, but the counter
// still has to advance to keep later auto-assigned ids from colliding with
// the broadcast id space.
func (h *Handler) BumpSendCounter() {
	h.mu.Lock()
	h.sendCounter++
	h.mu.Unlock()
}

// Send packs value under id (assigning one from the send-counter when id
// is nil) and posts it, retrying per retryDelay/maxRetries, per spec.md
// §4.3 send.
func (h *Handler) Send(ctx context.Context, value any, id *codec.MessageId, retryDelay, timeout time.Duration, maxRetries int) (codec.MessageId, liberr.Error) {
	var mid codec.MessageId

	h.mu.Lock()
	if id != nil {
		mid = h.applyPrefixLocked(*id)
	} else {
		mid = h.nextSendIDLocked()
	}
	h.mu.Unlock()

	data, err := codec.Pack(h.reg, value, mid, h.fallbackToOpaque, h.mask, h.opts)
	if err != nil {
		return mid, err
	}

	return mid, h.PostBytes(ctx, data, retryDelay, timeout, maxRetries)
}

// PostBytes transmits an already-packed envelope. Broadcast calls this
// directly (after packing once and incrementing counters itself, per
// spec.md §4.5 broadcast) instead of going through Send.
func (h *Handler) PostBytes(ctx context.Context, data []byte, retryDelay, timeout time.Duration, maxRetries int) liberr.Error {
	if timeout <= 0 {
		timeout = h.defaultTimeout
	}
	if retryDelay <= 0 && maxRetries == 0 {
		maxRetries = h.defaultMaxRetries
		retryDelay = h.defaultRetryDelay
	}

	rc := retryablehttp.NewClient()
	rc.HTTPClient = h.client
	rc.Logger = log.New(io.Discard, "", 0)
	rc.RetryWaitMin = retryDelay
	rc.RetryWaitMax = retryDelay
	rc.Backoff = constantBackoff(retryDelay)
	rc.CheckRetry = checkRetry

	if retryDelay <= 0 {
		// no positive delay means no retry at all, regardless of maxRetries,
		// per spec.md §4.3 step 4.
		rc.RetryMax = 0
	} else if maxRetries < 0 {
		rc.RetryMax = (1 << 31) - 1 // unbounded, per spec.md §4.3 step 4 ("negative means unbounded")
	} else {
		rc.RetryMax = maxRetries
	}

	url := fmt.Sprintf("%s://%s:%d/", h.scheme, h.key.Addr, h.key.Port)

	req, e := retryablehttp.NewRequest(http.MethodPost, url, data)
	if e != nil {
		return ErrorTransientTransport.Error(e)
	}

	reqCtx := ctx
	var cancel context.CancelFunc
	if timeout > 0 {
		reqCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	req = req.WithContext(reqCtx)
	req.AddCookie(&http.Cookie{Name: "server_port", Value: fmt.Sprintf("%d", h.serverPort)})

	resp, e := rc.Do(req)
	if e != nil {
		// retry policy exhausted (or unbounded and canceled): give up, per
		// spec.md §4.3 step 4. The caller decides whether this is reported
		// (pool.Send) or swallowed (pool.AsyncSend).
		return ErrorTransientTransport.Error(e)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return ErrorTransientTransport.Error(nil)
	}

	h.mu.Lock()
	h.bytesSent += uint64(len(data))
	h.sentCount++
	h.mu.Unlock()

	return nil
}

func checkRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if err != nil {
		return true, nil
	}
	if resp.StatusCode != http.StatusOK {
		return true, nil
	}
	return false, nil
}

func constantBackoff(delay time.Duration) retryablehttp.Backoff {
	return func(_, _ time.Duration, _ int, _ *http.Response) time.Duration {
		return delay
	}
}

// Recv returns the id actually waited on (assigning/prefixing one when id
// is nil, per spec.md §4.3 recv step 1) and the Future to await.
func (h *Handler) Recv(id *codec.MessageId) (codec.MessageId, *Future) {
	h.mu.Lock()
	defer h.mu.Unlock()

	var mid codec.MessageId
	if id != nil {
		mid = h.applyPrefixLocked(*id)
	} else {
		mid = codec.NewMessageIdInt(h.recvCounter).WithPrefix(h.prefix)
		h.recvCounter++
	}

	if f, ok := h.inbound[mid]; ok {
		delete(h.inbound, mid)
		return mid, f
	}

	f := newFuture()
	h.inbound[mid] = f
	return mid, f
}

// Deliver completes the future pending at id with value, or logs and drops
// the value when id is already resolved (id reuse, spec.md §4.3 Deliver /
// §7 IdReuse). Called by the server endpoint on inbound POST.
func (h *Handler) Deliver(id codec.MessageId, value any) {
	h.mu.Lock()
	f, ok := h.inbound[id]
	if !ok {
		f = newResolvedFuture(value)
		h.inbound[id] = f
		h.mu.Unlock()
		return
	}
	completed := f.complete(value)
	h.mu.Unlock()

	if !completed {
		liblog.WarnLevel.Logf("peer '%s': id reuse on message id '%s', dropping duplicate delivery", h.name, id.String())
	}
}

// Shutdown closes the outbound session and logs aggregate counters, per
// spec.md §4.3 Shutdown.
func (h *Handler) Shutdown() {
	h.client.CloseIdleConnections()

	h.mu.Lock()
	sent, cnt := h.bytesSent, h.sentCount
	h.mu.Unlock()

	liblog.InfoLevel.Logf("peer '%s' shutdown: %d bytes sent over %d messages", h.name, sent, cnt)
}

// Counters returns (bytes-sent, sent-count) for the pool's shutdown
// aggregation (spec.md §4.5 shutdown).
func (h *Handler) Counters() (bytesSent, sentCount uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.bytesSent, h.sentCount
}
