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

// Package httpserver runs HTTP/HTTPS servers described by a ServerConfig, and provides
// Endpoint, the MPC message sink that the pool package listens with.
//
// # Configuration
//
// ServerConfig holds Name, Listen (bind address as host:port), Expose (public URL),
// HandlerKeys, TLSMandatory, TLSConfigOverride, and the http and http2 options
// (timeouts, header size, handler, stream and frame limits). Validate checks the struct
// tags (Name is required, Listen must be host:port, Expose must be a URL) and returns nil,
// or an ErrorServerValidate error with one parent error per failed field. Clone copies the
// configuration and lowercases HandlerKeys; SetParentContext sets the function that
// provides the parent context; Server builds a Server from the configuration.
//
// IsTLS reports whether TLSConfigOverride is set; it is the sole source of truth for
// whether the listener runs with TLS. TLSMandatory is copied by Clone; Listen does not
// read it.
//
// # Server
//
//	cfg := &httpserver.ServerConfig{
//	    Name:   "api-server",
//	    Listen: "127.0.0.1:8080",
//	    Expose: "http://localhost:8080",
//	}
//
//	srv := httpserver.NewServer(cfg)
//	if err := srv.Listen(mux); err != nil {
//	    log.Fatal(err)
//	}
//	defer srv.Shutdown()
//
// Listen builds an http.Server from the configuration and configures HTTP/2 on it
// (ErrorHTTP2Configure on failure). It shuts the server down if it is running, then
// checks up to 5 times, without delay, whether a TCP connection to Listen succeeds,
// calling Shutdown each time one does. It then starts serving in a goroutine and
// returns nil; an error from binding or serving is logged, not returned. A nil handler
// reuses the handler of the previous Listen.
//
// Restart calls Listen with a nil handler. Shutdown cancels the serving context, shuts
// the http.Server down with a 10 second timeout and closes it. WaitNotify blocks until
// SIGINT, SIGTERM or SIGQUIT arrives or the parent context is done, then calls Shutdown.
// Merge takes the configuration of another Server built by NewServer and reports
// whether it did. GetName returns Name, or the bind address when Name is empty;
// GetExpose returns Expose, or the Listen address with an http or https scheme when
// Expose is empty or cannot be parsed.
//
// The package functions Listen, ListenWaitNotify, Restart and Shutdown apply the same
// operation to several servers; Listen and ListenWaitNotify start each server in its own
// goroutine and ignore its error, and ListenWaitNotify returns once WaitNotify has
// returned for every server. IsRunning reports whether any of the servers is running.
//
// # MPC endpoint
//
// Endpoint wraps a Server with a mux that answers GET on any path with 200 and the body
// "Connection working (GET)", and takes POST on any path as an incoming message:
//   - no server_port cookie: 400
//   - sender unknown to the HandlerLookup, by the identity of its TLS client certificate
//     or by "<remote-ip>:<server_port>": 401
//   - body read or envelope unpack failure: 500
//   - otherwise the value goes to the matched Deliverer, the received-count and
//     bytes-received counters grow, and the answer is 200 with the body "Message received"
//
// # Port checks
//
// PortInUse returns ErrorPortUse when a TCP connection to the address succeeds and nil
// when it fails. PortNotUse returns nil when a connection succeeds and the dial error when
// it fails. Both dial 127.0.0.1 for addresses whose host starts with "0" or "::", and bound
// the dial with types.TimeoutWaitingPortFreeing when the context has no deadline.
//
// # Errors
//
// The error codes, numbered from errors.MinPkgServer, are ErrorParamsEmpty,
// ErrorHTTP2Configure, ErrorPoolAdd, ErrorPoolValidate, ErrorPoolListen,
// ErrorServerValidate, ErrorPortUse and ErrorInvalidAddress.
//
// # Dependencies
//
//   - github.com/go-playground/validator/v10: configuration validation
//   - golang.org/x/net/http2: HTTP/2 support
//   - github.com/TNO-MPC/communication/httpserver/types: shared constants and handler types
package httpserver
