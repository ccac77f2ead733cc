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

// Package tlsconf builds the mutual-TLS contexts the pool's server and
// client handlers connect over, and derives the stable peer identity a
// connecting certificate carries.
package tlsconf

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
)

// PeerIdentity formats "<issuer-CN>:<serial-as-decimal-int>" from a client
// certificate, per spec.md §4.6. The serial number is already decoded to a
// *big.Int by crypto/x509 (the wire encoding is the hex/DER form); String()
// renders its decimal form.
func PeerIdentity(cert *x509.Certificate) string {
	if cert == nil {
		return ""
	}
	return fmt.Sprintf("%s:%s", cert.Issuer.CommonName, cert.SerialNumber.String())
}

// PeerIdentityFromState extracts the identity of the first verified peer
// certificate on a TLS connection state, per spec.md §4.4 step 3. It
// returns ErrorNoPeerCertificate when mutual TLS did not present one.
func PeerIdentityFromState(state *tls.ConnectionState) (string, error) {
	if state == nil || len(state.PeerCertificates) == 0 {
		return "", ErrorNoPeerCertificate.Error(nil)
	}
	return PeerIdentity(state.PeerCertificates[0]), nil
}
