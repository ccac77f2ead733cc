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

package tlsconf

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"

	libval "github.com/go-playground/validator/v10"

	libtls "github.com/TNO-MPC/communication/certificates"
	tlsaut "github.com/TNO-MPC/communication/certificates/auth"
	tlscpr "github.com/TNO-MPC/communication/certificates/cipher"
	tlscrv "github.com/TNO-MPC/communication/certificates/curves"
	tlsvrs "github.com/TNO-MPC/communication/certificates/tlsversion"
	liberr "github.com/TNO-MPC/communication/errors"
)

// Identity is the key material a pool member presents and validates peers
// against. It is the minimal subset of nabbar-golib's certificates.Config
// this module's mutual-auth requirement needs: a single key+certificate
// pair and a single CA bundle, both required together or not at all, plus
// the TLS version/cipher/curve tuning knobs certificates.Config exposes.
type Identity struct {
	KeyFile  string `mapstructure:"keyFile" json:"keyFile" yaml:"keyFile" toml:"keyFile" validate:"required_with=CertFile"`
	CertFile string `mapstructure:"certFile" json:"certFile" yaml:"certFile" toml:"certFile" validate:"required_with=KeyFile"`
	CAFile   string `mapstructure:"caFile" json:"caFile" yaml:"caFile" toml:"caFile"`

	// MinVersion/MaxVersion pin the negotiated TLS version range.
	// VersionUnknown (the zero value) defaults to TLS 1.2 minimum and
	// TLS 1.3 maximum.
	MinVersion tlsvrs.Version `mapstructure:"minVersion" json:"minVersion" yaml:"minVersion" toml:"minVersion"`
	MaxVersion tlsvrs.Version `mapstructure:"maxVersion" json:"maxVersion" yaml:"maxVersion" toml:"maxVersion"`

	// CipherSuites, when non-empty, restricts negotiation to this list
	// (TLS 1.2 only; TLS 1.3 ignores CipherSuites per crypto/tls).
	CipherSuites []tlscpr.Cipher `mapstructure:"cipherSuites" json:"cipherSuites" yaml:"cipherSuites" toml:"cipherSuites"`

	// Curves, when non-empty, restricts the elliptic curve preference
	// order used for the key exchange.
	Curves []tlscrv.Curves `mapstructure:"curves" json:"curves" yaml:"curves" toml:"curves"`
}

// Validate checks the struct tags above via go-playground/validator, in the
// style of certificates.Config.Validate / httpserver.ServerConfig.Validate.
func (i Identity) Validate() liberr.Error {
	if er := libval.New().Struct(i); er != nil {
		err := ErrorValidatorError.Error(nil)
		for _, e := range er.(libval.ValidationErrors) {
			//nolint goerr113
			err.Add(fmt.Errorf("field '%s' fails constraint '%s'", e.StructNamespace(), e.ActualTag()))
		}
		return err
	}
	return nil
}

// HasCA reports whether this identity carries a CA bundle. Per spec.md
// §4.6, a context is only built ("no context" otherwise, meaning plaintext
// HTTP) when a CA certificate is supplied.
func (i Identity) HasCA() bool {
	return i.CAFile != ""
}

// buildConfig loads the identity's key pair and CA bundle into a
// certificates.TLSConfig, requiring and verifying a peer certificate and
// disabling hostname verification (peers are identified by certificate
// identity, not hostname, per spec.md §4.6).
func (i Identity) buildConfig() (libtls.TLSConfig, liberr.Error) {
	cfg := libtls.New()

	if i.CertFile != "" || i.KeyFile != "" {
		if e := cfg.AddCertificatePairFile(i.KeyFile, i.CertFile); e != nil {
			return nil, ErrorCertKeyPairLoad.Error(e)
		}
	}

	if e := cfg.AddRootCAFile(i.CAFile); e != nil {
		return nil, ErrorCAAppend.Error(e)
	}
	if e := cfg.AddClientCAFile(i.CAFile); e != nil {
		return nil, ErrorCAAppend.Error(e)
	}

	cfg.SetClientAuth(tlsaut.RequireAndVerifyClientCert)

	minV := i.MinVersion
	if minV == tlsvrs.VersionUnknown {
		minV = tlsvrs.VersionTLS12
	}
	maxV := i.MaxVersion
	if maxV == tlsvrs.VersionUnknown {
		maxV = tlsvrs.VersionTLS13
	}
	cfg.SetVersionMin(minV)
	cfg.SetVersionMax(maxV)

	if len(i.CipherSuites) > 0 {
		cfg.SetCipherList(i.CipherSuites)
	}
	if len(i.Curves) > 0 {
		cfg.SetCurveList(i.Curves)
	}

	return cfg, nil
}

// ServerTLS returns the *tls.Config the pool's server listener uses, or nil
// when no CA is configured (plaintext HTTP). Like ClientTLS, it takes no
// server name: cfg.TLS is called with an empty one.
func (i Identity) ServerTLS() (*tls.Config, liberr.Error) {
	if !i.HasCA() {
		return nil, nil
	}

	cfg, e := i.buildConfig()
	if e != nil {
		return nil, e
	}

	c := cfg.TLS("")
	c.ClientAuth = tls.RequireAndVerifyClientCert
	c.InsecureSkipVerify = false

	return c, nil
}

// ClientTLS returns the *tls.Config a client handler dials a peer with, or
// nil when no CA is configured. Hostname verification is disabled: the
// connection is still fully verified against the CA bundle via
// VerifyPeerCertificate, it simply does not additionally require the
// server's SAN/CN to match the dialed address (spec.md §4.6 — peers are
// identified by certificate identity, not by hostname, so IP-based tests
// and NAT scenarios work).
func (i Identity) ClientTLS() (*tls.Config, liberr.Error) {
	if !i.HasCA() {
		return nil, nil
	}

	cfg, e := i.buildConfig()
	if e != nil {
		return nil, e
	}

	c := cfg.TLS("")
	c.InsecureSkipVerify = true
	c.VerifyPeerCertificate = verifyAgainstPool(c.RootCAs)

	return c, nil
}

// verifyAgainstPool builds a VerifyPeerCertificate callback that performs
// the chain verification crypto/tls skips when InsecureSkipVerify disables
// hostname checking, without re-enabling the hostname check itself.
func verifyAgainstPool(roots *x509.CertPool) func([][]byte, [][]*x509.Certificate) error {
	return func(rawCerts [][]byte, _ [][]*x509.Certificate) error {
		if len(rawCerts) == 0 {
			return ErrorNoPeerCertificate.Error(nil)
		}

		leaf, err := x509.ParseCertificate(rawCerts[0])
		if err != nil {
			return err
		}

		opts := x509.VerifyOptions{Roots: roots}
		_, err = leaf.Verify(opts)
		return err
	}
}
