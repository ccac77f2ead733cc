/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
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

package certificates

import (
	"crypto/tls"
	"io"

	tlsaut "github.com/TNO-MPC/communication/certificates/auth"
	tlscas "github.com/TNO-MPC/communication/certificates/ca"
	tlscpr "github.com/TNO-MPC/communication/certificates/cipher"
	tlscrt "github.com/TNO-MPC/communication/certificates/certs"
	tlscrv "github.com/TNO-MPC/communication/certificates/curves"
	tlsvrs "github.com/TNO-MPC/communication/certificates/tlsversion"
)

// config is the concrete, thread-agnostic implementation of TLSConfig.
// Callers needing concurrent access should confine mutation to
// setup time and share the *tls.Config produced by TLS/TlsConfig afterwards.
type config struct {
	rand io.Reader

	cert       []tlscrt.Cert
	cipherList []tlscpr.Cipher
	curveList  []tlscrv.Curves

	caRoot []tlscas.Cert

	clientAuth tlsaut.ClientAuth
	clientCA   []tlscas.Cert

	tlsMinVersion tlsvrs.Version
	tlsMaxVersion tlsvrs.Version

	dynSizingDisabled     bool
	ticketSessionDisabled bool
}

func (o *config) RegisterRand(rand io.Reader) {
	o.rand = rand
}

func (o *config) SetVersionMin(v tlsvrs.Version) {
	o.tlsMinVersion = v
}

func (o *config) GetVersionMin() tlsvrs.Version {
	return o.tlsMinVersion
}

func (o *config) SetVersionMax(v tlsvrs.Version) {
	o.tlsMaxVersion = v
}

func (o *config) GetVersionMax() tlsvrs.Version {
	return o.tlsMaxVersion
}

func (o *config) SetCipherList(c []tlscpr.Cipher) {
	o.cipherList = make([]tlscpr.Cipher, 0)
	o.AddCiphers(c...)
}

func (o *config) AddCiphers(c ...tlscpr.Cipher) {
	o.cipherList = append(o.cipherList, c...)
}

func (o *config) GetCiphers() []tlscpr.Cipher {
	res := make([]tlscpr.Cipher, 0)

	for _, i := range o.cipherList {
		if tlscpr.Check(i.Uint16()) {
			res = append(res, i)
		}
	}

	return res
}

func (o *config) SetDynamicSizingDisabled(flag bool) {
	o.dynSizingDisabled = flag
}

func (o *config) SetSessionTicketDisabled(flag bool) {
	o.ticketSessionDisabled = flag
}

func (o *config) Clone() TLSConfig {
	n := &config{
		rand:                  o.rand,
		clientAuth:            o.clientAuth,
		tlsMinVersion:         o.tlsMinVersion,
		tlsMaxVersion:         o.tlsMaxVersion,
		dynSizingDisabled:     o.dynSizingDisabled,
		ticketSessionDisabled: o.ticketSessionDisabled,
	}

	n.cert = append(make([]tlscrt.Cert, 0, len(o.cert)), o.cert...)
	n.cipherList = append(make([]tlscpr.Cipher, 0, len(o.cipherList)), o.cipherList...)
	n.curveList = append(make([]tlscrv.Curves, 0, len(o.curveList)), o.curveList...)
	n.caRoot = append(make([]tlscas.Cert, 0, len(o.caRoot)), o.caRoot...)
	n.clientCA = append(make([]tlscas.Cert, 0, len(o.clientCA)), o.clientCA...)

	return n
}

// TlsConfig builds the *tls.Config for this TLSConfig. serverName, when
// non-empty, is set on the resulting config for SNI on the client side.
func (o *config) TlsConfig(serverName string) *tls.Config {
	cnf := &tls.Config{
		MinVersion: uint16(tls.VersionTLS12),
		MaxVersion: uint16(tls.VersionTLS13),
	}

	if o.rand != nil {
		cnf.Rand = o.rand
	}

	if serverName != "" {
		cnf.ServerName = serverName
	}

	if o.ticketSessionDisabled {
		cnf.SessionTicketsDisabled = true
	}

	if o.dynSizingDisabled {
		cnf.DynamicRecordSizingDisabled = true
	}

	if o.tlsMinVersion != tlsvrs.VersionUnknown {
		cnf.MinVersion = o.tlsMinVersion.TLS()
	}

	if o.tlsMaxVersion != tlsvrs.VersionUnknown {
		cnf.MaxVersion = o.tlsMaxVersion.TLS()
	}

	if cs := o.GetCiphers(); len(cs) > 0 {
		cnf.PreferServerCipherSuites = true
		for _, c := range cs {
			cnf.CipherSuites = append(cnf.CipherSuites, c.TLS())
		}
	}

	if cv := o.GetCurves(); len(cv) > 0 {
		for _, c := range cv {
			cnf.CurvePreferences = append(cnf.CurvePreferences, tls.CurveID(c.Uint16()))
		}
	}

	if pool := o.GetRootCAPool(); len(o.caRoot) > 0 {
		cnf.RootCAs = pool
	}

	if len(o.cert) > 0 {
		for _, c := range o.cert {
			cnf.Certificates = append(cnf.Certificates, c.TLS())
		}
	}

	if o.clientAuth != tlsaut.NoClientCert {
		cnf.ClientAuth = o.clientAuth.TLS()
		if pool := o.GetClientCAPool(); len(o.clientCA) > 0 {
			cnf.ClientCAs = pool
		}
	}

	return cnf
}

func (o *config) TLS(serverName string) *tls.Config {
	return o.TlsConfig(serverName)
}

// Config snapshots this TLSConfig into the mapstructure-friendly Config
// type used for (de)serialization.
func (o *config) Config() *Config {
	return &Config{
		CipherList:           o.GetCiphers(),
		CurveList:            o.GetCurves(),
		RootCA:               o.GetRootCA(),
		ClientCA:             o.GetClientCA(),
		VersionMin:           o.tlsMinVersion,
		VersionMax:           o.tlsMaxVersion,
		AuthClient:           o.clientAuth,
		DynamicSizingDisable: o.dynSizingDisabled,
		SessionTicketDisable: o.ticketSessionDisabled,
	}
}
