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

// Package poolconfig loads the file-based configuration surface spec.md §6
// names (TLS identity, timeout, retry cap, peer table) and builds a ready
// *pool.Pool from it, so a deployment never hand-writes the AddServer/
// AddClient wiring itself.
package poolconfig

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	liberr "github.com/TNO-MPC/communication/errors"
	"github.com/TNO-MPC/communication/pool"
	"github.com/TNO-MPC/communication/tlsconf"
)

func secondsToDuration(s int) time.Duration {
	return time.Duration(s) * time.Second
}

// ServerEndpointConfig is the local listener the pool's single server binds
// to, per spec.md §4.5 add_server.
type ServerEndpointConfig struct {
	Addr string `mapstructure:"addr" json:"addr" yaml:"addr" toml:"addr" validate:"required"`

	// Port is the local bind port; 0 follows the 80/443 TLS convention
	// (spec.md §6).
	Port int `mapstructure:"port" json:"port" yaml:"port" toml:"port" validate:"gte=0,lte=65535"`

	// ExternalPort is the deprecated outbound-cookie override (spec.md §9);
	// 0 means "same as Port".
	ExternalPort int `mapstructure:"external_port" json:"external_port" yaml:"external_port" toml:"external_port" validate:"gte=0,lte=65535"`
}

// PeerConfig is one row of the peer table: a named remote pool member to
// dial, per spec.md §4.5 add_client.
type PeerConfig struct {
	Name string `mapstructure:"name" json:"name" yaml:"name" toml:"name" validate:"required"`
	Addr string `mapstructure:"addr" json:"addr" yaml:"addr" toml:"addr" validate:"required"`

	// Port is the remote dial port; 0 follows the same 80/443 convention
	// AddClient applies (see DESIGN.md's Open Question decision).
	Port int `mapstructure:"port" json:"port" yaml:"port" toml:"port" validate:"gte=0,lte=65535"`

	// CertFile, when set, is this peer's certificate, used to derive the
	// certificate-identity form of registration (spec.md §4.6).
	CertFile string `mapstructure:"cert_file" json:"cert_file" yaml:"cert_file" toml:"cert_file"`
}

// Config is the complete file-loadable surface needed to construct a Pool,
// grounded on nabbar-golib's httpserver.ServerConfig/certificates.Config
// shape (struct tags, validator-driven Validate, viper-driven Load).
type Config struct {
	// Identity carries the TLS key material (spec.md §4.6); a zero value
	// disables TLS for the whole pool.
	Identity tlsconf.Identity `mapstructure:"identity" json:"identity" yaml:"identity" toml:"identity"`

	// Timeout is the default per-message timeout (spec.md §6), applied
	// whenever an operation's own timeout argument is zero.
	Timeout int `mapstructure:"timeout_seconds" json:"timeout_seconds" yaml:"timeout_seconds" toml:"timeout_seconds" validate:"gte=0"`

	// MaxRetries is the default retry cap (spec.md §6); negative means
	// unbounded, per peer.Handler.PostBytes.
	MaxRetries int `mapstructure:"max_retries" json:"max_retries" yaml:"max_retries" toml:"max_retries"`

	Server ServerEndpointConfig `mapstructure:"server" json:"server" yaml:"server" toml:"server"`
	Peers  []PeerConfig         `mapstructure:"peers" json:"peers" yaml:"peers" toml:"peers" validate:"dive"`
}

// Validate checks the struct tags above via go-playground/validator and
// additionally rejects a peer table with duplicate names, in the style of
// httpserver.ServerConfig.Validate / tlsconf.Identity.Validate.
func (c Config) Validate() liberr.Error {
	val := validator.New()

	if err := val.Struct(c); err != nil {
		if e, ok := err.(*validator.InvalidValidationError); ok {
			return ErrorConfigValidate.Error(e)
		}

		out := ErrorConfigValidate.Error(nil)
		for _, e := range err.(validator.ValidationErrors) {
			//nolint goerr113
			out.Add(fmt.Errorf("config field '%s' fails constraint '%s'", e.StructNamespace(), e.ActualTag()))
		}
		return out
	}

	seen := make(map[string]bool, len(c.Peers))
	for _, p := range c.Peers {
		if seen[p.Name] {
			return ErrorDuplicatePeerName.Error(nil)
		}
		seen[p.Name] = true
	}

	return nil
}

// Load reads path (any format viper recognizes from its extension: yaml,
// toml, json, ...) and decodes it into a Config, in the style of the
// teacher's own `viper.New(); v.SetConfigFile(path); v.Unmarshal(&cfg)`
// documented usage.
func Load(path string) (*Config, liberr.Error) {
	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, ErrorConfigRead.Error(err)
	}

	var cfg Config
	opt := viper.DecoderConfigOption(func(d *mapstructure.DecoderConfig) {
		d.TagName = "mapstructure"
		d.WeaklyTypedInput = true
	})

	if err := v.Unmarshal(&cfg, opt); err != nil {
		return nil, ErrorConfigDecode.Error(err)
	}

	return &cfg, nil
}

// Build validates the configuration and constructs a ready Pool: a server
// endpoint plus one client handler per configured peer, per spec.md §4.5
// Construction.
func (c Config) Build() (*pool.Pool, liberr.Error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	timeout := secondsToDuration(c.Timeout)

	p := pool.New(c.Identity, timeout, c.MaxRetries)

	if err := p.AddServer(c.Server.Addr, c.Server.Port, c.Server.ExternalPort); err != nil {
		return nil, err
	}

	for _, peer := range c.Peers {
		if _, err := p.AddClient(peer.Name, peer.Addr, peer.Port, peer.CertFile); err != nil {
			p.Shutdown()
			return nil, err
		}
	}

	return p, nil
}
