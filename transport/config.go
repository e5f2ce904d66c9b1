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

package transport

import (
	"context"
	"time"
)

// Hooks are optional lifecycle callbacks fired from the connection's own
// goroutines. Implementations MUST NOT block for long or re-enter the
// connection synchronously.
type Hooks struct {
	Connected         func(version string)
	Disconnected      func(err error)
	SchemaInvalidated func()
}

// Config describes one connection's dial and lifecycle policy.
type Config struct {
	Host string `mapstructure:"host" validate:"required"`
	Port int    `mapstructure:"port" validate:"required,gt=0,lte=65535"`

	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`

	// ProxyURL, when set, dials through a SOCKS5 proxy (e.g. socks5://host:1080)
	// instead of connecting directly.
	ProxyURL string `mapstructure:"proxy_url"`

	ReconnectPeriod time.Duration `mapstructure:"reconnect_period"`
	ReconnectAlways bool          `mapstructure:"reconnect_always"`

	ConnectTimeout  time.Duration `mapstructure:"connect_timeout"`
	ConnectAttempts int           `mapstructure:"connect_attempts" validate:"gte=0"`

	RequestTimeout time.Duration `mapstructure:"request_timeout"`

	// MaxPending bounds the pending-request table; 0 means unbounded.
	MaxPending int `mapstructure:"max_pending" validate:"gte=0"`

	Hooks Hooks `mapstructure:"-"`
}

// DefaultConfig returns a Config with the policy a new client gets when the
// caller supplies none: a single connect attempt, no automatic reconnect,
// and no request deadline.
func DefaultConfig() Config {
	return Config{
		ConnectTimeout:  5 * time.Second,
		ConnectAttempts: 1,
	}
}

func (c Config) dialContext(parent context.Context) (context.Context, context.CancelFunc) {
	if c.ConnectTimeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, c.ConnectTimeout)
}
