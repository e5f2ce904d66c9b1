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

// Package config loads a tupledb.Config from file and environment, and can
// watch the file for credential rotation. An embedding application reads its
// client settings from somewhere, and this is where that somewhere is.
package config

import (
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/mitchellh/go-homedir"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	tupledb "github/sabouaram/tupledb"
	liberr "github/sabouaram/tupledb/errors"
)

const (
	// ErrorLoad is returned when the backing file cannot be read or parsed.
	ErrorLoad liberr.CodeError = iota + liberr.MinPkgConfig
	// ErrorDecode is returned when the parsed settings don't map onto Config.
	ErrorDecode
)

func init() {
	if liberr.ExistInMapMessage(ErrorLoad) {
		panic("config: error code collision, check MinPkgConfig offset")
	}

	liberr.RegisterIdFctMessage(ErrorLoad, getMessage)
}

func getMessage(code liberr.CodeError) (message string) {
	switch code {
	case ErrorLoad:
		return "loading configuration"
	case ErrorDecode:
		return "decoding configuration"
	}

	return liberr.NullMessage
}

const envPrefix = "TUPLEDB"

// Loader wraps a viper instance bound to one config file plus the
// TUPLEDB_-prefixed environment, and optionally watches that file for
// changes so a rotated password takes effect without a restart.
type Loader struct {
	v *viper.Viper

	mu      sync.Mutex
	onWatch func(tupledb.Config, error)
}

// New builds a Loader with defaults matching tupledb.DefaultConfig already
// set, so a minimal config file only needs to override what it cares about.
func New() *Loader {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	def := tupledb.DefaultConfig()
	v.SetDefault("host", def.Host)
	v.SetDefault("port", def.Port)
	v.SetDefault("reconnect_period", def.ReconnectPeriod)
	v.SetDefault("reconnect_always", def.ReconnectAlways)
	v.SetDefault("connect_timeout", def.ConnectTimeout)
	v.SetDefault("connect_attempts", def.ConnectAttempts)
	v.SetDefault("request_timeout", def.RequestTimeout)
	v.SetDefault("max_pending", def.MaxPending)

	return &Loader{v: v}
}

// DefaultPath returns "<home>/.tupledb.yaml", the path used when the caller
// doesn't name a config file explicitly.
func DefaultPath() (string, error) {
	home, err := homedir.Dir()
	if err != nil {
		return "", liberr.NewErrorTrace(ErrorLoad.Int(), ErrorLoad.Message(), "", 0, err)
	}
	return home + "/.tupledb.yaml", nil
}

// Load reads path (any format viper supports by extension: yaml, json,
// toml, ...) and decodes it into a tupledb.Config.
func (l *Loader) Load(path string) (tupledb.Config, error) {
	l.v.SetConfigFile(path)

	if err := l.v.ReadInConfig(); err != nil {
		return tupledb.Config{}, liberr.NewErrorTrace(ErrorLoad.Int(), ErrorLoad.Message(), "", 0, err)
	}

	return l.decode()
}

func (l *Loader) decode() (tupledb.Config, error) {
	var cfg tupledb.Config

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &cfg,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
		),
	})
	if err != nil {
		return tupledb.Config{}, liberr.NewErrorTrace(ErrorDecode.Int(), ErrorDecode.Message(), "", 0, err)
	}

	if err = dec.Decode(l.v.AllSettings()); err != nil {
		return tupledb.Config{}, liberr.NewErrorTrace(ErrorDecode.Int(), ErrorDecode.Message(), "", 0, err)
	}

	return cfg, nil
}

// Watch re-decodes the config file whenever it changes on disk (e.g. an
// operator rotating the password) and invokes fn with the result. Watch
// returns immediately; fn fires from fsnotify's own goroutine.
func (l *Loader) Watch(fn func(tupledb.Config, error)) {
	l.mu.Lock()
	l.onWatch = fn
	l.mu.Unlock()

	l.v.OnConfigChange(func(_ fsnotify.Event) {
		cfg, err := l.decode()
		l.mu.Lock()
		cb := l.onWatch
		l.mu.Unlock()
		if cb != nil {
			cb(cfg, err)
		}
	})
	l.v.WatchConfig()
}

// ConfigFileUsed returns the path Load most recently read, for diagnostics.
func (l *Loader) ConfigFileUsed() string {
	return l.v.ConfigFileUsed()
}
