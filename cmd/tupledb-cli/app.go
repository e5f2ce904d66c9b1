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

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"golang.org/x/term"

	tupledb "github/sabouaram/tupledb"
	libcfg "github/sabouaram/tupledb/config"
	"github/sabouaram/tupledb/logger"
)

// app holds the flag values every subcommand shares and the client built
// from them in PersistentPreRunE.
type app struct {
	configPath  string
	host        string
	port        int
	user        string
	askPassword bool
	logLevel    string

	log    *logger.Logger
	client *tupledb.Client
}

func (a *app) init(ctx context.Context) error {
	a.log = logger.New(logger.ParseLevel(a.logLevel), nil)

	path := a.configPath
	if path == "" {
		var err error
		if path, err = libcfg.DefaultPath(); err != nil {
			return err
		}
	}

	loader := libcfg.New()
	cfg, err := loader.Load(path)
	if err != nil {
		if a.host == "" {
			return fmt.Errorf("load config %s: %w (pass --host/--port or create the file)", path, err)
		}
		cfg = tupledb.DefaultConfig()
	}

	if a.host != "" {
		cfg.Host = a.host
	}
	if a.port != 0 {
		cfg.Port = a.port
	}
	if a.user != "" {
		cfg.User = a.user
	}
	if a.askPassword {
		pw, err := readPassword()
		if err != nil {
			return err
		}
		cfg.Password = pw
	}

	client, err := tupledb.New(cfg, a.log)
	if err != nil {
		return err
	}

	if err = client.Connect(ctx); err != nil {
		return err
	}

	a.client = client
	return nil
}

func readPassword() (string, error) {
	fmt.Fprint(color.Output, color.CyanString("password: "))
	pw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(color.Output)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(pw), nil
}
