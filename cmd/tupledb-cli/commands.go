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
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"

	tupledb "github/sabouaram/tupledb"
	libpol "github/sabouaram/tupledb/errors/pool"
	"github/sabouaram/tupledb/internal/wire"
)

func newPingCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Round-trip the connection",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := a.client.Ping(cmd.Context())
			if err != nil {
				return err
			}
			if _, err = f.Get(cmd.Context()); err != nil {
				return err
			}
			fmt.Println(color.GreenString("pong"))
			return nil
		},
	}
}

func newInsertCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "insert <space> <field>...",
		Short: "Insert a tuple into a space",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			space := tupledb.ParseSpaceRef(args[0])
			f, err := a.client.Insert(cmd.Context(), space, parseValues(args[1:]))
			if err != nil {
				return err
			}
			t, err := f.Get(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Println(formatTuple(t))
			return nil
		},
	}
}

func newSelectCommand(a *app) *cobra.Command {
	var (
		index  string
		limit  uint32
		offset uint32
	)

	cmd := &cobra.Command{
		Use:   "select <space> <key field>...",
		Short: "Select tuples from a space by key",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			space := tupledb.ParseSpaceRef(args[0])
			idx := tupledb.IndexPrimary
			if index != "" {
				idx = tupledb.IndexByName(index)
			}

			f, err := a.client.Select(cmd.Context(), space, idx, parseValues(args[1:]), tupledb.SelectOptions{
				Limit:    limit,
				Offset:   offset,
				Iterator: wire.IterEQ,
			})
			if err != nil {
				return err
			}
			t, err := f.Get(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Println(formatTuple(t))
			return nil
		},
	}

	cmd.Flags().StringVar(&index, "index", "", "index name (default: primary)")
	cmd.Flags().Uint32Var(&limit, "limit", 100, "max rows")
	cmd.Flags().Uint32Var(&offset, "offset", 0, "row offset")
	return cmd
}

func newCallCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "call <proc> <arg>...",
		Short: "Invoke a server-side stored procedure",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := a.client.Call(cmd.Context(), args[0], parseValues(args[1:]))
			if err != nil {
				return err
			}
			t, err := f.Get(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Println(formatTuple(t))
			return nil
		},
	}
}

// newLoadCommand inserts N generated tuples into a space, showing progress
// on an mpb bar - a small load-testing aid, not part of the library surface.
func newLoadCommand(a *app) *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "load <space>",
		Short: "Insert a batch of generated tuples, with a progress bar",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			space := tupledb.ParseSpaceRef(args[0])

			p := mpb.New(mpb.WithWidth(40))
			bar := p.AddBar(int64(count),
				mpb.PrependDecorators(decor.Name("load ")),
				mpb.AppendDecorators(decor.CountersNoUnit("%d / %d"), decor.Percentage()),
			)

			failures := libpol.New()
			for i := 0; i < count; i++ {
				f, err := a.client.Insert(cmd.Context(), space, []interface{}{uint64(i)})
				if err == nil {
					_, err = f.Get(cmd.Context())
				}
				failures.Add(err)
				bar.Increment()
				time.Sleep(time.Millisecond)
			}
			p.Wait()

			if n := failures.Len(); n > 0 {
				fmt.Println(color.YellowString("%d/%d inserts failed", n, count))
				return failures.Error()
			}
			fmt.Println(color.GreenString("inserted %d tuples", count))
			return nil
		},
	}

	cmd.Flags().IntVar(&count, "count", 1000, "number of tuples to insert")
	return cmd
}
