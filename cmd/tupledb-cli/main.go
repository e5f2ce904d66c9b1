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

// Command tupledb-cli is a thin demo/ops client for the tupledb package: a
// handful of cobra subcommands that exercise Ping/Insert/Select/Call against
// a live server, wired to the config and logger packages the library itself
// depends on.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-colorable"
	"github.com/spf13/cobra"

	liberrs "github/sabouaram/tupledb/errors"
)

func main() {
	color.Output = colorable.NewColorableStdout()

	root := newRootCommand()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("error: %v", err))
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	app := &app{}
	var verboseErrors string

	cmd := &cobra.Command{
		Use:           "tupledb-cli",
		Short:         "Command-line client for the tupledb async tuple-store library",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			switch verboseErrors {
			case "code":
				liberrs.SetModeReturnError(liberrs.CodeMessage)
			case "trace":
				liberrs.SetModeReturnError(liberrs.CodeMessageTrace)
			case "", "off":
				liberrs.SetModeReturnError(liberrs.Default)
			default:
				return fmt.Errorf("--verbose-errors: expected off|code|trace, got %q", verboseErrors)
			}
			return app.init(cmd.Context())
		},
	}

	cmd.PersistentFlags().StringVar(&app.configPath, "config", "", "config file (default: "+defaultPathHint()+")")
	cmd.PersistentFlags().StringVar(&app.host, "host", "", "server host, overrides config")
	cmd.PersistentFlags().IntVar(&app.port, "port", 0, "server port, overrides config")
	cmd.PersistentFlags().StringVar(&app.user, "user", "", "auth user, overrides config")
	cmd.PersistentFlags().BoolVar(&app.askPassword, "password", false, "prompt for a password instead of reading it from config")
	cmd.PersistentFlags().StringVar(&app.logLevel, "log-level", "info", "debug|info|warn|error")
	cmd.PersistentFlags().StringVar(&verboseErrors, "verbose-errors", "off", "off|code|trace: how much detail printed errors carry")

	cmd.AddCommand(
		newPingCommand(app),
		newInsertCommand(app),
		newSelectCommand(app),
		newCallCommand(app),
		newLoadCommand(app),
	)

	return cmd
}

func defaultPathHint() string {
	return "~/.tupledb.yaml"
}
