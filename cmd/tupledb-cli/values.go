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
	"strconv"
	"strings"

	tupledb "github/sabouaram/tupledb"
)

// parseValues turns command-line tokens into tuple/key values: a token that
// parses as an unsigned integer becomes one, everything else is kept as a
// string.
func parseValues(args []string) []interface{} {
	out := make([]interface{}, len(args))
	for i, a := range args {
		if n, err := strconv.ParseUint(a, 10, 64); err == nil {
			out[i] = n
			continue
		}
		out[i] = a
	}
	return out
}

func formatTuple(t *tupledb.Tuple) string {
	if t == nil {
		return "(no rows)"
	}

	var b strings.Builder
	for row := t; row != nil; row = row.Next() {
		fields := make([]string, row.Len())
		for i := 0; i < row.Len(); i++ {
			fields[i] = fmt.Sprintf("%v", row.Get(i))
		}
		b.WriteString("[" + strings.Join(fields, ", ") + "]\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}
