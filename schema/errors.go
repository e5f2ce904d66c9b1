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

package schema

import (
	liberr "github/sabouaram/tupledb/errors"
)

const (
	ErrorDiscoveryFailed liberr.CodeError = iota + liberr.MinPkgSchema
	ErrorUnknownSpace
	ErrorUnknownIndex
	ErrorUnknownField
	ErrorStaticSpacesFile
)

func init() {
	if liberr.ExistInMapMessage(ErrorDiscoveryFailed) {
		panic("schema: error code collision, check MinPkgSchema offset")
	}

	liberr.RegisterIdFctMessage(ErrorDiscoveryFailed, getMessage)
}

func getMessage(code liberr.CodeError) (message string) {
	switch code {
	case ErrorDiscoveryFailed:
		return "schema discovery failed"
	case ErrorUnknownSpace:
		return "no such space"
	case ErrorUnknownIndex:
		return "no such index"
	case ErrorUnknownField:
		return "no such field"
	case ErrorStaticSpacesFile:
		return "could not load static spaces file"
	}

	return liberr.NullMessage
}
