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

package pool_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github/sabouaram/tupledb/errors/pool"
)

var _ = Describe("Pool", func() {
	var p pool.Pool

	BeforeEach(func() {
		p = pool.New()
	})

	It("starts empty", func() {
		Expect(p.Len()).To(Equal(uint64(0)))
		Expect(p.MaxId()).To(Equal(uint64(0)))
		Expect(p.Last()).To(BeNil())
		Expect(p.Error()).To(BeNil())
		Expect(p.Slice()).To(BeEmpty())
	})

	It("assigns sequential indices and ignores nils", func() {
		e1 := errors.New("insert 0 failed")
		e2 := errors.New("insert 1 failed")

		p.Add(e1, nil, e2)

		Expect(p.Len()).To(Equal(uint64(2)))
		Expect(p.Get(1)).To(Equal(e1))
		Expect(p.Get(2)).To(Equal(e2))
		Expect(p.Last()).To(Equal(e2))
	})

	It("Set allows sparse indices and never overwrites with nil", func() {
		p.Add(errors.New("first"))
		p.Set(100, errors.New("at 100"))
		p.Set(1, nil)

		Expect(p.Get(1)).NotTo(BeNil())
		Expect(p.MaxId()).To(Equal(uint64(100)))
	})

	It("Del removes an entry without affecting others", func() {
		e1, e2, e3 := errors.New("a"), errors.New("b"), errors.New("c")
		p.Add(e1, e2, e3)

		p.Del(2)

		Expect(p.Get(2)).To(BeNil())
		Expect(p.Get(1)).To(Equal(e1))
		Expect(p.Get(3)).To(Equal(e3))
		Expect(p.Len()).To(Equal(uint64(2)))
	})

	It("Error combines every stored error into one non-nil value", func() {
		p.Add(errors.New("space 0: write failed"), errors.New("space 1: write failed"))

		err := p.Error()
		Expect(err).NotTo(BeNil())
	})

	It("Clear empties the pool but keeps the sequence counter advancing", func() {
		p.Add(errors.New("a"), errors.New("b"))
		p.Clear()

		Expect(p.Len()).To(Equal(uint64(0)))
		Expect(p.Slice()).To(BeEmpty())

		p.Add(errors.New("c"))
		Expect(p.Get(3)).NotTo(BeNil())
	})
})
