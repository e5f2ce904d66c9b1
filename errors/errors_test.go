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

package errors_test

import (
	stderrors "errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	liberr "github/sabouaram/tupledb/errors"
)

const testCode liberr.CodeError = liberr.MinPkgCLI + 1

func init() {
	liberr.RegisterIdFctMessage(testCode, func(code liberr.CodeError) string {
		if code == testCode {
			return "synthetic test failure"
		}
		return liberr.NullMessage
	})
}

var _ = Describe("CodeError", func() {
	AfterEach(func() {
		liberr.SetModeReturnError(liberr.Default)
	})

	It("Error carries the registered message and code", func() {
		err := testCode.Error()

		Expect(err.Error()).To(Equal("synthetic test failure"))
		Expect(err.IsCode(testCode)).To(BeTrue())
		Expect(err.GetCode()).To(Equal(testCode))
	})

	It("Error chains parents and HasCode walks them", func() {
		parent := liberr.UnknownError.Error(stderrors.New("dial failed"))
		err := testCode.Error(parent)

		Expect(err.HasParent()).To(BeTrue())
		Expect(err.HasCode(liberr.UnknownError)).To(BeTrue())
		Expect(err.HasCode(testCode)).To(BeTrue())
	})

	It("IfError returns nil when every argument is nil", func() {
		Expect(testCode.IfError(nil, nil)).To(BeNil())
	})

	It("IfError returns a combined error when at least one argument is non-nil", func() {
		err := testCode.IfError(nil, stderrors.New("space 2 failed"))
		Expect(err).NotTo(BeNil())
		Expect(err.HasParent()).To(BeTrue())
	})

	It("IsCode reports false for an unrelated error", func() {
		Expect(liberr.IsCode(stderrors.New("plain"), testCode)).To(BeFalse())
	})

	It("IsCode reports true once wrapped with the matching code", func() {
		wrapped := testCode.Error()
		Expect(liberr.IsCode(wrapped, testCode)).To(BeTrue())
	})

	It("GetTrace resolves to the call site that built the error", func() {
		err := testCode.Error()
		Expect(err.GetTrace()).NotTo(BeEmpty())
	})

	It("SetModeReturnError changes what Error() renders", func() {
		err := testCode.Error()

		liberr.SetModeReturnError(liberr.CodeMessage)
		Expect(err.Error()).To(Equal(err.CodeError("")))
		Expect(err.Error()).To(ContainSubstring("synthetic test failure"))

		liberr.SetModeReturnError(liberr.CodeMessageTrace)
		Expect(err.Error()).To(Equal(err.CodeErrorTrace("")))
	})
})
