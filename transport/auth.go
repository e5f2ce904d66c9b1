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
	"crypto/sha1"
	"encoding/base64"
	"fmt"
	"io"
)

const greetingSize = 128
const saltLineOffset = 64

// parseGreeting reads the fixed-size server greeting and extracts the raw
// salt used for password scrambling. The greeting's second 64-byte line
// carries a base64-encoded salt; only its first 44 characters are decoded
// (the remainder is padding), giving up to 33 bytes of which scramble uses
// the first 20.
func parseGreeting(r io.Reader) (version string, salt []byte, err error) {
	buf := make([]byte, greetingSize)
	if _, err = io.ReadFull(r, buf); err != nil {
		return "", nil, fmt.Errorf("transport: read greeting: %w", err)
	}

	version = trimNulAndSpace(buf[:saltLineOffset])

	saltLine := trimNulAndSpace(buf[saltLineOffset : saltLineOffset+44])
	decoded, err := base64.StdEncoding.DecodeString(saltLine)
	if err != nil {
		return "", nil, fmt.Errorf("transport: decode greeting salt: %w", err)
	}

	return version, decoded, nil
}

func trimNulAndSpace(b []byte) string {
	end := len(b)
	for end > 0 && (b[end-1] == 0 || b[end-1] == ' ' || b[end-1] == '\n' || b[end-1] == '\r') {
		end--
	}
	return string(b[:end])
}

// scramble derives the authentication token the server expects: a per
// documented double-hash scheme combining the salt with two rounds of
// SHA-1 over the password, XORed against the first hash.
//
//	step1 = sha1(password)
//	step2 = sha1(step1)
//	scramble = sha1(salt[:20] + step2) XOR step1
func scramble(password string, salt []byte) []byte {
	step1 := sha1.Sum([]byte(password))
	step2 := sha1.Sum(step1[:])

	saltPart := salt
	if len(saltPart) > 20 {
		saltPart = saltPart[:20]
	}

	h := sha1.New()
	h.Write(saltPart)
	h.Write(step2[:])
	step3 := h.Sum(nil)

	out := make([]byte, len(step1))
	for i := range out {
		out[i] = step3[i] ^ step1[i]
	}
	return out
}
