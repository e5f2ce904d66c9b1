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

package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Logger is the structured leveled logger used across this module's
// packages. A nil *Logger is valid and discards everything, so components
// can be constructed without forcing callers to supply one.
type Logger struct {
	entry *logrus.Entry
}

// New builds a Logger writing to w (os.Stderr when w is nil) at lvl.
func New(lvl Level, w io.Writer) *Logger {
	if w == nil {
		w = os.Stderr
	}

	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(lvl.logrus())
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	return &Logger{entry: logrus.NewEntry(l)}
}

// Discard returns a Logger that drops every record.
func Discard() *Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return &Logger{entry: logrus.NewEntry(l)}
}

// With returns a child Logger carrying the given structured fields in
// addition to any the receiver already carries.
func (l *Logger) With(fields map[string]interface{}) *Logger {
	if l == nil {
		return Discard()
	}
	return &Logger{entry: l.entry.WithFields(fields)}
}

func (l *Logger) SetLevel(lvl Level) {
	if l == nil {
		return
	}
	l.entry.Logger.SetLevel(lvl.logrus())
}

func (l *Logger) Debug(msg string) {
	if l != nil {
		l.entry.Debug(msg)
	}
}

func (l *Logger) Info(msg string) {
	if l != nil {
		l.entry.Info(msg)
	}
}

func (l *Logger) Warn(msg string) {
	if l != nil {
		l.entry.Warn(msg)
	}
}

func (l *Logger) Error(msg string) {
	if l != nil {
		l.entry.Error(msg)
	}
}

func (l *Logger) Errorf(format string, args ...interface{}) {
	if l != nil {
		l.entry.Errorf(format, args...)
	}
}
