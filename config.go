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

package tupledb

import (
	"github.com/go-playground/validator/v10"

	"github/sabouaram/tupledb/transport"
)

// Config is the full client constructor configuration: the connection
// policy plus the one schema-layer option, a static spaces override.
type Config struct {
	transport.Config `mapstructure:",squash"`

	// SpacesFile, when set, loads a static space/index/field description
	// from this YAML file instead of running discovery against the server.
	SpacesFile string `mapstructure:"spaces_file"`
}

// DefaultConfig returns the same baseline policy as transport.DefaultConfig,
// with no static spaces override.
func DefaultConfig() Config {
	return Config{Config: transport.DefaultConfig()}
}

var validate = validator.New()

// Validate runs constructor-time validation over the embedded transport
// config and this package's own fields.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return ErrorInvalidConfig.Error(err)
	}
	return nil
}
