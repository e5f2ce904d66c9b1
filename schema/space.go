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

// FieldRef names one field of an index: by name when discovery (or a static
// override) resolved it, otherwise by its raw numeric position.
type FieldRef struct {
	Named bool
	Name  string
	Pos   uint32
}

// Index is an ordered access path over one or more fields of a space.
type Index struct {
	ID     uint32
	Name   string
	Fields []FieldRef
}

// Space is the cached descriptor for one server-side space: its numeric id,
// name, ordered field list, a default type for fields beyond the declared
// prefix, and its indexes keyed both by name and by numeric id.
type Space struct {
	ID               uint32
	Name             string
	Fields           []Field
	DefaultFieldType FieldType
	Indexes          map[string]*Index
	IndexesByID      map[uint32]*Index
}

// FieldType returns the coding for the field at pos, falling back to the
// space's default type, then to STR, if pos is past the declared prefix.
func (s *Space) FieldType(pos int) FieldType {
	if pos >= 0 && pos < len(s.Fields) {
		return s.Fields[pos].Type
	}
	if s.DefaultFieldType != "" {
		return s.DefaultFieldType
	}
	return TypeSTR
}

// FieldIndex resolves a field name to its positional index.
func (s *Space) FieldIndex(name string) (int, bool) {
	for i, f := range s.Fields {
		if f.Name == name {
			return i, true
		}
	}
	return 0, false
}
