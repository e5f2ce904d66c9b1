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

import "strings"

// buildSpaces turns the raw metadata rows from the two discovery selects
// into a name-keyed space map: server-internal ("_"-prefixed) spaces are
// skipped, index field positions past the declared field prefix extend the
// space's field list, index field lists are rewritten from numeric position
// to name when known, and spaces left with neither fields nor indexes are
// dropped.
//
// spaceRows: (space_no, uid, space_name, engine, field_count, opts, format).
// indexRows: (space_no, index_no, index_name, index_type, params, parts).
func buildSpaces(spaceRows, indexRows [][]interface{}) map[string]*Space {
	spaces := make(map[string]*Space)
	byID := make(map[uint32]*Space)

	for _, row := range spaceRows {
		if len(row) < 7 {
			continue
		}

		name := asString(row[2])
		if strings.HasPrefix(name, "_") {
			continue
		}

		sp := &Space{
			ID:          asUint32(row[0]),
			Name:        name,
			Indexes:     map[string]*Index{},
			IndexesByID: map[uint32]*Index{},
		}

		if format, ok := row[6].([]interface{}); ok {
			for _, entry := range format {
				pair, ok := entry.([]interface{})
				if !ok || len(pair) < 2 {
					continue
				}
				sp.Fields = append(sp.Fields, Field{Name: asString(pair[0]), Type: FieldType(asString(pair[1]))})
			}
		}

		spaces[name] = sp
		byID[sp.ID] = sp
	}

	for _, row := range indexRows {
		if len(row) < 6 {
			continue
		}

		sp, ok := byID[asUint32(row[0])]
		if !ok {
			continue
		}

		idx := &Index{ID: asUint32(row[1]), Name: asString(row[2])}

		if parts, ok := row[5].([]interface{}); ok {
			for _, entry := range parts {
				pair, ok := entry.([]interface{})
				if !ok || len(pair) < 2 {
					continue
				}

				pos := asUint32(pair[0])
				ft := FieldType(asString(pair[1]))

				if int(pos) < len(sp.Fields) {
					idx.Fields = append(idx.Fields, FieldRef{Named: true, Name: sp.Fields[pos].Name, Pos: pos})
					continue
				}

				for uint32(len(sp.Fields)) <= pos {
					sp.Fields = append(sp.Fields, Field{Type: ft})
				}
				idx.Fields = append(idx.Fields, FieldRef{Pos: pos})
			}
		}

		sp.Indexes[idx.Name] = idx
		sp.IndexesByID[idx.ID] = idx
	}

	for name, sp := range spaces {
		if len(sp.Fields) == 0 && len(sp.Indexes) == 0 {
			delete(spaces, name)
			delete(byID, sp.ID)
		}
	}

	return spaces
}

func asUint32(v interface{}) uint32 {
	switch n := v.(type) {
	case uint32:
		return n
	case uint64:
		return uint32(n)
	case int64:
		return uint32(n)
	case int:
		return uint32(n)
	default:
		return 0
	}
}

func asString(v interface{}) string {
	switch s := v.(type) {
	case string:
		return s
	case []byte:
		return string(s)
	default:
		return ""
	}
}
