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
	"os"

	"gopkg.in/yaml.v3"
)

// spacesFileDoc is the on-disk shape of a static spaces override: every
// space spelled out by hand instead of discovered from the server.
type spacesFileDoc struct {
	Spaces map[string]spacesFileSpace `yaml:"spaces"`
}

type spacesFileSpace struct {
	ID          uint32            `yaml:"id"`
	DefaultType string            `yaml:"default_type"`
	Fields      []spacesFileField `yaml:"fields"`
	Indexes     []spacesFileIndex `yaml:"indexes"`
}

type spacesFileField struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

type spacesFileIndex struct {
	ID     uint32   `yaml:"id"`
	Name   string   `yaml:"name"`
	Fields []string `yaml:"fields"`
}

// LoadSpacesFile parses a static schema override, bypassing discovery
// entirely. This is the Go-native shape of the constructor's "spaces" option.
func LoadSpacesFile(path string) (map[string]*Space, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, ErrorStaticSpacesFile.Error(err)
	}

	var doc spacesFileDoc
	if err = yaml.Unmarshal(raw, &doc); err != nil {
		return nil, ErrorStaticSpacesFile.Error(err)
	}

	spaces := make(map[string]*Space, len(doc.Spaces))
	for name, def := range doc.Spaces {
		sp := &Space{
			ID:               def.ID,
			Name:             name,
			DefaultFieldType: FieldType(def.DefaultType),
			Indexes:          map[string]*Index{},
			IndexesByID:      map[uint32]*Index{},
		}

		fieldPos := make(map[string]uint32, len(def.Fields))
		for i, f := range def.Fields {
			sp.Fields = append(sp.Fields, Field{Name: f.Name, Type: FieldType(f.Type)})
			fieldPos[f.Name] = uint32(i)
		}

		for _, rawIdx := range def.Indexes {
			idx := &Index{ID: rawIdx.ID, Name: rawIdx.Name}
			for _, fname := range rawIdx.Fields {
				idx.Fields = append(idx.Fields, FieldRef{Named: true, Name: fname, Pos: fieldPos[fname]})
			}
			sp.Indexes[idx.Name] = idx
			sp.IndexesByID[idx.ID] = idx
		}

		spaces[name] = sp
	}

	return spaces, nil
}
