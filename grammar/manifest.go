package grammar

import (
	"fmt"

	"github.com/goccy/go-yaml"

	"github.com/sylvanparse/sylvan/lang"
)

type manifest struct {
	Name      string       `yaml:"name"`
	Version   uint32       `yaml:"version"`
	Atoms     []string     `yaml:"atoms"`
	Operators []manifestOp `yaml:"operators"`
	Comment   string       `yaml:"comment"`
}

type manifestOp struct {
	Literal    string `yaml:"literal"`
	Precedence int    `yaml:"precedence"`
}

// FromManifest parses a YAML grammar manifest and builds its Language.
//
// A manifest looks like:
//
//	name: arith
//	atoms: [identifier, number]
//	operators:
//	  - {literal: "+", precedence: 1}
//	  - {literal: "*", precedence: 2}
//	comment: "#"
func FromManifest(data []byte) (*lang.Language, error) {
	var m manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadManifest, err)
	}
	def := Def{
		Name:        m.Name,
		Version:     m.Version,
		LineComment: m.Comment,
	}
	for _, atom := range m.Atoms {
		switch atom {
		case "identifier":
			def.Identifiers = true
		case "number":
			def.Numbers = true
		default:
			return nil, fmt.Errorf("%w: unknown atom kind %q", ErrBadManifest, atom)
		}
	}
	for _, op := range m.Operators {
		def.Operators = append(def.Operators, Op{Literal: op.Literal, Prec: op.Precedence})
	}
	return def.Build()
}
