package wasmlang

import (
	"context"
	"errors"
	"testing"
)

func uleb(v uint64) []byte {
	var out []byte
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v == 0 {
			return append(out, b)
		}
		out = append(out, b|0x80)
	}
}

func sleb(v int64) []byte {
	var out []byte
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if (v == 0 && b&0x40 == 0) || (v == -1 && b&0x40 != 0) {
			return append(out, b)
		}
		out = append(out, b|0x80)
	}
}

func section(id byte, payload []byte) []byte {
	out := append([]byte{id}, uleb(uint64(len(payload)))...)
	return append(out, payload...)
}

// manifestModule assembles the smallest wasm module that honors the
// grammar module contract: one memory, a data segment holding the
// manifest at offset 8, and a grammar_manifest export returning the
// packed location.
func manifestModule(manifest []byte) []byte {
	const base = 8
	packed := int64(uint64(base)<<32 | uint64(len(manifest)))

	m := []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}
	// type: () -> i64
	m = append(m, section(0x01, []byte{0x01, 0x60, 0x00, 0x01, 0x7e})...)
	// one function of that type
	m = append(m, section(0x03, []byte{0x01, 0x00})...)
	// one memory, min 1 page
	m = append(m, section(0x05, []byte{0x01, 0x00, 0x01})...)

	exp := []byte{0x02}
	exp = append(exp, 0x06)
	exp = append(exp, "memory"...)
	exp = append(exp, 0x02, 0x00)
	exp = append(exp, 0x10)
	exp = append(exp, "grammar_manifest"...)
	exp = append(exp, 0x00, 0x00)
	m = append(m, section(0x07, exp)...)

	body := []byte{0x00, 0x42} // no locals, i64.const
	body = append(body, sleb(packed)...)
	body = append(body, 0x0b)
	code := append([]byte{0x01}, uleb(uint64(len(body)))...)
	code = append(code, body...)
	m = append(m, section(0x0a, code)...)

	data := []byte{0x01, 0x00, 0x41, 0x08, 0x0b} // active segment at i32.const 8
	data = append(data, uleb(uint64(len(manifest)))...)
	data = append(data, manifest...)
	return append(m, section(0x0b, data)...)
}

func TestLoadLanguage(t *testing.T) {
	manifest := []byte(`
name: wasm-arith
atoms: [identifier, number]
operators:
  - {literal: "+", precedence: 1}
  - {literal: "*", precedence: 2}
comment: "#"
`)
	l, err := LoadLanguage(context.Background(), "wasm-arith", manifestModule(manifest))
	if err != nil {
		t.Fatal(err)
	}
	defer l.Release()
	if got := l.Name(); got != "wasm-arith" {
		t.Errorf("name = %q", got)
	}
	if _, ok := l.FieldIDFor("left"); !ok {
		t.Error("loaded language has no left field")
	}
}

func TestLoadLanguageErrors(t *testing.T) {
	ctx := context.Background()
	empty := []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}

	tests := []struct {
		name     string
		bytecode []byte
		want     error
	}{
		{"empty input", nil, ErrParse},
		{"not wasm", []byte("#!/bin/sh"), ErrParse},
		{"truncated module", append(append([]byte{}, empty...), 0x01, 0x7f), ErrCompile},
		{"no manifest export", empty, ErrInstantiate},
		{"bad manifest yaml", manifestModule([]byte(":::\n:")), ErrCompile},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadLanguage(ctx, tt.name, tt.bytecode)
			if !errors.Is(err, tt.want) {
				t.Fatalf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestLoadLanguageBadManifestLocation(t *testing.T) {
	// A module whose export points outside its single memory page.
	const base = 1 << 20
	const manifestLen = 32
	packed := int64(uint64(base)<<32 | uint64(manifestLen))
	body := []byte{0x00, 0x42}
	body = append(body, sleb(packed)...)
	body = append(body, 0x0b)
	var bad []byte
	bad = append(bad, 0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00)
	bad = append(bad, section(0x01, []byte{0x01, 0x60, 0x00, 0x01, 0x7e})...)
	bad = append(bad, section(0x03, []byte{0x01, 0x00})...)
	bad = append(bad, section(0x05, []byte{0x01, 0x00, 0x01})...)
	exp := []byte{0x01, 0x10}
	exp = append(exp, "grammar_manifest"...)
	exp = append(exp, 0x00, 0x00)
	bad = append(bad, section(0x07, exp)...)
	code := append([]byte{0x01}, uleb(uint64(len(body)))...)
	code = append(code, body...)
	bad = append(bad, section(0x0a, code)...)

	_, err := LoadLanguage(context.Background(), "bad-location", bad)
	if !errors.Is(err, ErrAllocate) {
		t.Fatalf("got %v, want ErrAllocate", err)
	}
}
