// Package wasmlang loads grammars shipped as portable bytecode
// modules. A grammar module runs in an isolated wazero runtime with no
// host imports; its one obligation is a "grammar_manifest" export
// returning the location of a YAML grammar manifest in linear memory,
// packed as ptr<<32|len. The manifest is compiled with the grammar
// package, so a loaded language behaves exactly like one built
// in-process.
package wasmlang

import (
	"bytes"
	"context"
	"fmt"

	"github.com/tetratelabs/wazero"

	"github.com/sylvanparse/sylvan/grammar"
	"github.com/sylvanparse/sylvan/lang"
)

const manifestExport = "grammar_manifest"

var wasmMagic = []byte{0x00, 0x61, 0x73, 0x6d}

// LoadLanguage instantiates a grammar bytecode module and builds its
// Language. The module is discarded once the manifest has been read;
// the returned language holds nothing from the sandbox.
func LoadLanguage(ctx context.Context, name string, bytecode []byte) (*lang.Language, error) {
	if len(bytecode) < len(wasmMagic) || !bytes.Equal(bytecode[:len(wasmMagic)], wasmMagic) {
		return nil, fmt.Errorf("%w: %q is not a wasm module", ErrParse, name)
	}
	rt := wazero.NewRuntime(ctx)
	defer rt.Close(ctx)

	compiled, err := rt.CompileModule(ctx, bytecode)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrCompile, name, err)
	}
	mod, err := rt.InstantiateModule(ctx, compiled, wazero.NewModuleConfig().WithName(name))
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInstantiate, name, err)
	}
	fn := mod.ExportedFunction(manifestExport)
	if fn == nil {
		return nil, fmt.Errorf("%w: %q exports no %s", ErrInstantiate, name, manifestExport)
	}
	res, err := fn.Call(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInstantiate, name, err)
	}
	if len(res) != 1 {
		return nil, fmt.Errorf("%w: %q: %s returned %d values", ErrInstantiate, name, manifestExport, len(res))
	}
	ptr, size := uint32(res[0]>>32), uint32(res[0])
	mem := mod.Memory()
	if mem == nil {
		return nil, fmt.Errorf("%w: %q exports no memory", ErrAllocate, name)
	}
	manifest, ok := mem.Read(ptr, size)
	if !ok {
		return nil, fmt.Errorf("%w: %q: manifest [%d, %d) outside module memory", ErrAllocate, name, ptr, ptr+size)
	}
	l, err := grammar.FromManifest(manifest)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrCompile, name, err)
	}
	return l, nil
}
