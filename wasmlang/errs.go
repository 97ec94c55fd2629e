package wasmlang

import "errors"

var (
	// ErrParse means the bytecode is not a wasm module at all.
	ErrParse = errors.New("wasm parse error")
	// ErrCompile means the module or its grammar manifest failed to
	// compile.
	ErrCompile = errors.New("wasm compile error")
	// ErrInstantiate means the module could not be instantiated or
	// does not honor the grammar module contract.
	ErrInstantiate = errors.New("wasm instantiate error")
	// ErrAllocate means the module's reported manifest location is
	// unusable.
	ErrAllocate = errors.New("wasm allocate error")
)
