package grammar

import "errors"

var (
	ErrNoAtoms     = errors.New("grammar needs at least one atom kind")
	ErrNoOperators = errors.New("grammar needs at least one operator")
	ErrBadPrec     = errors.New("operator precedence must be positive")
	ErrDupOperator = errors.New("duplicate operator literal")
	ErrBadManifest = errors.New("bad grammar manifest")
)
