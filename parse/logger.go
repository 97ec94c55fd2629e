package parse

// LogType classifies parser log lines.
type LogType uint8

const (
	// LogParse lines describe automaton steps: shifts, reduces,
	// subtree reuse.
	LogParse LogType = iota
	// LogLex lines describe lexed tokens.
	LogLex
)

func (t LogType) String() string {
	if t == LogLex {
		return "lex"
	}
	return "parse"
}

// LogFunc receives one line per internal parse or lex step. It must
// not reconfigure the parser during a parse.
type LogFunc func(LogType, string)
