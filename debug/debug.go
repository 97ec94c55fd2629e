package debug

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
)

type debug struct {
	Parse bool
	Lex   bool
	Alloc bool
	Dot   bool
}

var d *debug

func init() {
	d = &debug{}
	d.Parse = boolEnv("SYLVAN_DEBUG_PARSE")
	d.Lex = boolEnv("SYLVAN_DEBUG_LEX")
	d.Alloc = boolEnv("SYLVAN_DEBUG_ALLOC")
	d.Dot = boolEnv("SYLVAN_DEBUG_DOT")
}

func boolEnv(v string) bool {
	x := os.Getenv(v)
	if x == "" {
		return false
	}
	b, _ := strconv.ParseBool(x)
	return b
}

func Parse() bool {
	return d.Parse
}
func Lex() bool {
	return d.Lex
}
func Alloc() bool {
	return d.Alloc
}
func Dot() bool {
	return d.Dot
}

func LogAny(v any) {
	d, err := json.Marshal(v)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", v)
		return
	}
	os.Stderr.Write(d)
}
