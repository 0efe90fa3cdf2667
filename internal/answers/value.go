package answers

import (
	"fmt"
	"strconv"
	"strings"
)

// Value is a recorded answer to a milestone question.
type Value int

const (
	Yes     Value = 1
	No      Value = 2
	Unknown Value = 3
)

// Valid reports whether v is one of Yes, No or Unknown.
func (v Value) Valid() bool {
	return v >= Yes && v <= Unknown
}

func (v Value) String() string {
	switch v {
	case Yes:
		return "yes"
	case No:
		return "no"
	case Unknown:
		return "unknown"
	default:
		return strconv.Itoa(int(v))
	}
}

// ParseValue accepts the numeric form ("1".."3") or the names
// yes/no/unknown (also sim/nao/nao_sei).
func ParseValue(s string) (Value, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "yes", "sim", "s", "y":
		return Yes, nil
	case "2", "no", "nao", "não", "n":
		return No, nil
	case "3", "unknown", "nao_sei", "não sei", "?":
		return Unknown, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidAnswerValue, s)
}
