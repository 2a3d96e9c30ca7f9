package app

import (
	"errors"
	"strconv"
	"strings"
)

// Callback payloads are |-delimited strings: the first field is the action
// tag, the rest are positional arguments. The delimiter and field order are
// a wire format: buttons rendered by older messages must keep parsing.
const callbackSep = "|"

var errMalformedCallback = errors.New("malformed callback payload")

// Callback is a parsed inline-button payload.
type Callback struct {
	Action string
	Args   []string
}

func ParseCallback(data string) (Callback, error) {
	if data == "" {
		return Callback{}, errMalformedCallback
	}
	parts := strings.Split(data, callbackSep)
	return Callback{Action: parts[0], Args: parts[1:]}, nil
}

// IntArg returns the i-th argument as an int. Malformed payloads (missing or
// non-numeric fields) come back as errMalformedCallback so the dispatcher can
// toast instead of crash.
func (c Callback) IntArg(i int) (int, error) {
	if i >= len(c.Args) {
		return 0, errMalformedCallback
	}
	v, err := strconv.Atoi(c.Args[i])
	if err != nil {
		return 0, errMalformedCallback
	}
	return v, nil
}

func (c Callback) StrArg(i int) (string, error) {
	if i >= len(c.Args) {
		return "", errMalformedCallback
	}
	return c.Args[i], nil
}

// BuildCallback assembles a payload in the action|arg|... format.
func BuildCallback(action string, args ...string) string {
	if len(args) == 0 {
		return action
	}
	return action + callbackSep + strings.Join(args, callbackSep)
}

func itoa(v int) string { return strconv.Itoa(v) }
