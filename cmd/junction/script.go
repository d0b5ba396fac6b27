package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vango-dev/junction/internal/errors"
	"github.com/vango-dev/junction/pkg/junction"
)

// command is one parsed script line.
type command struct {
	line  int
	op    string
	key   string
	value any
}

// arity lists the operands each script operation takes:
// 0 = none, 1 = key, 2 = key and value.
var arity = map[string]int{
	"set":     2,
	"write":   2,
	"remove":  1,
	"provide": 1,
	"get":     1,
	"reset":   0,
	"dispose": 0,
}

// parseScript reads one operation per line. Blank lines and lines starting
// with # are skipped. Values are parsed as YAML, so `set n 3` stores an int
// and `set s "3"` a string.
func parseScript(r io.Reader) ([]command, error) {
	var cmds []command

	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		cmd, err := parseLine(lineNum, text)
		if err != nil {
			return nil, err
		}
		cmds = append(cmds, cmd)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return cmds, nil
}

func parseLine(lineNum int, text string) (command, error) {
	op, rest, _ := strings.Cut(text, " ")
	rest = strings.TrimSpace(rest)
	cmd := command{line: lineNum, op: op}

	n, ok := arity[op]
	if !ok {
		return cmd, scriptError(lineNum, "unknown operation %q", op)
	}

	switch n {
	case 0:
		if rest != "" {
			return cmd, scriptError(lineNum, "%s takes no arguments", op)
		}
	case 1:
		if rest == "" || strings.ContainsAny(rest, " \t") {
			return cmd, scriptError(lineNum, "%s takes exactly one key", op)
		}
		cmd.key = rest
	case 2:
		key, raw, _ := strings.Cut(rest, " ")
		raw = strings.TrimSpace(raw)
		if key == "" || raw == "" {
			return cmd, scriptError(lineNum, "%s takes a key and a value", op)
		}
		var value any
		if err := yaml.Unmarshal([]byte(raw), &value); err != nil {
			return cmd, scriptError(lineNum, "invalid value %q: %v", raw, err)
		}
		cmd.key = key
		cmd.value = value
	}

	return cmd, nil
}

func scriptError(line int, format string, args ...any) error {
	return errors.New("J201").WithDetailf("line %d: %s", line, fmt.Sprintf(format, args...))
}

// runScript applies cmds to store, writing the result of every get to out.
func runScript(store *junction.Store, cmds []command, out io.Writer) error {
	for _, c := range cmds {
		if err := runCommand(store, c, out); err != nil {
			return fmt.Errorf("line %d (%s): %w", c.line, c.op, err)
		}
	}
	return nil
}

func runCommand(store *junction.Store, c command, out io.Writer) error {
	switch c.op {
	case "set":
		return store.Set(c.key, c.value)
	case "write":
		sig, err := store.Provide(c.key)
		if err != nil {
			return err
		}
		sig.Write(c.value)
	case "remove":
		return store.Remove(c.key)
	case "provide":
		_, err := store.Provide(c.key)
		return err
	case "get":
		v, ok := store.Lookup(c.key)
		if !ok {
			fmt.Fprintf(out, "%s = <absent>\n", c.key)
			return nil
		}
		fmt.Fprintf(out, "%s = %v\n", c.key, v)
	case "reset":
		return store.Reset()
	case "dispose":
		store.Dispose()
	}
	return nil
}
