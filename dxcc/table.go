// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package dxcc

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
)

// Unknown is returned by Resolve for absent or empty codes.
const Unknown = "Unknown"

// LoadError is returned when the entity table source cannot be read at all.
type LoadError struct {
	Source string
	Err    error
}

func (e LoadError) Error() string {
	return fmt.Sprintf("failed to load dxcc entities from %s: %v", e.Source, e.Err)
}

func (e LoadError) Unwrap() error {
	return e.Err
}

// Table maps DXCC entity codes to display names. It is immutable once loaded.
type Table struct {
	entities map[string]string
}

// NewTable builds a Table from an existing mapping. The map is copied.
func NewTable(entities map[string]string) *Table {
	t := &Table{entities: make(map[string]string, len(entities))}
	for k, v := range entities {
		t.entities[k] = v
	}
	return t
}

// Resolve returns the display name for code, or Unknown.
func (t *Table) Resolve(code string) string {
	if t == nil || code == "" {
		return Unknown
	}
	if name, ok := t.entities[code]; ok {
		return name
	}
	return Unknown
}

// Len returns the number of entities in the table.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entities)
}

// LoadFile opens path and parses it with Load.
func LoadFile(path string, logger *zap.Logger) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, LoadError{Source: path, Err: err}
	}
	defer f.Close()

	t, err := Load(f, logger)
	if err != nil {
		return nil, LoadError{Source: path, Err: err}
	}
	return t, nil
}

// Load parses lines of the form `"<code>": "<name>",`. Blank lines and lines
// starting with # are ignored; malformed lines are logged and skipped.
func Load(r io.Reader, logger *zap.Logger) (*Table, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	t := &Table{entities: make(map[string]string)}
	scanner := bufio.NewScanner(r)
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		code, name, ok := parseLine(line)
		if !ok {
			logger.Warn("skipping malformed dxcc line", zap.Int("line", lineNumber), zap.String("content", line))
			continue
		}
		t.entities[code] = name
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return t, nil
}

func parseLine(line string) (string, string, bool) {
	rawCode, rawName, found := strings.Cut(line, ":")
	if !found {
		return "", "", false
	}

	code := unquote(rawCode)
	name := strings.TrimSpace(rawName)
	name = strings.TrimSpace(strings.TrimSuffix(name, ","))
	name = unquote(name)
	if code == "" || name == "" {
		return "", "", false
	}
	return code, name, true
}

func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`) {
		s = s[1 : len(s)-1]
	} else {
		s = strings.Trim(s, `"`)
	}
	return strings.TrimSpace(strings.ReplaceAll(s, `\"`, `"`))
}
