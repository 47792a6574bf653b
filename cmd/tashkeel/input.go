package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/kbukum/tashkeel/validation"
)

// readText returns the text to work on: the joined arguments, the file at
// path, or all of stdin, in that order of preference. One trailing newline
// is dropped.
func readText(stdin io.Reader, args []string, path string) (string, error) {
	if len(args) > 0 && path != "" {
		return "", errors.New("pass text as arguments or --file, not both")
	}

	var text string
	switch {
	case len(args) > 0:
		text = strings.Join(args, " ")
	case path != "":
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("read input: %w", err)
		}
		text = string(data)
	default:
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		text = string(data)
	}

	text = strings.TrimSuffix(text, "\n")
	text = strings.TrimSuffix(text, "\r")
	if err := validation.New().UTF8("input", text).Validate(); err != nil {
		return "", err
	}
	return text, nil
}

// splitLines splits text into lines, dropping carriage returns.
func splitLines(text string) []string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}
