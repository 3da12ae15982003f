package provider

import (
	"bufio"
	"context"
	"fmt"
	"os"
)

// stdInOutReader is the `read` block's narrow verb: read from a named file,
// or from standard input honoring `multiline`, optionally printing a prompt
// message first (spec.md §4.1 "Read").
type stdInOutReader struct{}

func newStdInOutReader() InputReader { return &stdInOutReader{} }

func (s *stdInOutReader) ReadInput(ctx context.Context, path string, multiline bool, message string) (string, error) {
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("read %q: %w", path, err)
		}
		return string(data), nil
	}

	if message != "" {
		fmt.Fprint(os.Stdout, message)
	}
	scanner := bufio.NewScanner(os.Stdin)
	if !multiline {
		if scanner.Scan() {
			return scanner.Text(), nil
		}
		return "", scanner.Err()
	}
	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	out := ""
	for i, l := range lines {
		if i > 0 {
			out += "\n"
		}
		out += l
	}
	return out, nil
}
