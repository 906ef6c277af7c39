// Package targets loads the ordered list of listing URLs to scrape.
package targets

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Read parses a newline-delimited URL list. Lines are trimmed; blank lines and
// lines starting with '#' are skipped. Order is preserved.
func Read(r io.Reader) ([]string, error) {
	var urls []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan url list: %w", err)
	}
	return urls, nil
}

// ReadFile loads a URL list from path.
func ReadFile(path string) ([]string, error) {
	f, err := os.Open(path) // #nosec G304 -- path is operator supplied.
	if err != nil {
		return nil, fmt.Errorf("open url list: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()
	return Read(f)
}

// Collect merges the configured sources in order: inline URLs, then the file
// at path (when set), then extra. Entries are trimmed and blanks dropped.
func Collect(inline []string, path string, extra []string) ([]string, error) {
	var out []string
	out = appendClean(out, inline)
	if strings.TrimSpace(path) != "" {
		fromFile, err := ReadFile(path)
		if err != nil {
			return nil, err
		}
		out = append(out, fromFile...)
	}
	out = appendClean(out, extra)
	return out, nil
}

func appendClean(dst, src []string) []string {
	for _, u := range src {
		if u = strings.TrimSpace(u); u != "" {
			dst = append(dst, u)
		}
	}
	return dst
}
