// Package roster parses uploaded participant lists.
//
// The dialect is deliberately small: comma separated, a header row, double
// quotes toggle quoting (there is no escaped quote), and every cell is trimmed.
// Malformed rows never fail the parse; they yield empty fields and are dropped
// when both name and email end up empty.
package roster

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// ErrRead indicates the input could not be read.
var ErrRead = errors.New("failed to read participant list")

// MaxInputSize limits parsed input to prevent memory exhaustion (default 5MB).
var MaxInputSize int64 = 5 << 20

const utf8BOM = "\uFEFF"

// Header aliases, checked in order; the first non-empty cell wins.
var (
	nameColumns  = []string{"name", "participant_name", "participant", "full_name"}
	emailColumns = []string{"email", "email_address", "mail"}
)

var (
	lineSplit  = regexp.MustCompile(`\r?\n`)
	whitespace = regexp.MustCompile(`\s+`)
)

// Entry is one participant row.
type Entry struct {
	Name  string
	Email string
}

// Read parses a participant list from r.
func Read(r io.Reader) ([]Entry, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxInputSize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRead, err)
	}
	if int64(len(data)) > MaxInputSize {
		return nil, fmt.Errorf("%w: input exceeds %d bytes", ErrRead, MaxInputSize)
	}
	return Parse(string(data)), nil
}

// Parse parses CSV content using the first non-blank line as the header.
// Returns an empty slice when there is no data row.
func Parse(content string) []Entry {
	normalized := strings.TrimSpace(strings.Replace(content, utf8BOM, "", 1))

	var lines []string
	for _, line := range lineSplit.Split(normalized, -1) {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) < 2 {
		return []Entry{}
	}

	headers := strings.Split(lines[0], ",")
	for i, h := range headers {
		headers[i] = normalizeHeader(h)
	}

	entries := make([]Entry, 0, len(lines)-1)
	for _, line := range lines[1:] {
		values := splitLine(line)
		row := make(map[string]string, len(headers))
		for i, h := range headers {
			if i < len(values) {
				row[h] = strings.TrimSpace(values[i])
			} else {
				row[h] = ""
			}
		}

		e := Entry{
			Name:  firstNonEmpty(row, nameColumns),
			Email: firstNonEmpty(row, emailColumns),
		}
		if e.Name != "" || e.Email != "" {
			entries = append(entries, e)
		}
	}
	return entries
}

// normalizeHeader lower-cases and trims a header cell, mapping whitespace runs to '_'.
func normalizeHeader(h string) string {
	return whitespace.ReplaceAllString(strings.ToLower(strings.TrimSpace(h)), "_")
}

// splitLine splits one CSV line on commas outside double quotes.
// Quote characters are dropped; cells are trimmed.
func splitLine(line string) []string {
	var (
		fields   []string
		current  strings.Builder
		inQuotes bool
	)
	for _, c := range line {
		switch {
		case c == '"':
			inQuotes = !inQuotes
		case c == ',' && !inQuotes:
			fields = append(fields, strings.TrimSpace(current.String()))
			current.Reset()
		default:
			current.WriteRune(c)
		}
	}
	return append(fields, strings.TrimSpace(current.String()))
}

func firstNonEmpty(row map[string]string, keys []string) string {
	for _, k := range keys {
		if v := row[k]; v != "" {
			return v
		}
	}
	return ""
}
