package certmail

import (
	"fmt"
	"io"
	"strings"

	"github.com/alnah/go-certmail/internal/roster"
)

// DefaultName replaces an empty participant name.
const DefaultName = "Participant"

// Record is one participant.
type Record struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// DisplayName returns the trimmed name, or DefaultName when empty.
func (r Record) DisplayName() string {
	if name := strings.TrimSpace(r.Name); name != "" {
		return name
	}
	return DefaultName
}

// ParseRecords reads a participant table (name and email columns, header
// aliases allowed). Malformed rows are kept with empty fields; only a read
// failure is an error.
func ParseRecords(r io.Reader) ([]Record, error) {
	entries, err := roster.Read(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	records := make([]Record, len(entries))
	for i, e := range entries {
		records[i] = Record(e)
	}
	return records, nil
}
