package certmail

import (
	"errors"
	"reflect"
	"strings"
	"testing"
	"testing/iotest"
)

func TestRecord_DisplayName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"set", "Ada", "Ada"},
		{"trimmed", "  Ada ", "Ada"},
		{"empty", "", DefaultName},
		{"blank", "   ", DefaultName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := (Record{Name: tt.in}).DisplayName(); got != tt.want {
				t.Errorf("DisplayName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseRecords(t *testing.T) {
	t.Parallel()

	t.Run("maps aliases into records", func(t *testing.T) {
		t.Parallel()

		got, err := ParseRecords(strings.NewReader("Full Name,Email Address\nAda,ada@x.com\n,bob@x.com\n"))
		if err != nil {
			t.Fatalf("ParseRecords() error = %v", err)
		}
		want := []Record{{Name: "Ada", Email: "ada@x.com"}, {Name: "", Email: "bob@x.com"}}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("ParseRecords() = %#v, want %#v", got, want)
		}
	})

	t.Run("read failure is a parse error", func(t *testing.T) {
		t.Parallel()

		_, err := ParseRecords(iotest.ErrReader(errors.New("connection reset")))
		if !errors.Is(err, ErrParse) {
			t.Errorf("ParseRecords() error = %v, want ErrParse", err)
		}
	})

	t.Run("header only yields no records", func(t *testing.T) {
		t.Parallel()

		got, err := ParseRecords(strings.NewReader("name,email\n"))
		if err != nil {
			t.Fatalf("ParseRecords() error = %v", err)
		}
		if len(got) != 0 {
			t.Errorf("ParseRecords() = %#v, want empty", got)
		}
	})
}
