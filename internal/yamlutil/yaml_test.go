package yamlutil

import (
	"errors"
	"strings"
	"testing"
	"time"
)

type sample struct {
	Name    string        `yaml:"name"`
	Width   int           `yaml:"width"`
	Timeout time.Duration `yaml:"timeout"`
}

func TestUnmarshalStrict(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		data    string
		dst     any
		wantErr error
		anyErr  bool
	}{
		{
			name: "valid document",
			data: "name: cert\nwidth: 1200\ntimeout: 30s\n",
			dst:  &sample{},
		},
		{
			name:    "empty data",
			data:    "",
			dst:     &sample{},
			wantErr: ErrNilData,
		},
		{
			name:    "nil destination",
			data:    "name: cert\n",
			dst:     nil,
			wantErr: ErrNilDestination,
		},
		{
			name:   "unknown field rejected",
			data:   "name: cert\nheigth: 800\n",
			dst:    &sample{},
			anyErr: true,
		},
		{
			name:    "too large",
			data:    strings.Repeat("#", MaxInputSize+1),
			dst:     &sample{},
			wantErr: ErrInputTooLarge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := UnmarshalStrict([]byte(tt.data), tt.dst)
			switch {
			case tt.wantErr != nil:
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("UnmarshalStrict() error = %v, want %v", err, tt.wantErr)
				}
			case tt.anyErr:
				if err == nil {
					t.Error("UnmarshalStrict() expected error, got nil")
				}
			default:
				if err != nil {
					t.Errorf("UnmarshalStrict() unexpected error = %v", err)
				}
			}
		})
	}
}

func TestUnmarshalStrict_Values(t *testing.T) {
	t.Parallel()

	var s sample
	if err := UnmarshalStrict([]byte("name: cert\nwidth: 1200\ntimeout: 45s\n"), &s); err != nil {
		t.Fatalf("UnmarshalStrict() error = %v", err)
	}
	if s.Name != "cert" || s.Width != 1200 || s.Timeout != 45*time.Second {
		t.Errorf("decoded = %+v", s)
	}
}
