package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"plain", errors.New("boom"), 1},
		{"app error", New(ErrInvalidDepth, 5, "depth 11"), 5},
		{"wrapped app error", fmt.Errorf("parsing args: %w", New(ErrPageDirectory, 4, "x")), 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestAppErrorUnwrap(t *testing.T) {
	err := Newf(ErrExternalSeed, 3, "seed %s", "http://other.test/")
	if !errors.Is(err, ErrExternalSeed) {
		t.Fatal("expected errors.Is to match sentinel")
	}
	if err.Error() != "seed URL is not internal: seed http://other.test/" {
		t.Errorf("Error() = %q", err.Error())
	}
}
