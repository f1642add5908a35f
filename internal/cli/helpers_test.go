package cli

import (
	stderrors "errors"
	"testing"

	"github.com/hsliu/cnstock/internal/errors"
)

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"plain error", stderrors.New("boom"), 1},
		{"invalid params", errors.InvalidParams("symbol is required"), 2},
		{"unknown source", errors.UnknownSource("yahoo"), 2},
		{"unsupported format", errors.UnsupportedFormat("yaml"), 2},
		{"all sources failed", errors.AllSourcesFailed([]string{"eastmoney: timeout"}), 3},
		{"empty result", errors.EmptyResult("sina"), 3},
		{"internal", errors.Internal(stderrors.New("boom")), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := getExitCode(tt.err); got != tt.want {
				t.Errorf("getExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}
