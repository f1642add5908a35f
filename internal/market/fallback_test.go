package market

import (
	"context"
	"fmt"
	"testing"

	"github.com/hsliu/cnstock/internal/common"
	"github.com/hsliu/cnstock/internal/errors"
)

func testLogger() *common.Logger {
	return common.NewSilentLogger()
}

func rows(n int) *Table {
	table := NewTable("v")
	for i := 0; i < n; i++ {
		table.Append(i)
	}
	return table
}

func TestDispatchFirstSuccessWins(t *testing.T) {
	var secondCalled bool
	attempts := []Attempt{
		{Source: "a", Fetch: func(ctx context.Context) (*Table, error) { return rows(1), nil }},
		{Source: "b", Fetch: func(ctx context.Context) (*Table, error) {
			secondCalled = true
			return rows(2), nil
		}},
	}

	table, source, err := Dispatch(context.Background(), testLogger(), attempts)
	if err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	if source != "a" {
		t.Errorf("source = %q, want a", source)
	}
	if table.Len() != 1 {
		t.Errorf("got %d rows, want 1", table.Len())
	}
	if secondCalled {
		t.Error("second source should not be queried after a success")
	}
}

func TestDispatchSkipsErrorsAndEmptyResults(t *testing.T) {
	attempts := []Attempt{
		{Source: "a", Fetch: func(ctx context.Context) (*Table, error) { return nil, fmt.Errorf("down") }},
		{Source: "b", Fetch: func(ctx context.Context) (*Table, error) { return NewTable("v"), nil }},
		{Source: "c", Fetch: func(ctx context.Context) (*Table, error) { return rows(3), nil }},
	}

	table, source, err := Dispatch(context.Background(), testLogger(), attempts)
	if err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	if source != "c" {
		t.Errorf("source = %q, want c", source)
	}
	if table.Len() != 3 {
		t.Errorf("got %d rows, want 3", table.Len())
	}
}

func TestDispatchAggregatesFailures(t *testing.T) {
	attempts := []Attempt{
		{Source: "a", Fetch: func(ctx context.Context) (*Table, error) { return nil, fmt.Errorf("down") }},
		{Source: "b", Fetch: func(ctx context.Context) (*Table, error) { return NewTable("v"), nil }},
	}

	_, _, err := Dispatch(context.Background(), testLogger(), attempts)
	if err == nil {
		t.Fatal("expected error when all sources fail")
	}
	if !errors.Is(err, errors.CodeAllSourcesFailed) {
		t.Errorf("error code = %q, want %q", errors.Code(err), errors.CodeAllSourcesFailed)
	}
}

func TestDispatchDeduplicatesSources(t *testing.T) {
	calls := 0
	attempts := []Attempt{
		{Source: "a", Fetch: func(ctx context.Context) (*Table, error) {
			calls++
			return nil, fmt.Errorf("down")
		}},
		{Source: "a", Fetch: func(ctx context.Context) (*Table, error) {
			calls++
			return rows(1), nil
		}},
	}

	_, _, err := Dispatch(context.Background(), testLogger(), attempts)
	if err == nil {
		t.Fatal("expected failure: the duplicate should have been skipped")
	}
	if calls != 1 {
		t.Errorf("source queried %d times, want 1", calls)
	}
}

func TestDispatchHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	attempts := []Attempt{
		{Source: "a", Fetch: func(ctx context.Context) (*Table, error) {
			t.Error("fetch should not run after cancellation")
			return rows(1), nil
		}},
	}

	_, _, err := Dispatch(ctx, testLogger(), attempts)
	if err != context.Canceled {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestOrderSources(t *testing.T) {
	tests := []struct {
		name      string
		preferred string
		defaults  []string
		want      []string
		wantErr   bool
	}{
		{"empty preference keeps defaults", "", []string{"a", "b"}, []string{"a", "b"}, false},
		{"preference moves to front", "b", []string{"a", "b", "c"}, []string{"b", "a", "c"}, false},
		{"preference already first", "a", []string{"a", "b"}, []string{"a", "b"}, false},
		{"unknown preference rejected", "x", []string{"a", "b"}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := orderSources(tt.preferred, tt.defaults)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				if !errors.Is(err, errors.CodeUnknownSource) {
					t.Errorf("error code = %q, want %q", errors.Code(err), errors.CodeUnknownSource)
				}
				return
			}
			if err != nil {
				t.Fatalf("orderSources failed: %v", err)
			}
			if fmt.Sprint(got) != fmt.Sprint(tt.want) {
				t.Errorf("orderSources = %v, want %v", got, tt.want)
			}
		})
	}
}
