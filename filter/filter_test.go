package filter

import (
	"context"
	"testing"
	"time"

	"github.com/kodayn/osukit/osuapi"
	"github.com/kodayn/osukit/tracker"
)

func TestCompileFilter(t *testing.T) {
	tests := []struct {
		name        string
		expression  string
		wantErr     bool
		errContains string
	}{
		{
			name:       "valid expression",
			expression: `hasMod("HD")`,
			wantErr:    false,
		},
		{
			name:        "empty expression",
			expression:  "",
			wantErr:     true,
			errContains: "empty expression",
		},
		{
			name:       "invalid syntax",
			expression: `hasMod("unclosed`,
			wantErr:    true,
		},
		{
			name:       "complex expression",
			expression: `hasMod("HD") and Stars > 6.0 and rankAtLeast("S")`,
			wantErr:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filter, err := CompileFilter(tt.expression)

			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error but got none")
				} else if tt.errContains != "" && !contains(err.Error(), tt.errContains) {
					t.Errorf("error %q does not contain %q", err.Error(), tt.errContains)
				}
			} else {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				if filter == nil {
					t.Errorf("expected filter but got nil")
				}
			}
		})
	}
}

func TestFilterEvaluation(t *testing.T) {
	// Create test play
	play := tracker.ScoreInfo{
		Position:  1,
		BeatmapID: 129891,
		UserID:    124493,
		Title:     "FREEDOM DiVE",
		Artist:    "xi",
		Version:   "FOUR DIMENSIONS",
		Creator:   "Nakagawa-Kanon",
		Stars:     7.93,
		BPM:       222.22,
		Status:    osuapi.StatusApproved,
		Mode:      osuapi.ModeOsu,
		Mods:      osuapi.ModHidden | osuapi.ModHardRock,
		Rank:      "SH",
		Accuracy:  99.83,
		PP:        800.5,
		MaxCombo:  2385,
		Misses:    0,
		FullCombo: true,
		Date:      time.Now().AddDate(-1, 0, 0),
	}

	tests := []struct {
		name       string
		expression string
		play       tracker.ScoreInfo
		expected   bool
	}{
		{
			name:       "has mod",
			expression: `hasMod("HD")`,
			play:       play,
			expected:   true,
		},
		{
			name:       "does not have mod",
			expression: `hasMod("FL")`,
			play:       play,
			expected:   false,
		},
		{
			name:       "mod name is case-insensitive",
			expression: `hasMod("hd")`,
			play:       play,
			expected:   true,
		},
		{
			name:       "combined mod string",
			expression: `hasMod("HDHR")`,
			play:       play,
			expected:   true,
		},
		{
			name:       "star comparison",
			expression: `Stars > 7.5`,
			play:       play,
			expected:   true,
		},
		{
			name:       "pp check",
			expression: `PP >= 800`,
			play:       play,
			expected:   true,
		},
		{
			name:       "rank at least",
			expression: `rankAtLeast("S")`,
			play:       play,
			expected:   true,
		},
		{
			name:       "rank below threshold",
			expression: `rankAtLeast("SS")`,
			play:       play,
			expected:   false,
		},
		{
			name:       "status check",
			expression: `statusIs("approved")`,
			play:       play,
			expected:   true,
		},
		{
			name:       "full combo",
			expression: `fullCombo() and Misses == 0`,
			play:       play,
			expected:   true,
		},
		{
			name:       "no mod",
			expression: `noMod()`,
			play:       play,
			expected:   false,
		},
		{
			name:       "mode name",
			expression: `Mode == "osu!"`,
			play:       play,
			expected:   true,
		},
		{
			name:       "artist contains",
			expression: `contains(Artist, "XI")`,
			play:       play,
			expected:   true,
		},
		{
			name:       "date comparison",
			expression: `Date < daysAgo(30)`,
			play:       play,
			expected:   true,
		},
		{
			name:       "negation",
			expression: `not hasMod("DT")`,
			play:       play,
			expected:   true,
		},
		{
			name:       "complex expression",
			expression: `hasMod("HD") and Stars > 7.5 and fullCombo()`,
			play:       play,
			expected:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filter, err := CompileFilter(tt.expression)
			if err != nil {
				t.Fatalf("failed to compile filter: %v", err)
			}

			result := filter.Evaluate(tt.play)
			if result != tt.expected {
				t.Errorf("expected %v but got %v for expression %q", tt.expected, result, tt.expression)
			}
		})
	}
}

func TestParseAndCreateFilter(t *testing.T) {
	matchAll, err := ParseAndCreateFilter("   ")
	if err != nil {
		t.Fatalf("unexpected error for blank expression: %v", err)
	}
	if !matchAll(tracker.ScoreInfo{}) {
		t.Error("blank expression should match every play")
	}

	predicate, err := ParseAndCreateFilter(`Stars >= 6.0`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !predicate(tracker.ScoreInfo{Stars: 7.2}) {
		t.Error("expected 7.2 star play to match")
	}
	if predicate(tracker.ScoreInfo{Stars: 4.1}) {
		t.Error("expected 4.1 star play not to match")
	}

	if _, err := ParseAndCreateFilter(`Stars >`); err == nil {
		t.Error("expected error for invalid expression")
	}
}

func TestConcurrentEvaluation(t *testing.T) {
	// Generate test data
	plays := generateTestScores(1000)

	filter, err := CompileFilter(`hasMod("HD") and Stars > 6.0`)
	if err != nil {
		t.Fatalf("failed to compile filter: %v", err)
	}

	ctx := context.Background()
	evaluator := NewConcurrentEvaluator(WithWorkers(4))

	matches, err := evaluator.Evaluate(ctx, filter, plays)
	if err != nil {
		t.Fatalf("evaluation failed: %v", err)
	}

	// Verify results by sequential evaluation
	var expectedMatches []tracker.ScoreInfo
	for _, play := range plays {
		if filter.Evaluate(play) {
			expectedMatches = append(expectedMatches, play)
		}
	}

	if len(matches) != len(expectedMatches) {
		t.Errorf("expected %d matches but got %d", len(expectedMatches), len(matches))
	}
}

func TestBatchEvaluation(t *testing.T) {
	plays := generateTestScores(500)

	filters := map[string]string{
		"hidden":     `hasMod("HD")`,
		"high-star":  `Stars >= 6.5`,
		"full-combo": `fullCombo()`,
	}

	ctx := context.Background()
	results, err := EvaluateFilters(ctx, filters, plays)
	if err != nil {
		t.Fatalf("batch evaluation failed: %v", err)
	}

	// Verify we got results for all filters
	if len(results) != len(filters) {
		t.Errorf("expected %d filter results but got %d", len(filters), len(results))
	}

	// Verify each filter has reasonable results
	for name, matches := range results {
		if len(matches) == 0 {
			t.Logf("warning: filter %q matched no plays", name)
		}
		t.Logf("filter %q matched %d plays", name, len(matches))
	}
}

func TestFilterManager(t *testing.T) {
	manager := NewManager()
	ctx := context.Background()

	// Test registering filters
	filters := map[string]string{
		"hidden": `hasMod("HD")`,
		"recent": `Date > monthsAgo(6)`,
		"ranked": `statusIs("ranked")`,
	}

	err := manager.RegisterFilters(filters)
	if err != nil {
		t.Fatalf("failed to register filters: %v", err)
	}

	// Test listing filters
	names := manager.ListFilters()
	if len(names) != len(filters) {
		t.Errorf("expected %d filters but got %d", len(filters), len(names))
	}

	// Test getting a filter
	filter, exists := manager.GetFilter("hidden")
	if !exists {
		t.Error("expected filter 'hidden' to exist")
	}
	if filter == nil {
		t.Error("expected non-nil filter")
	}

	// Test evaluating with manager
	plays := generateTestScores(100)
	matches, err := manager.EvaluateFilter(ctx, "hidden", plays)
	if err != nil {
		t.Fatalf("failed to evaluate filter: %v", err)
	}
	if len(matches) == 0 {
		t.Error("expected some matches")
	}

	// Test unregistering
	manager.UnregisterFilter("hidden")
	_, exists = manager.GetFilter("hidden")
	if exists {
		t.Error("expected filter 'hidden' to be removed")
	}
}

func TestCacheEffectiveness(t *testing.T) {
	compiler := NewExprCompiler(WithCache(10))
	expression := `hasMod("HD") and Stars > 6.0`

	// First compilation - should miss cache
	_, err := compiler.Compile(expression)
	if err != nil {
		t.Fatalf("first compilation failed: %v", err)
	}

	// Second compilation - should hit cache
	filter2, err := compiler.Compile(expression)
	if err != nil {
		t.Fatalf("second compilation failed: %v", err)
	}
	if filter2 == nil {
		t.Error("expected non-nil filter from cache")
	}

	// Test cache size
	if cachingCompiler, ok := compiler.(CachingCompiler); ok {
		if cachingCompiler.Size() != 1 {
			t.Errorf("expected cache size 1 but got %d", cachingCompiler.Size())
		}

		// Test clear
		cachingCompiler.Clear()
		if cachingCompiler.Size() != 0 {
			t.Errorf("expected cache size 0 after clear but got %d", cachingCompiler.Size())
		}
	}
}

// Helper function
func contains(s, substr string) bool {
	return len(s) >= len(substr) && s[:len(substr)] == substr || len(s) > len(substr) && contains(s[1:], substr)
}
