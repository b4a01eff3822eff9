package knowledge

import (
	"reflect"
	"testing"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{
			name:  "strips punctuation and short words",
			query: "What time does the keynote start?",
			want:  []string{"What", "time", "does", "the", "keynote", "start"},
		},
		{
			name:  "all words too short falls back to raw query",
			query: "to be",
			want:  []string{"to be"},
		},
		{
			name:  "empty query falls back to itself",
			query: "",
			want:  []string{""},
		},
		{
			name:  "quotes stripped from edges",
			query: `"agents" talks`,
			want:  []string{"agents", "talks"},
		},
		{
			name:  "interior punctuation preserved",
			query: "what's an agent",
			want:  []string{"what's", "agent"},
		},
		{
			name:  "length counts characters not bytes",
			query: "日本 conference",
			want:  []string{"conference"},
		},
		{
			name:  "three character multibyte word kept",
			query: "日本語 talks",
			want:  []string{"日本語", "talks"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize(tt.query)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Tokenize(%q) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}

func TestBuildFilters(t *testing.T) {
	// 6 qualifying tokens yield 12 predicates, titles first
	filters := BuildFilters("What time does the keynote start?")

	if len(filters) != 12 {
		t.Fatalf("expected 12 filters, got %d", len(filters))
	}
	for i, f := range filters {
		wantCol := "title"
		if i >= 6 {
			wantCol = "description"
		}
		if f.Column != wantCol {
			t.Errorf("filter %d column = %s, want %s", i, f.Column, wantCol)
		}
	}
}

func TestBuildFiltersPerToken(t *testing.T) {
	filters := BuildFilters("keynote schedule")
	if len(filters) != 4 {
		t.Fatalf("expected 2 tokens x 2 columns = 4 filters, got %d", len(filters))
	}

	want := []Filter{
		{Column: "title", Token: "keynote"},
		{Column: "title", Token: "schedule"},
		{Column: "description", Token: "keynote"},
		{Column: "description", Token: "schedule"},
	}
	if !reflect.DeepEqual(filters, want) {
		t.Errorf("BuildFilters = %v, want %v", filters, want)
	}
}

func TestBuildFiltersShortQuery(t *testing.T) {
	// Every word too short: the raw query becomes the sole token,
	// so exactly 2 predicates remain.
	filters := BuildFilters("to be")
	want := []Filter{
		{Column: "title", Token: "to be"},
		{Column: "description", Token: "to be"},
	}
	if !reflect.DeepEqual(filters, want) {
		t.Errorf("BuildFilters(%q) = %v, want %v", "to be", filters, want)
	}
}

func TestOrClause(t *testing.T) {
	got := orClause([]Filter{
		{Column: "title", Token: "keynote"},
		{Column: "description", Token: "keynote"},
	})
	want := "(title.ilike.%keynote%,description.ilike.%keynote%)"
	if got != want {
		t.Errorf("orClause = %q, want %q", got, want)
	}
}
