package filter

import (
	"testing"

	apperrors "github.com/bonitaforward/bonita-forward/internal/platform/errors"
	"github.com/google/go-cmp/cmp"
)

var testSchema = Schema{
	"category":  {Column: "category_key", Type: String},
	"name":      {Column: "name", Type: String},
	"published": {Column: "published", Type: Bool},
	"rank":      {Column: "rank", Type: Int},
}

func TestParseEmptyFilter(t *testing.T) {
	t.Parallel()

	cond, err := testSchema.Parse("   ")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if !cond.Empty() {
		t.Fatalf("condition = %+v, want empty", cond)
	}
}

func TestParseTranslatesToSQL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		filter string
		want   SQLCondition
	}{
		{
			name:   "string equality",
			filter: `category = "food"`,
			want:   SQLCondition{Clause: "category_key = ?", Params: []any{"food"}},
		},
		{
			name:   "not equals",
			filter: `category != "food"`,
			want:   SQLCondition{Clause: "category_key != ?", Params: []any{"food"}},
		},
		{
			name:   "and",
			filter: `category = "food" AND rank > 2`,
			want:   SQLCondition{Clause: "(category_key = ? AND rank > ?)", Params: []any{"food", int64(2)}},
		},
		{
			name:   "or",
			filter: `category = "food" OR category = "health"`,
			want:   SQLCondition{Clause: "(category_key = ? OR category_key = ?)", Params: []any{"food", "health"}},
		},
		{
			name:   "bare boolean",
			filter: `published`,
			want:   SQLCondition{Clause: "published = ?", Params: []any{1}},
		},
		{
			name:   "negated boolean",
			filter: `NOT published`,
			want:   SQLCondition{Clause: "NOT (published = ?)", Params: []any{1}},
		},
		{
			name:   "has substring",
			filter: `name:"Caf_"`,
			want:   SQLCondition{Clause: `LOWER(name) LIKE ? ESCAPE '\'`, Params: []any{`%caf\_%`}},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := testSchema.Parse(tc.filter)
			if err != nil {
				t.Fatalf("Parse(%q) error = %v", tc.filter, err)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("Parse(%q) mismatch (-want +got):\n%s", tc.filter, diff)
			}
		})
	}
}

func TestParseRejectsUnknownFields(t *testing.T) {
	t.Parallel()

	for _, filter := range []string{`owner = "x"`, `category = `, `rank < "a"`} {
		if _, err := testSchema.Parse(filter); apperrors.CodeOf(err) != apperrors.CodeFilterInvalid {
			t.Fatalf("Parse(%q) error = %v, want filter invalid", filter, err)
		}
	}
}
