package sqlcheck

import (
	"strings"
	"testing"
)

// fakeSchema is a minimal SchemaContext for tests: table name -> columns.
type fakeSchema map[string][]string

func (f fakeSchema) HasTable(name string) bool {
	_, ok := f.lookup(name)
	return ok
}

func (f fakeSchema) TableColumns(name string) ([]string, bool) {
	return f.lookup(name)
}

func (f fakeSchema) lookup(name string) ([]string, bool) {
	for t, cols := range f {
		if strings.EqualFold(t, name) {
			return cols, true
		}
	}
	return nil, false
}

func TestCollectIdentifiers_Kinds(t *testing.T) {
	ts := Tokenize("SELECT u.name FROM users u JOIN orders o ON o.user_id = u.id")
	refs := CollectIdentifiers(ts)

	want := map[string]IdentifierKind{
		"u.name":    IdentifierColumn,
		"users":     IdentifierTable,
		"u":         IdentifierAlias,
		"orders":    IdentifierTable,
		"o":         IdentifierAlias,
		"o.user_id": IdentifierColumn,
		"u.id":      IdentifierColumn,
	}
	if len(refs) != len(want) {
		t.Fatalf("got %d refs, want %d: %+v", len(refs), len(want), refs)
	}
	for _, ref := range refs {
		if kind, ok := want[ref.Name]; !ok {
			t.Errorf("unexpected identifier %q", ref.Name)
		} else if ref.Kind != kind {
			t.Errorf("identifier %q: kind = %s, want %s", ref.Name, ref.Kind, kind)
		}
	}
}

func TestCollectIdentifiers_ExplicitAlias(t *testing.T) {
	refs := CollectIdentifiers(Tokenize("SELECT price AS amount FROM items"))
	var found bool
	for _, ref := range refs {
		if ref.Name == "amount" {
			found = true
			if ref.Kind != IdentifierAlias {
				t.Errorf("amount: kind = %s, want alias", ref.Kind)
			}
		}
	}
	if !found {
		t.Fatal("alias amount not collected")
	}
}

func TestValidateIdentifiers(t *testing.T) {
	schema := fakeSchema{"users": {"id", "name"}, "orders": {"id", "user_id"}}

	tests := []struct {
		name             string
		input            string
		wantErrors       int
		wantWarnings     int
		wantSuggestions  int
		messageFragments []string
	}{
		{
			name:  "known tables pass clean",
			input: "SELECT id FROM users JOIN orders ON orders.user_id = users.id",
		},
		{
			name:             "unknown table is a warning",
			input:            "SELECT id FROM customers",
			wantWarnings:     1,
			messageFragments: []string{`"customers"`},
		},
		{
			name:             "qualified unknown table is a warning",
			input:            "SELECT id FROM dbo.customers",
			wantWarnings:     1,
			messageFragments: []string{"dbo.customers"},
		},
		{
			name:  "qualified known table passes",
			input: "SELECT id FROM dbo.users",
		},
		{
			name:             "malformed bare identifier is an error",
			input:            "SELECT * FROM #temp",
			wantErrors:       1,
			messageFragments: []string{"invalid identifier"},
		},
		{
			name:             "reserved word in name position is a suggestion",
			input:            "SELECT id FROM users, \"Order\" WHERE user IS NOT NULL",
			wantErrors:       0,
			wantSuggestions:  0,
			messageFragments: nil,
		},
		{
			name:             "unquoted reserved word after FROM",
			input:            "SELECT name FROM user",
			wantSuggestions:  1,
			messageFragments: []string{"reserved word"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issues := ValidateIdentifiers(Tokenize(tt.input), schema)
			var errs, warns, suggs int
			for _, is := range issues {
				switch is.Severity {
				case SeverityError:
					errs++
				case SeverityWarning:
					warns++
				case SeveritySuggestion:
					suggs++
				}
			}
			if errs != tt.wantErrors || warns != tt.wantWarnings || suggs != tt.wantSuggestions {
				t.Errorf("got errors=%d warnings=%d suggestions=%d, want %d/%d/%d: %+v",
					errs, warns, suggs, tt.wantErrors, tt.wantWarnings, tt.wantSuggestions, issues)
			}
			for _, frag := range tt.messageFragments {
				found := false
				for _, is := range issues {
					if strings.Contains(is.Message, frag) {
						found = true
						break
					}
				}
				if !found {
					t.Errorf("no issue message contains %q: %+v", frag, issues)
				}
			}
		})
	}
}

func TestValidateIdentifiers_NilSchemaSkipsTableChecks(t *testing.T) {
	issues := ValidateIdentifiers(Tokenize("SELECT id FROM not_a_real_table"), nil)
	for _, is := range issues {
		if is.Severity == SeverityWarning {
			t.Errorf("nil schema should not warn about tables: %+v", is)
		}
	}
}
