package query

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantMode Mode
		wantTerm string
	}{
		{"Plain word", "dune", ModeGeneral, "dune"},
		{"Empty string", "", ModeGeneral, ""},
		{"Whitespace only", "   ", ModeGeneral, ""},
		{"Double-quoted phrase", `"foo bar"`, ModePhrase, "foo bar"},
		{"Single-quoted phrase", "'foo bar'", ModePhrase, "foo bar"},
		{"Title prefix", "title:Dune", ModeTitle, "Dune"},
		{"Title prefix with space", "title: Dune Messiah", ModeTitle, "Dune Messiah"},
		{"Category prefix", "category:Fiction", ModeCategory, "Fiction"},
		{"Mismatched quotes fall through", `"foo bar'`, ModeGeneral, `"foo bar'`},
		{"Bare quote pair too short", `""`, ModeGeneral, `""`},
		{"Quote wins over prefix", `"title:Dune"`, ModePhrase, "title:Dune"},
		{"Unbalanced inner quotes kept", `"say "hi""`, ModePhrase, `say "hi"`},
		{"Surrounding whitespace trimmed", "  title:Dune  ", ModeTitle, "Dune"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mode, term := Classify(tt.input)
			if mode != tt.wantMode || term != tt.wantTerm {
				t.Errorf("Classify(%q) = (%v, %q), want (%v, %q)",
					tt.input, mode, term, tt.wantMode, tt.wantTerm)
			}
		})
	}
}

// Stripping is one-shot: re-classifying a stripped term must not re-trigger
// mode detection unless the term itself carries syntax.
func TestClassifyIdempotentAfterStrip(t *testing.T) {
	for _, input := range []string{`"foo bar"`, "title:Dune", "category:Fiction", "dune"} {
		_, term := Classify(input)
		mode, again := Classify(term)
		if mode != ModeGeneral || again != term {
			t.Errorf("Classify(%q) after strip = (%v, %q), want (general, %q)", term, mode, again, term)
		}
	}
}

func TestModeString(t *testing.T) {
	pairs := map[Mode]string{
		ModeGeneral:  "general",
		ModePhrase:   "phrase",
		ModeTitle:    "title",
		ModeCategory: "category",
	}
	for m, want := range pairs {
		if got := m.String(); got != want {
			t.Errorf("Mode(%d).String() = %q, want %q", m, got, want)
		}
	}
}
