package translate

import "testing"

func TestRecoverJSON(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name      string
		text      string
		wantFound bool
		wantJSON  string
	}{
		{
			name:      "scenario 6: trailing text after object",
			text:      `sure, here: {"a":1} trailing`,
			wantFound: true,
			wantJSON:  `{"a":1}`,
		},
		{
			name:      "exact object",
			text:      `{"a":1,"b":2}`,
			wantFound: true,
			wantJSON:  `{"a":1,"b":2}`,
		},
		{
			name:      "array form",
			text:      `prefix [1,2,3] suffix`,
			wantFound: true,
			wantJSON:  `[1,2,3]`,
		},
		{
			name:      "no braces at all",
			text:      "no json here",
			wantFound: false,
		},
		{
			name:      "empty text",
			text:      "",
			wantFound: false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			v, ok := RecoverJSON(tc.text)
			if ok != tc.wantFound {
				t.Fatalf("RecoverJSON(%q) found = %v, want %v", tc.text, ok, tc.wantFound)
			}
			if !ok {
				return
			}
			b, err := marshalCanonical(v)
			if err != nil {
				t.Fatalf("marshalCanonical: %v", err)
			}
			if string(b) != tc.wantJSON {
				t.Fatalf("RecoverJSON(%q) = %s, want %s", tc.text, b, tc.wantJSON)
			}
		})
	}
}

// TestRecoverJSON_NotStringAware pins the deliberate simplification from
// spec §9 (Open Question 3): braces inside a string literal confuse the
// brace walk. This is not a bug to "fix" silently.
func TestRecoverJSON_NotStringAware(t *testing.T) {
	t.Parallel()
	text := `{"note": "a } brace inside a string"} trailing`
	_, ok := RecoverJSON(text)
	if ok {
		t.Fatalf("expected the naive brace walk to fail on a string-embedded brace, but it recovered a value")
	}
}
