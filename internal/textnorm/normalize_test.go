package textnorm

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "bounding pair and shouty recase",
			in:   "(TRADER JOE'S)",
			want: "Trader Joe's",
		},
		{
			name: "confusions inside words then fuzzy",
			in:   "ORGAN1C K1DNEY BEANS",
			want: "Organic Kidney Beans",
		},
		{
			name: "legitimate numbers survive",
			in:   "NET WT 15.5 OZ",
			want: "Net Wt 15.5 Oz",
		},
		{
			name: "pipe artifact",
			in:   "O|ive Oil",
			want: "Olive Oil",
		},
		{
			name: "trailing garbage token dropped",
			in:   "Organic Black Beans ee",
			want: "Organic Black Beans",
		},
		{
			name: "trailing unit kept",
			in:   "Penne 12 oz",
			want: "Penne 12 oz",
		},
		{
			name: "whitespace collapse",
			in:   "  Greek   Yogurt\t ",
			want: "Greek Yogurt",
		},
		{
			name: "digit-letter garbage partially recovered",
			in:   "tr4der j03s",
			want: "trader Joe's",
		},
		{
			name: "digit run resolves fully in one pass",
			in:   "ORGANIC 10G PROTEIN",
			want: "Organic Log Protein",
		},
		{
			name: "fuzzy correction lands in vocabulary",
			in:   "Kidny Beanz",
			want: "Kidney Beans",
		},
		{
			name: "empty",
			in:   "   ",
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.in)
			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

// Normalizing an already-normalized line must be a no-op.
func TestNormalizeIdempotent(t *testing.T) {
	samples := []string{
		"  ORGAN1C K1DNEY BEANS  ",
		"(TRADER JOE'S)",
		"NET WT 15.5 OZ",
		"tr4der j03s",
		"Organic Fusilli Pasta",
		"O|ive Oil x",
		"serving size 2 tbsp",
		"K9 2X 3Q 4Z",
		"GARBANZO BEANS 29 OZ",
		"m4ple syrup",
		"ORGANIC 10G PROTEIN",
		"BEANS 15OZ PACK",
	}
	for _, s := range samples {
		once := Normalize(s)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: first %q, second %q", s, once, twice)
		}
	}
}

func TestLexiconSets(t *testing.T) {
	if !HasFoodWord("Organic Kidney Beans") {
		t.Error("expected food word in kidney beans line")
	}
	if HasFoodWord("Trader Joe's") {
		t.Error("brand line should not be food-bearing")
	}
	if got := FoodBigramCount("organic kidney beans"); got != 1 {
		t.Errorf("FoodBigramCount = %d, want 1", got)
	}
	if !IsBoilerplate("Serving Size 2 Tbsp") {
		t.Error("serving size line should be boilerplate")
	}
	if !IsBoilerplate("Net Wt 15.5 Oz") {
		t.Error("net wt line should be boilerplate")
	}
	if !IsSizeLine("15.5 OZ (439g)") {
		t.Errorf("pure size line not detected")
	}
	if IsSizeLine("Organic Kidney Beans") {
		t.Error("food line misdetected as size line")
	}
	if !MatchesBrand("Trader Joe's") || !MatchesBrand("trader joes") {
		t.Error("brand matching should tolerate apostrophes")
	}
	if !IsUnit("oz") || !IsUnit("OZ") || IsUnit("xy") {
		t.Error("unit lexicon mismatch")
	}
}

func TestFuzzyBounds(t *testing.T) {
	// Distance cap: a token two edits from vocabulary corrects, three
	// does not.
	if got := Normalize("tomatto sauce"); got != "Tomato sauce" {
		t.Errorf("got %q", got)
	}
	if got := Normalize("zzzzzzz sauce"); got != "zzzzzzz sauce" {
		t.Errorf("far token should be untouched, got %q", got)
	}
	// Length-3 tokens only accept a single edit.
	if got := Normalize("net weight"); got != "net weight" {
		t.Errorf("length-3 token overcorrected: %q", got)
	}
	// Disabled pass leaves tokens alone.
	if got := NormalizeWith("Kidny Beanz", 0); got != "Kidny Beanz" {
		t.Errorf("fuzzy pass should be off, got %q", got)
	}
}
