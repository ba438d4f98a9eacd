package names

import "testing"

func TestNormalizeStripsDiacriticsAndSuffix(t *testing.T) {
	a := Normalize("Nikola Jokić Jr.")
	b := Normalize("nikola jokic")
	if a != b {
		t.Fatalf("expected identical keys, got %q and %q", a, b)
	}
	if a != "nikola jokic" {
		t.Fatalf("unexpected key %q", a)
	}
}

func TestNormalizeSuffixList(t *testing.T) {
	cases := map[string]string{
		"Gary Payton II":      "gary payton",
		"Gary Payton":         "gary payton",
		"Tim Hardaway Jr.":    "tim hardaway",
		"Larry Nance Jr":      "larry nance",
		"Robert Williams III": "robert williams",
		"Marvin Bagley IV":    "marvin bagley",
		"Kevin Porter Sr.":    "kevin porter",
		"  Luka   Dončić ":    "luka doncic",
		"Srdjan Ivanovic":     "srdjan ivanovic",
		"Kristaps Porziņģis":  "kristaps porzingis",
		"Alperen Şengün":      "alperen sengun",
		"Dennis Schröder":     "dennis schroder",
		"Tristan Da Silva":    "tristan da silva",
	}

	for input, want := range cases {
		if got := Normalize(input); got != want {
			t.Errorf("Normalize(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	for _, input := range []string{"Gary Payton II", "Gary Payton", "Nikola Jokić Jr."} {
		once := Normalize(input)
		if twice := Normalize(once); twice != once {
			t.Fatalf("normalize not idempotent for %q: %q then %q", input, once, twice)
		}
	}
}

func TestNormalizeKeepsSuffixLikeSubstrings(t *testing.T) {
	if got := Normalize("Ivica Zubac"); got != "ivica zubac" {
		t.Fatalf("unexpected key %q", got)
	}
	if got := Normalize("Jrue Holiday"); got != "jrue holiday" {
		t.Fatalf("unexpected key %q", got)
	}
}

func TestSuffixesReturnsCopy(t *testing.T) {
	s := Suffixes()
	s[0] = "changed"
	if Suffixes()[0] != "Jr" {
		t.Fatal("suffix list was mutated through returned slice")
	}
}
