package slug

import (
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"
)

var testDate = time.Date(2026, 2, 25, 15, 4, 5, 0, time.UTC)

// slugCharset is the only alphabet a generated slug may use.
var slugCharset = regexp.MustCompile(`^[a-z0-9-]*$`)

// TestMake exercises the full pipeline with a broad range of titles
// covering typical input, punctuation, unicode, whitespace, and truncation.
func TestMake(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		// --- Normal titles ---
		{
			name:  "simple two words",
			input: "Hello World",
			want:  "2026-02-25-hello-world",
		},
		{
			name:  "title with year",
			input: "Hello World 2026",
			want:  "2026-02-25-hello-world-2026",
		},
		{
			name:  "single word",
			input: "GoLang",
			want:  "2026-02-25-golang",
		},

		// --- Special characters are deleted, not replaced ---
		{
			name:  "punctuation marks",
			input: "Hello, World! How's it going?",
			want:  "2026-02-25-hello-world-hows-it-going",
		},
		{
			name:  "colon separated title",
			input: "Go: The Complete Developer Guide",
			want:  "2026-02-25-go-the-complete-developer-guide",
		},
		{
			name:  "slashes join words",
			input: "Frontend/Backend",
			want:  "2026-02-25-frontendbackend",
		},
		{
			name:  "hyphens in title are stripped",
			input: "well-known fact",
			want:  "2026-02-25-wellknown-fact",
		},
		{
			name:  "isolated punctuation leaves one separator",
			input: "Rock & Roll",
			want:  "2026-02-25-rock-roll",
		},

		// --- Transliteration ---
		{
			name:  "portuguese accents",
			input: "Olá, Mundo!",
			want:  "2026-02-25-ola-mundo",
		},
		{
			name:  "french accents",
			input: "Café Résumé Naïve",
			want:  "2026-02-25-cafe-resume-naive",
		},
		{
			name:  "german umlauts",
			input: "Über die Brücke",
			want:  "2026-02-25-uber-die-brucke",
		},
		{
			name:  "decomposed accent",
			input: "Café com leite",
			want:  "2026-02-25-cafe-com-leite",
		},
		{
			name:  "fullwidth letters",
			input: "Ｇｏ ｒｏｃｋｓ",
			want:  "2026-02-25-go-rocks",
		},

		// --- Whitespace handling ---
		{
			name:  "leading and trailing spaces",
			input: "   multiple   spaces   ",
			want:  "2026-02-25-multiple-spaces",
		},
		{
			name:  "tabs and newlines",
			input: "hello\t\tworld\nagain",
			want:  "2026-02-25-hello-world-again",
		},
		{
			name:  "whitespace left by stripped punctuation",
			input: "  !hello!  ",
			want:  "2026-02-25-hello",
		},

		// --- Edge cases ---
		{
			name:  "empty string keeps the trailing hyphen",
			input: "",
			want:  "2026-02-25-",
		},
		{
			name:  "only spaces",
			input: "     ",
			want:  "2026-02-25-",
		},
		{
			name:  "only special characters",
			input: "!@#$%^&*()",
			want:  "2026-02-25-",
		},

		// --- Truncation ---
		{
			name:  "cut mid-word",
			input: "How to Deploy Go Apps on Kubernetes (2026 Edition)",
			want:  "2026-02-25-how-to-deploy-go-apps-on-kubernetes-202",
		},
		{
			name:  "cut on a separator keeps the hyphen",
			input: "This is a very long title that goes on and on and on forever",
			want:  "2026-02-25-this-is-a-very-long-title-that-goes-on-",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Make(tt.input, testDate)
			if got != tt.want {
				t.Errorf("Make(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// TestMake_Properties checks the invariants that must hold for any title.
func TestMake_Properties(t *testing.T) {
	inputs := []string{
		"",
		"Hello World",
		"   multiple   spaces   ",
		"Ünïcödé everywhere — with dashes – and “quotes”",
		"日本語のタイトル",
		"Emoji 🚀 launch 🎉 day",
		"Привет мир",
		strings.Repeat("long title ", 30),
		strings.Repeat("ß", 100),
		"tab\there\x00null",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			got := Make(input, testDate)

			if len(got) > MaxLength {
				t.Errorf("len(%q) = %d, want <= %d", got, len(got), MaxLength)
			}
			if !slugCharset.MatchString(got) {
				t.Errorf("Make(%q) = %q contains characters outside [a-z0-9-]", input, got)
			}
			if !strings.HasPrefix(got, "2026-02-25-") {
				t.Errorf("Make(%q) = %q, want date prefix", input, got)
			}
			if rest := strings.TrimPrefix(got, "2026-02-25-"); strings.Contains(rest, "--") {
				t.Errorf("Make(%q) = %q contains a doubled separator", input, got)
			}
		})
	}
}

// TestMake_DateFollowsLocation verifies the prefix is the calendar date in
// the time's own location.
func TestMake_DateFollowsLocation(t *testing.T) {
	late := time.Date(2026, 2, 25, 23, 30, 0, 0, time.UTC)
	tokyo := late.In(time.FixedZone("JST", 9*60*60))

	if got := Make("x", late); got != "2026-02-25-x" {
		t.Errorf("UTC: got %q", got)
	}
	if got := Make("x", tokyo); got != "2026-02-26-x" {
		t.Errorf("JST: got %q", got)
	}
}

func TestGenerator_ExplicitIDWins(t *testing.T) {
	g := New(FixedClock(testDate))

	titles := []string{"", "Some Title", "Olá, Mundo!"}
	for _, title := range titles {
		if got := g.Generate(title, "explicit-id"); got != "explicit-id" {
			t.Errorf("Generate(%q, explicit-id) = %q, want explicit-id", title, got)
		}
	}

	// Explicit ids are returned verbatim, even when they would not survive
	// the pipeline.
	if got := g.Generate("x", "Keep_Me.As-Is"); got != "Keep_Me.As-Is" {
		t.Errorf("explicit id was altered: %q", got)
	}
}

func TestGenerator_SameTitleSameDayCollides(t *testing.T) {
	g := New(FixedClock(testDate))

	a := g.Generate("Duplicate Title", "")
	b := g.Generate("Duplicate Title", "")
	if a != b {
		t.Errorf("same title, same day: %q != %q", a, b)
	}

	next := New(FixedClock(testDate.AddDate(0, 0, 1))).Generate("Duplicate Title", "")
	if next == a {
		t.Errorf("same title, next day should differ, both %q", a)
	}
}

func TestGenerator_NilClockUsesSystemClock(t *testing.T) {
	g := New(nil)
	today := time.Now().Format(DateLayout)

	got := g.Generate("", "")
	// The date may roll over between the two clock reads.
	if got != today+"-" && got != time.Now().Format(DateLayout)+"-" {
		t.Errorf("Generate(\"\", \"\") = %q, want %q", got, today+"-")
	}
}

func TestGenerator_ConcurrentUse(t *testing.T) {
	g := New(FixedClock(testDate))
	want := "2026-02-25-concurrent-title"

	var wg sync.WaitGroup
	errs := make(chan string, 64)
	for range 64 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if got := g.Generate("Concurrent Title", ""); got != want {
				errs <- got
			}
		}()
	}
	wg.Wait()
	close(errs)

	for got := range errs {
		t.Errorf("concurrent Generate = %q, want %q", got, want)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		n    int
		want string
	}{
		{"shorter than limit", "abc", 5, "abc"},
		{"exact limit", "abcde", 5, "abcde"},
		{"cut", "abcdef", 5, "abcde"},
		{"zero", "abc", 0, ""},
		{"negative", "abc", -1, ""},
		{"multibyte runes", "ááá", 2, "áá"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Truncate(tt.in, tt.n); got != tt.want {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
			}
		})
	}
}

func TestHyphenate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"a b", "a-b"},
		{"  a   b  ", "a-b"},
		{"a\t\nb", "a-b"},
		{"", ""},
		{"   ", ""},
	}

	for _, tt := range tests {
		if got := Hyphenate(tt.in); got != tt.want {
			t.Errorf("Hyphenate(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestValid(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"explicit-id", true},
		{"2026-02-25-hello-world", true},
		{"Mixed_Case.v2~draft", true},
		{"", false},
		{"-leading-hyphen", false},
		{"has space", false},
		{"has/slash", false},
		{"ação", false},
		{strings.Repeat("a", MaxLength), true},
		{strings.Repeat("a", MaxLength+1), false},
	}

	for _, tt := range tests {
		if got := Valid(tt.in); got != tt.want {
			t.Errorf("Valid(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
