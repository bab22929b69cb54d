package scraper

import (
	"net/url"
	"os"
	"reflect"
	"testing"
)

func TestKeywordMatcher_MatchLink(t *testing.T) {
	m := KeywordMatcher{Suffix: DownloadSuffix, Keywords: DownloadKeywords}

	tests := []struct {
		href string
		want bool
	}{
		{"/docs/MONTHLY-Compilation.pdf", true},
		{"/docs/monthly-compilation.pdf", true},
		{"/uploads/CME-March.pdf", true},
		{"/uploads/Combined-Prelims.pdf", true},
		{"/docs/random.pdf", false},
		{"/docs/COMBINED.docx", false},
		{"/docs/MONTHLY.PDF", false},
		{"/docs/MONTHLY.pdf?download=1", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.href, func(t *testing.T) {
			if got := m.MatchLink(tt.href, "any text"); got != tt.want {
				t.Errorf("MatchLink(%q) = %v, want %v", tt.href, got, tt.want)
			}
		})
	}
}

func TestKeywordMatcher_CustomKeywords(t *testing.T) {
	m := KeywordMatcher{Suffix: ".pdf", Keywords: []string{"yojana"}}

	if !m.MatchLink("/files/Yojana-May.pdf", "") {
		t.Error("custom keyword should match case-insensitively")
	}
	if m.MatchLink("/files/MONTHLY-May.pdf", "") {
		t.Error("default keywords should not apply to a custom matcher")
	}
}

func TestExtractDownloadLinks(t *testing.T) {
	m := KeywordMatcher{Suffix: DownloadSuffix, Keywords: DownloadKeywords}
	html := `
		<a href="/docs/MONTHLY-Compilation.pdf">Monthly</a>
		<a href="/docs/random.pdf">Random</a>
		<a href="/docs/COMBINED.docx">Word file</a>
		<a>no href</a>
		<a href="/docs/CME-1.pdf">CME</a>
		<a href="/docs/MONTHLY-Compilation.pdf">Monthly again</a>`

	got := ExtractDownloadLinks(mustDoc(t, html), m)
	want := []string{"/docs/MONTHLY-Compilation.pdf", "/docs/CME-1.pdf", "/docs/MONTHLY-Compilation.pdf"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ExtractDownloadLinks() = %v, want %v", got, want)
	}
}

func TestExtractDownloadLinks_None(t *testing.T) {
	m := KeywordMatcher{Suffix: DownloadSuffix, Keywords: DownloadKeywords}

	got := ExtractDownloadLinks(mustDoc(t, `<p>No links here</p>`), m)
	if got == nil || len(got) != 0 {
		t.Errorf("ExtractDownloadLinks() = %#v, want empty non-nil slice", got)
	}
}

func TestExtractDownloadLinks_ResolvesRelative(t *testing.T) {
	m := KeywordMatcher{Suffix: DownloadSuffix, Keywords: DownloadKeywords}
	doc := mustDoc(t, `<a href="/wp-content/MONTHLY.pdf">pdf</a>`)
	doc.Url, _ = url.Parse("https://www.example.org/2025/03/post/")

	got := ExtractDownloadLinks(doc, m)
	if len(got) != 1 || got[0] != "https://www.example.org/wp-content/MONTHLY.pdf" {
		t.Errorf("ExtractDownloadLinks() = %v, want resolved absolute URL", got)
	}
}

type textMatcher struct{ seen []string }

func (m *textMatcher) MatchLink(_, text string) bool {
	m.seen = append(m.seen, text)
	return false
}

func TestExtractDownloadLinks_PassesAnchorText(t *testing.T) {
	m := &textMatcher{}
	ExtractDownloadLinks(mustDoc(t, `<a href="/x.pdf">Download PDF</a>`), m)

	if len(m.seen) != 1 || m.seen[0] != "download pdf" {
		t.Errorf("matcher saw text %v, want [\"download pdf\"]", m.seen)
	}
}

func TestExtractDownloadLinks_Fixture(t *testing.T) {
	data, err := os.ReadFile("../../testdata/fixtures/post.html")
	if err != nil {
		t.Fatalf("failed to load test fixture: %v", err)
	}

	m := KeywordMatcher{Suffix: DownloadSuffix, Keywords: DownloadKeywords}
	got := ExtractDownloadLinks(mustDoc(t, string(data)), m)
	if len(got) != 4 {
		t.Errorf("ExtractDownloadLinks() returned %d links, want 4: %v", len(got), got)
	}
}
