package tokenizer

import (
	"slices"
	"strings"
	"testing"
)

func TestNormalizeWord(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Dartmouth", "dartmouth"},
		{"ALL-CAPS42", "all-caps42"},
		{"already", "already"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeWord(tt.in); got != tt.want {
			t.Errorf("NormalizeWord(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestWords(t *testing.T) {
	page := `<html><head><title>Home Page</title>
<style>body { color: red; }</style>
<script>var hidden = "nope";</script></head>
<body><a href="http://example.test/other.html">Other-Page</a> it's 2024!</body></html>`

	got := slices.Collect(Words(page))
	want := []string{"Home", "Page", "Other", "Page", "it", "s"}
	if !slices.Equal(got, want) {
		t.Errorf("Words() = %v, want %v", got, want)
	}
}

func TestIndexTerms(t *testing.T) {
	page := `<p>The Cat and a DOG ran to the cat</p>`
	got := slices.Collect(IndexTerms(page, 3))
	want := []string{"the", "cat", "and", "dog", "ran", "the", "cat"}
	if !slices.Equal(got, want) {
		t.Errorf("IndexTerms() = %v, want %v", got, want)
	}
}

func TestWordsEmptyBody(t *testing.T) {
	if got := slices.Collect(Words("")); len(got) != 0 {
		t.Errorf("Words(\"\") = %v, want none", got)
	}
}

func BenchmarkIndexTerms(b *testing.B) {
	page := "<html><body>" + strings.Repeat("<p>Information retrieval systems form the backbone of search.</p>", 200) + "</body></html>"
	b.ReportAllocs()
	b.SetBytes(int64(len(page)))
	for i := 0; i < b.N; i++ {
		for range IndexTerms(page, 3) {
		}
	}
}
