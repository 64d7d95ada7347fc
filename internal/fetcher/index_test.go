package fetcher

import (
	"errors"
	"net/url"
	"strings"
	"testing"
)

func TestFindCSVLink(t *testing.T) {
	base, _ := url.Parse("https://data.example.com/sets/movies/")

	tests := []struct {
		name     string
		html     string
		expected string
		err      error
	}{
		{
			name:     "relative link",
			html:     `<a href="mymoviedb.csv">download</a>`,
			expected: "https://data.example.com/sets/movies/mymoviedb.csv",
		},
		{
			name:     "absolute path",
			html:     `<a href="/files/mymoviedb.csv?v=2">download</a>`,
			expected: "https://data.example.com/files/mymoviedb.csv?v=2",
		},
		{
			name:     "absolute url",
			html:     `<a href="https://cdn.example.com/x.csv">download</a>`,
			expected: "https://cdn.example.com/x.csv",
		},
		{
			name:     "first csv wins",
			html:     `<a href="a.txt">a</a><a href="b.csv">b</a><a href="c.csv">c</a>`,
			expected: "https://data.example.com/sets/movies/b.csv",
		},
		{
			name:     "uppercase extension",
			html:     `<a href=" DATA.CSV ">d</a>`,
			expected: "https://data.example.com/sets/movies/DATA.CSV",
		},
		{
			name: "csv only in query",
			html: `<a href="download?format=csv">d</a>`,
			err:  ErrNoCSVLink,
		},
		{
			name: "no links",
			html: `<p>nothing here</p>`,
			err:  ErrNoCSVLink,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FindCSVLink(strings.NewReader("<html><body>"+tt.html+"</body></html>"), base)
			if tt.err != nil {
				if !errors.Is(err, tt.err) {
					t.Errorf("FindCSVLink() error = %v, want %v", err, tt.err)
				}
				return
			}
			if err != nil {
				t.Fatalf("FindCSVLink() error = %v", err)
			}
			if got != tt.expected {
				t.Errorf("FindCSVLink() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestIsHTML(t *testing.T) {
	tests := []struct {
		contentType string
		body        string
		expected    bool
	}{
		{"text/html; charset=utf-8", "anything", true},
		{"", "  <!DOCTYPE html><html></html>", true},
		{"application/octet-stream", "<html><body></body></html>", true},
		{"text/csv", "Title,Genre\nA,Drama\n", false},
		{"", "Title,Genre\n", false},
	}

	for _, tt := range tests {
		if got := isHTML(tt.contentType, []byte(tt.body)); got != tt.expected {
			t.Errorf("isHTML(%q, %q) = %v, want %v", tt.contentType, tt.body, got, tt.expected)
		}
	}
}
