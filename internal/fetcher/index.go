package fetcher

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"
)

// ErrNoCSVLink is returned when an index page links to no CSV file
var ErrNoCSVLink = errors.New("no csv link found on index page")

// FindCSVLink returns the first link on an HTML page whose path ends in .csv,
// resolved against base.
func FindCSVLink(r io.Reader, base *url.URL) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", fmt.Errorf("failed to parse index page: %w", err)
	}

	var link string
	doc.Find("a[href]").EachWithBreak(func(i int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		ref, err := url.Parse(strings.TrimSpace(href))
		if err != nil {
			return true
		}
		if !strings.EqualFold(path.Ext(ref.Path), ".csv") {
			return true
		}
		link = base.ResolveReference(ref).String()
		return false
	})

	if link == "" {
		return "", ErrNoCSVLink
	}

	log.Debug().Str("title", strings.TrimSpace(doc.Find("title").Text())).Str("link", link).Msg("Found CSV link on index page")
	return link, nil
}

// isHTML reports whether a response is an HTML page rather than the dataset
func isHTML(contentType string, body []byte) bool {
	if strings.Contains(strings.ToLower(contentType), "text/html") {
		return true
	}
	head := body
	if len(head) > 512 {
		head = head[:512]
	}
	head = bytes.ToLower(bytes.TrimSpace(head))
	return bytes.HasPrefix(head, []byte("<!doctype html")) || bytes.HasPrefix(head, []byte("<html"))
}
