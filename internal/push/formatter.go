package push

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/user/moviedash-go/internal/model"
	"github.com/user/moviedash-go/internal/pipeline"
)

// DigestTopN is the number of entries shown per digest section
const DigestTopN = 5

// EscapeMarkdown escapes special characters for Telegram MarkdownV2 format
func EscapeMarkdown(text string) string {
	// _ * [ ] ( ) ~ ` > # + - = | { } . ! and the escape character itself
	specialChars := []string{"\\", "_", "*", "[", "]", "(", ")", "~", "`", ">", "#", "+", "-", "=", "|", "{", "}", ".", "!"}
	result := text
	for _, char := range specialChars {
		result = strings.ReplaceAll(result, char, "\\"+char)
	}
	return result
}

// FormatNumber formats a float with one decimal, escaped for MarkdownV2
func FormatNumber(v float64) string {
	return EscapeMarkdown(strconv.FormatFloat(v, 'f', 1, 64))
}

// DescribeFilter renders the filter of a dashboard as one escaped line
func DescribeFilter(p pipeline.Params, allGenres int) string {
	genres := "all genres"
	switch {
	case len(p.Genres) == 0:
		genres = "no genres"
	case len(p.Genres) < allGenres:
		genres = strings.Join(p.Genres, ", ")
	}
	return fmt.Sprintf("📅 %d to %d  🎭 %s \\(%s\\)",
		p.MinYear, p.MaxYear, EscapeMarkdown(genres), EscapeMarkdown(string(p.Match)))
}

// FormatRanked formats rows as a numbered MarkdownV2 list keyed by value
func FormatRanked(rows []pipeline.Row, value func(r *pipeline.Row) float64, limit int) []string {
	var lines []string
	for i := range rows {
		if i >= limit {
			break
		}
		lines = append(lines, fmt.Sprintf("%d\\. %s: %s", i+1, EscapeMarkdown(rows[i].Title), FormatNumber(value(&rows[i]))))
	}
	return lines
}

// FormatDigest formats a dashboard into a MarkdownV2 message. sub may be nil
// for an on-demand dashboard.
func FormatDigest(sub *model.Subscription, d *pipeline.Dashboard, allGenres int) string {
	if d == nil {
		return ""
	}

	var parts []string
	title := "📊 *Movie dashboard*"
	if sub != nil && sub.ID != 0 {
		title = fmt.Sprintf("📊 *Movie dashboard digest \\#%d*", sub.ID)
	}
	parts = append(parts, title)
	parts = append(parts, DescribeFilter(d.Params, allGenres))
	parts = append(parts, fmt.Sprintf("🎬 Movies: %d", d.Total))

	if d.Total == 0 {
		parts = append(parts, "_No movies match this filter\\._")
		return strings.Join(parts, "\n")
	}

	parts = append(parts, "", "⭐ *Top rated*")
	parts = append(parts, FormatRanked(d.TopRated, func(r *pipeline.Row) float64 { return r.VoteAverage }, DigestTopN)...)

	parts = append(parts, "", "🔥 *Most popular*")
	parts = append(parts, FormatRanked(d.MostPopular, func(r *pipeline.Row) float64 { return r.Popularity }, DigestTopN)...)

	var genres []string
	for i, gc := range d.GenreDistribution {
		if i >= DigestTopN {
			break
		}
		genres = append(genres, fmt.Sprintf("%s %d", EscapeMarkdown(gc.Genre), gc.Count))
	}
	parts = append(parts, "", "🏷 *Genres*", strings.Join(genres, "  "))

	return strings.Join(parts, "\n")
}
