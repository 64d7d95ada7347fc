package server

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"
	"github.com/user/moviedash-go/internal/dashboard"
	"github.com/user/moviedash-go/internal/metrics"
	"github.com/user/moviedash-go/internal/pipeline"
)

//go:embed templates/report.html
var templateFS embed.FS

var reportTemplate = template.Must(template.New("report.html").Funcs(template.FuncMap{
	"fixed": func(v float64) string { return strconv.FormatFloat(v, 'f', 1, 64) },
}).ParseFS(templateFS, "templates/report.html"))

type reportData struct {
	Options   dashboard.Options
	Dashboard *pipeline.Dashboard
	Selected  map[string]bool
	CSVLink   string
}

// handleReport renders the filter controls and every table as one HTML page
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	d, ok := s.build(w, r)
	if !ok {
		return
	}

	data := reportData{
		Options:   s.dashboards.Options(),
		Dashboard: d,
		Selected:  make(map[string]bool, len(d.Params.Genres)),
		CSVLink:   "/api/movies.csv",
	}
	for _, genre := range d.Params.Genres {
		data.Selected[genre] = true
	}
	if r.URL.RawQuery != "" {
		data.CSVLink += "?" + r.URL.RawQuery
	}

	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, data); err != nil {
		log.Error().Err(err).Msg("Failed to render report")
		metrics.RecordError("http")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := buf.WriteTo(w); err != nil {
		log.Debug().Err(err).Msg("Failed to write report")
	}
}
