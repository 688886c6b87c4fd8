package server

import (
	"html/template"
	"net/http"

	"go.uber.org/zap"
)

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head><title>OAI-PMH Simulator{{ with .Name }}: {{ . }}{{ end }}</title></head>
<body>
<h1>OAI-PMH Simulator</h1>
<p>OAI-PMH baseURL: <a href="{{ .BaseURL }}">{{ .BaseURL }}</a></p>
<ul>
{{- range .Examples }}
<li><a href="{{ .Link }}">{{ .Query }}</a></li>
{{- end }}
</ul>
</body>
</html>
`))

var indexExamples = []string{
	"verb=Identify",
	"verb=ListMetadataFormats",
	"verb=ListSets",
	"verb=ListIdentifiers&metadataPrefix=oai_dc",
	"verb=ListRecords&metadataPrefix=oai_dc",
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	type example struct{ Link, Query string }
	data := struct {
		Name     string
		BaseURL  string
		Examples []example
	}{
		Name:    s.Repository().Name,
		BaseURL: s.opts.BaseURL,
	}
	for _, q := range indexExamples {
		data.Examples = append(data.Examples, example{Link: s.opts.BaseURL + "?" + q, Query: q})
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, data); err != nil {
		s.log.Warn("render index", zap.Error(err))
	}
}
