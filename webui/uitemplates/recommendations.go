package uitemplates

import "html/template"

type RecommendationItem struct {
	Title    string
	Reason   string
	ShowLink string
}

type RecommendationsParams struct {
	Recommendations []RecommendationItem
}

var recommendationsText = `{{define "title"}}Recommended Events{{end}}

{{define "breadcrumbs" -}}
<li class="breadcrumb-item"><a href="/">Home</a></li>
<li class="breadcrumb-item active" aria-current="page">Recommendations</li>
{{- end}}

{{define "content"}}
<h1>Recommended for You</h1>

{{if .Recommendations}}
{{range .Recommendations}}
<div class="card mb-3">
  <div class="card-body">
    <h5 class="card-title"><a href="{{.ShowLink}}">{{.Title}}</a></h5>
    <p class="card-text">{{.Reason}}</p>
  </div>
</div>
{{end}}
{{else}}
<p>Nothing to recommend right now. Check back after more events are posted.</p>
{{end}}
{{end}}
`

var RecommendationsTemplate = template.Must(template.Must(template.New("base").Parse(baseText)).Parse(recommendationsText))
