package uitemplates

import "html/template"

type EventSummaryParams struct {
	EventID    string
	EventTitle string
	Summary    string
}

var eventSummaryText = `{{define "title"}}Event Summary{{end}}

{{define "breadcrumbs" -}}
<li class="breadcrumb-item"><a href="/">Home</a></li>
<li class="breadcrumb-item"><a href="/show-event?id={{.EventID}}">{{.EventTitle}}</a></li>
<li class="breadcrumb-item active" aria-current="page">Summary</li>
{{- end}}

{{define "content"}}
<h1>Summary for {{.EventTitle}}</h1>

<div style="white-space: pre-wrap">{{.Summary}}</div>
{{end}}
`

var EventSummaryTemplate = template.Must(template.Must(template.New("base").Parse(baseText)).Parse(eventSummaryText))
