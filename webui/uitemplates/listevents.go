package uitemplates

import "html/template"

type ListEventsParams struct {
	LoggedIn   bool
	CanCreate  bool
	Categories []string
	Events     []EventItem
}

var listEventsText = `{{define "title"}}Events{{end}}

{{define "breadcrumbs" -}}
<li class="breadcrumb-item"><a href="/">Home</a></li>
<li class="breadcrumb-item active" aria-current="page">Events</li>
{{- end}}

{{define "content"}}
<h1>Events</h1>

{{if .CanCreate}}
<p><a class="btn btn-primary" href="/create-event">Create Event</a></p>
{{end}}

<div class="mb-3">
  <a class="btn btn-sm btn-outline-secondary" href="/events">All</a>
  {{range .Categories}}
  <a class="btn btn-sm btn-outline-secondary" href="/events?category={{.}}">{{.}}</a>
  {{end}}
</div>

{{if .Events}}
<div class="row row-cols-1 row-cols-md-3 g-3">
  {{range .Events}}
  <div class="col">
    <div class="card h-100">
      {{if .ImageURL}}<img src="{{.ImageURL}}" class="card-img-top" alt="">{{end}}
      <div class="card-body">
        <h5 class="card-title"><a href="{{.ShowLink}}">{{.Title}}</a></h5>
        <p class="card-text">
          <span class="badge text-bg-secondary">{{.Category}}</span><br>
          {{.Date}}<br>
          {{.Location}}
        </p>
      </div>
    </div>
  </div>
  {{end}}
</div>
{{else}}
<p>No events found.</p>
{{end}}
{{end}}
`

var ListEventsTemplate = template.Must(template.Must(template.New("base").Parse(baseText)).Parse(listEventsText))
