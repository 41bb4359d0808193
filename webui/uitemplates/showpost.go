package uitemplates

import "html/template"

type ShowPostParams struct {
	ID         string
	Title      string
	Content    string
	AuthorName string
	CreatedAt  string
	UpdatedAt  string
	Tags       []string
	CanEdit    bool
}

var showPostText = `{{define "title"}}{{.Title}}{{end}}

{{define "breadcrumbs" -}}
<li class="breadcrumb-item"><a href="/">Home</a></li>
<li class="breadcrumb-item"><a href="/blog">Blog</a></li>
<li class="breadcrumb-item active" aria-current="page">{{.Title}}</li>
{{- end}}

{{define "content"}}
<h1>{{.Title}}</h1>

<p class="text-muted">
  by {{.AuthorName}} on {{.CreatedAt}}{{if .UpdatedAt}} (updated {{.UpdatedAt}}){{end}}
  {{range .Tags}}<span class="badge text-bg-secondary">{{.}}</span>{{end}}
</p>

<div style="white-space: pre-wrap">{{.Content}}</div>

{{if .CanEdit}}
<div class="mt-3">
  <a class="btn btn-sm btn-outline-secondary" href="/edit-post?id={{.ID}}">Edit</a>
  <form method="POST" action="/delete-post?id={{.ID}}" class="d-inline">
    <button type="submit" class="btn btn-sm btn-outline-danger">Delete</button>
  </form>
</div>
{{end}}
{{end}}
`

var ShowPostTemplate = template.Must(template.Must(template.New("base").Parse(baseText)).Parse(showPostText))
