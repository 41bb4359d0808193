package uitemplates

import "html/template"

type PostItem struct {
	ID         string
	Title      string
	AuthorName string
	CreatedAt  string
	Tags       []string
	ShowLink   string
}

type ListPostsParams struct {
	LoggedIn bool
	Posts    []PostItem
}

var listPostsText = `{{define "title"}}Blog{{end}}

{{define "breadcrumbs" -}}
<li class="breadcrumb-item"><a href="/">Home</a></li>
<li class="breadcrumb-item active" aria-current="page">Blog</li>
{{- end}}

{{define "content"}}
<h1>Blog</h1>

{{if .LoggedIn}}
<p><a class="btn btn-primary" href="/new-post">New Post</a></p>
{{end}}

{{if .Posts}}
<ul class="list-group">
  {{range .Posts}}
  <li class="list-group-item">
    <a href="{{.ShowLink}}">{{.Title}}</a>
    <span class="text-muted">by {{.AuthorName}} on {{.CreatedAt}}</span>
    {{range .Tags}}<span class="badge text-bg-secondary">{{.}}</span>{{end}}
  </li>
  {{end}}
</ul>
{{else}}
<p>No posts yet.</p>
{{end}}
{{end}}
`

var ListPostsTemplate = template.Must(template.Must(template.New("base").Parse(baseText)).Parse(listPostsText))
