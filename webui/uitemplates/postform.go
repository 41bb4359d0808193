package uitemplates

import "html/template"

type PostFormParams struct {
	FormTitle  string
	PostTarget string
	UserError  string

	Title   string
	Content string
	Tags    string
}

var postFormText = `{{define "title"}}{{.FormTitle}}{{end}}

{{define "breadcrumbs" -}}
<li class="breadcrumb-item"><a href="/">Home</a></li>
<li class="breadcrumb-item"><a href="/blog">Blog</a></li>
<li class="breadcrumb-item active" aria-current="page">{{.FormTitle}}</li>
{{- end}}

{{define "content"}}
<h1>{{.FormTitle}}</h1>

{{if .UserError}}<div class="alert alert-danger">{{.UserError}}</div>{{end}}

<form method="POST" action="{{.PostTarget}}">
  <div class="mb-3">
    <label for="title" class="form-label">Title</label>
    <input type="text" class="form-control" name="title" id="title" value="{{.Title}}" required>
  </div>
  <div class="mb-3">
    <label for="content" class="form-label">Content</label>
    <textarea class="form-control" name="content" id="content" rows="12" required>{{.Content}}</textarea>
  </div>
  <div class="mb-3">
    <label for="tags" class="form-label">Tags (comma separated)</label>
    <input type="text" class="form-control" name="tags" id="tags" value="{{.Tags}}">
  </div>
  <button type="submit" class="btn btn-primary">Publish</button>
</form>
{{end}}
`

var PostFormTemplate = template.Must(template.Must(template.New("base").Parse(baseText)).Parse(postFormText))
