package uitemplates

import "html/template"

type EmailBlastParams struct {
	EventID    string
	EventTitle string
	UserError  string
	Sent       bool
	SentCount  int
}

var emailBlastText = `{{define "title"}}Email Blast{{end}}

{{define "breadcrumbs" -}}
<li class="breadcrumb-item"><a href="/">Home</a></li>
<li class="breadcrumb-item"><a href="/show-event?id={{.EventID}}">{{.EventTitle}}</a></li>
<li class="breadcrumb-item active" aria-current="page">Email Blast</li>
{{- end}}

{{define "content"}}
<h1>Email Blast for {{.EventTitle}}</h1>

{{if .UserError}}<div class="alert alert-danger">{{.UserError}}</div>{{end}}
{{if .Sent}}<div class="alert alert-success">Sent to {{.SentCount}} attendees.</div>{{end}}

<form method="POST">
  <div class="mb-3">
    <label for="subject" class="form-label">Subject</label>
    <input type="text" class="form-control" name="subject" id="subject" required>
  </div>
  <div class="mb-3">
    <label for="body" class="form-label">Body</label>
    <textarea class="form-control" name="body" id="body" rows="8" required></textarea>
  </div>
  <button type="submit" class="btn btn-primary">Send to all attendees</button>
</form>
{{end}}
`

var EmailBlastTemplate = template.Must(template.Must(template.New("base").Parse(baseText)).Parse(emailBlastText))
