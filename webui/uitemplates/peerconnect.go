package uitemplates

import "html/template"

type MentorItem struct {
	UserID      string
	DisplayName string
	Skills      string
	Reason      string
}

type PeerConnectParams struct {
	UserError string
	Skill     string
	Matches   []MentorItem
}

var peerConnectText = `{{define "title"}}Peer Connect{{end}}

{{define "breadcrumbs" -}}
<li class="breadcrumb-item"><a href="/">Home</a></li>
<li class="breadcrumb-item active" aria-current="page">Peer Connect</li>
{{- end}}

{{define "content"}}
<h1>Peer Connect</h1>

<p>Tell us what you want to learn and we'll find mentors in the community.</p>

{{if .UserError}}<div class="alert alert-danger">{{.UserError}}</div>{{end}}

<form method="POST" class="mb-4">
  <div class="input-group">
    <input type="text" class="form-control" name="skill" value="{{.Skill}}" placeholder="e.g. React, public speaking" required>
    <button type="submit" class="btn btn-primary">Find Mentors</button>
  </div>
</form>

{{range .Matches}}
<div class="card mb-3">
  <div class="card-body">
    <h5 class="card-title">{{.DisplayName}}</h5>
    {{if .Skills}}<p class="card-text"><small class="text-muted">{{.Skills}}</small></p>{{end}}
    <p class="card-text">{{.Reason}}</p>
    <form method="POST" action="/start-conversation">
      <input type="hidden" name="user" value="{{.UserID}}">
      <button type="submit" class="btn btn-sm btn-outline-primary">Message</button>
    </form>
  </div>
</div>
{{end}}
{{end}}
`

var PeerConnectTemplate = template.Must(template.Must(template.New("base").Parse(baseText)).Parse(peerConnectText))
