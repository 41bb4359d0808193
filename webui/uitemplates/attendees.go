package uitemplates

import "html/template"

type AttendeeItem struct {
	RegistrationID string
	UserName       string
	UserEmail      string
	CheckedIn      bool
	CheckInTime    string
}

type AttendeesParams struct {
	EventID        string
	EventTitle     string
	TotalCount     int
	CheckedInCount int
	Attendees      []AttendeeItem
}

var attendeesText = `{{define "title"}}Attendees{{end}}

{{define "breadcrumbs" -}}
<li class="breadcrumb-item"><a href="/">Home</a></li>
<li class="breadcrumb-item"><a href="/show-event?id={{.EventID}}">{{.EventTitle}}</a></li>
<li class="breadcrumb-item active" aria-current="page">Attendees</li>
{{- end}}

{{define "content"}}
<h1>Attendees for {{.EventTitle}}</h1>

<p>{{.CheckedInCount}} of {{.TotalCount}} checked in.</p>

<table class="table">
  <thead>
    <tr><th>Name</th><th>Email</th><th>Status</th><th>Registration</th></tr>
  </thead>
  <tbody>
    {{range .Attendees}}
    <tr>
      <td>{{.UserName}}</td>
      <td>{{.UserEmail}}</td>
      <td>{{if .CheckedIn}}<span class="badge text-bg-success">Checked in {{.CheckInTime}}</span>{{else}}<span class="badge text-bg-secondary">Registered</span>{{end}}</td>
      <td><code>{{.RegistrationID}}</code></td>
    </tr>
    {{end}}
  </tbody>
</table>
{{end}}
`

var AttendeesTemplate = template.Must(template.Must(template.New("base").Parse(baseText)).Parse(attendeesText))
