package uitemplates

import "html/template"

type HomeParams struct {
	LoggedIn    bool
	DisplayName string
	Role        string

	UpcomingEvents []EventItem
}

var homeText = `{{define "title"}}Home{{end}}

{{define "content"}}
<h1>Konvele</h1>

{{if .LoggedIn}}
<p>Welcome back, {{.DisplayName}}.</p>
<ul>
  <li><a href="/recommendations">Recommended for you</a></li>
  <li><a href="/settings">Profile settings</a></li>
  {{if or (eq .Role "organiser") (eq .Role "admin")}}<li><a href="/analytics">Organizer dashboard</a></li>{{end}}
  <li><a href="/log-out">Log out</a></li>
</ul>
{{else}}
<p>Host events, engage your audience live, and connect with peers.</p>
<p><a href="/log-in">Log in</a> to get started.</p>
{{end}}

<h2>Upcoming Events</h2>
{{if .UpcomingEvents}}
<ul class="list-group">
  {{range .UpcomingEvents}}
  <li class="list-group-item">
    <a href="{{.ShowLink}}">{{.Title}}</a>
    <span class="badge text-bg-secondary">{{.Category}}</span>
    <span class="text-muted">{{.Date}} &middot; {{.Location}}</span>
  </li>
  {{end}}
</ul>
{{else}}
<p>No upcoming events.</p>
{{end}}
{{end}}
`

var HomeTemplate = template.Must(template.Must(template.New("base").Parse(baseText)).Parse(homeText))
