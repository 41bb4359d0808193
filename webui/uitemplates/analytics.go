package uitemplates

import "html/template"

type BucketCount struct {
	Bucket string
	Count  int
}

type TopEventItem struct {
	Title         string
	Registrations int
}

type AnalyticsParams struct {
	Events []EventItem

	TotalEvents        int
	TotalRegistrations int
	ActiveEventsCount  int
	CheckedInCount     int
	CheckInRate        int
	TotalEngagement    int

	RegistrationsOverTime []BucketCount
	TopEvents             []TopEventItem
}

var analyticsText = `{{define "title"}}Analytics{{end}}

{{define "breadcrumbs" -}}
<li class="breadcrumb-item"><a href="/">Home</a></li>
<li class="breadcrumb-item active" aria-current="page">Analytics</li>
{{- end}}

{{define "content"}}
<h1>Organizer Dashboard</h1>

<form method="GET" class="mb-3">
  <div class="input-group">
    <select class="form-select" name="event">
      <option value="">All events</option>
      {{range .Events}}<option value="{{.ID}}">{{.Title}}</option>{{end}}
    </select>
    <button type="submit" class="btn btn-outline-secondary">Apply</button>
  </div>
</form>

<div class="row row-cols-2 row-cols-md-3 g-3 mb-4">
  <div class="col"><div class="card"><div class="card-body"><h5>{{.TotalEvents}}</h5>Events</div></div></div>
  <div class="col"><div class="card"><div class="card-body"><h5>{{.ActiveEventsCount}}</h5>Active</div></div></div>
  <div class="col"><div class="card"><div class="card-body"><h5>{{.TotalRegistrations}}</h5>Registrations</div></div></div>
  <div class="col"><div class="card"><div class="card-body"><h5>{{.CheckedInCount}}</h5>Checked In</div></div></div>
  <div class="col"><div class="card"><div class="card-body"><h5>{{.CheckInRate}}%</h5>Check-in Rate</div></div></div>
  <div class="col"><div class="card"><div class="card-body"><h5>{{.TotalEngagement}}</h5>Engagement</div></div></div>
</div>

<h2>Registrations over Time</h2>
<table class="table">
  <tbody>
    {{range .RegistrationsOverTime}}
    <tr><td>{{.Bucket}}</td><td>{{.Count}}</td></tr>
    {{end}}
  </tbody>
</table>

<h2>Top Events</h2>
<table class="table">
  <tbody>
    {{range .TopEvents}}
    <tr><td>{{.Title}}</td><td>{{.Registrations}}</td></tr>
    {{end}}
  </tbody>
</table>
{{end}}
`

var AnalyticsTemplate = template.Must(template.Must(template.New("base").Parse(baseText)).Parse(analyticsText))
