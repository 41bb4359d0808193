package uitemplates

import "html/template"

type SettingsParams struct {
	UserError string

	DisplayName string
	PhotoURL    string
	Stream      string
	CollegeName string
	Year        string
	Skills      string
	IsStudent   bool
}

var settingsText = `{{define "title"}}Settings{{end}}

{{define "breadcrumbs" -}}
<li class="breadcrumb-item"><a href="/">Home</a></li>
<li class="breadcrumb-item active" aria-current="page">Settings</li>
{{- end}}

{{define "content"}}
<h1>Profile Settings</h1>

{{if .UserError}}<div class="alert alert-danger">{{.UserError}}</div>{{end}}

<form method="POST">
  <div class="mb-3">
    <label for="displayName" class="form-label">Display Name</label>
    <input type="text" class="form-control" name="displayName" id="displayName" value="{{.DisplayName}}" required>
  </div>
  <div class="mb-3">
    <label for="photoURL" class="form-label">Photo URL</label>
    <input type="url" class="form-control" name="photoURL" id="photoURL" value="{{.PhotoURL}}">
  </div>
  {{if .IsStudent}}
  <div class="mb-3">
    <label for="stream" class="form-label">Stream</label>
    <input type="text" class="form-control" name="stream" id="stream" value="{{.Stream}}">
  </div>
  <div class="mb-3">
    <label for="collegeName" class="form-label">College</label>
    <input type="text" class="form-control" name="collegeName" id="collegeName" value="{{.CollegeName}}">
  </div>
  <div class="mb-3">
    <label for="year" class="form-label">Year</label>
    <input type="text" class="form-control" name="year" id="year" value="{{.Year}}">
  </div>
  <div class="mb-3">
    <label for="skills" class="form-label">Skills (comma separated)</label>
    <input type="text" class="form-control" name="skills" id="skills" value="{{.Skills}}">
  </div>
  {{end}}
  <button type="submit" class="btn btn-primary">Save</button>
</form>
{{end}}
`

var SettingsTemplate = template.Must(template.Must(template.New("base").Parse(baseText)).Parse(settingsText))
