package uitemplates

import "html/template"

// EventFormParams serves both the create and edit forms.
type EventFormParams struct {
	FormTitle  string
	PostTarget string
	Categories []string
	UserError  string

	Title           string
	Category        string
	Date            string
	Location        string
	Description     string
	LongDescription string
	Tags            string
	Speakers        string
	Schedule        string
}

var eventFormText = `{{define "title"}}{{.FormTitle}}{{end}}

{{define "breadcrumbs" -}}
<li class="breadcrumb-item"><a href="/">Home</a></li>
<li class="breadcrumb-item"><a href="/events">Events</a></li>
<li class="breadcrumb-item active" aria-current="page">{{.FormTitle}}</li>
{{- end}}

{{define "content"}}
<h1>{{.FormTitle}}</h1>

{{if .UserError}}<div class="alert alert-danger">{{.UserError}}</div>{{end}}

<form method="POST" action="{{.PostTarget}}" enctype="multipart/form-data">
  <div class="mb-3">
    <label for="title" class="form-label">Title</label>
    <input type="text" class="form-control" name="title" id="title" value="{{.Title}}" required>
  </div>
  <div class="mb-3">
    <label for="category" class="form-label">Category</label>
    <select class="form-select" name="category" id="category">
      {{$selected := .Category}}
      {{range .Categories}}
      <option value="{{.}}"{{if eq . $selected}} selected{{end}}>{{.}}</option>
      {{end}}
    </select>
  </div>
  <div class="mb-3">
    <label for="date" class="form-label">Date</label>
    <input type="datetime-local" class="form-control" name="date" id="date" value="{{.Date}}" required>
  </div>
  <div class="mb-3">
    <label for="location" class="form-label">Location</label>
    <input type="text" class="form-control" name="location" id="location" value="{{.Location}}">
  </div>
  <div class="mb-3">
    <label for="description" class="form-label">Short Description</label>
    <input type="text" class="form-control" name="description" id="description" value="{{.Description}}">
  </div>
  <div class="mb-3">
    <label for="longDescription" class="form-label">Long Description</label>
    <textarea class="form-control" name="longDescription" id="longDescription" rows="5">{{.LongDescription}}</textarea>
  </div>
  <div class="mb-3">
    <label for="tags" class="form-label">Tags (comma separated)</label>
    <input type="text" class="form-control" name="tags" id="tags" value="{{.Tags}}">
  </div>
  <div class="mb-3">
    <label for="speakers" class="form-label">Speakers (one per line: Name | Title)</label>
    <textarea class="form-control" name="speakers" id="speakers" rows="3">{{.Speakers}}</textarea>
  </div>
  <div class="mb-3">
    <label for="schedule" class="form-label">Schedule (one per line: Time | Title | Speaker)</label>
    <textarea class="form-control" name="schedule" id="schedule" rows="3">{{.Schedule}}</textarea>
  </div>
  <div class="mb-3">
    <label for="image" class="form-label">Cover Image</label>
    <input type="file" class="form-control" name="image" id="image" accept="image/*">
  </div>
  <button type="submit" class="btn btn-primary">Save</button>
</form>
{{end}}
`

var EventFormTemplate = template.Must(template.Must(template.New("base").Parse(baseText)).Parse(eventFormText))
