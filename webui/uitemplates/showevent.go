package uitemplates

import "html/template"

type SpeakerItem struct {
	Name  string
	Title string
}

type ScheduleEntry struct {
	Time    string
	Title   string
	Speaker string
}

type ChatItem struct {
	UserName string
	Text     string
	When     string
}

type QuestionItem struct {
	ID       string
	UserName string
	Text     string
	Upvotes  int64
	Answered bool
	Upvoted  bool
}

type PollOptionItem struct {
	ID      string
	Text    string
	Votes   int
	Percent int
	Voted   bool
}

type PollItem struct {
	ID       string
	Question string
	Options  []PollOptionItem
}

type LeaderboardItem struct {
	Rank     int
	UserName string
	Score    int64
}

type ShowEventParams struct {
	ID              string
	Title           string
	Category        string
	Date            string
	Location        string
	Description     string
	LongDescription string
	ImageURL        string
	Speakers        []SpeakerItem
	Schedule        []ScheduleEntry

	LoggedIn       bool
	IsOrganizer    bool
	Registered     bool
	RegistrationID string

	ChatMessages []ChatItem
	Questions    []QuestionItem
	Polls        []PollItem
	Leaderboard  []LeaderboardItem
}

var showEventText = `{{define "title"}}{{.Title}}{{end}}

{{define "breadcrumbs" -}}
<li class="breadcrumb-item"><a href="/">Home</a></li>
<li class="breadcrumb-item"><a href="/events">Events</a></li>
<li class="breadcrumb-item active" aria-current="page">{{.Title}}</li>
{{- end}}

{{define "content"}}
<h1>{{.Title}} <span class="badge text-bg-secondary">{{.Category}}</span></h1>

{{if .ImageURL}}<img src="{{.ImageURL}}" class="img-fluid mb-3" alt="">{{end}}

<p>{{.Date}} &middot; {{.Location}}</p>
<p>{{.Description}}</p>
{{if .LongDescription}}<p>{{.LongDescription}}</p>{{end}}

{{if .Speakers}}
<h2>Speakers</h2>
<ul>
  {{range .Speakers}}<li>{{.Name}}{{if .Title}} &mdash; {{.Title}}{{end}}</li>{{end}}
</ul>
{{end}}

{{if .Schedule}}
<h2>Schedule</h2>
<table class="table">
  <tbody>
    {{range .Schedule}}
    <tr><td>{{.Time}}</td><td>{{.Title}}</td><td>{{.Speaker}}</td></tr>
    {{end}}
  </tbody>
</table>
{{end}}

{{if not .LoggedIn}}
<p><a href="/log-in">Log in</a> to register and join the live experience.</p>
{{else}}

{{if .Registered}}
<p><a class="btn btn-outline-primary" href="/ticket?id={{.RegistrationID}}">View your ticket</a></p>
{{else}}
<form method="POST" action="/register-for-event?event={{.ID}}">
  <button type="submit" class="btn btn-primary">Register</button>
</form>
{{end}}

{{if .IsOrganizer}}
<div class="mt-3">
  <a class="btn btn-sm btn-outline-secondary" href="/edit-event?id={{.ID}}">Edit</a>
  <a class="btn btn-sm btn-outline-secondary" href="/attendees?event={{.ID}}">Attendees</a>
  <a class="btn btn-sm btn-outline-secondary" href="/check-in?event={{.ID}}">Check-in</a>
  <a class="btn btn-sm btn-outline-secondary" href="/event-summary?event={{.ID}}">AI Summary</a>
  <a class="btn btn-sm btn-outline-secondary" href="/email-blast?event={{.ID}}">Email Blast</a>
  <form method="POST" action="/delete-event?id={{.ID}}" class="d-inline">
    <button type="submit" class="btn btn-sm btn-outline-danger">Delete</button>
  </form>
</div>
{{end}}

<hr>

<div class="row">
  <div class="col-md-6">
    <h2>Live Chat</h2>
    <div id="chat">
      {{range .ChatMessages}}
      <p><strong>{{.UserName}}</strong> <span class="text-muted">{{.When}}</span><br>{{.Text}}</p>
      {{end}}
    </div>
    <form method="POST" action="/send-chat?event={{.ID}}">
      <div class="input-group">
        <input type="text" class="form-control" name="text" required>
        <button type="submit" class="btn btn-primary">Send</button>
      </div>
    </form>

    <h2 class="mt-4">Q&amp;A</h2>
    <div id="questions">
      {{range .Questions}}
      <p>
        <strong>{{.UserName}}</strong>{{if .Answered}} <span class="badge text-bg-success">Answered</span>{{end}}<br>
        {{.Text}}<br>
        <form method="POST" action="/toggle-upvote?event={{$.ID}}" class="d-inline">
          <input type="hidden" name="question" value="{{.ID}}">
          <button type="submit" class="btn btn-sm {{if .Upvoted}}btn-primary{{else}}btn-outline-primary{{end}}">&#9650; {{.Upvotes}}</button>
        </form>
        {{if $.IsOrganizer}}
        <form method="POST" action="/mark-answered?event={{$.ID}}" class="d-inline">
          <input type="hidden" name="question" value="{{.ID}}">
          {{if .Answered}}<input type="hidden" name="answered" value="false">{{end}}
          <button type="submit" class="btn btn-sm btn-outline-secondary">{{if .Answered}}Unmark{{else}}Mark answered{{end}}</button>
        </form>
        {{end}}
      </p>
      {{end}}
    </div>
    <form method="POST" action="/ask-question?event={{.ID}}">
      <div class="input-group">
        <input type="text" class="form-control" name="text" placeholder="Ask a question" required>
        <button type="submit" class="btn btn-primary">Ask</button>
      </div>
    </form>
  </div>

  <div class="col-md-6">
    <h2>Polls</h2>
    <div id="polls">
      {{range .Polls}}
      {{$poll := .}}
      <div class="card mb-3">
        <div class="card-body">
          <h5 class="card-title">{{.Question}}</h5>
          {{range .Options}}
          <form method="POST" action="/vote?event={{$.ID}}" class="mb-1">
            <input type="hidden" name="poll" value="{{$poll.ID}}">
            <input type="hidden" name="option" value="{{.ID}}">
            <button type="submit" class="btn btn-sm {{if .Voted}}btn-primary{{else}}btn-outline-primary{{end}}">{{.Text}}</button>
            <span class="text-muted">{{.Votes}} ({{.Percent}}%)</span>
          </form>
          {{end}}
        </div>
      </div>
      {{end}}
    </div>
    {{if .IsOrganizer}}
    <form method="POST" action="/create-poll?event={{.ID}}">
      <input type="text" class="form-control mb-1" name="question" placeholder="Poll question" required>
      <input type="text" class="form-control mb-1" name="option" placeholder="Option 1" required>
      <input type="text" class="form-control mb-1" name="option" placeholder="Option 2" required>
      <input type="text" class="form-control mb-1" name="option" placeholder="Option 3">
      <button type="submit" class="btn btn-sm btn-primary">Create Poll</button>
    </form>
    {{end}}

    <h2 class="mt-4">Leaderboard</h2>
    <table class="table" id="leaderboard">
      <tbody>
        {{range .Leaderboard}}
        <tr><td>{{.Rank}}</td><td>{{.UserName}}</td><td>{{.Score}}</td></tr>
        {{end}}
      </tbody>
    </table>

    <h2 class="mt-4">Event Assistant</h2>
    <div id="assistant-answer"></div>
    <form id="assistant-form">
      <div class="input-group">
        <input type="text" class="form-control" name="query" placeholder="Ask about this event" required>
        <button type="submit" class="btn btn-primary">Ask AI</button>
      </div>
    </form>
  </div>
</div>
{{end}}
{{end}}

{{define "scripts"}}
{{if .LoggedIn}}
<script>
(function() {
  var eventID = {{.ID}};

  var proto = location.protocol === "https:" ? "wss:" : "ws:";
  var sock = new WebSocket(proto + "//" + location.host + "/ws/event?id=" + eventID);
  var reloading = false;
  sock.onmessage = function() {
    // The server only pushes when the data actually changed; a reload
    // re-renders everything, so collapse a burst into one reload.
    if (reloading) return;
    reloading = true;
    location.reload();
  };

  var form = document.getElementById("assistant-form");
  form.addEventListener("submit", function(e) {
    e.preventDefault();
    var body = new URLSearchParams(new FormData(form));
    fetch("/event-assistant?event=" + eventID, {method: "POST", body: body})
      .then(function(resp) { return resp.json(); })
      .then(function(data) {
        document.getElementById("assistant-answer").textContent = data.answer;
      });
  });
})();
</script>
{{end}}
{{end}}
`

var ShowEventTemplate = template.Must(template.Must(template.New("base").Parse(baseText)).Parse(showEventText))
