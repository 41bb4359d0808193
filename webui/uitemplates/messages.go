package uitemplates

import "html/template"

type ConversationItem struct {
	ID          string
	OtherName   string
	LastMessage string
	When        string
	ShowLink    string
}

type MessagesParams struct {
	Conversations []ConversationItem
}

var messagesText = `{{define "title"}}Messages{{end}}

{{define "breadcrumbs" -}}
<li class="breadcrumb-item"><a href="/">Home</a></li>
<li class="breadcrumb-item active" aria-current="page">Messages</li>
{{- end}}

{{define "content"}}
<h1>Messages</h1>

{{if .Conversations}}
<ul class="list-group">
  {{range .Conversations}}
  <li class="list-group-item">
    <a href="{{.ShowLink}}">{{.OtherName}}</a>
    <span class="text-muted">{{.LastMessage}} &middot; {{.When}}</span>
  </li>
  {{end}}
</ul>
{{else}}
<p>No conversations yet. Find someone on <a href="/peer-connect">Peer Connect</a>.</p>
{{end}}
{{end}}

{{define "scripts"}}
<script>
(function() {
  var proto = location.protocol === "https:" ? "wss:" : "ws:";
  var sock = new WebSocket(proto + "//" + location.host + "/ws/inbox");
  var reloading = false;
  sock.onmessage = function() {
    if (reloading) return;
    reloading = true;
    location.reload();
  };
})();
</script>
{{end}}
`

var MessagesTemplate = template.Must(template.Must(template.New("base").Parse(baseText)).Parse(messagesText))
