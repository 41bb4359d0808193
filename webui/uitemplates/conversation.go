package uitemplates

import "html/template"

type MessageItem struct {
	Text   string
	Mine   bool
	System bool
	When   string
}

type ConversationParams struct {
	ID        string
	OtherName string
	Messages  []MessageItem
}

var conversationText = `{{define "title"}}Chat with {{.OtherName}}{{end}}

{{define "breadcrumbs" -}}
<li class="breadcrumb-item"><a href="/">Home</a></li>
<li class="breadcrumb-item"><a href="/messages">Messages</a></li>
<li class="breadcrumb-item active" aria-current="page">{{.OtherName}}</li>
{{- end}}

{{define "content"}}
<h1>{{.OtherName}}</h1>

<div class="mb-3">
  {{range .Messages}}
  {{if .System}}
  <p class="text-center text-muted"><em>{{.Text}}</em></p>
  {{else}}
  <p class="{{if .Mine}}text-end{{end}}">
    {{.Text}}<br>
    <small class="text-muted">{{.When}}</small>
  </p>
  {{end}}
  {{end}}
</div>

<form method="POST">
  <div class="input-group">
    <input type="text" class="form-control" name="text" required>
    <button type="submit" class="btn btn-primary">Send</button>
  </div>
</form>
{{end}}

{{define "scripts"}}
<script>
(function() {
  var conversationID = {{.ID}};

  var proto = location.protocol === "https:" ? "wss:" : "ws:";
  var sock = new WebSocket(proto + "//" + location.host + "/ws/conversation?id=" + conversationID);
  var reloading = false;
  sock.onmessage = function() {
    // The server only pushes when the message list actually changed.
    if (reloading) return;
    reloading = true;
    location.reload();
  };
})();
</script>
{{end}}
`

var ConversationTemplate = template.Must(template.Must(template.New("base").Parse(baseText)).Parse(conversationText))
