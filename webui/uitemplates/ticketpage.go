package uitemplates

import "html/template"

type TicketParams struct {
	RegistrationID string
	EventTitle     string
	EventDate      string
	EventLocation  string
	UserName       string
	QRLink         string
	PDFLink        string
}

var ticketText = `{{define "title"}}Your Ticket{{end}}

{{define "breadcrumbs" -}}
<li class="breadcrumb-item"><a href="/">Home</a></li>
<li class="breadcrumb-item active" aria-current="page">Ticket</li>
{{- end}}

{{define "content"}}
<h1>Your Ticket</h1>

<div class="card" style="max-width: 24rem">
  <div class="card-body text-center">
    <h5 class="card-title">{{.EventTitle}}</h5>
    <p class="card-text">{{.EventDate}}<br>{{.EventLocation}}</p>
    <img src="{{.QRLink}}" alt="Ticket QR code" width="256" height="256">
    <p class="card-text">{{.UserName}}</p>
    <p class="card-text"><small class="text-muted">{{.RegistrationID}}</small></p>
    <a class="btn btn-primary" href="{{.PDFLink}}">Download PDF</a>
  </div>
</div>
{{end}}
`

var TicketTemplate = template.Must(template.Must(template.New("base").Parse(baseText)).Parse(ticketText))
