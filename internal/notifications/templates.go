package notifications

import (
	"bytes"
	"fmt"
	"html/template"
	"time"
)

var invitationTemplate = template.Must(template.New("invitation").Funcs(funcs).Parse(`<!DOCTYPE html>
<html>
<body>
<p>Dear {{.VisitorName}},</p>
<p>{{.Inviter}} has invited you to <strong>{{.Meeting.Title}}</strong>.</p>
<table>
<tr><td>Speaker</td><td>{{.Meeting.Speaker}}</td></tr>
<tr><td>Venue</td><td>{{.Meeting.Place}}</td></tr>
<tr><td>When</td><td>{{when .Meeting.ScheduledAt}}</td></tr>
{{- if .Meeting.Agenda}}
<tr><td>Agenda</td><td>{{.Meeting.Agenda}}</td></tr>
{{- end}}
{{- range $k, $v := .Details}}
<tr><td>{{$k}}</td><td>{{$v}}</td></tr>
{{- end}}
</table>
{{- if .PaymentLink}}
<p>The visitor fee is {{money .Amount .Currency}}. Please complete the payment to confirm your seat:</p>
<p><a href="{{.PaymentLink}}">{{.PaymentLink}}</a></p>
{{- else}}
<p>Your seat is confirmed. We look forward to seeing you.</p>
{{- end}}
</body>
</html>
`))

var confirmationTemplate = template.Must(template.New("confirmation").Funcs(funcs).Parse(`<!DOCTYPE html>
<html>
<body>
<p>Dear {{.VisitorName}},</p>
<p>Your payment has been received and your seat at <strong>{{.Meeting.Title}}</strong> is confirmed.</p>
<table>
<tr><td>Venue</td><td>{{.Meeting.Place}}</td></tr>
<tr><td>When</td><td>{{when .Meeting.ScheduledAt}}</td></tr>
{{- if .PaymentID}}
<tr><td>Payment reference</td><td>{{.PaymentID}}</td></tr>
{{- end}}
</table>
</body>
</html>
`))

var funcs = template.FuncMap{
	"when":  func(t time.Time) string { return t.Format("Mon, 02 Jan 2006 15:04 MST") },
	"money": money,
}

// money formats minor units, e.g. 50000 INR as "INR 500.00".
func money(amount int64, currency string) string {
	return fmt.Sprintf("%s %d.%02d", currency, amount/100, amount%100)
}

// renderer renders email bodies with meeting times in loc.
type renderer struct {
	loc *time.Location
}

func (r renderer) invitation(msg Invitation) (subject, body string, err error) {
	msg.Meeting.ScheduledAt = msg.Meeting.ScheduledAt.In(r.loc)
	var buf bytes.Buffer
	if err := invitationTemplate.Execute(&buf, msg); err != nil {
		return "", "", fmt.Errorf("render invitation: %w", err)
	}
	return "Invitation: " + msg.Meeting.Title, buf.String(), nil
}

func (r renderer) confirmation(msg Confirmation) (subject, body string, err error) {
	msg.Meeting.ScheduledAt = msg.Meeting.ScheduledAt.In(r.loc)
	var buf bytes.Buffer
	if err := confirmationTemplate.Execute(&buf, msg); err != nil {
		return "", "", fmt.Errorf("render confirmation: %w", err)
	}
	return "Confirmed: " + msg.Meeting.Title, buf.String(), nil
}
