package notify

import (
	"bytes"
	"html/template"
	"time"

	"github.com/legalnest/backend/internal/model"
)

var contactTmpl = template.Must(template.New("contact").Parse(`
<h2>New Contact Form Submission</h2>
<p><strong>Name:</strong> {{.Name}}</p>
<p><strong>Email:</strong> {{.Email}}</p>
<p><strong>Phone:</strong> {{or .Phone "N/A"}}</p>
<p><strong>Message:</strong></p>
<p>{{.Message}}</p>
<hr>
<p><small>Submitted on: {{.SubmittedOn}}</small></p>
`))

var enquiryTmpl = template.Must(template.New("enquiry").Parse(`
<h2>New Service Enquiry</h2>
<p><strong>Name:</strong> {{.Name}}</p>
<p><strong>Email:</strong> {{.Email}}</p>
<p><strong>Phone:</strong> {{.Phone}}</p>
<p><strong>Service:</strong> {{or .Service "N/A"}}</p>
<p><strong>City:</strong> {{or .City "N/A"}}</p>
<p><strong>Details:</strong></p>
<p>{{or .Details .Message "N/A"}}</p>
<hr>
<p><small>Submitted on: {{.SubmittedOn}}</small></p>
`))

type mailView struct {
	model.Submission
	SubmittedOn string
}

func render(t *template.Template, s model.Submission, now time.Time) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, mailView{Submission: s, SubmittedOn: now.Format("02 Jan 2006 15:04:05 MST")}); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func contactSubject(s model.Submission) string {
	return "New Contact Form Submission - " + s.Name
}

func enquirySubject(s model.Submission) string {
	service := s.Service
	if service == "" {
		service = "General"
	}
	return "New Service Enquiry - " + service
}
