package templates

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"strconv"
	"strings"
	texttemplate "text/template"
	"time"
)

//go:embed *.html *.txt
var templateFS embed.FS

// Template keys
const (
	ProfileSubmitted       = "profile_submitted"
	AdminNewSubmission     = "admin_new_submission"
	ProfileApproved        = "profile_approved"
	ProfileRejected        = "profile_rejected"
	ProfilePending         = "profile_pending"
	ProfileOnHold          = "profile_on_hold"
	MobileVerificationCode = "mobile_verification_code"
)

var emailSubjects = map[string]string{
	ProfileSubmitted:   "{{.label}} Profile Submitted Successfully",
	AdminNewSubmission: "New {{.label}} Profile Submitted for Review",
	ProfileApproved:    "Congratulations! Your {{.label}} Profile Has Been Approved",
	ProfileRejected:    "{{.label}} Profile Application Update Required",
	ProfilePending:     "{{.label}} Profile Under Review",
	ProfileOnHold:      "{{.label}} Profile Application On Hold",
}

var textTemplates = []string{MobileVerificationCode}

// Rendered is a message ready for a provider
type Rendered struct {
	Subject  string
	Body     string
	BodyHTML string
}

// Renderer renders notification templates
type Renderer struct {
	subjects map[string]*texttemplate.Template
	html     map[string]*htmltemplate.Template
	text     map[string]*texttemplate.Template
}

// NewRenderer parses every embedded template
func NewRenderer() (*Renderer, error) {
	r := &Renderer{
		subjects: make(map[string]*texttemplate.Template),
		html:     make(map[string]*htmltemplate.Template),
		text:     make(map[string]*texttemplate.Template),
	}

	baseContent, err := templateFS.ReadFile("base.html")
	if err != nil {
		return nil, fmt.Errorf("failed to read base template: %w", err)
	}

	for name, subject := range emailSubjects {
		subj, err := texttemplate.New(name + "_subject").Option("missingkey=zero").Parse(subject)
		if err != nil {
			return nil, fmt.Errorf("failed to parse subject for %s: %w", name, err)
		}
		r.subjects[name] = subj

		content, err := templateFS.ReadFile(name + ".html")
		if err != nil {
			return nil, fmt.Errorf("failed to read template %s: %w", name, err)
		}
		tmpl, err := htmltemplate.New("email").Option("missingkey=zero").Parse(string(baseContent))
		if err != nil {
			return nil, fmt.Errorf("failed to parse base template for %s: %w", name, err)
		}
		if _, err := tmpl.Parse(string(content)); err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		r.html[name] = tmpl
	}

	for _, name := range textTemplates {
		content, err := templateFS.ReadFile(name + ".txt")
		if err != nil {
			return nil, fmt.Errorf("failed to read template %s: %w", name, err)
		}
		tmpl, err := texttemplate.New(name).Option("missingkey=zero").Parse(strings.TrimSpace(string(content)))
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		r.text[name] = tmpl
	}

	return r, nil
}

// Has reports whether a template key is known
func (r *Renderer) Has(key string) bool {
	_, isEmail := r.html[key]
	_, isText := r.text[key]
	return isEmail || isText
}

// Render renders the template for key. Email keys produce a subject and an
// HTML body; text keys produce a plain body.
func (r *Renderer) Render(key string, data map[string]string) (*Rendered, error) {
	vars := make(map[string]string, len(data)+2)
	for k, v := range data {
		vars[k] = v
	}
	if vars["year"] == "" {
		vars["year"] = strconv.Itoa(time.Now().Year())
	}
	if vars["expiry_minutes"] == "" {
		vars["expiry_minutes"] = "10"
	}

	if tmpl, ok := r.text[key]; ok {
		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, vars); err != nil {
			return nil, fmt.Errorf("failed to execute template %s: %w", key, err)
		}
		return &Rendered{Body: buf.String()}, nil
	}

	tmpl, ok := r.html[key]
	if !ok {
		return nil, fmt.Errorf("template %s not found", key)
	}

	var subject bytes.Buffer
	if err := r.subjects[key].Execute(&subject, vars); err != nil {
		return nil, fmt.Errorf("failed to execute subject %s: %w", key, err)
	}
	vars["subject"] = subject.String()

	var body bytes.Buffer
	if err := tmpl.Execute(&body, vars); err != nil {
		return nil, fmt.Errorf("failed to execute template %s: %w", key, err)
	}

	return &Rendered{Subject: subject.String(), BodyHTML: body.String()}, nil
}

// StatusTemplate returns the owner template for a review decision
func StatusTemplate(status string) (string, bool) {
	switch status {
	case "approved":
		return ProfileApproved, true
	case "rejected":
		return ProfileRejected, true
	case "pending":
		return ProfilePending, true
	case "on_hold":
		return ProfileOnHold, true
	case "submitted":
		return ProfileSubmitted, true
	}
	return "", false
}
