package outreach

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Template is one email template with {name}, {company} and {industry}
// placeholders.
type Template struct {
	Subject string `yaml:"subject"`
	Body    string `yaml:"body"`
}

// Templates holds the cold email and follow-up templates.
type Templates struct {
	ColdEmail Template `yaml:"cold_email"`
	FollowUp  Template `yaml:"follow_up"`
}

func defaultTemplates() Templates {
	return Templates{
		ColdEmail: Template{
			Subject: "Quick question about {company}",
			Body: "Hi {name},\n\n" +
				"I came across {company} while looking into the {industry} space and wanted to reach out.\n\n" +
				"We help teams like yours get more out of their outreach without adding headcount. " +
				"Would you be open to a short call next week?\n\n" +
				"Best regards",
		},
		FollowUp: Template{
			Subject: "Following up - {company}",
			Body: "Hi {name},\n\n" +
				"Just floating my earlier note back to the top of your inbox. " +
				"If the timing is off, no problem at all - happy to reconnect later.\n\n" +
				"Best regards",
		},
	}
}

// LoadTemplates reads the YAML template file at path. A missing file yields
// the built-in defaults; a present but partial file keeps defaults for the
// fields it leaves blank.
func LoadTemplates(path string) (Templates, error) {
	tpls := defaultTemplates()

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return tpls, nil
	}
	if err != nil {
		return Templates{}, fmt.Errorf("read templates: %w", err)
	}

	var loaded Templates
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return Templates{}, fmt.Errorf("parse templates: %w", err)
	}

	if loaded.ColdEmail.Subject != "" {
		tpls.ColdEmail.Subject = loaded.ColdEmail.Subject
	}
	if loaded.ColdEmail.Body != "" {
		tpls.ColdEmail.Body = loaded.ColdEmail.Body
	}
	if loaded.FollowUp.Subject != "" {
		tpls.FollowUp.Subject = loaded.FollowUp.Subject
	}
	if loaded.FollowUp.Body != "" {
		tpls.FollowUp.Body = loaded.FollowUp.Body
	}

	return tpls, nil
}

var multiNewline = regexp.MustCompile(`\n{3,}`)

// Render personalizes the template for a lead. Empty lead fields fall back
// to neutral phrases, and runs of three or more newlines collapse so missing
// paragraphs do not leave holes in the message.
func (t Template) Render(lead Lead) (subject, body string) {
	repl := strings.NewReplacer(
		"{name}", fallback(lead.Name, "there"),
		"{company}", fallback(lead.Company, "your company"),
		"{industry}", fallback(lead.Industry, "your industry"),
	)

	subject = repl.Replace(t.Subject)
	body = multiNewline.ReplaceAllString(repl.Replace(t.Body), "\n\n")
	return subject, body
}

func fallback(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return value
}
