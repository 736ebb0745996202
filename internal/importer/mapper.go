package importer

import (
	"errors"
	"strings"

	"outreach_backend/internal/notion"
	"outreach_backend/platform/phone"
)

// Column names of the source sheet export.
const (
	colFirstName = "First Name"
	colLastName  = "Last Name"
	colEmail     = "E-mail"
	colPhone     = "Company Phone Number"
	colCompany   = "Company Name"
	colWebsite   = "Website"
	colLinkedin  = "Linkedin"
	colCategory  = "Category"
	colTitle     = "Title"
	colLocation  = "Location"
)

// ErrMissingRequiredField means a row lacks one of first name, last name or
// email and cannot become a lead record.
var ErrMissingRequiredField = errors.New("missing required field")

// LeadFields is a mapped, normalized lead ready to be written to the
// datastore.
type LeadFields struct {
	FullName string
	Email    string
	Phone    string
	Title    string
	Company  string
	Website  string
	Social   string
	Location string
	Industry string
}

// MapRow converts a raw sheet row into lead fields. First name, last name
// and email are required; everything else is optional. Phone numbers are
// normalized to E.164 and schemeless URLs get an https:// prefix.
func MapRow(row map[string]string) (*LeadFields, error) {
	first := strings.TrimSpace(row[colFirstName])
	last := strings.TrimSpace(row[colLastName])
	email := strings.TrimSpace(row[colEmail])

	if first == "" || last == "" || email == "" {
		return nil, ErrMissingRequiredField
	}

	fields := &LeadFields{
		FullName: first + " " + last,
		Email:    email,
		Title:    strings.TrimSpace(row[colTitle]),
		Company:  strings.TrimSpace(row[colCompany]),
		Website:  normalizeURL(row[colWebsite]),
		Social:   normalizeURL(row[colLinkedin]),
		Location: strings.TrimSpace(row[colLocation]),
		Industry: strings.TrimSpace(row[colCategory]),
	}

	if raw := strings.TrimSpace(row[colPhone]); raw != "" {
		fields.Phone = phone.NormalizeE164(raw)
	}

	return fields, nil
}

func normalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		return raw
	}
	return "https://" + raw
}

// Properties renders the lead as datastore page properties. Empty optional
// fields are omitted entirely rather than written as blanks.
func (f *LeadFields) Properties() notion.Properties {
	props := notion.Properties{
		"Name":        notion.Title(f.FullName),
		"Email":       notion.Email(f.Email),
		"Lead Source": notion.Select("Cold Outreach"),
		"Status":      notion.Status("Not contacted"),
	}

	if f.Phone != "" {
		props["Phone"] = notion.Phone(f.Phone)
	}
	if f.Title != "" {
		props["Title"] = notion.Text(f.Title)
	}
	if f.Company != "" {
		props["Organisation"] = notion.Text(f.Company)
	}
	if f.Website != "" {
		props["Website"] = notion.URL(f.Website)
	}
	if f.Social != "" {
		props["Social Media"] = notion.URL(f.Social)
	}
	if f.Location != "" {
		props["Location"] = notion.Text(f.Location)
	}
	if f.Industry != "" {
		props["Industry"] = notion.Text(f.Industry)
	}

	return props
}

// AsMap returns the mapped field values keyed by destination field name,
// used for per-row error reporting.
func (f *LeadFields) AsMap() map[string]string {
	out := map[string]string{
		"name":  f.FullName,
		"email": f.Email,
	}
	if f.Phone != "" {
		out["phone"] = f.Phone
	}
	if f.Title != "" {
		out["title"] = f.Title
	}
	if f.Company != "" {
		out["organisation"] = f.Company
	}
	if f.Website != "" {
		out["website"] = f.Website
	}
	if f.Social != "" {
		out["socialMedia"] = f.Social
	}
	if f.Location != "" {
		out["location"] = f.Location
	}
	if f.Industry != "" {
		out["industry"] = f.Industry
	}
	return out
}
