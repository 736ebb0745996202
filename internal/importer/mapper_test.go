package importer

import (
	"errors"
	"testing"
)

func fullRow() map[string]string {
	return map[string]string{
		colFirstName: "Jane",
		colLastName:  "Doe",
		colEmail:     "jane@acme.io",
		colPhone:     "+1 650 253 0000",
		colCompany:   "Acme",
		colWebsite:   "acme.io",
		colLinkedin:  "https://linkedin.com/in/janedoe",
		colCategory:  "SaaS",
		colTitle:     "CTO",
		colLocation:  "Berlin",
	}
}

func TestMapRowFull(t *testing.T) {
	fields, err := MapRow(fullRow())
	if err != nil {
		t.Fatalf("MapRow: %v", err)
	}

	if fields.FullName != "Jane Doe" {
		t.Fatalf("FullName = %q", fields.FullName)
	}
	if fields.Email != "jane@acme.io" {
		t.Fatalf("Email = %q", fields.Email)
	}
	if fields.Phone != "+16502530000" {
		t.Fatalf("Phone = %q, want E.164", fields.Phone)
	}
	if fields.Website != "https://acme.io" {
		t.Fatalf("Website = %q, want https prefix", fields.Website)
	}
	if fields.Social != "https://linkedin.com/in/janedoe" {
		t.Fatalf("Social = %q, want unchanged", fields.Social)
	}
	if fields.Industry != "SaaS" {
		t.Fatalf("Industry = %q", fields.Industry)
	}
}

func TestMapRowMissingRequired(t *testing.T) {
	for _, col := range []string{colFirstName, colLastName, colEmail} {
		row := fullRow()
		row[col] = "   "
		if _, err := MapRow(row); !errors.Is(err, ErrMissingRequiredField) {
			t.Fatalf("missing %s: err = %v, want ErrMissingRequiredField", col, err)
		}
	}
}

func TestMapRowKeepsUnparseablePhone(t *testing.T) {
	row := fullRow()
	row[colPhone] = "call reception"

	fields, err := MapRow(row)
	if err != nil {
		t.Fatalf("MapRow: %v", err)
	}
	if fields.Phone != "call reception" {
		t.Fatalf("Phone = %q, want raw input kept", fields.Phone)
	}
}

func TestPropertiesOmitEmptyFields(t *testing.T) {
	fields, err := MapRow(map[string]string{
		colFirstName: "Jane",
		colLastName:  "Doe",
		colEmail:     "jane@acme.io",
	})
	if err != nil {
		t.Fatalf("MapRow: %v", err)
	}

	props := fields.Properties()

	if got := props["Name"].Title[0].Text.Content; got != "Jane Doe" {
		t.Fatalf("Name = %q", got)
	}
	if got := props["Email"].Email; got != "jane@acme.io" {
		t.Fatalf("Email = %q", got)
	}
	if got := props["Lead Source"].Select.Name; got != "Cold Outreach" {
		t.Fatalf("Lead Source = %q", got)
	}
	if got := props["Status"].Status.Name; got != "Not contacted" {
		t.Fatalf("Status = %q", got)
	}

	for _, key := range []string{"Phone", "Website", "Social Media", "Organisation", "Location", "Industry", "Title"} {
		if _, present := props[key]; present {
			t.Fatalf("property %s should be omitted when empty", key)
		}
	}
}
