package notion

import "time"

// Properties is the schema-keyed property map of a page. Optional fields
// with no value must be left out of the map entirely; some Notion property
// types reject explicit nulls.
type Properties map[string]Property

// Property is one property value. Exactly one field is set per property;
// the zero fields are omitted from the wire format.
type Property struct {
	Title       []RichTextObject `json:"title,omitempty"`
	RichText    []RichTextObject `json:"rich_text,omitempty"`
	Email       string           `json:"email,omitempty"`
	PhoneNumber string           `json:"phone_number,omitempty"`
	URL         string           `json:"url,omitempty"`
	Select      *SelectOption    `json:"select,omitempty"`
	Status      *SelectOption    `json:"status,omitempty"`
	Date        *DateValue       `json:"date,omitempty"`
}

// RichTextObject is one span of a title or rich_text property.
type RichTextObject struct {
	Text      *TextContent `json:"text,omitempty"`
	PlainText string       `json:"plain_text,omitempty"`
}

// Plain returns the span's text regardless of which representation is set.
func (r RichTextObject) Plain() string {
	if r.Text != nil {
		return r.Text.Content
	}
	return r.PlainText
}

// TextContent is the writable content of a rich text span.
type TextContent struct {
	Content string `json:"content"`
}

// SelectOption names a select or status option.
type SelectOption struct {
	Name string `json:"name"`
}

// DateValue is a date property value.
type DateValue struct {
	Start string `json:"start"`
}

// Builders for property values.

// Title builds a title property.
func Title(content string) Property {
	return Property{Title: []RichTextObject{{Text: &TextContent{Content: content}}}}
}

// Text builds a rich_text property.
func Text(content string) Property {
	return Property{RichText: []RichTextObject{{Text: &TextContent{Content: content}}}}
}

// Email builds an email property.
func Email(address string) Property {
	return Property{Email: address}
}

// Phone builds a phone_number property.
func Phone(number string) Property {
	return Property{PhoneNumber: number}
}

// URL builds a url property.
func URL(link string) Property {
	return Property{URL: link}
}

// Select builds a select property.
func Select(name string) Property {
	return Property{Select: &SelectOption{Name: name}}
}

// Status builds a status property.
func Status(name string) Property {
	return Property{Status: &SelectOption{Name: name}}
}

// Date builds a date property.
func Date(t time.Time) Property {
	return Property{Date: &DateValue{Start: t.Format(time.RFC3339)}}
}

// Extractors. Each returns the zero value when the property is absent or of
// a different type.

// PlainText returns the concatenated text of a title or rich_text property.
func (p Properties) PlainText(key string) string {
	prop, ok := p[key]
	if !ok {
		return ""
	}
	spans := prop.Title
	if len(spans) == 0 {
		spans = prop.RichText
	}
	var out string
	for _, span := range spans {
		out += span.Plain()
	}
	return out
}

// EmailValue returns an email property value.
func (p Properties) EmailValue(key string) string {
	return p[key].Email
}

// DateStart returns the start of a date property.
func (p Properties) DateStart(key string) string {
	prop, ok := p[key]
	if !ok || prop.Date == nil {
		return ""
	}
	return prop.Date.Start
}

// Filter is a database query filter expression. Compound filters set And/Or;
// property conditions set Property plus exactly one condition field.
type Filter struct {
	And      []Filter         `json:"and,omitempty"`
	Or       []Filter         `json:"or,omitempty"`
	Property string           `json:"property,omitempty"`
	Status   *StatusCondition `json:"status,omitempty"`
	RichText *TextCondition   `json:"rich_text,omitempty"`
	Email    *TextCondition   `json:"email,omitempty"`
	Date     *DateCondition   `json:"date,omitempty"`
}

// StatusCondition matches a status property.
type StatusCondition struct {
	Equals string `json:"equals,omitempty"`
}

// TextCondition matches a rich_text or email property.
type TextCondition struct {
	Equals     string `json:"equals,omitempty"`
	IsEmpty    bool   `json:"is_empty,omitempty"`
	IsNotEmpty bool   `json:"is_not_empty,omitempty"`
}

// DateCondition matches a date property.
type DateCondition struct {
	OnOrBefore string `json:"on_or_before,omitempty"`
	IsEmpty    bool   `json:"is_empty,omitempty"`
}
