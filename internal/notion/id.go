package notion

import "regexp"

var databaseURLPattern = regexp.MustCompile(`notion\.so/(?:[^/?#]+/)?([a-zA-Z0-9-]+)`)
var alnumPattern = regexp.MustCompile(`[^a-zA-Z0-9]`)

// ExtractDatabaseID resolves a Notion database URL or a raw ID string to the
// canonical hyphenated ID form. Notion URLs often carry a title slug before
// the ID, so the ID is the trailing 32 characters once separators are
// stripped; it is re-hyphenated as 8-4-4-4-12. Anything shorter is returned
// cleaned but otherwise as-is.
func ExtractDatabaseID(urlOrID string) string {
	raw := urlOrID
	if match := databaseURLPattern.FindStringSubmatch(urlOrID); match != nil {
		raw = match[1]
	}
	raw = alnumPattern.ReplaceAllString(raw, "")

	if len(raw) >= 32 {
		raw = raw[len(raw)-32:]
		return raw[:8] + "-" + raw[8:12] + "-" + raw[12:16] + "-" + raw[16:20] + "-" + raw[20:]
	}
	return raw
}
