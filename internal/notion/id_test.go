package notion

import "testing"

func TestExtractDatabaseID(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "plain url",
			in:   "https://www.notion.so/a1b2c3d4e5f6a7b8c9d0a1b2c3d4e5f6",
			want: "a1b2c3d4-e5f6-a7b8-c9d0-a1b2c3d4e5f6",
		},
		{
			name: "workspace url",
			in:   "https://www.notion.so/myworkspace/a1b2c3d4e5f6a7b8c9d0a1b2c3d4e5f6",
			want: "a1b2c3d4-e5f6-a7b8-c9d0-a1b2c3d4e5f6",
		},
		{
			name: "url with title slug",
			in:   "https://www.notion.so/Leads-a1b2c3d4e5f6a7b8c9d0a1b2c3d4e5f6",
			want: "a1b2c3d4-e5f6-a7b8-c9d0-a1b2c3d4e5f6",
		},
		{
			name: "bare hyphenated id",
			in:   "a1b2c3d4-e5f6-a7b8-c9d0-a1b2c3d4e5f6",
			want: "a1b2c3d4-e5f6-a7b8-c9d0-a1b2c3d4e5f6",
		},
		{
			name: "bare compact id",
			in:   "a1b2c3d4e5f6a7b8c9d0a1b2c3d4e5f6",
			want: "a1b2c3d4-e5f6-a7b8-c9d0-a1b2c3d4e5f6",
		},
		{
			name: "not an id",
			in:   "short",
			want: "short",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ExtractDatabaseID(tc.in); got != tc.want {
				t.Fatalf("ExtractDatabaseID(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
