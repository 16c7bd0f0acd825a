package bulk

import (
	"reflect"
	"testing"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "plain fields",
			input: "a,b,c",
			want:  []string{"a", "b", "c"},
		},
		{
			name:  "outside whitespace trimmed",
			input: "  a , b ,c  ",
			want:  []string{"a", "b", "c"},
		},
		{
			name:  "quoted comma is literal",
			input: `"Doe, Jane",Active`,
			want:  []string{"Doe, Jane", "Active"},
		},
		{
			name:  "doubled quote is a literal quote",
			input: `"Say ""hi""",x`,
			want:  []string{`Say "hi"`, "x"},
		},
		{
			name:  "round trip sample",
			input: `"Doe, Jane","Say ""hi""",Active`,
			want:  []string{"Doe, Jane", `Say "hi"`, "Active"},
		},
		{
			name:  "whitespace inside quotes preserved",
			input: `"  padded  ",b`,
			want:  []string{"  padded  ", "b"},
		},
		{
			name:  "whitespace around quoted field trimmed",
			input: `  "Doe, Jane"  ,b`,
			want:  []string{"Doe, Jane", "b"},
		},
		{
			name:  "empty line emits one empty field",
			input: "",
			want:  []string{""},
		},
		{
			name:  "trailing comma emits empty final field",
			input: "a,",
			want:  []string{"a", ""},
		},
		{
			name:  "empty quoted field",
			input: `"",b`,
			want:  []string{"", "b"},
		},
		{
			name:  "quote at end of quoted field",
			input: `"a""",b`,
			want:  []string{`a"`, "b"},
		},
		{
			name:  "only commas",
			input: ",,",
			want:  []string{"", "", ""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseLine(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseLine(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormatLineRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		fields []string
	}{
		{"plain", []string{"a", "b", "c"}},
		{"embedded comma", []string{"Doe, Jane", "Active"}},
		{"embedded quotes", []string{`Say "hi"`, "x"}},
		{"mixed", []string{"Doe, Jane", `Say "hi"`, "Active"}},
		{"empty fields", []string{"", "b", ""}},
		{"leading space preserved via quoting", []string{" padded ", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line := FormatLine(tt.fields)
			got := ParseLine(line)
			if !reflect.DeepEqual(got, tt.fields) {
				t.Errorf("ParseLine(FormatLine(%q)) = %q via %q", tt.fields, got, line)
			}
		})
	}
}

func TestParseDocument(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantHeaders []string
		wantRows    [][]string
	}{
		{
			name:        "header plus rows",
			input:       "name,email\nAlice,a@x.com\nBob,b@x.com",
			wantHeaders: []string{"name", "email"},
			wantRows:    [][]string{{"Alice", "a@x.com"}, {"Bob", "b@x.com"}},
		},
		{
			name:        "blank lines ignored",
			input:       "name,email\n\n  \nAlice,a@x.com\n\n",
			wantHeaders: []string{"name", "email"},
			wantRows:    [][]string{{"Alice", "a@x.com"}},
		},
		{
			name:        "crlf terminators",
			input:       "name,email\r\nAlice,a@x.com\r\n",
			wantHeaders: []string{"name", "email"},
			wantRows:    [][]string{{"Alice", "a@x.com"}},
		},
		{
			name:        "newline inside quoted field",
			input:       "name,bio\nAlice,\"line one\nline two\"",
			wantHeaders: []string{"name", "bio"},
			wantRows:    [][]string{{"Alice", "line one\nline two"}},
		},
		{
			name:        "empty input",
			input:       "",
			wantHeaders: nil,
			wantRows:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := ParseDocument(tt.input)
			if !reflect.DeepEqual(doc.Headers, tt.wantHeaders) {
				t.Errorf("headers = %q, want %q", doc.Headers, tt.wantHeaders)
			}
			if !reflect.DeepEqual(doc.Rows, tt.wantRows) {
				t.Errorf("rows = %q, want %q", doc.Rows, tt.wantRows)
			}
		})
	}
}
