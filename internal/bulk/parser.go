package bulk

import "strings"

// parser.go implements the delimited-text wire format for bulk import:
// comma-separated fields, RFC 4180-style double-quote escaping. A doubled
// quote inside a quoted field is a literal quote; commas and newlines inside
// quotes are literal; whitespace outside quotes is trimmed per field.

type parseState int

const (
	stateUnquoted parseState = iota
	stateQuoted
)

// ParseLine splits one record into its ordered field values. End of input
// always emits the final accumulated field, even when empty, so an empty
// line yields a single empty field.
func ParseLine(line string) []string {
	var fields []string
	var buf []rune

	state := stateUnquoted
	// Bounds of the buf range written while quoted; whitespace there is data.
	quotedFrom, quotedTo := -1, -1

	emit := func() {
		fields = append(fields, trimOutsideQuotes(string(buf), quotedFrom, quotedTo))
		buf = buf[:0]
		quotedFrom, quotedTo = -1, -1
	}

	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		ch := runes[i]
		switch state {
		case stateUnquoted:
			switch ch {
			case '"':
				state = stateQuoted
				if quotedFrom < 0 {
					quotedFrom = len(buf)
				}
			case ',':
				emit()
			default:
				buf = append(buf, ch)
			}
		case stateQuoted:
			if ch == '"' {
				if i+1 < len(runes) && runes[i+1] == '"' {
					buf = append(buf, '"')
					quotedTo = len(buf)
					i++
					continue
				}
				state = stateUnquoted
				continue
			}
			buf = append(buf, ch)
			quotedTo = len(buf)
		}
	}
	emit()

	return fields
}

// trimOutsideQuotes trims leading/trailing whitespace that was accumulated
// outside any quoted section. quotedFrom/quotedTo bound the quoted span of
// the field (-1 when the field was never quoted).
func trimOutsideQuotes(field string, quotedFrom, quotedTo int) string {
	if quotedFrom < 0 {
		return strings.TrimSpace(field)
	}
	runes := []rune(field)
	left := strings.TrimLeft(string(runes[:quotedFrom]), " \t")
	right := ""
	if quotedTo >= 0 && quotedTo <= len(runes) {
		right = strings.TrimRight(string(runes[quotedTo:]), " \t")
		return left + string(runes[quotedFrom:quotedTo]) + right
	}
	return left + string(runes[quotedFrom:])
}

// Document is a parsed import payload: one header row plus data rows.
type Document struct {
	Headers []string
	Rows    [][]string
}

// ParseDocument splits raw text into records with quote-aware newline
// handling (a newline inside a quoted field is literal data), skips blank
// records, and treats the first record as the header row.
func ParseDocument(text string) Document {
	records := splitRecords(text)

	var doc Document
	for _, record := range records {
		if strings.TrimSpace(record) == "" {
			continue
		}
		fields := ParseLine(record)
		if doc.Headers == nil {
			doc.Headers = fields
			continue
		}
		doc.Rows = append(doc.Rows, fields)
	}
	return doc
}

// splitRecords splits text on newlines that fall outside quoted fields.
// CRLF and lone LF are both accepted as record terminators.
func splitRecords(text string) []string {
	var records []string
	var buf []rune

	state := stateUnquoted
	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		ch := runes[i]
		if state == stateQuoted {
			buf = append(buf, ch)
			if ch == '"' {
				if i+1 < len(runes) && runes[i+1] == '"' {
					buf = append(buf, '"')
					i++
					continue
				}
				state = stateUnquoted
			}
			continue
		}
		switch ch {
		case '"':
			state = stateQuoted
			buf = append(buf, ch)
		case '\n':
			records = append(records, strings.TrimSuffix(string(buf), "\r"))
			buf = buf[:0]
		default:
			buf = append(buf, ch)
		}
	}
	if len(buf) > 0 {
		records = append(records, strings.TrimSuffix(string(buf), "\r"))
	}
	return records
}

// FormatLine renders field values as one record in the same wire format the
// parser accepts. A field is quoted only when it needs to be.
func FormatLine(fields []string) string {
	parts := make([]string, len(fields))
	for i, field := range fields {
		parts[i] = formatField(field)
	}
	return strings.Join(parts, ",")
}

func formatField(field string) string {
	if !strings.ContainsAny(field, ",\"\n\r") &&
		field == strings.TrimSpace(field) {
		return field
	}
	return `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
}
