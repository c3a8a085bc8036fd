package http

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	headerContentType   = "content-type"
	headerContentLength = "content-length"

	DefaultContentType = "text/html"
)

// Headers maps lower-cased header names to their values.
type Headers map[string]string

// Get looks a header up by name. The name is lower-cased and underscores are read
// as dashes, so "Content-Type" and "content_type" find the same entry. When several
// spellings are present the exact lower-case key wins, then the smallest key.
func (h Headers) Get(name string) (string, bool) {
	if h == nil {
		return "", false
	}
	key := headerKey(name)
	if v, ok := h[key]; ok {
		return v, true
	}
	found := ""
	for k := range h {
		if headerKey(k) == key && (found == "" || k < found) {
			found = k
		}
	}
	if found == "" {
		return "", false
	}
	return h[found], true
}

// ContentType returns the content-type entry or DefaultContentType.
func (h Headers) ContentType() string {
	if v, ok := h.Get(headerContentType); ok && v != "" {
		return v
	}
	return DefaultContentType
}

func headerKey(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), "_", "-")
}

// ParseHeaders builds a header set from raw "Name: value" lines. The result always
// holds a content-type entry. Values are trimmed and lower-cased, and a repeated
// name keeps the last value. A line whose name is not made of letters, digits,
// '-' or '_' fails the whole block with ErrMalformedHeader.
func ParseHeaders(lines []string) (Headers, error) {
	h := Headers{headerContentType: DefaultContentType}
	for _, line := range lines {
		line = strings.TrimRight(line, "\r\n")
		i := strings.IndexByte(line, ':')
		if i <= 0 || !validHeaderName(line[:i]) {
			return nil, fmt.Errorf("%w: %q", ErrMalformedHeader, line)
		}
		value := strings.TrimPrefix(line[i+1:], " ")
		h[strings.ToLower(line[:i])] = strings.ToLower(strings.TrimSpace(value))
	}
	return h, nil
}

func validHeaderName(name string) bool {
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9', c == '-', c == '_':
		default:
			return false
		}
	}
	return name != ""
}

// Preamble renders the status line and header block for a response. The five lines
// always come in the same order: status line, Date, Content-Length, Content-Type and
// the blank line. Content-Length is the byte length of body; an override for it is
// ignored.
func Preamble(status int, body string, overrides Headers, now time.Time) string {
	var b strings.Builder
	b.Grow(128)

	b.WriteString("HTTP/1.1 ")
	b.WriteString(strconv.Itoa(status))
	b.WriteByte(' ')
	b.WriteString(StatusText(status))
	b.WriteString("\r\n")

	b.WriteString("Date: ")
	b.WriteString(FormatDate(BreakDown(now)))
	b.WriteString("\r\n")

	b.WriteString("Content-Length: ")
	b.WriteString(strconv.Itoa(len(body)))
	b.WriteString("\r\n")

	b.WriteString("Content-Type: ")
	b.WriteString(sanitizeHeaderValue(overrides.ContentType()))
	b.WriteString("; charset=utf-8\r\n")

	b.WriteString("\r\n")
	return b.String()
}

func sanitizeHeaderValue(v string) string {
	var b strings.Builder
	b.Grow(len(v))
	for i := 0; i < len(v); i++ {
		c := v[i]
		if c == 0x7f || (c < 0x20 && c != '\t') {
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}
