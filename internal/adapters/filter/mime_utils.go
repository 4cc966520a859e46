package filter

import (
	"bytes"
	"io"
	"mime"
	"mime/multipart"
	"net/mail"
	"strings"
	"unicode/utf8"
)

// noTextPlaceholder is analysed when a multipart message carries no text/plain part
const noTextPlaceholder = "[No text content found in multipart message]"

var headerDecoder = new(mime.WordDecoder)

// extractTextFromMessage extracts the text content from an email message.
// For multipart messages it collects the text/plain parts, descending into nested multiparts.
func extractTextFromMessage(msg *mail.Message) (string, error) {
	text, found, err := extractText(msg.Header.Get("Content-Type"), msg.Body)
	if err != nil {
		return "", err
	}
	if !found {
		return noTextPlaceholder, nil
	}
	return text, nil
}

func extractText(contentType string, body io.Reader) (string, bool, error) {
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil || !strings.HasPrefix(mediaType, "multipart/") || params["boundary"] == "" {
		// Not a (well-formed) multipart message, use the body as is
		bodyBytes, err := io.ReadAll(body)
		if err != nil {
			return "", false, err
		}
		return string(bodyBytes), true, nil
	}

	mr := multipart.NewReader(body, params["boundary"])

	var textContent strings.Builder
	found := false
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Return what we have so far
			break
		}

		partType := strings.ToLower(part.Header.Get("Content-Type"))
		switch {
		case partType == "" || strings.HasPrefix(partType, "text/plain"):
			partBytes, err := io.ReadAll(part)
			if err != nil {
				continue
			}
			textContent.Write(partBytes)
			textContent.WriteString("\n")
			found = true
		case strings.HasPrefix(partType, "multipart/"):
			nested, ok, err := extractText(part.Header.Get("Content-Type"), part)
			if err == nil && ok {
				textContent.WriteString(nested)
				found = true
			}
		}
		// Skip other parts (attachments, html alternatives)
	}

	return textContent.String(), found, nil
}

// decodeEncodedHeader decodes RFC 2047 encoded words in a header value
func decodeEncodedHeader(value string) (string, error) {
	return headerDecoder.DecodeHeader(value)
}

// encodeHeader Q-encodes value when it is not plain ASCII
func encodeHeader(value string) string {
	for i := 0; i < len(value); i++ {
		if value[i] >= utf8.RuneSelf {
			return mime.QEncoding.Encode("utf-8", value)
		}
	}
	return value
}

// splitMessage separates the raw header block from the body.
// The header block keeps its trailing line break; the separator line is dropped.
func splitMessage(raw []byte) (header, body []byte) {
	if i := bytes.Index(raw, []byte("\r\n\r\n")); i >= 0 {
		return raw[:i+2], raw[i+4:]
	}
	if i := bytes.Index(raw, []byte("\n\n")); i >= 0 {
		return raw[:i+1], raw[i+2:]
	}
	return raw, nil
}

// rewriteHeaders copies a raw header block, dropping every field named in drop
// (case-insensitive) and replacing the value of fields named in replace.
// Folded continuation lines follow the fate of their field.
func rewriteHeaders(header []byte, drop map[string]bool, replace map[string]string) []byte {
	var out bytes.Buffer
	skipping := false

	for _, line := range splitLines(header) {
		if len(line) > 0 && (line[0] == ' ' || line[0] == '\t') {
			if !skipping {
				out.Write(line)
			}
			continue
		}

		skipping = false
		name := headerName(line)
		key := strings.ToLower(name)
		if drop[key] {
			skipping = true
			continue
		}
		if value, ok := replace[key]; ok {
			out.WriteString(name + ": " + value + "\r\n")
			skipping = true
			continue
		}
		out.Write(line)
	}

	return out.Bytes()
}

// splitLines splits b after each newline, keeping the line terminators
func splitLines(b []byte) [][]byte {
	var lines [][]byte
	for len(b) > 0 {
		i := bytes.IndexByte(b, '\n')
		if i < 0 {
			lines = append(lines, b)
			break
		}
		lines = append(lines, b[:i+1])
		b = b[i+1:]
	}
	return lines
}

func headerName(line []byte) string {
	if i := bytes.IndexByte(line, ':'); i > 0 {
		return strings.TrimSpace(string(line[:i]))
	}
	return ""
}
