package core

import "strings"

// SignatureDelimiter separates normalized headers inside a signature.
const SignatureDelimiter = "|"

var signatureEscaper = strings.NewReplacer(`\`, `\\`, SignatureDelimiter, `\`+SignatureDelimiter)

// NormalizeHeader trims and lowercases a header cell.
func NormalizeHeader(h string) string {
	return strings.ToLower(strings.TrimSpace(h))
}

// Signature fingerprints a header layout. Layouts whose normalized headers
// are equal share a signature, so a mapping saved for one file applies to
// every later export of the same shape.
func Signature(headers []string) string {
	norm := make([]string, len(headers))
	for i, h := range headers {
		// escaped so a delimiter inside a header cannot fake a column break
		norm[i] = signatureEscaper.Replace(NormalizeHeader(h))
	}
	return strings.Join(norm, SignatureDelimiter)
}

// SignatureHeaders splits a signature back into its normalized headers.
func SignatureHeaders(sig string) []string {
	var (
		out []string
		cur strings.Builder
	)
	escaped := false
	for _, r := range sig {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case r == '\\':
			escaped = true
		case string(r) == SignatureDelimiter:
			out = append(out, cur.String())
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	return append(out, cur.String())
}
