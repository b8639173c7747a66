package mapping

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// MalformedError reports input that failed to parse as JSON even after the
// bounded repair pass. It carries the diagnostic from the original parse
// attempt, not the post-repair one, since that is the error that describes
// the document as the caller supplied it.
type MalformedError struct {
	Diag error
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("mapping: malformed document: %v", e.Diag)
}

func (e *MalformedError) Unwrap() error { return e.Diag }

// envelope is the orchestrator wrapper around a bare document.
type envelope struct {
	Mapping *Document `json:"mapping"`
}

// danglingLine matches last lines that are structurally incomplete, e.g. a
// lone comma, brace opener, or bracket opener left behind by a truncated
// producer response.
var danglingLine = regexp.MustCompile(`^\[?\{?,?$`)

// structuralChar matches any character that would make a trailing line
// plausibly complete.
var structuralChar = regexp.MustCompile(`[:\]\}]`)

// Load parses text into a Document, accepting both the orchestrator envelope
// {"mapping": {...}} and a bare document {"mappings": [...], ...}.
//
// When the first parse fails, Load runs one bounded repair pass and re-parses
// once. The returned bool reports whether repair was needed. If the repaired
// text still fails to parse, Load returns a *MalformedError wrapping the
// original diagnostic. There is no iterative repair: two unrelated structural
// defects fail.
func Load(text string) (Document, bool, error) {
	doc, err := parse(text)
	if err == nil {
		return doc, false, nil
	}

	repairedText := repair(text)
	doc, rerr := parse(repairedText)
	if rerr != nil {
		return Document{}, false, &MalformedError{Diag: err}
	}
	return doc, true, nil
}

// LoadStrict parses text without the repair pass; the first parse error is
// final.
func LoadStrict(text string) (Document, error) {
	doc, err := parse(text)
	if err != nil {
		return Document{}, &MalformedError{Diag: err}
	}
	return doc, nil
}

// parse decodes either envelope form into a Document.
func parse(text string) (Document, error) {
	b := []byte(text)

	var env envelope
	if err := json.Unmarshal(b, &env); err == nil && env.Mapping != nil {
		return *env.Mapping, nil
	}

	var doc Document
	if err := json.Unmarshal(b, &doc); err != nil {
		return Document{}, err
	}
	return doc, nil
}

// repair applies one bounded structural repair pass:
//
//  1. Drop a trailing line that looks dangling (matches danglingLine, or has
//     no structural character at all).
//  2. Strip one trailing comma.
//  3. Append the missing closers for unbalanced brackets, then braces, with
//     counts taken over the whole text.
//
// The result may still be invalid; the caller re-parses exactly once.
func repair(text string) string {
	s := strings.TrimSpace(text)

	if i := strings.LastIndexByte(s, '\n'); i != -1 {
		last := strings.TrimSpace(s[i:])
		if danglingLine.MatchString(last) || !structuralChar.MatchString(last) {
			s = s[:i]
		}
	}

	s = strings.TrimRight(s, " \t\n")
	s = strings.TrimSuffix(s, ",")

	openBrackets := strings.Count(s, "[") - strings.Count(s, "]")
	openBraces := strings.Count(s, "{") - strings.Count(s, "}")
	for i := 0; i < openBrackets; i++ {
		s += "]"
	}
	for i := 0; i < openBraces; i++ {
		s += "}"
	}
	return s
}
