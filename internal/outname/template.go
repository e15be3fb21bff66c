// Package outname expands the user-supplied output filename template into
// concrete destination paths. Templates combine strftime date tokens
// (%Y, %m, %d, %H, %M, ...) with named placeholders such as {channel} or
// {N1}, as accepted by the -o flag of every product command.
package outname

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ncruces/go-strftime"
	"github.com/rotisserie/eris"
)

// TemplateError reports a placeholder that cannot be resolved. Unknown
// tokens are rejected when the template is parsed, before any download
// starts; missing values are rejected per unit at render time.
type TemplateError struct {
	Token  string
	Reason string
}

func (e *TemplateError) Error() string {
	return fmt.Sprintf("template: token %q %s", e.Token, e.Reason)
}

// Values maps placeholder names to their per-unit values.
type Values map[string]string

// Template is a parsed output filename template. Rendering is pure: the
// same timestamp and values always produce the same path.
type Template struct {
	raw    string
	tokens []string
}

// New parses the template and validates every {token} against the set of
// names known for the product. Syntax errors and unknown tokens abort the
// run before any network activity.
func New(raw string, known []string) (*Template, error) {
	if raw == "" {
		return nil, eris.New("template: empty output template")
	}

	knownSet := make(map[string]bool, len(known))
	for _, k := range known {
		knownSet[k] = true
	}

	var tokens []string
	rest := raw
	for {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			break
		}
		rest = rest[open+1:]
		close := strings.IndexByte(rest, '}')
		if close < 0 {
			return nil, &TemplateError{Token: "{" + rest, Reason: "is unterminated"}
		}
		name := rest[:close]
		if name == "" || strings.ContainsAny(name, "{/") {
			return nil, &TemplateError{Token: "{" + name + "}", Reason: "is malformed"}
		}
		if !knownSet[name] {
			return nil, &TemplateError{
				Token:  "{" + name + "}",
				Reason: fmt.Sprintf("is not known for this product (known: %s)", strings.Join(known, ", ")),
			}
		}
		tokens = append(tokens, name)
		rest = rest[close+1:]
	}

	return &Template{raw: raw, tokens: tokens}, nil
}

// Tokens returns the placeholder names used by the template, in order of
// appearance.
func (t *Template) Tokens() []string {
	return t.tokens
}

// Render expands the strftime tokens for ts and substitutes every named
// placeholder from vals. Substitution is total: a token without a value
// fails with a TemplateError naming it, never leaving a literal token in
// the path.
func (t *Template) Render(ts time.Time, vals Values) (string, error) {
	out := strftime.Format(t.raw, ts.UTC())
	for _, name := range t.tokens {
		val, ok := vals[name]
		if !ok {
			return "", &TemplateError{Token: "{" + name + "}", Reason: "has no value for this unit"}
		}
		out = strings.ReplaceAll(out, "{"+name+"}", val)
	}
	return out, nil
}

// RenderAndPrepare renders the path and creates any missing parent
// directories.
func (t *Template) RenderAndPrepare(ts time.Time, vals Values) (string, error) {
	path, err := t.Render(ts, vals)
	if err != nil {
		return "", err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", eris.Wrapf(err, "template: create output directory %s", dir)
		}
	}
	return path, nil
}
