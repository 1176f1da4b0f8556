// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
)

// TextStrategy converts between plain text, Markdown and HTML.
type TextStrategy struct{}

// Convert renders the input in the target markup.
func (TextStrategy) Convert(ctx context.Context, job Job, progress ProgressFunc) (string, error) {
	progress(10)

	src, err := os.ReadFile(job.InputPath)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", job.Source, err)
	}
	src = bytes.TrimPrefix(src, []byte("\xef\xbb\xbf"))
	progress(30)

	title := strings.TrimSuffix(filepath.Base(job.InputPath), filepath.Ext(job.InputPath))

	var out string
	switch {
	case job.Source == "txt" && job.Target == "html":
		out = htmlDocument(title, "<pre>"+html.EscapeString(string(src))+"</pre>\n")
	case job.Source == "md" && job.Target == "html":
		body, err := renderMarkdown(src)
		if err != nil {
			return "", err
		}
		out = htmlDocument(title, body)
	case job.Source == "md" && job.Target == "txt":
		body, err := renderMarkdown(src)
		if err != nil {
			return "", err
		}
		out = stripHTML(body)
	case job.Source == "html" && job.Target == "md":
		out, err = md.NewConverter("", true, nil).ConvertString(string(src))
		if err != nil {
			return "", fmt.Errorf("rendering markdown: %w", err)
		}
		out += "\n"
	case job.Source == "html" && job.Target == "txt":
		out = stripHTML(string(src))
	default:
		return "", fmt.Errorf("%w: %s -> %s", ErrUnsupportedConversion, job.Source, job.Target)
	}
	progress(70)

	if err := writeText(ctx, job.OutputPath, out); err != nil {
		return "", fmt.Errorf("writing %s: %w", job.Target, err)
	}
	progress(100)
	return job.OutputPath, nil
}

func renderMarkdown(src []byte) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert(src, &buf); err != nil {
		return "", fmt.Errorf("rendering html: %w", err)
	}
	return buf.String(), nil
}

func htmlDocument(title, body string) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&b, "<title>%s</title>\n", html.EscapeString(title))
	b.WriteString("</head>\n<body>\n")
	b.WriteString(body)
	b.WriteString("</body>\n</html>\n")
	return b.String()
}

var blankRuns = regexp.MustCompile(`\n{3,}`)

// stripHTML removes all markup, decodes entities and collapses runs of
// blank lines.
func stripHTML(s string) string {
	text := html.UnescapeString(bluemonday.StrictPolicy().Sanitize(s))
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " \t\r")
	}
	text = blankRuns.ReplaceAllString(strings.Join(lines, "\n"), "\n\n")
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	return text + "\n"
}
