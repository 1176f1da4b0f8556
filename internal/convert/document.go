// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"html"
	"io"
	"strconv"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
)

// wordNS is the WordprocessingML main namespace.
const wordNS = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"

// DocumentStrategy extracts text and structure from DOCX files.
type DocumentStrategy struct{}

// Convert reads the document body and writes it as plain text, HTML or
// Markdown.
func (DocumentStrategy) Convert(ctx context.Context, job Job, progress ProgressFunc) (string, error) {
	switch job.Target {
	case "txt", "html", "md":
	default:
		return "", fmt.Errorf("unsupported document conversion format: %s", job.Target)
	}
	progress(10)

	paras, err := readDocx(job.InputPath)
	if err != nil {
		return "", err
	}
	progress(50)

	if err := ctx.Err(); err != nil {
		return "", err
	}

	var out string
	switch job.Target {
	case "txt":
		out = docxText(paras)
	case "html":
		out = docxHTML(paras)
	case "md":
		out, err = md.NewConverter("", true, nil).ConvertString(docxHTML(paras))
		if err != nil {
			return "", fmt.Errorf("rendering markdown: %w", err)
		}
		out += "\n"
	}
	progress(80)

	if err := writeText(ctx, job.OutputPath, out); err != nil {
		return "", fmt.Errorf("writing %s: %w", job.Target, err)
	}
	progress(100)
	return job.OutputPath, nil
}

type docRun struct {
	text   string
	bold   bool
	italic bool
}

type docParagraph struct {
	heading int
	list    bool
	runs    []docRun
}

func (p docParagraph) text() string {
	var b strings.Builder
	for _, r := range p.runs {
		b.WriteString(r.text)
	}
	return b.String()
}

// readDocx parses word/document.xml into paragraphs of formatted runs.
func readDocx(path string) ([]docParagraph, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("opening docx: %w", err)
	}
	defer zr.Close()

	var body *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			body = f
			break
		}
	}
	if body == nil {
		return nil, errors.New("opening docx: missing word/document.xml")
	}

	rc, err := body.Open()
	if err != nil {
		return nil, fmt.Errorf("opening docx body: %w", err)
	}
	defer rc.Close()

	paras, err := parseDocumentXML(rc)
	if err != nil {
		return nil, fmt.Errorf("parsing docx body: %w", err)
	}
	return paras, nil
}

func parseDocumentXML(r io.Reader) ([]docParagraph, error) {
	dec := xml.NewDecoder(r)

	var (
		paras  []docParagraph
		stack  []*docParagraph
		run    docRun
		inText bool
	)
	current := func() *docParagraph {
		if len(stack) == 0 {
			return nil
		}
		return stack[len(stack)-1]
	}
	appendText := func(s string) {
		if p := current(); p != nil {
			r := run
			r.text = s
			p.runs = append(p.runs, r)
		}
	}

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Space != wordNS {
				continue
			}
			switch t.Name.Local {
			case "p":
				stack = append(stack, &docParagraph{})
			case "pStyle":
				if p := current(); p != nil {
					p.heading = headingLevel(attr(t, "val"))
				}
			case "numPr":
				if p := current(); p != nil {
					p.list = true
				}
			case "r":
				run = docRun{}
			case "b":
				run.bold = toggleOn(t)
			case "i":
				run.italic = toggleOn(t)
			case "t":
				inText = true
			case "tab":
				appendText("\t")
			case "br", "cr":
				appendText("\n")
			}
		case xml.EndElement:
			if t.Name.Space != wordNS {
				continue
			}
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				if p := current(); p != nil {
					paras = append(paras, *p)
					stack = stack[:len(stack)-1]
				}
			}
		case xml.CharData:
			if inText {
				appendText(string(t))
			}
		}
	}
	return paras, nil
}

func attr(el xml.StartElement, local string) string {
	for _, a := range el.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

// toggleOn reads an on/off property such as <w:b/> or <w:b w:val="0"/>.
func toggleOn(el xml.StartElement) bool {
	switch strings.ToLower(attr(el, "val")) {
	case "0", "false", "off", "none":
		return false
	}
	return true
}

// headingLevel maps paragraph style ids like "Heading2" or "Title" to a
// heading level, or 0 for body text.
func headingLevel(style string) int {
	s := strings.ToLower(strings.ReplaceAll(style, " ", ""))
	if s == "title" {
		return 1
	}
	if rest, ok := strings.CutPrefix(s, "heading"); ok {
		if n, err := strconv.Atoi(rest); err == nil && n >= 1 && n <= 6 {
			return n
		}
	}
	return 0
}

// docxText renders paragraphs as plain text separated by blank lines.
func docxText(paras []docParagraph) string {
	var b strings.Builder
	for _, p := range paras {
		b.WriteString(p.text())
		b.WriteString("\n\n")
	}
	return b.String()
}

// docxHTML renders non-empty paragraphs as HTML blocks. Consecutive list
// paragraphs share one <ul>.
func docxHTML(paras []docParagraph) string {
	var b strings.Builder
	inList := false
	for _, p := range paras {
		if strings.TrimSpace(p.text()) == "" {
			continue
		}
		if p.list && p.heading == 0 {
			if !inList {
				b.WriteString("<ul>")
				inList = true
			}
			b.WriteString("<li>")
			writeRuns(&b, p.runs)
			b.WriteString("</li>")
			continue
		}
		if inList {
			b.WriteString("</ul>\n")
			inList = false
		}
		tag := "p"
		if p.heading > 0 {
			tag = "h" + strconv.Itoa(p.heading)
		}
		fmt.Fprintf(&b, "<%s>", tag)
		writeRuns(&b, p.runs)
		fmt.Fprintf(&b, "</%s>\n", tag)
	}
	if inList {
		b.WriteString("</ul>\n")
	}
	return b.String()
}

func writeRuns(b *strings.Builder, runs []docRun) {
	for _, r := range runs {
		text := strings.ReplaceAll(html.EscapeString(r.text), "\n", "<br />")
		if r.bold {
			text = "<strong>" + text + "</strong>"
		}
		if r.italic {
			text = "<em>" + text + "</em>"
		}
		b.WriteString(text)
	}
}
