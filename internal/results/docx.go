package results

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

// DocxContentType is the MIME type of rendered documents.
const DocxContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

const wmlNamespace = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"

// RunStyle captures the inline run formatting of one paragraph kind.
type RunStyle struct {
	Bold   bool
	Italic bool
	Size   int
	Color  string
}

const (
	TitleColor   = "111111"
	HeadingColor = "1F2937"
	MetaColor    = "6B7280"
	TitleSize    = 32
	HeadingSize  = 24
)

// StyleMap centralizes the formatting for document elements.
var StyleMap = map[string]RunStyle{
	"title":   {Bold: true, Size: TitleSize, Color: TitleColor},
	"heading": {Bold: true, Size: HeadingSize, Color: HeadingColor},
	"meta":    {Italic: true, Color: MetaColor},
	"body":    {},
}

var docxStaticParts = []struct {
	name    string
	content string
}{
	{
		name: "[Content_Types].xml",
		content: `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
			`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
			`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>` +
			`<Default Extension="xml" ContentType="application/xml"/>` +
			`<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>` +
			`<Override PartName="/docProps/core.xml" ContentType="application/vnd.openxmlformats-package.core-properties+xml"/>` +
			`</Types>`,
	},
	{
		name: "_rels/.rels",
		content: `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
			`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
			`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>` +
			`<Relationship Id="rId2" Type="http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties" Target="docProps/core.xml"/>` +
			`</Relationships>`,
	},
}

// RenderDocx renders title, category and plain-text content into a .docx file.
// Lines starting with "## " become headings and separator rules become page breaks.
func RenderDocx(title, category, content string) ([]byte, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, errors.New("title is required")
	}
	if strings.TrimSpace(content) == "" {
		return nil, errors.New("content is required")
	}

	documentXML, err := renderDocumentXML(title, category, content)
	if err != nil {
		return nil, err
	}

	var output bytes.Buffer
	writer := zip.NewWriter(&output)
	for _, part := range docxStaticParts {
		if err := writeZipFile(writer, part.name, []byte(part.content)); err != nil {
			return nil, err
		}
	}
	if err := writeZipFile(writer, "docProps/core.xml", []byte(coreProperties(title, category))); err != nil {
		return nil, err
	}
	if err := writeZipFile(writer, "word/document.xml", []byte(documentXML)); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}
	return output.Bytes(), nil
}

func renderDocumentXML(title, category, content string) (string, error) {
	var body strings.Builder
	body.WriteString(paragraph(title, StyleMap["title"]))
	if c := strings.TrimSpace(category); c != "" {
		body.WriteString(paragraph(c, StyleMap["meta"]))
	}

	lines := strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")
	// the export banner repeats the title on its first line
	if len(lines) > 0 && strings.TrimSpace(lines[0]) == title {
		lines = lines[1:]
	}
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case isRule(trimmed):
			body.WriteString(pageBreak())
		case strings.HasPrefix(trimmed, "## "):
			body.WriteString(paragraph(strings.TrimPrefix(trimmed, "## "), StyleMap["heading"]))
		case strings.HasPrefix(trimmed, "Generated: "):
			body.WriteString(paragraph(trimmed, StyleMap["meta"]))
		default:
			body.WriteString(paragraph(line, StyleMap["body"]))
		}
	}

	xmlText := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<w:document xmlns:w="` + wmlNamespace + `"><w:body>` +
		body.String() +
		`<w:sectPr><w:pgSz w:w="12240" w:h="15840"/>` +
		`<w:pgMar w:top="1440" w:right="1440" w:bottom="1440" w:left="1440" w:header="720" w:footer="720" w:gutter="0"/>` +
		`</w:sectPr></w:body></w:document>`

	if err := validateDocumentXMLStrict(xmlText); err != nil {
		return "", err
	}
	return xmlText, nil
}

func paragraph(text string, style RunStyle) string {
	if strings.TrimSpace(text) == "" {
		return `<w:p/>`
	}
	var b strings.Builder
	b.WriteString(`<w:p><w:r>`)
	if rPr := runProperties(style); rPr != "" {
		b.WriteString(rPr)
	}
	b.WriteString(`<w:t xml:space="preserve">`)
	b.WriteString(escapeXML(text))
	b.WriteString(`</w:t></w:r></w:p>`)
	return b.String()
}

func runProperties(style RunStyle) string {
	var b strings.Builder
	if style.Bold {
		b.WriteString(`<w:b/>`)
	}
	if style.Italic {
		b.WriteString(`<w:i/>`)
	}
	if style.Color != "" {
		fmt.Fprintf(&b, `<w:color w:val="%s"/>`, style.Color)
	}
	if style.Size > 0 {
		fmt.Fprintf(&b, `<w:sz w:val="%d"/>`, style.Size)
	}
	if b.Len() == 0 {
		return ""
	}
	return "<w:rPr>" + b.String() + "</w:rPr>"
}

func pageBreak() string {
	return `<w:p><w:r><w:br w:type="page"/></w:r></w:p>`
}

func isRule(line string) bool {
	return len(line) >= 3 && strings.Trim(line, "=") == ""
}

func coreProperties(title, category string) string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties" ` +
		`xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:dcterms="http://purl.org/dc/terms/" ` +
		`xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">` +
		`<dc:title>` + escapeXML(title) + `</dc:title>` +
		`<cp:category>` + escapeXML(category) + `</cp:category>` +
		`<dcterms:created xsi:type="dcterms:W3CDTF">` + time.Now().UTC().Format(time.RFC3339) + `</dcterms:created>` +
		`</cp:coreProperties>`
}

func escapeXML(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(stripInvalidXMLChars(s)))
	return b.String()
}

// stripInvalidXMLChars drops control characters that XML 1.0 does not allow.
func stripInvalidXMLChars(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\t' || r == '\n' || r == '\r' || r >= 0x20 {
			return r
		}
		return -1
	}, s)
}

func validateDocumentXMLStrict(xmlText string) error {
	decoder := xml.NewDecoder(strings.NewReader(xmlText))
	decoder.Strict = true
	for {
		_, err := decoder.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("document.xml is not well-formed: %w", err)
		}
	}
}

func writeZipFile(writer *zip.Writer, name string, content []byte) error {
	dst, err := writer.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate})
	if err != nil {
		return err
	}
	_, err = dst.Write(content)
	return err
}
