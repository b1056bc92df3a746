//go:build !ios && !android && (amd64 || arm64)

package fpdftest

import (
	"bytes"
	"crypto/md5"
	"fmt"
	"strings"
)

// PDF describes a small document that both the fake and real PDFium can
// open. Fields left zero get defaults.
type PDF struct {
	Pages   int
	Width   float64 // points, default 612
	Height  float64 // points, default 792
	Rotate  int     // degrees, multiple of 90
	Version int     // 10*major+minor, default 17
	Title   string
	Author  string
	// Text returns the text drawn on page i; default "Page <i+1>".
	Text func(i int) string
	// Form adds an empty /AcroForm to the catalog.
	Form bool
	// Password is only understood by the fake: it refuses to open the
	// document without it. Real PDFium ignores the marker.
	Password string
}

// NewPDF returns a document with n default pages.
func NewPDF(n int) []byte {
	return PDF{Pages: n}.Bytes()
}

// Bytes renders the document with a correct cross-reference table.
func (p PDF) Bytes() []byte {
	if p.Width == 0 {
		p.Width = 612
	}
	if p.Height == 0 {
		p.Height = 792
	}
	if p.Version == 0 {
		p.Version = 17
	}
	if p.Text == nil {
		p.Text = func(i int) string { return fmt.Sprintf("Page %d", i+1) }
	}

	var b bytes.Buffer
	var offsets []int
	obj := func(body string) {
		offsets = append(offsets, b.Len())
		fmt.Fprintf(&b, "%d 0 obj\n%s\nendobj\n", len(offsets), body)
	}

	fmt.Fprintf(&b, "%%PDF-%d.%d\n%%\xe2\xe3\xcf\xd3\n", p.Version/10, p.Version%10)
	if p.Password != "" {
		fmt.Fprintf(&b, "%%fpdftest-password:%s\n", p.Password)
	}

	kids := make([]string, p.Pages)
	for i := range kids {
		kids[i] = fmt.Sprintf("%d 0 R", 5+2*i)
	}
	catalog := "<< /Type /Catalog /Pages 2 0 R"
	if p.Form {
		catalog += " /AcroForm << /Fields [] >>"
	}
	obj(catalog + " >>")
	obj(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), p.Pages))
	obj("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>")
	info := "<< /Producer (pdfgo fpdftest)"
	if p.Title != "" {
		info += " /Title (" + escape(p.Title) + ")"
	}
	if p.Author != "" {
		info += " /Author (" + escape(p.Author) + ")"
	}
	obj(info + " >>")

	for i := 0; i < p.Pages; i++ {
		obj(fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 %s %s] /Rotate %d /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>",
			num(p.Width), num(p.Height), p.Rotate, 6+2*i))
		content := fmt.Sprintf("BT /F1 24 Tf 72 %s Td (%s) Tj ET", num(p.Height-72), escape(p.Text(i)))
		obj(fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content))
	}

	id := md5.Sum([]byte(fmt.Sprintf("%s|%d|%d", p.Title, p.Pages, p.Version)))
	xref := b.Len()
	fmt.Fprintf(&b, "xref\n0 %d\n0000000000 65535 f \n", len(offsets)+1)
	for _, off := range offsets {
		fmt.Fprintf(&b, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&b, "trailer\n<< /Size %d /Root 1 0 R /Info 4 0 R /ID [<%x> <%x>] >>\nstartxref\n%d\n%%%%EOF\n",
		len(offsets)+1, id, id, xref)
	return b.Bytes()
}

func num(f float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", f), "0"), ".")
}

func escape(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)
	return r.Replace(s)
}

func unescape(s string) string {
	r := strings.NewReplacer(`\\`, `\`, `\(`, `(`, `\)`, `)`)
	return r.Replace(s)
}
