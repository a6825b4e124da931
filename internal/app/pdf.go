package app

import (
	"bufio"
	"regexp"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

var linkRe = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`) // [text](url)

// WriteReportPDF renders the consultation Markdown into a minimal PDF:
// headings sized by level, bullet lists indented, [text](url) spans turned
// into clickable links. Not a full Markdown layout; the report composer only
// produces these constructs.
func WriteReportPDF(markdown string, outPath string) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.AddPage()
	left, _, _, _ := pdf.GetMargins()

	scanner := bufio.NewScanner(strings.NewReader(markdown))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		s := strings.TrimSpace(scanner.Text())
		switch {
		case s == "":
			pdf.Ln(5)
		case strings.HasPrefix(s, "#"):
			level := 0
			for level < len(s) && s[level] == '#' {
				level++
			}
			text := strings.TrimSpace(s[level:])
			if text == "" {
				continue
			}
			size := 14.0
			if level >= 2 {
				size = 12.0
			}
			pdf.SetFont("Helvetica", "B", size)
			pdf.CellFormat(0, 8, text, "", 1, "L", false, 0, "")
			pdf.SetFont("Helvetica", "", 11)
		case strings.HasPrefix(s, "- "), strings.HasPrefix(s, "* "):
			pdf.SetLeftMargin(left + 5)
			pdf.SetX(left + 5)
			writeInline(pdf, "- "+strings.TrimSpace(s[2:]))
			pdf.Ln(6)
			pdf.SetLeftMargin(left)
		case !linkRe.MatchString(s):
			pdf.MultiCell(0, 5, s, "", "L", false)
		default:
			writeInline(pdf, s)
			pdf.Ln(6)
		}
	}
	return pdf.OutputFileAndClose(outPath)
}

// writeInline writes one line of text, turning [text](url) spans into
// clickable links. In-page anchors ("#...") degrade to plain text.
func writeInline(pdf *gofpdf.Fpdf, s string) {
	pos := 0
	for _, m := range linkRe.FindAllStringSubmatchIndex(s, -1) {
		if m[0] > pos {
			pdf.Write(5, s[pos:m[0]])
		}
		text := s[m[2]:m[3]]
		url := s[m[4]:m[5]]
		if strings.HasPrefix(url, "#") {
			pdf.Write(5, text)
		} else {
			pdf.WriteLinkString(5, text, url)
		}
		pos = m[1]
	}
	if pos < len(s) {
		pdf.Write(5, s[pos:])
	}
}
