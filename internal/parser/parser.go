package parser

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"docsearch/internal/models"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
	"github.com/xuri/excelize/v2"
)

// Decoder turns the raw bytes of a downloaded file into plain text.
// Formats outside Extensions are refused.
type Decoder struct {
	// TempDir holds the intermediate files some readers need; empty means os.TempDir().
	TempDir    string
	Extensions []string
}

var defaultExtensions = []string{".docx"}

func NewDecoder(tempDir string, extensions []string) *Decoder {
	if len(extensions) == 0 {
		extensions = defaultExtensions
	}
	return &Decoder{TempDir: tempDir, Extensions: extensions}
}

// Supported reports whether name has one of the enabled extensions.
func (d *Decoder) Supported(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		return false
	}
	for _, e := range d.Extensions {
		if e == ext {
			return true
		}
	}
	return false
}

func (d *Decoder) Decode(name string, data []byte) models.Document {
	var (
		text string
		err  error
	)

	ext := strings.ToLower(filepath.Ext(name))
	switch {
	case !d.Supported(name):
		err = fmt.Errorf("unsupported file format: %s", ext)
	case ext == ".docx":
		text, err = d.parseDOCX(data)
	case ext == ".pdf":
		text, err = parsePDF(data)
	case ext == ".xlsx":
		text, err = parseXLSX(data)
	case ext == ".txt", ext == ".md":
		text = string(data)
	default:
		err = fmt.Errorf("unsupported file format: %s", ext)
	}

	if err != nil {
		return models.Document{Name: name, Err: err}
	}
	return models.Document{Name: name, Text: text}
}

// parseDOCX stages data in a temp file for docx.ReadDocxFile and always
// removes it before returning.
func (d *Decoder) parseDOCX(data []byte) (string, error) {
	f, err := os.CreateTemp(d.TempDir, "docsearch-*.docx")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	path := f.Name()
	defer os.Remove(path)

	_, err = f.Write(data)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return "", fmt.Errorf("writing temp file: %w", err)
	}

	r, err := docx.ReadDocxFile(path)
	if err != nil {
		return "", fmt.Errorf("reading docx: %w", err)
	}
	defer r.Close()

	paragraphs, err := paragraphText(r.Editable().GetContent())
	if err != nil {
		return "", fmt.Errorf("reading docx: %w", err)
	}
	return strings.Join(paragraphs, "\n"), nil
}

// paragraphText walks WordprocessingML and returns the text of every
// paragraph that is not blank, in document order. Table cell paragraphs are
// included; text box content (w:txbxContent) is skipped so that it never
// merges into the paragraph anchoring it.
func paragraphText(documentXML string) ([]string, error) {
	dec := xml.NewDecoder(strings.NewReader(documentXML))

	var (
		paragraphs []string
		current    strings.Builder
		inPara     int
		inText     bool
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "txbxContent":
				if err := dec.Skip(); err != nil {
					return nil, err
				}
			case "p":
				if inPara == 0 {
					current.Reset()
				}
				inPara++
			case "t":
				inText = true
			case "tab":
				if inPara > 0 {
					current.WriteByte('\t')
				}
			case "br", "cr":
				if inPara > 0 {
					current.WriteByte('\n')
				}
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "p":
				inPara--
				if inPara == 0 {
					if text := current.String(); strings.TrimSpace(text) != "" {
						paragraphs = append(paragraphs, text)
					}
				}
			case "t":
				inText = false
			}
		case xml.CharData:
			if inText && inPara > 0 {
				current.Write(t)
			}
		}
	}
	return paragraphs, nil
}

func parsePDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("reading pdf: %w", err)
	}

	var pages []string
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("reading pdf page %d: %w", i, err)
		}
		if strings.TrimSpace(pageText) != "" {
			pages = append(pages, pageText)
		}
	}
	return strings.Join(pages, "\n"), nil
}

func parseXLSX(data []byte) (string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("reading xlsx: %w", err)
	}
	defer f.Close()

	var text strings.Builder
	for _, sheetName := range f.GetSheetList() {
		rows, err := f.GetRows(sheetName)
		if err != nil {
			continue
		}
		text.WriteString(fmt.Sprintf("## Sheet: %s\n", sheetName))
		for _, row := range rows {
			text.WriteString(strings.Join(row, "\t"))
			text.WriteString("\n")
		}
	}
	return strings.TrimRight(text.String(), "\n"), nil
}
