// Package export formats a survey's responses for download.
package export

import (
	"bufio"
	"encoding/json"
	"io"
	"strings"
	"time"

	"github.com/mbolis/survey-studio/analytics"
	"github.com/mbolis/survey-studio/model"
)

const DateFormat = "2006-01-02 15:04:05"

// Header returns the CSV header: id, submission date, then the labels of
// every non-divider field in schema order.
func Header(s model.Survey) []string {
	header := []string{"ID", "Submission Date"}
	for _, f := range s.Questions() {
		label := f.Label
		if label == "" {
			label = f.ID
		}
		header = append(header, label)
	}
	return header
}

// Row formats one response in the column order of Header.
func Row(s model.Survey, r model.Response) []string {
	row := []string{r.ID, r.SubmittedAt.UTC().Format(DateFormat)}
	for _, f := range s.Questions() {
		row = append(row, r.Answer(f.ID).String())
	}
	return row
}

// CSV writes every response as a row. Every cell is quoted, unlike
// encoding/csv which only quotes when needed.
func CSV(w io.Writer, s model.Survey, responses []model.Response) error {
	bw := bufio.NewWriter(w)
	if err := writeRecord(bw, Header(s)); err != nil {
		return err
	}
	for _, r := range responses {
		if err := writeRecord(bw, Row(s, r)); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func writeRecord(w *bufio.Writer, cells []string) error {
	for i, cell := range cells {
		if i > 0 {
			w.WriteByte(',')
		}
		w.WriteByte('"')
		w.WriteString(strings.ReplaceAll(cell, `"`, `""`))
		w.WriteByte('"')
	}
	_, err := w.WriteString("\r\n")
	return err
}

// Document is the JSON export of a survey.
type Document struct {
	ExportedAt time.Time        `json:"exportedAt"`
	Survey     model.Survey     `json:"survey"`
	Responses  []model.Response `json:"responses"`
	Report     analytics.Report `json:"report"`
}

func JSON(w io.Writer, doc Document) error {
	if doc.Responses == nil {
		doc.Responses = []model.Response{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// Filename is the suggested download name of an export.
func Filename(s model.Survey, ext string, now time.Time) string {
	return s.ID + "-responses-" + now.UTC().Format("20060102") + "." + ext
}
