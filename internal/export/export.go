package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Joseda-hg/lazytodo/internal/model"
	"github.com/jung-kurt/gofpdf"
)

var ErrUnknownFormat = errors.New("unknown export format")

type TaskLister interface {
	ListTasks(ctx context.Context, userID int64, filter model.Filter) ([]model.Task, error)
}

type Exporter struct {
	tasks TaskLister
}

// File is a rendered export ready to be served.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

func NewExporter(tasks TaskLister) *Exporter {
	return &Exporter{tasks: tasks}
}

func (e *Exporter) Export(ctx context.Context, userID int64, filter model.Filter, format string) (File, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	switch format {
	case "json", "csv", "pdf":
	default:
		return File{}, fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}

	tasks, err := e.tasks.ListTasks(ctx, userID, filter)
	if err != nil {
		return File{}, err
	}

	var data []byte
	var contentType string
	switch format {
	case "json":
		data, err = json.MarshalIndent(tasks, "", "  ")
		contentType = "application/json"
	case "csv":
		data, err = renderCSV(tasks)
		contentType = "text/csv; charset=utf-8"
	case "pdf":
		data, err = renderPDF(tasks, filter)
		contentType = "application/pdf"
	}
	if err != nil {
		return File{}, fmt.Errorf("render %s: %w", format, err)
	}

	return File{Name: "tasks." + format, ContentType: contentType, Data: data}, nil
}

func renderCSV(tasks []model.Task) ([]byte, error) {
	var b bytes.Buffer
	w := csv.NewWriter(&b)
	_ = w.Write([]string{"id", "title", "description", "status", "priority", "created_at", "updated_at"})
	for _, task := range tasks {
		_ = w.Write([]string{
			strconv.FormatInt(task.ID, 10),
			task.Title,
			task.Description,
			task.Status,
			task.Priority,
			task.CreatedAt.Format(time.RFC3339),
			task.UpdatedAt.Format(time.RFC3339),
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

func renderPDF(tasks []model.Task, filter model.Filter) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(40, 10, "Tasks")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 9)
	pdf.Cell(40, 6, fmt.Sprintf("status=%s priority=%s total=%d", filter.StatusLabel(), filter.PriorityLabel(), len(tasks)))
	pdf.Ln(10)

	pdf.SetFont("Arial", "", 10)
	for _, task := range tasks {
		line := fmt.Sprintf("#%d [%s/%s] %s", task.ID, task.Status, task.Priority, task.Title)
		pdf.MultiCell(0, 6, tr(line), "0", "L", false)
		if task.Description != "" {
			pdf.SetFont("Arial", "I", 9)
			pdf.MultiCell(0, 5, tr(task.Description), "0", "L", false)
			pdf.SetFont("Arial", "", 10)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
