package service

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/noah-isme/grading-assistant/internal/models"
	appErrors "github.com/noah-isme/grading-assistant/pkg/errors"
	"github.com/noah-isme/grading-assistant/pkg/export"
)

// ExportFormat selects the grading sheet encoding.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

// ParseExportFormat validates a format query value, defaulting to CSV.
func ParseExportFormat(raw string) (ExportFormat, error) {
	switch ExportFormat(strings.ToLower(strings.TrimSpace(raw))) {
	case "", ExportFormatCSV:
		return ExportFormatCSV, nil
	case ExportFormatPDF:
		return ExportFormatPDF, nil
	}
	return "", appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
}

// ExportedFile is a rendered grading sheet ready to be downloaded.
type ExportedFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

var gradingSheetHeaders = []string{"Student", "Group", "Status", "Grade", "Staged", "Comment"}

// ExportService renders grading sheets.
type ExportService struct {
	csv csvRenderer
	pdf pdfRenderer
	now func() time.Time
}

// NewExportService constructs an ExportService; nil renderers use the pkg/export defaults.
func NewExportService(csv csvRenderer, pdf pdfRenderer) *ExportService {
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{csv: csv, pdf: pdf, now: time.Now}
}

// GradingSheet renders one row per loaded student with the current draft values.
func (s *ExportService) GradingSheet(state models.SessionState, format ExportFormat) (*ExportedFile, error) {
	dataset := gradingSheetDataset(state)

	var (
		payload     []byte
		contentType string
		err         error
	)
	switch format {
	case ExportFormatCSV:
		payload, err = s.csv.Render(dataset)
		contentType = "text/csv; charset=utf-8"
	case ExportFormatPDF:
		title := fmt.Sprintf("Grading sheet - course %s, assignment %s", state.CourseID, state.AssignmentID)
		payload, err = s.pdf.Render(dataset, title)
		contentType = "application/pdf"
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render grading sheet")
	}

	filename := fmt.Sprintf("grading_%s_%s_%s.%s",
		sanitizeFilename(state.CourseID),
		sanitizeFilename(state.AssignmentID),
		s.now().UTC().Format("20060102_150405"),
		format,
	)
	return &ExportedFile{Filename: filename, ContentType: contentType, Data: payload}, nil
}

func gradingSheetDataset(state models.SessionState) export.Dataset {
	dataset := export.Dataset{
		Headers: gradingSheetHeaders,
		Widths:  []float64{3, 2, 1.2, 1, 1, 5},
		Rows:    make([]map[string]string, 0, len(state.Submissions)),
	}
	for _, sub := range state.Submissions {
		draft, ok := state.Drafts[sub.UserID]
		if !ok {
			continue
		}
		grade := ""
		if draft.Grade != nil {
			grade = strconv.FormatFloat(*draft.Grade, 'f', -1, 64)
		}
		staged := "no"
		if draft.Dirty() {
			staged = "yes"
		}
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Student": sub.UserName,
			"Group":   sub.GroupName,
			"Status":  string(draft.Status),
			"Grade":   grade,
			"Staged":  staged,
			"Comment": draft.Comment,
		})
	}
	return dataset
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "__", "_")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}
