package service

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/grading-assistant/internal/models"
	appErrors "github.com/noah-isme/grading-assistant/pkg/errors"
	"github.com/noah-isme/grading-assistant/pkg/export"
)

type failingPDF struct{}

func (failingPDF) Render(data export.Dataset, title string) ([]byte, error) {
	return nil, errors.New("font missing")
}

func exportState() models.SessionState {
	loaded := time.Now()
	return models.SessionState{
		CourseID:     "1",
		AssignmentID: "2",
		LoadedAt:     &loaded,
		Submissions:  sampleSubmissions(),
		Drafts: map[int64]models.DraftState{
			11: {Grade: floatPtr(9.5), BaseGrade: floatPtr(7), GradeDirty: true, Status: models.StatusNone},
			12: {Status: models.StatusLate, Comment: "Late but solid"},
		},
	}
}

func TestParseExportFormat(t *testing.T) {
	format, err := ParseExportFormat("")
	require.NoError(t, err)
	assert.Equal(t, ExportFormatCSV, format)

	format, err = ParseExportFormat("PDF")
	require.NoError(t, err)
	assert.Equal(t, ExportFormatPDF, format)

	_, err = ParseExportFormat("xlsx")
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestGradingSheetDatasetSkipsStudentsWithoutDraft(t *testing.T) {
	dataset := gradingSheetDataset(exportState())
	require.Len(t, dataset.Rows, 2)
	assert.Equal(t, "9.5", dataset.Rows[0]["Grade"])
	assert.Equal(t, "yes", dataset.Rows[0]["Staged"])
	assert.Equal(t, "late", dataset.Rows[1]["Status"])
	assert.Equal(t, "no", dataset.Rows[1]["Staged"])
}

func TestGradingSheetPDF(t *testing.T) {
	svc := NewExportService(nil, nil)
	svc.now = func() time.Time { return time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC) }

	file, err := svc.GradingSheet(exportState(), ExportFormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "grading_1_2_20240301_100000.pdf", file.Filename)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.Equal(t, "%PDF-", string(file.Data[:5]))

	_, err = NewExportService(nil, failingPDF{}).GradingSheet(exportState(), ExportFormatPDF)
	assert.ErrorIs(t, err, appErrors.ErrInternal)
}
