package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"testing"

	"github.com/Joseda-hg/lazytodo/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLister struct {
	userID int64
	filter model.Filter
	tasks  []model.Task
}

func (f *fakeLister) ListTasks(_ context.Context, userID int64, filter model.Filter) ([]model.Task, error) {
	f.userID = userID
	f.filter = filter
	return f.tasks, nil
}

func newFakeLister() *fakeLister {
	return &fakeLister{tasks: []model.Task{
		{ID: 2, UserID: 7, Title: "Buy milk", Status: model.StatusOpen, Priority: model.PriorityLow},
		{ID: 1, UserID: 7, Title: "Write, \"quoted\" report", Description: "Q3", Status: model.StatusDone, Priority: model.PriorityHigh},
	}}
}

func TestExportCSV(t *testing.T) {
	lister := newFakeLister()
	file, err := NewExporter(lister).Export(context.Background(), 7, model.NewFilter("all", "low"), "CSV")
	require.NoError(t, err)

	assert.Equal(t, int64(7), lister.userID)
	assert.Equal(t, model.Filter{Priority: model.PriorityLow}, lister.filter)
	assert.Equal(t, "tasks.csv", file.Name)

	records, err := csv.NewReader(bytes.NewReader(file.Data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "id", records[0][0])
	assert.Equal(t, "Write, \"quoted\" report", records[2][1])
}

func TestExportJSON(t *testing.T) {
	file, err := NewExporter(newFakeLister()).Export(context.Background(), 7, model.Filter{}, "json")
	require.NoError(t, err)

	var tasks []model.Task
	require.NoError(t, json.Unmarshal(file.Data, &tasks))
	assert.Len(t, tasks, 2)
	assert.Equal(t, "application/json", file.ContentType)
}

func TestExportPDF(t *testing.T) {
	file, err := NewExporter(newFakeLister()).Export(context.Background(), 7, model.Filter{}, "pdf")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(file.Data, []byte("%PDF")))
}

func TestExportUnknownFormat(t *testing.T) {
	lister := newFakeLister()
	_, err := NewExporter(lister).Export(context.Background(), 7, model.Filter{}, "xml")
	assert.ErrorIs(t, err, ErrUnknownFormat)
	assert.Zero(t, lister.userID, "store is not queried for unknown formats")
}
