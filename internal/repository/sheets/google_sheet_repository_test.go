package sheets

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeValues struct {
	appended [][]interface{}
	rng      string
	err      error
}

func (f *fakeValues) appendValues(_ context.Context, _ string, sheetRange string, rows [][]interface{}) error {
	if f.err != nil {
		return f.err
	}
	f.rng = sheetRange
	f.appended = append(f.appended, rows...)
	return nil
}

func (f *fakeValues) getValues(context.Context, string, string) ([][]interface{}, error) {
	return f.appended, f.err
}

func TestAppendRows(t *testing.T) {
	values := &fakeValues{}
	repo := &GoogleSheetRepository{values: values, spreadsheetID: "sheet", logger: zap.NewNop()}
	ctx := context.Background()

	require.NoError(t, repo.AppendRows(ctx, "SowingPlan!A:F", nil))
	assert.Empty(t, values.appended)

	rows := [][]interface{}{{"2024-05-15", "Radish", 2, 160.0, "OK", "demand"}}
	require.NoError(t, repo.AppendRows(ctx, "SowingPlan!A:F", rows))
	assert.Equal(t, "SowingPlan!A:F", values.rng)

	got, err := repo.ReadRange(ctx, "SowingPlan!A:F")
	require.NoError(t, err)
	assert.Equal(t, rows, got)

	assert.Error(t, repo.AppendRows(ctx, "", rows))
}

func TestAppendRowsWrapsError(t *testing.T) {
	repo := &GoogleSheetRepository{values: &fakeValues{err: errors.New("quota")}, logger: zap.NewNop()}
	err := repo.AppendRows(context.Background(), "SowingPlan!A:F", [][]interface{}{{"x"}})
	assert.ErrorContains(t, err, "append rows into range SowingPlan!A:F: quota")
}
