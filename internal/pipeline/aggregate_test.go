package pipeline

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-data-explorer/internal/model"
)

func chartDataset() model.Dataset {
	return model.NewDataset(nil, []model.Record{
		{"education": n(1), "BMI": n(20), "age": n(50), "sysBP": n(130), "heartRate": n(70)},
		{"education": n(1), "BMI": n(30), "age": n(40), "sysBP": n(120), "heartRate": n(80)},
		{"education": n(4), "BMI": n(25), "age": n(40), "sysBP": n(125), "heartRate": null},
		{"education": null, "BMI": null, "age": null, "sysBP": n(140), "heartRate": n(60)},
		{"education": n(9), "BMI": n(22), "age": n(60), "sysBP": empty, "heartRate": n(90)},
	})
}

func TestAvgBMIByEducation(t *testing.T) {
	got := AvgBMIByEducation(chartDataset())
	assert.Equal(t, []model.GroupStat{
		{Label: "Primary Education", Value: 25, Count: 2},
		{Label: "College", Value: 25, Count: 1},
		{Label: "Unknown", Value: 22, Count: 2},
	}, got)
}

func TestEducationShare(t *testing.T) {
	got := EducationShare(chartDataset())
	assert.Equal(t, []model.GroupStat{
		{Label: "Primary Education", Value: 2, Count: 2},
		{Label: "College", Value: 1, Count: 1},
		{Label: "Unknown", Value: 2, Count: 2},
	}, got)
	assert.Empty(t, EducationShare(model.NewDataset(nil, nil)))
}

func TestGroupMeanOrdersUnlistedLabels(t *testing.T) {
	ds := model.NewDataset(nil, []model.Record{
		{"g": model.String("b"), "v": n(1)},
		{"g": model.String("a"), "v": n(3)},
		{"g": model.String("z"), "v": empty},
	})
	group := func(r model.Record) string { return r["g"].Text("") }

	got := GroupMean(ds, group, "v", []string{"z"})
	require.Len(t, got, 3)
	assert.Equal(t, []string{"z", "a", "b"}, []string{got[0].Label, got[1].Label, got[2].Label})
	assert.Zero(t, got[0].Value, "no numeric value averages to 0")
}

func TestSysBPByAge(t *testing.T) {
	assert.Equal(t, []model.Point{
		{X: 40, Y: 120},
		{X: 40, Y: 125},
		{X: 50, Y: 130},
	}, SysBPByAge(chartDataset()))
}

func TestBMIVsHeartRate(t *testing.T) {
	assert.Equal(t, []model.Point{
		{X: 20, Y: 70},
		{X: 30, Y: 80},
		{X: 22, Y: 90},
	}, BMIVsHeartRate(chartDataset()))
}

func TestBMIHeatmap(t *testing.T) {
	grid := BMIHeatmap(chartDataset())

	assert.Equal(t, []string{"Primary Education", "College", "Unknown"}, grid.Columns)
	assert.Equal(t, []string{"40", "50", "60", "Unknown"}, grid.Rows)
	require.Len(t, grid.Values, 4)

	assert.Equal(t, 30.0, grid.Values[0][0])
	assert.Equal(t, 25.0, grid.Values[0][1])
	assert.True(t, math.IsNaN(grid.Values[0][2]))
	assert.Equal(t, 20.0, grid.Values[1][0])
	assert.Equal(t, 22.0, grid.Values[2][2])
	assert.True(t, math.IsNaN(grid.Values[3][2]), "the unknown row has no BMI")

	assert.Len(t, grid.Cells, 4)
	assert.Contains(t, grid.Cells, model.HeatCell{Column: "College", Row: "40", Value: 25, Count: 1})
}
