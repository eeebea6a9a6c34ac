package chart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyAndShape_MonthRevenue(t *testing.T) {
	rows := [][]string{{"Month", "Revenue"}, {"Jan", "100"}, {"Feb", "150"}}

	out, err := ClassifyAndShape(rows, "bar")
	require.NoError(t, err)

	assert.Equal(t, []string{"Jan", "Feb"}, out.Labels)
	require.Len(t, out.Datasets, 1)
	assert.Equal(t, "Revenue", out.Datasets[0].Label)
	assert.Equal(t, []float64{100, 150}, out.Datasets[0].Data)

	assert.Equal(t, "bar", out.Metadata.ChartType)
	assert.Equal(t, 2, out.Metadata.RowCount)
	assert.Equal(t, "Month", out.Metadata.LabelColumn)
	assert.Equal(t, ColumnCategorical, out.Metadata.Columns[0].Type)
	assert.Equal(t, ColumnNumeric, out.Metadata.Columns[1].Type)
}

func TestClassifyAndShape_InsufficientData(t *testing.T) {
	cases := map[string][][]string{
		"empty":          nil,
		"header only":    {{"Month", "Revenue"}},
		"one row":        {{"Month", "Revenue"}, {"Jan", "100"}},
		"blank padding":  {{"Month", "Revenue"}, {"Jan", "100"}, {"", ""}, {" "}},
		"nothing to sum": {{"Name", "City"}, {"Ann", "Oslo"}, {"Bob", "Rome"}},
	}
	for name, rows := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ClassifyAndShape(rows, "line")
			assert.ErrorIs(t, err, ErrInsufficientData)
		})
	}
}

func TestClassifyAndShape_MultipleSeriesAndFormatting(t *testing.T) {
	rows := [][]string{
		{"Quarter", "Sales", "Margin", "Region"},
		{"Q1", "$1,200", "12%", "EU"},
		{"Q2", "$1,500.50", "15%", "US"},
		{"Q3", "n/a", "11%", "EU"},
		{"Q4", "$2,000", "14%", "APAC"},
	}
	out, err := ClassifyAndShape(rows, "")
	require.NoError(t, err)

	assert.Equal(t, "bar", out.Metadata.ChartType)
	assert.Equal(t, []string{"Q1", "Q2", "Q3", "Q4"}, out.Labels)
	require.Len(t, out.Datasets, 2)
	assert.Equal(t, "Sales", out.Datasets[0].Label)
	assert.Equal(t, []float64{1200, 1500.5, 0, 2000}, out.Datasets[0].Data)
	assert.Equal(t, "Margin", out.Datasets[1].Label)
	assert.Equal(t, []float64{12, 15, 11, 14}, out.Datasets[1].Data)
	assert.InDelta(t, 0.75, out.Metadata.Columns[1].NumericRatio, 1e-9)
}

func TestClassifyAndShape_PieUsesSingleDataset(t *testing.T) {
	rows := [][]string{
		{"Browser", "Share", "Users"},
		{"Chrome", "65", "1000"},
		{"Safari", "19", "300"},
		{"Firefox", "3", "50"},
	}
	for _, typ := range []string{"pie", "Donut", "doughnut"} {
		out, err := ClassifyAndShape(rows, typ)
		require.NoError(t, err, typ)
		assert.Equal(t, []string{"Chrome", "Safari", "Firefox"}, out.Labels)
		require.Len(t, out.Datasets, 1, typ)
		assert.Equal(t, "Share", out.Datasets[0].Label)
		assert.Equal(t, []float64{65, 19, 3}, out.Datasets[0].Data)
	}
}

func TestClassifyAndShape_NoCategoricalColumnUsesRowLabels(t *testing.T) {
	rows := [][]string{{"A", "B"}, {"1", "2"}, {"3", "4"}, {"5", "6"}}
	out, err := ClassifyAndShape(rows, "line")
	require.NoError(t, err)
	assert.Equal(t, []string{"Row 1", "Row 2", "Row 3"}, out.Labels)
	assert.Len(t, out.Datasets, 2)
	assert.Empty(t, out.Metadata.LabelColumn)
}

func TestClassifyAndShape_MixedColumnLabelsAndBlankHeaders(t *testing.T) {
	rows := [][]string{
		{"", "Value"},
		{"A1", "10"},
		{"2", "20"},
		{"", "30"},
		{"B", "40"},
	}
	out, err := ClassifyAndShape(rows, "bar")
	require.NoError(t, err)

	assert.Equal(t, "Column 1", out.Metadata.Columns[0].Name)
	assert.Equal(t, ColumnMixed, out.Metadata.Columns[0].Type)
	assert.Equal(t, []string{"A1", "2", "Row 3", "B"}, out.Labels)
}

func TestClassifyAndShape_SamplesFirstTenRows(t *testing.T) {
	rows := [][]string{{"Label", "Value"}}
	for i := 0; i < 10; i++ {
		rows = append(rows, []string{"x", "1"})
	}
	for i := 0; i < 20; i++ {
		rows = append(rows, []string{"y", "text"})
	}
	out, err := ClassifyAndShape(rows, "bar")
	require.NoError(t, err)
	assert.Equal(t, 10, out.Metadata.SampleSize)
	assert.Equal(t, 30, out.Metadata.RowCount)
	assert.Equal(t, ColumnNumeric, out.Metadata.Columns[1].Type)
	assert.Len(t, out.Datasets[0].Data, 30)
}

func TestParseNumber(t *testing.T) {
	cases := map[string]struct {
		want float64
		ok   bool
	}{
		"42":        {42, true},
		" -3.5 ":    {-3.5, true},
		"$1,234.50": {1234.5, true},
		"85%":       {85, true},
		"":          {0, false},
		"abc":       {0, false},
		"NaN":       {0, false},
		"Inf":       {0, false},
	}
	for in, tc := range cases {
		got, ok := parseNumber(in)
		assert.Equal(t, tc.ok, ok, in)
		assert.Equal(t, tc.want, got, in)
	}
}
