// Package chart shapes tabular spreadsheet data into chart datasets.
package chart

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	// ErrInsufficientData means the table has fewer than two data rows or no
	// numeric column to plot.
	ErrInsufficientData = errors.New("insufficient chart data")
	// ErrFetch means the spreadsheet could not be downloaded or parsed.
	ErrFetch = errors.New("chart data fetch failed")
	// ErrInvalidURL means the spreadsheet link is not an http(s) URL.
	ErrInvalidURL = errors.New("invalid spreadsheet url")
)

const (
	sampleRows       = 10
	numericThreshold = 0.7
	categoryCeiling  = 0.3
	minDataRows      = 2
)

// ColumnType is the classification of a column from its sampled values.
type ColumnType string

const (
	ColumnNumeric     ColumnType = "numeric"
	ColumnCategorical ColumnType = "categorical"
	ColumnMixed       ColumnType = "mixed"
)

type Column struct {
	Index        int        `json:"index"`
	Name         string     `json:"name"`
	Type         ColumnType `json:"type"`
	NumericRatio float64    `json:"numericRatio"`
}

type Dataset struct {
	Label string    `json:"label"`
	Data  []float64 `json:"data"`
}

type Metadata struct {
	ChartType   string   `json:"chartType"`
	RowCount    int      `json:"rowCount"`
	SampleSize  int      `json:"sampleSize"`
	LabelColumn string   `json:"labelColumn,omitempty"`
	Columns     []Column `json:"columns"`
}

type Data struct {
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
	Metadata Metadata  `json:"metadata"`
}

// IsSingleSeries reports whether chartType plots one series of slices.
func IsSingleSeries(chartType string) bool {
	switch normalizeType(chartType) {
	case "pie", "donut", "doughnut":
		return true
	}
	return false
}

// ClassifyAndShape turns rows, whose first row is the header, into chart
// labels and datasets.
func ClassifyAndShape(rows [][]string, chartType string) (*Data, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no rows", ErrInsufficientData)
	}
	header := rows[0]
	body := make([][]string, 0, len(rows)-1)
	for _, r := range rows[1:] {
		if !blankRow(r) {
			body = append(body, r)
		}
	}
	if len(body) < minDataRows {
		return nil, fmt.Errorf("%w: need at least %d data rows, got %d", ErrInsufficientData, minDataRows, len(body))
	}

	width := len(header)
	for _, r := range body {
		width = max(width, len(r))
	}
	sample := body[:min(sampleRows, len(body))]

	columns := make([]Column, width)
	for i := range columns {
		columns[i] = classify(i, columnName(header, i), sample)
	}

	labelIdx, valueIdx := -1, []int{}
	for _, c := range columns {
		switch c.Type {
		case ColumnNumeric:
			valueIdx = append(valueIdx, c.Index)
		default:
			if labelIdx < 0 {
				labelIdx = c.Index
			}
		}
	}
	if len(valueIdx) == 0 {
		return nil, fmt.Errorf("%w: no numeric column", ErrInsufficientData)
	}

	typ := normalizeType(chartType)
	if IsSingleSeries(typ) {
		valueIdx = valueIdx[:1]
	}

	out := &Data{
		Labels:   make([]string, len(body)),
		Datasets: make([]Dataset, 0, len(valueIdx)),
		Metadata: Metadata{
			ChartType:  typ,
			RowCount:   len(body),
			SampleSize: len(sample),
			Columns:    columns,
		},
	}
	if labelIdx >= 0 {
		out.Metadata.LabelColumn = columns[labelIdx].Name
	}
	for i, r := range body {
		label := ""
		if labelIdx >= 0 {
			label = strings.TrimSpace(cell(r, labelIdx))
		}
		if label == "" {
			label = "Row " + strconv.Itoa(i+1)
		}
		out.Labels[i] = label
	}
	for _, idx := range valueIdx {
		ds := Dataset{Label: columns[idx].Name, Data: make([]float64, len(body))}
		for i, r := range body {
			if v, ok := parseNumber(cell(r, idx)); ok {
				ds.Data[i] = v
			}
		}
		out.Datasets = append(out.Datasets, ds)
	}
	return out, nil
}

func classify(idx int, name string, sample [][]string) Column {
	filled, numeric := 0, 0
	for _, r := range sample {
		v := strings.TrimSpace(cell(r, idx))
		if v == "" {
			continue
		}
		filled++
		if _, ok := parseNumber(v); ok {
			numeric++
		}
	}
	c := Column{Index: idx, Name: name, Type: ColumnCategorical}
	if filled == 0 {
		return c
	}
	c.NumericRatio = float64(numeric) / float64(filled)
	switch {
	case c.NumericRatio >= numericThreshold:
		c.Type = ColumnNumeric
	case c.NumericRatio <= categoryCeiling:
		c.Type = ColumnCategorical
	default:
		c.Type = ColumnMixed
	}
	return c
}

var numberReplacer = strings.NewReplacer("$", "", ",", "", "%", "", " ", "")

// parseNumber accepts plain numbers and common spreadsheet formatting such
// as "$1,200" or "45%".
func parseNumber(raw string) (float64, bool) {
	v := numberReplacer.Replace(strings.TrimSpace(raw))
	if v == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func columnName(header []string, idx int) string {
	if name := strings.TrimSpace(cell(header, idx)); name != "" {
		return name
	}
	return "Column " + strconv.Itoa(idx+1)
}

func cell(row []string, idx int) string {
	if idx < len(row) {
		return row[idx]
	}
	return ""
}

func blankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func normalizeType(chartType string) string {
	t := strings.ToLower(strings.TrimSpace(chartType))
	if t == "" {
		return "bar"
	}
	return t
}
