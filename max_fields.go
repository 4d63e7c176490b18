package main

import (
	"fmt"
	"strings"
)

// Chart types understood by the builder.
const (
	ChartBar         = "bar"
	ChartLine        = "line"
	ChartArea        = "area"
	ChartScatter     = "scatter"
	ChartHBar        = "h-bar"
	ChartStacked     = "stacked"
	ChartAreaStacked = "area-stacked"
	ChartHStacked    = "h-stacked"
	ChartPie         = "pie"
	ChartDonut       = "donut"
	ChartMetric      = "metric"
	ChartHeatmap     = "heatmap"
	ChartTable       = "table"
	ChartGeomap      = "geomap"
	ChartMaps        = "maps"
	ChartSankey      = "sankey"
)

// MaxFieldsUnlimited marks an axis whose capacity is not enforced at drop
// time: table columns, and any axis a chart type leaves unconstrained.
const MaxFieldsUnlimited = -1

// Per-chart-type capacity tables. An explicit 0 rejects every drop on that
// axis (metric charts have no X axis); a missing entry is unenforced. Table
// charts enforce nothing, their columns list is unbounded.
var maxFieldTables = map[string]map[string]int{
	ChartPie:         {AxisX: 1, AxisY: 1},
	ChartDonut:       {AxisX: 1, AxisY: 1},
	ChartHeatmap:     {AxisX: 1, AxisY: 1},
	ChartMetric:      {AxisX: 0, AxisY: 1},
	ChartTable:       {},
	ChartStacked:     {AxisX: 1, AxisY: 1, AxisBreakdown: 2},
	ChartAreaStacked: {AxisX: 1, AxisY: 1, AxisBreakdown: 2},
	ChartHStacked:    {AxisX: 1, AxisY: 1, AxisBreakdown: 2},
	ChartGeomap:      {AxisLatitude: 1, AxisLongitude: 1, AxisWeight: 1},
	ChartMaps:        {AxisLatitude: 1, AxisLongitude: 1, AxisWeight: 1},
	ChartSankey:      {AxisSource: 1, AxisTarget: 1, AxisValue: 1},
}

// defaultMaxFields covers bar, line, area, scatter and h-bar.
var defaultMaxFields = map[string]int{AxisX: 1, AxisY: 1}

// MaxFields returns the per-axis capacity limit for a chart type, or
// MaxFieldsUnlimited when none is enforced.
func MaxFields(chartType, axis string) int {
	table, ok := maxFieldTables[chartType]
	if !ok {
		table = defaultMaxFields
	}
	limit, ok := table[axis]
	if !ok {
		return MaxFieldsUnlimited
	}
	return limit
}

// Cartesian axes are labelled by letter in rejection messages.
var axisLetters = map[string]string{
	AxisX:         "X",
	AxisY:         "Y",
	AxisZ:         "Z",
	AxisBreakdown: "B",
}

// maxFieldsMessage formats the rejection shown when a drop would exceed the
// axis capacity. Cartesian builders and the geomap/sankey builders word it
// differently; both wordings are load-bearing for the clients.
func maxFieldsMessage(chartType, axis string, limit int) string {
	if letter, ok := axisLetters[axis]; ok {
		return fmt.Sprintf("Max %d field(s) in %s-Axis is allowed.", limit, letter)
	}
	return fmt.Sprintf("Max %d field in %s is allowed.", limit, titleCase(axis))
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
