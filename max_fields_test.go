package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaxFieldsTable(t *testing.T) {
	cases := []struct {
		chartType string
		axis      string
		want      int
	}{
		{ChartBar, AxisX, 1},
		{ChartBar, AxisY, 1},
		{ChartLine, AxisX, 1},
		{ChartScatter, AxisY, 1},
		{ChartHBar, AxisX, 1},
		{ChartPie, AxisX, 1},
		{ChartDonut, AxisY, 1},
		{ChartHeatmap, AxisX, 1},
		{ChartMetric, AxisX, 0},
		{ChartMetric, AxisY, 1},
		{ChartTable, AxisX, MaxFieldsUnlimited},
		{ChartTable, AxisY, MaxFieldsUnlimited},
		{ChartStacked, AxisBreakdown, 2},
		{ChartAreaStacked, AxisX, 1},
		{ChartHStacked, AxisBreakdown, 2},
		{ChartGeomap, AxisLatitude, 1},
		{ChartGeomap, AxisLongitude, 1},
		{ChartGeomap, AxisWeight, 1},
		{ChartSankey, AxisSource, 1},
		{ChartSankey, AxisTarget, 1},
		{ChartSankey, AxisValue, 1},
		// Breakdown is only constrained for the stacked family.
		{ChartBar, AxisBreakdown, MaxFieldsUnlimited},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, MaxFields(tc.chartType, tc.axis),
			"MaxFields(%s, %s)", tc.chartType, tc.axis)
	}
}

func TestMaxFieldsMessageWording(t *testing.T) {
	assert.Equal(t, "Max 1 field(s) in X-Axis is allowed.", maxFieldsMessage(ChartBar, AxisX, 1))
	assert.Equal(t, "Max 2 field(s) in B-Axis is allowed.", maxFieldsMessage(ChartStacked, AxisBreakdown, 2))
	assert.Equal(t, "Max 1 field in Latitude is allowed.", maxFieldsMessage(ChartGeomap, AxisLatitude, 1))
	assert.Equal(t, "Max 1 field in Source is allowed.", maxFieldsMessage(ChartSankey, AxisSource, 1))
}
