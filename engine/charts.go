package engine

import (
	"errors"
	"fmt"

	"github.com/signaldeck/shell-engine/core/render"
	"github.com/signaldeck/shell-engine/core/value"
)

// A dense series hides its point symbols beyond this many samples.
const denseSeriesThreshold = 50

type namedSeries struct {
	name   string
	values []float64
}

type namedPoints struct {
	name   string
	points [][2]float64
}

// buildChart resolves a plot_* call into a chart spec. Chart calls never
// reach the host; argument problems surface as error specs.
func (e *Engine) buildChart(op string, args []value.Value) render.Spec {
	switch op {
	case "plot_line":
		return e.buildXYChart("line", args)
	case "plot_bar":
		return e.buildXYChart("bar", args)
	case "plot_pie":
		return e.buildPieChart(args)
	case "plot_series":
		return e.buildSeriesChart(args)
	default:
		return render.Errorf("Unknown chart function: %s", op)
	}
}

// buildXYChart handles plot_line and plot_bar:
//
//	plot_line(labels, values, title?)
//	plot_line(labels, {"Series A": [...], ...}, title?)
//	plot_line({"labels": [...], "values": [...] or "series": {...}}, title?)
func (e *Engine) buildXYChart(chartType string, args []value.Value) render.Spec {
	labels, series, title, err := parseXYArgs(args)
	if err != nil {
		return render.Errorf("%s", err)
	}

	chartSeries := make([]any, 0, len(series))
	legend := make([]string, 0, len(series))
	for _, s := range series {
		legend = append(legend, s.name)
		chartSeries = append(chartSeries, map[string]any{
			"name":   s.name,
			"type":   chartType,
			"data":   s.values,
			"smooth": chartType == "line",
		})
	}

	option := map[string]any{
		"tooltip": map[string]any{"trigger": "axis"},
		"legend":  map[string]any{"data": legend},
		"xAxis":   map[string]any{"type": "category", "data": labels},
		"yAxis":   map[string]any{"type": "value"},
		"series":  chartSeries,
		"grid":    map[string]any{"left": "10%", "right": "5%", "bottom": "15%", "top": "15%"},
	}

	return render.NewECharts(option, title, e.chartHeight)
}

// buildPieChart handles plot_pie:
//
//	plot_pie({"Living Room": 3, "Kitchen": 5}, title?)
//	plot_pie([["Living Room", 3], ["Kitchen", 5]], title?)
func (e *Engine) buildPieChart(args []value.Value) render.Spec {
	data, title, err := parsePieArgs(args)
	if err != nil {
		return render.Errorf("%s", err)
	}

	pieData := make([]any, 0, len(data))
	for _, s := range data {
		pieData = append(pieData, map[string]any{"name": s.name, "value": s.values[0]})
	}

	option := map[string]any{
		"tooltip": map[string]any{"trigger": "item", "formatter": "{b}: {c} ({d}%)"},
		"legend":  map[string]any{"orient": "vertical", "left": "left"},
		"series": []any{map[string]any{
			"type":   "pie",
			"radius": "60%",
			"data":   pieData,
			"emphasis": map[string]any{
				"itemStyle": map[string]any{
					"shadowBlur":    10,
					"shadowOffsetX": 0,
					"shadowColor":   "rgba(0, 0, 0, 0.5)",
				},
			},
		}},
	}

	return render.NewECharts(option, title, e.chartHeight)
}

// buildSeriesChart handles plot_series:
//
//	plot_series([[x, y], ...], title?)                 single series
//	plot_series({"name": [[x, y], ...], ...}, title?)  multi-series
//
// X values above one trillion are treated as epoch milliseconds and render
// on a time axis.
func (e *Engine) buildSeriesChart(args []value.Value) render.Spec {
	if len(args) == 0 {
		return render.Errorf("plot_series requires at least 1 argument: [(x,y),...] or {\"name\": [(x,y),...]}")
	}

	title := titleArg(args, 1)

	var series []namedPoints
	switch first := args[0]; first.Kind {
	case value.KindDict:
		for _, p := range first.Pairs {
			name := keyString(p.Key)
			points, ok := xyPoints(p.Val)
			if !ok {
				return render.Errorf("Series '%s' must be a list of (x, y) pairs", name)
			}
			series = append(series, namedPoints{name: name, points: points})
		}
	case value.KindList:
		points, ok := xyPoints(first)
		if !ok {
			return render.Errorf("Argument must be a list of (x, y) pairs or a dict of named series")
		}
		series = append(series, namedPoints{name: "value", points: points})
	default:
		return render.Errorf("plot_series requires [(x,y),...] or {\"name\": [(x,y),...]}")
	}

	total := 0
	isTime := false
	for _, s := range series {
		total += len(s.points)
		for _, pt := range s.points {
			if pt[0] > 1e12 {
				isTime = true
			}
		}
	}
	if total == 0 {
		return render.Errorf("plot_series: no data points provided")
	}

	xAxis := map[string]any{"type": "value"}
	if isTime {
		xAxis = map[string]any{"type": "time"}
	}

	chartSeries := make([]any, 0, len(series))
	for _, s := range series {
		data := make([]any, 0, len(s.points))
		for _, pt := range s.points {
			data = append(data, []any{pt[0], pt[1]})
		}
		entry := map[string]any{
			"type":       "line",
			"name":       s.name,
			"data":       data,
			"showSymbol": len(data) <= denseSeriesThreshold,
			"smooth":     false,
		}
		if len(data) > denseSeriesThreshold {
			entry["symbolSize"] = 0
		}
		chartSeries = append(chartSeries, entry)
	}

	showLegend := len(series) > 1 || (len(series) == 1 && series[0].name != "value")

	option := map[string]any{
		"tooltip": map[string]any{
			"trigger":     "axis",
			"axisPointer": map[string]any{"type": "cross"},
		},
		"legend": map[string]any{"show": showLegend},
		"grid":   map[string]any{"left": "12%", "right": "5%", "bottom": "15%", "top": "12%"},
		"xAxis":  xAxis,
		"yAxis":  map[string]any{"type": "value"},
		"series": chartSeries,
	}

	return render.NewECharts(option, title, e.chartHeight)
}

// parseXYArgs reads the labels, named series, and optional title for a line
// or bar chart.
func parseXYArgs(args []value.Value) ([]string, []namedSeries, *string, error) {
	if len(args) == 0 {
		return nil, nil, nil, errors.New("plot_line/plot_bar requires at least 1 argument: (labels, values) or a dict with 'labels' and 'values' keys")
	}

	// Config-dict form.
	if args[0].Kind == value.KindDict {
		if labelsVal, ok := args[0].DictGet("labels"); ok {
			labels, ok := stringList(labelsVal)
			if !ok {
				return nil, nil, nil, errors.New("'labels' must be a list of strings")
			}
			title := titleArg(args, 1)

			if seriesVal, ok := args[0].DictGet("series"); ok {
				series, err := seriesDict(seriesVal)
				if err != nil {
					return nil, nil, nil, err
				}
				return labels, series, title, nil
			}

			valuesVal, ok := args[0].DictGet("values")
			if !ok {
				return nil, nil, nil, errors.New("Missing 'values' in dict")
			}
			values, ok := numberList(valuesVal)
			if !ok {
				return nil, nil, nil, errors.New("'values' must be a list of numbers")
			}
			return labels, []namedSeries{{name: "value", values: values}}, title, nil
		}
	}

	// Positional form.
	if len(args) < 2 {
		return nil, nil, nil, errors.New("plot_line/plot_bar requires (labels, values) or a dict with 'labels' and 'values' keys")
	}

	labels, ok := stringList(args[0])
	if !ok {
		return nil, nil, nil, errors.New("First argument must be a list of labels (strings)")
	}
	title := titleArg(args, 2)

	if args[1].Kind == value.KindDict {
		series := make([]namedSeries, 0, len(args[1].Pairs))
		for _, p := range args[1].Pairs {
			name := keyString(p.Key)
			values, ok := numberList(p.Val)
			if !ok {
				return nil, nil, nil, fmt.Errorf("Series '%s' must be a list of numbers", name)
			}
			series = append(series, namedSeries{name: name, values: values})
		}
		return labels, series, title, nil
	}

	values, ok := numberList(args[1])
	if !ok {
		return nil, nil, nil, errors.New("Second argument must be a list of numbers or a dict of series")
	}
	return labels, []namedSeries{{name: "value", values: values}}, title, nil
}

// seriesDict reads a dict of series name → number list.
func seriesDict(v value.Value) ([]namedSeries, error) {
	if v.Kind != value.KindDict {
		return nil, errors.New("'series' must be a dict of name -> number list")
	}
	series := make([]namedSeries, 0, len(v.Pairs))
	for _, p := range v.Pairs {
		name := keyString(p.Key)
		values, ok := numberList(p.Val)
		if !ok {
			return nil, fmt.Errorf("Series '%s' must be a list of numbers", name)
		}
		series = append(series, namedSeries{name: name, values: values})
	}
	return series, nil
}

// parsePieArgs reads pie slices as single-value named series.
func parsePieArgs(args []value.Value) ([]namedSeries, *string, error) {
	if len(args) == 0 {
		return nil, nil, errors.New("plot_pie requires at least 1 argument: a dict or list of (name, value) pairs")
	}

	title := titleArg(args, 1)

	switch first := args[0]; first.Kind {
	case value.KindDict:
		data := make([]namedSeries, 0, len(first.Pairs))
		for _, p := range first.Pairs {
			name := keyString(p.Key)
			v, ok := p.Val.AsFloat()
			if !ok {
				return nil, nil, fmt.Errorf("Value for '%s' must be a number", name)
			}
			data = append(data, namedSeries{name: name, values: []float64{v}})
		}
		return data, title, nil

	case value.KindList:
		data := make([]namedSeries, 0, len(first.Items))
		for _, item := range first.Items {
			if item.Kind != value.KindList || len(item.Items) != 2 {
				return nil, nil, errors.New("Each item must be a (name, value) pair")
			}
			name := keyString(item.Items[0])
			v, ok := item.Items[1].AsFloat()
			if !ok {
				return nil, nil, fmt.Errorf("Value for '%s' must be a number", name)
			}
			data = append(data, namedSeries{name: name, values: []float64{v}})
		}
		return data, title, nil

	default:
		return nil, nil, errors.New("plot_pie requires a dict {name: value, ...} or list of (name, value) pairs")
	}
}

func titleArg(args []value.Value, idx int) *string {
	if idx < len(args) && args[idx].Kind == value.KindStr {
		return render.Opt(args[idx].S)
	}
	return nil
}

func keyString(v value.Value) string {
	if v.Kind == value.KindStr {
		return v.S
	}
	return v.String()
}

func stringList(v value.Value) ([]string, bool) {
	if v.Kind != value.KindList {
		return nil, false
	}
	out := make([]string, 0, len(v.Items))
	for _, item := range v.Items {
		if item.Kind == value.KindStr {
			out = append(out, item.S)
		} else {
			out = append(out, item.String())
		}
	}
	return out, true
}

func numberList(v value.Value) ([]float64, bool) {
	if v.Kind != value.KindList {
		return nil, false
	}
	out := make([]float64, 0, len(v.Items))
	for _, item := range v.Items {
		f, ok := item.AsFloat()
		if !ok {
			return nil, false
		}
		out = append(out, f)
	}
	return out, true
}

func xyPoints(v value.Value) ([][2]float64, bool) {
	if v.Kind != value.KindList {
		return nil, false
	}
	points := make([][2]float64, 0, len(v.Items))
	for _, item := range v.Items {
		if item.Kind != value.KindList || len(item.Items) != 2 {
			return nil, false
		}
		x, okX := item.Items[0].AsFloat()
		y, okY := item.Items[1].AsFloat()
		if !okX || !okY {
			return nil, false
		}
		points = append(points, [2]float64{x, y})
	}
	return points, true
}
