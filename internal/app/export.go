package app

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"

	"energy-forecast/internal/forecast"
	"energy-forecast/internal/source"
	"energy-forecast/internal/storage"
)

// point is one (hour, kWh) sample of either history or forecast.
type point struct {
	TS    time.Time
	Value float64
}

// Export renders the forecast window (and the trailing history that
// produced it) as CSV and/or PNG.
func (a *App) Export(ctx context.Context, opts ExportOptions) error {
	if opts.CSVPath == "" && opts.PNGPath == "" {
		return errors.New("at least one of --csv or --png must be provided")
	}

	opts.MaxPoints = a.Config.ResolveMaxPoints(opts.MaxPoints)

	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		return errors.New("database not configured; cannot export")
	}
	if closeStore != nil {
		defer closeStore()
	}

	loc := a.timeLocation()
	at := time.Now().In(loc)
	if opts.At != nil {
		at = opts.At.In(loc)
	}

	fm, err := a.newEngine(store).Generate(ctx, forecast.Request{
		Now:        at,
		Meters:     a.Config.Forecast.Meters,
		Excluded:   a.Config.Forecast.ExcludedEntities,
		CalendarID: a.Config.Forecast.VacationCalendar,
	})
	if err != nil {
		return err
	}
	if len(fm) == 0 {
		a.Logger.Info().Msg("no historical statistics; nothing to export")
		return nil
	}

	forecastPoints := sortedForecastPoints(fm, loc)
	history, err := a.historyPoints(ctx, store, at, loc)
	if err != nil {
		return err
	}
	history = downsamplePoints(history, opts.MaxPoints)

	a.Logger.Info().Int("history", len(history)).Int("forecast", len(forecastPoints)).Msg("exporting forecast window")

	if opts.CSVPath != "" {
		if err := writeForecastCSV(opts.CSVPath, forecastPoints); err != nil {
			return err
		}
	}

	if opts.PNGPath != "" {
		if err := writeForecastPNG(opts.PNGPath, history, forecastPoints); err != nil {
			return err
		}
	}

	return nil
}

// historyPoints rebuilds the combined series the forecast learned from.
func (a *App) historyPoints(ctx context.Context, store *storage.Store, at time.Time, loc *time.Location) ([]point, error) {
	stats := source.NewStatistics(store, a.Logger)
	aggregator := forecast.NewAggregator(stats, a.Config.Forecast.AggregationPolicy(), a.Logger)

	series, err := aggregator.Combine(ctx, a.Config.Forecast.Meters, a.Config.Forecast.ExcludedEntities, at.Add(-a.Config.Forecast.Window()), at, loc)
	if err != nil {
		return nil, err
	}

	points := make([]point, 0, len(series))
	for ts, value := range series {
		points = append(points, point{TS: ts, Value: value})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].TS.Before(points[j].TS) })
	return points, nil
}

func sortedForecastPoints(fm forecast.ForecastMap, loc *time.Location) []point {
	points := make([]point, 0, len(fm))
	for key, value := range fm {
		ts, err := time.ParseInLocation(forecast.KeyLayout, key, loc)
		if err != nil {
			continue
		}
		points = append(points, point{TS: ts, Value: value})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].TS.Before(points[j].TS) })
	return points
}

func downsamplePoints(points []point, max int) []point {
	if max <= 0 || len(points) <= max {
		return points
	}

	result := make([]point, 0, max)
	step := float64(len(points)-1) / float64(max-1)
	for i := 0; i < max; i++ {
		idx := int(math.Round(step * float64(i)))
		if idx >= len(points) {
			idx = len(points) - 1
		}
		result = append(result, points[idx])
	}
	return result
}

func writeForecastCSV(path string, points []point) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"hour", "kwh"}); err != nil {
		return err
	}

	for _, p := range points {
		record := []string{
			p.TS.Format(forecast.KeyLayout),
			fmt.Sprintf("%.2f", p.Value),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	return writer.Error()
}

func writeForecastPNG(path string, history, forecastPoints []point) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	valueFormatter := func(v interface{}) string {
		return chart.FloatValueFormatterWithFormat(v, "%.2f")
	}
	graph := chart.Chart{
		Width:  1280,
		Height: 720,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeValueFormatter,
		},
		YAxis: chart.YAxis{
			Name:           "Consumption (kWh)",
			ValueFormatter: valueFormatter,
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "History",
				XValues: xValues(history),
				YValues: yValues(history),
			},
			chart.TimeSeries{
				Name:    "Forecast",
				XValues: xValues(forecastPoints),
				YValues: yValues(forecastPoints),
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return graph.Render(chart.PNG, file)
}

func xValues(points []point) []time.Time {
	x := make([]time.Time, len(points))
	for i, p := range points {
		x[i] = p.TS
	}
	return x
}

func yValues(points []point) []float64 {
	y := make([]float64, len(points))
	for i, p := range points {
		y[i] = p.Value
	}
	return y
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
