package dashboard

import (
	"sync"
	"time"

	"taskninja/internal/aggregate"
	"taskninja/internal/dataset"
	apperrors "taskninja/internal/errors"
	"taskninja/internal/trend"
)

// KPISet is the headline-figure payload served to the dashboard page and
// pushed over the websocket.
type KPISet struct {
	Rows        int       `json:"rows"`
	Total       float64   `json:"total"`
	Average     float64   `json:"average"`
	TopGroup    string    `json:"top_group"`
	TopTotal    float64   `json:"top_group_total"`
	GeneratedAt time.Time `json:"generated_at"`
}

// DataSource loads the dashboard's dataset and derives KPIs and chart
// inputs from it. The file is re-read on Refresh so edits show up without
// a restart.
type DataSource struct {
	path        string
	groupColumn string
	valueColumn string
	dateColumn  string

	mu sync.RWMutex
	ds *dataset.Dataset
}

// NewDataSource describes where the dashboard data lives and which columns
// drive the groupings.
func NewDataSource(path, groupColumn, valueColumn, dateColumn string) *DataSource {
	return &DataSource{
		path:        path,
		groupColumn: groupColumn,
		valueColumn: valueColumn,
		dateColumn:  dateColumn,
	}
}

// Refresh reloads the backing file.
func (d *DataSource) Refresh() error {
	ds, err := dataset.Load(d.path)
	if err != nil {
		return err
	}
	if !ds.HasColumn(d.groupColumn) || !ds.HasColumn(d.valueColumn) {
		return apperrors.InvalidInput("dataset is missing the configured group or value column")
	}
	d.mu.Lock()
	d.ds = ds
	d.mu.Unlock()
	return nil
}

func (d *DataSource) dataset() *dataset.Dataset {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.ds
}

// KPIs computes the headline figures from the current dataset.
func (d *DataSource) KPIs() (KPISet, error) {
	ds := d.dataset()
	if ds == nil {
		return KPISet{}, apperrors.New(apperrors.CodeInternal, "dataset not loaded")
	}
	summary, err := aggregate.By(ds, d.valueColumn, d.groupColumn)
	if err != nil {
		return KPISet{}, err
	}

	kpis := KPISet{Rows: len(ds.Rows), GeneratedAt: time.Now().UTC()}
	for _, g := range summary.Groups {
		kpis.Total += g.Sum
	}
	if len(ds.Rows) > 0 {
		kpis.Average = kpis.Total / float64(len(ds.Rows))
	}
	if top := summary.Top(); top != nil && len(top.Keys) > 0 {
		kpis.TopGroup = top.Keys[0]
		kpis.TopTotal = top.Sum
	}
	return kpis, nil
}

// Summary groups the dataset for the bar and pie views.
func (d *DataSource) Summary() (*aggregate.Summary, error) {
	ds := d.dataset()
	if ds == nil {
		return nil, apperrors.New(apperrors.CodeInternal, "dataset not loaded")
	}
	return aggregate.By(ds, d.valueColumn, d.groupColumn)
}

// Series resamples the dataset monthly for the trend and heatmap views.
func (d *DataSource) Series() (*trend.Series, error) {
	ds := d.dataset()
	if ds == nil {
		return nil, apperrors.New(apperrors.CodeInternal, "dataset not loaded")
	}
	if d.dateColumn == "" || !ds.HasColumn(d.dateColumn) {
		return nil, apperrors.InvalidInput("no date column configured for trend views")
	}
	return trend.Resample(ds, d.dateColumn, d.valueColumn, trend.Monthly)
}
