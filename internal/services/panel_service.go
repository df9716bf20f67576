package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	apperrors "optimedu/internal/errors"
	"optimedu/internal/infrastructure"
	"optimedu/internal/panel"
	"optimedu/internal/regression"
)

// PanelSummary describes the current panel.
type PanelSummary struct {
	Source   string    `json:"source"`
	LoadedAt time.Time `json:"loaded_at"`
	Records  int       `json:"records"`
	Entities int       `json:"entities"`
	Dropped  int       `json:"dropped"`
	Columns  []string  `json:"columns"`
	Warnings []string  `json:"warnings,omitempty"`

	Models   []string          `json:"models"`
	Skipped  []string          `json:"skipped,omitempty"`
	Failures map[string]string `json:"failures,omitempty"`
}

// RecordView is one panel row for display. Absent values read "N/A".
type RecordView struct {
	Entity string            `json:"entity"`
	Year   int               `json:"year"`
	Values map[string]string `json:"values"`
}

// PanelService loads panels and answers browse queries.
type PanelService struct {
	ws      *Workspace
	metrics *infrastructure.BusinessMetrics
	logger  *slog.Logger
}

// NewPanelService creates a panel service.
func NewPanelService(ws *Workspace, metrics *infrastructure.BusinessMetrics, logger *slog.Logger) *PanelService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PanelService{
		ws:      ws,
		metrics: metrics,
		logger:  logger.With(slog.String("service", "panel")),
	}
}

// Load parses an upload, fits the regression analysis on it and makes both
// current. A failed load leaves the previous panel in place.
func (s *PanelService) Load(ctx context.Context, name string, r io.Reader) (*PanelSummary, error) {
	start := time.Now()

	p, err := panel.LoadNamed(ctx, name, r)
	infrastructure.RecordOperation(ctx, s.metrics, "load_panel", time.Since(start), err)
	if err != nil {
		s.logger.WarnContext(ctx, "panel rejected",
			slog.String("source", name),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("load panel %q: %w", name, err)
	}

	fitStart := time.Now()
	analysis := regression.Fit(ctx, p)
	infrastructure.RecordOperation(ctx, s.metrics, "fit", time.Since(fitStart), nil)

	ds := Dataset{Panel: p, Analysis: analysis, LoadedAt: time.Now()}
	s.ws.SetDataset(ds)

	if s.metrics != nil {
		s.metrics.PanelsLoaded.Add(ctx, 1)
		s.metrics.RowsDropped.Add(ctx, int64(p.Dropped))
		for outcome := range analysis.Failures {
			s.metrics.RegressionFailures.Add(ctx, 1,
				metric.WithAttributes(attribute.String("outcome", outcome.String())))
		}
	}

	s.logger.InfoContext(ctx, "panel loaded",
		slog.String("source", p.Source),
		slog.Int("records", len(p.Records)),
		slog.Int("dropped", p.Dropped),
		slog.Int("models", len(analysis.Models)))

	return summarize(ds), nil
}

// Summary describes the current panel.
func (s *PanelService) Summary(ctx context.Context) (*PanelSummary, error) {
	ds, err := s.ws.Dataset()
	if err != nil {
		return nil, err
	}
	return summarize(ds), nil
}

// Entities lists the entities of the current panel in ascending order.
func (s *PanelService) Entities(ctx context.Context) ([]string, error) {
	ds, err := s.ws.Dataset()
	if err != nil {
		return nil, err
	}
	return ds.Panel.Entities(), nil
}

// Years lists the years recorded for entity, most recent first.
func (s *PanelService) Years(ctx context.Context, entity string) ([]int, error) {
	ds, err := s.ws.Dataset()
	if err != nil {
		return nil, err
	}
	years := ds.Panel.Years(entity)
	if len(years) == 0 {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("entity %q", entity), ErrEntityNotFound).
			WithContext("entity", entity)
	}
	return years, nil
}

// Record returns the first row recorded for entity in year.
func (s *PanelService) Record(ctx context.Context, entity string, year int) (*RecordView, error) {
	ds, err := s.ws.Dataset()
	if err != nil {
		return nil, err
	}

	rec, ok := ds.Panel.Lookup(entity, year)
	if !ok {
		if len(ds.Panel.Years(entity)) == 0 {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("entity %q", entity), ErrEntityNotFound).
				WithContext("entity", entity)
		}
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("year %d for entity %q", year, entity), ErrYearNotFound).
			WithContext("entity", entity).
			WithContext("year", year)
	}

	return &RecordView{Entity: rec.Entity, Year: rec.Year, Values: rec.Values()}, nil
}

func summarize(ds Dataset) *PanelSummary {
	p, a := ds.Panel, ds.Analysis

	summary := &PanelSummary{
		Source:   p.Source,
		LoadedAt: ds.LoadedAt,
		Records:  len(p.Records),
		Entities: len(p.Entities()),
		Dropped:  p.Dropped,
		Warnings: p.Warnings,
		Columns:  make([]string, 0, len(panel.Columns)),
		Models:   make([]string, 0, len(a.Models)),
	}
	for _, col := range p.HeaderColumns() {
		summary.Columns = append(summary.Columns, col.String())
	}
	for _, outcome := range a.Outcomes {
		if _, ok := a.Models[outcome]; ok {
			summary.Models = append(summary.Models, outcome.String())
		}
	}
	for _, col := range a.Skipped {
		summary.Skipped = append(summary.Skipped, col.String())
	}
	if len(a.Failures) > 0 {
		summary.Failures = make(map[string]string, len(a.Failures))
		for outcome, perr := range a.Failures {
			summary.Failures[outcome.String()] = perr.Err.Error()
		}
	}
	return summary
}
