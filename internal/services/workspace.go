package services

import (
	"time"

	apperrors "optimedu/internal/errors"
	"optimedu/internal/panel"
	"optimedu/internal/recommend"
	"optimedu/internal/regression"
)

// Dataset is an uploaded panel and the regression analysis fitted on it.
type Dataset struct {
	Panel    *panel.Panel
	Analysis *regression.Analysis
	LoadedAt time.Time
}

// Workspace is the session state shared by the services.
type Workspace struct {
	dataset recommend.Slot[Dataset]
	advisor recommend.Session
}

// NewWorkspace returns an empty workspace.
func NewWorkspace() *Workspace {
	return &Workspace{}
}

// Dataset returns the current dataset or a conflict error wrapping ErrNoPanel.
func (ws *Workspace) Dataset() (Dataset, error) {
	ds, ok := ws.dataset.Load()
	if !ok {
		return Dataset{}, apperrors.NewConflictError("upload a panel first", ErrNoPanel)
	}
	return ds, nil
}

// SetDataset replaces the current dataset.
func (ws *Workspace) SetDataset(ds Dataset) {
	ws.dataset.Store(ds)
}

// Advisor returns the recommendation session.
func (ws *Workspace) Advisor() *recommend.Session {
	return &ws.advisor
}
