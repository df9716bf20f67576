// Package services orchestrates the analytics pipeline for the HTTP and CLI
// front ends.
//
// A Workspace holds the per-process session state: the latest uploaded
// panel together with the regression analysis fitted on it, and the
// advisor's latest recommendation and follow-up answer. Each piece lives in
// a single slot that is replaced whole, so concurrent readers always see a
// consistent panel and analysis pair.
//
// Services take their collaborators through their constructors:
//
//	ws := services.NewWorkspace()
//	panels := services.NewPanelService(ws, metrics, logger)
//	budget := services.NewBudgetService(ws, cfg.Analysis, metrics, logger)
//
// Errors that depend on session state (no panel loaded, unknown entity,
// advisor disabled) are returned as typed application errors wrapping the
// sentinels in this package, so the HTTP layer can map them to problem
// responses while callers can still match them with errors.Is.
package services
