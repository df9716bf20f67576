// Package http implements the HTTP handlers of the OptimEdu analytics API.
// Handlers are a thin layer between the chi router and the services package:
// they decode and validate requests, call a service, and render the result.
//
// # Routes
//
//	POST /api/panel                       upload a CSV or XLSX panel
//	GET  /api/panel                       summary of the loaded panel
//	GET  /api/panel/entities              entity names
//	GET  /api/panel/entities/{e}/years    years recorded for an entity
//	GET  /api/panel/entities/{e}/years/{y} one record
//	POST /api/forecast                    Holt enrollment forecast
//	POST /api/plan                        budget gap, allocation and simulation
//	POST /api/plan/export                 plan as CSV or XLSX
//	GET  /api/impact                      regression models and impacts
//	POST /api/impact/predict              what-if prediction
//	GET  /api/impact/plots/{outcome}      scatter and fitted line data
//	GET  /api/impact/export               plot data as CSV or XLSX
//	GET  /api/recommendations             latest recommendation and answer
//	POST /api/recommendations             generate a recommendation
//	POST /api/recommendations/ask         follow-up question
//
// # Errors
//
// Every failure is rendered as an RFC 7807 problem document by
// errors.ErrorHandler, which maps domain sentinels to status codes:
//
//	{
//	    "type": "/errors/forecast/insufficient-data",
//	    "title": "Insufficient Data",
//	    "status": 422,
//	    "detail": "insufficient data: at least 2 periods are required for a trend forecast",
//	    "instance": "/api/forecast"
//	}
//
// # Testing
//
// Handler tests mount the real services behind the router and drive them
// with httptest. The language model is replaced by a testify mock.
package http
