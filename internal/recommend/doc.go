// Package recommend asks a language model for budget recommendations.
//
// A recommendation is requested for a spending metric and a direction of
// change. Both start Unselected and must be chosen before a prompt can be
// built. The latest recommendation and the latest follow-up answer live in
// single-slot stores owned by a Session; each new result replaces the old
// one whole.
package recommend
