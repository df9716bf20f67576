// Package panel loads county-year panels of school finance and outcome
// metrics.
//
// A panel is a table keyed by a composite "county-year" column such as
// "Travis-2022". The loader normalizes header names (lower case, spaces to
// underscores), splits the composite key into an entity and a four digit
// year, and coerces the known numeric columns into optional values.
//
// Rows whose key cannot be split are dropped and counted, never
// default-filled. A missing key column is a SchemaError and no panel is
// produced.
//
// # Usage
//
//	p, err := panel.LoadFile(ctx, "counties.csv")
//	if err != nil {
//	    return err
//	}
//	for _, entity := range p.Entities() {
//	    fmt.Println(entity, p.Years(entity))
//	}
package panel
