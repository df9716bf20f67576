// Package simulation projects the growth of an investment with a Monte
// Carlo model of monthly returns.
//
// Every path starts at the principal. Each month draws a normal shock with
// mean r/12 and standard deviation σ/√12 and compounds it:
//
//	value[t+1] = value[t] × (1 + shock)
//
// Values are neither floored nor stopped early, so extreme shocks can drive
// a path to zero or below.
//
// Each path draws from its own PCG stream, keyed by the run seed and the
// path index. Paths can therefore run on any number of workers and a run
// is reproducible bit for bit from its parameters.
package simulation
