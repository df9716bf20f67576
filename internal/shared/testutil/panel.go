package testutil

import (
	"fmt"
	"strings"
)

// PanelHeader is the header row of PanelCSV. Graduation and higher
// education columns are absent.
const PanelHeader = "County-Year,Spending Per Student,Student Teacher Ratio,Per Pupil Instructional Spending,Math Score,Reading Score,Enrollment"

// PanelCSV returns a panel with ten Adams rows (2013-2022) and two Baker
// rows without enrollment. Adams enrollment grows by exactly 50 a year from
// 1000, and every math score is exactly
//
//	50 + 0.002*spending - 0.5*ratio + 0.001*instructional
//
// Extra rows are appended verbatim.
func PanelCSV(extra ...string) string {
	var b strings.Builder
	b.WriteString(PanelHeader + "\n")
	for i := 0; i < 10; i++ {
		x1 := 10000 + 500*float64(i)
		x2 := 15 + float64(i%3)
		x3 := 6000 + 300*float64((i*7)%10)
		math := 50 + 0.002*x1 - 0.5*x2 + 0.001*x3
		reading := 60 + 0.001*x1 + float64(i%2)
		fmt.Fprintf(&b, "Adams-%d,%g,%g,%g,%g,%g,%d\n", 2013+i, x1, x2, x3, math, reading, 1000+50*i)
	}
	b.WriteString("Baker-2020,12100,19,7100,71.8,70.5,\n")
	b.WriteString("Baker-2021,12900,17,6500,73.8,71.1,\n")
	for _, row := range extra {
		b.WriteString(row + "\n")
	}
	return b.String()
}
