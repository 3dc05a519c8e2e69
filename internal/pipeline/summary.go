package pipeline

import (
	"github.com/montanaflynn/stats"

	"github.com/nconklindev/ttvfill/internal/types"
)

// summarize describes the Z values written for one side. Range is the
// thickness variation across the side.
func summarize(target types.SheetTarget, values []float64) types.SideResult {
	res := types.SideResult{Sheet: target.Sheet, Count: len(values)}
	if len(values) == 0 {
		return res
	}

	res.FirstCell = target.Cell(0)
	res.LastCell = target.Cell(len(values) - 1)

	data := stats.Float64Data(values)
	res.Min, _ = data.Min()
	res.Max, _ = data.Max()
	res.Mean, _ = data.Mean()
	res.Range = res.Max - res.Min
	return res
}
