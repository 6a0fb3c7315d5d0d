package wbs

import (
	"math"

	"github.com/jengzang/wbs-backend-go/internal/models"
)

// Recompute classifies every task as leaf or aggregate and rolls child
// weight and progress up into their parents, deepest first.
//
// The result is a new slice with the same order and IDs. Only IsCalculated,
// Weight and Progress can differ from the input, and Weight/Progress only
// change on tasks that have children. A task that lost its last child keeps
// whatever values it carried.
func Recompute(tasks []models.WBSTask) []models.WBSTask {
	out := make([]models.WBSTask, len(tasks))
	for i, t := range tasks {
		out[i] = t.Clone()
	}

	idx := BuildIndex(out)
	for i := range out {
		out[i].IsCalculated = idx.HasChildren(out[i].ID)
	}

	// Post-order walk: children are settled before their parent sums them.
	done := make([]bool, len(out))
	var visit func(i int)
	visit = func(i int) {
		if done[i] {
			return
		}
		done[i] = true

		kids := idx.Children(out[i].ID)
		if len(kids) == 0 {
			return
		}
		for _, k := range kids {
			visit(k)
		}

		weight, weighted := 0, 0
		for _, k := range kids {
			weight += out[k].Weight
			weighted += out[k].Progress * out[k].Weight
		}
		out[i].Weight = weight
		out[i].Progress = 0
		if weight > 0 {
			out[i].Progress = roundDiv(weighted, weight)
		}
	}

	for i := range out {
		visit(i)
	}

	return out
}

// roundDiv returns num/den rounded half up. den must be non-zero.
func roundDiv(num, den int) int {
	return roundHalfUp(float64(num) / float64(den))
}

func roundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}
