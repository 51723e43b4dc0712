package render

import (
	"cmp"
	"slices"

	"github.com/taigrr/facet/pkg/models"
)

// queued is a triangle that survived clipping and culling.
type queued struct {
	key    int64 // Sum of the three device z values
	id     uint32
	mat    *models.Material
	v      [3]int32 // Projection cache indices
	nx, ny int32    // Biased face normal
}

// depthSort orders q far to near. Triangles with equal keys are ordered by
// packed id so the result does not depend on input order.
func depthSort(q []queued) {
	if len(q) < 2 {
		return
	}
	quicksort(q, 0, len(q)-1)

	for i := 0; i < len(q); {
		j := i + 1
		for j < len(q) && q[j].key == q[i].key {
			j++
		}
		if j-i > 1 {
			slices.SortFunc(q[i:j], func(a, b queued) int {
				return cmp.Compare(a.id, b.id)
			})
		}
		i = j
	}
}

// quicksort sorts q[l..r] by descending key, partitioning around the mean of
// the two endpoint keys.
func quicksort(q []queued, l, r int) {
	for l < r {
		a, b := q[l].key, q[r].key
		m := a + (b-a)/2
		i, j := l, r
		for i <= j {
			for q[i].key > m {
				i++
			}
			for q[j].key < m {
				j--
			}
			if i <= j {
				q[i], q[j] = q[j], q[i]
				i++
				j--
			}
		}
		if l < j {
			quicksort(q, l, j)
		}
		l = i
	}
}
