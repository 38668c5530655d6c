package workload

import (
	"fmt"
	"math/rand/v2"

	"github.com/gnames/lnsdesign/pkg/design"
)

// Generate creates a synthetic workload with the given number of
// collections. The same seed always produces the same workload.
func Generate(collections int, seed uint64) *Workload {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	fields := []string{"id", "owner", "status", "created", "tag"}

	res := New()
	for i := range collections {
		name := fmt.Sprintf("coll_%02d", i)
		res.Collections[name] = Collection{
			Name:     name,
			DocCount: 1000 * (1 + rng.IntN(100)),
		}

		res.Candidates.Add(name, design.Choice{})
		for range 5 {
			c := design.Choice{}
			if rng.IntN(2) == 0 {
				c.ShardKey = fields[rng.IntN(len(fields))]
			}
			for k := range 1 + rng.IntN(2) {
				f := fields[(rng.IntN(len(fields))+k)%len(fields)]
				if len(c.Index) == 0 || c.Index[0] != f {
					c.Index = append(c.Index, f)
				}
			}
			res.Candidates.Add(name, c)
		}

		for range 3 {
			res.Operations = append(res.Operations, Operation{
				Collection: name,
				Kind:       OpQuery,
				Fields:     []string{fields[rng.IntN(len(fields))]},
				Weight:     float64(1 + rng.IntN(20)),
			})
		}
		writes := []OpKind{OpInsert, OpUpdate, OpDelete}
		res.Operations = append(res.Operations, Operation{
			Collection: name,
			Kind:       writes[rng.IntN(len(writes))],
			Fields:     []string{"id"},
			Weight:     float64(1 + rng.IntN(10)),
		})
	}
	return res
}
