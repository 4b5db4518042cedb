package protocol

import (
	"fmt"
	"sync/atomic"
	"time"
)

const (
	disambiguatorMod = 1_000_000
	dateLayout       = "20060102"
)

// Generator derives human-traceable protocol codes. A code base is
// DATE(YYYYMMDD) + PROVINCE + PARTNERCODE + a six-digit disambiguator;
// batches larger than one append a zero-padded _NNN sequence.
//
// The disambiguator advances monotonically within the process, so two
// batches minted in the same second still get distinct bases. Cross-process
// uniqueness is not guaranteed here; the store's unique constraint on the
// code column is the safety net and a collision fails the whole batch.
type Generator struct {
	now  func() time.Time
	last atomic.Int64
}

// NewGenerator builds a generator on the wall clock.
func NewGenerator() *Generator {
	return &Generator{now: time.Now}
}

// Codes returns qty codes sharing one freshly disambiguated base. For
// qty == 1 the single code is the bare base.
func (g *Generator) Codes(provinceCode, partnerCode string, qty int) []string {
	now := g.now()
	base := fmt.Sprintf("%s%s%s%06d", now.Format(dateLayout), provinceCode, partnerCode, g.disambiguator(now))

	if qty == 1 {
		return []string{base}
	}
	codes := make([]string, 0, qty)
	for i := 1; i <= qty; i++ {
		codes = append(codes, fmt.Sprintf("%s_%03d", base, i))
	}
	return codes
}

func (g *Generator) disambiguator(now time.Time) int64 {
	for {
		candidate := now.UnixMilli() % disambiguatorMod
		last := g.last.Load()
		if candidate <= last {
			candidate = (last + 1) % disambiguatorMod
		}
		if g.last.CompareAndSwap(last, candidate) {
			return candidate
		}
	}
}
