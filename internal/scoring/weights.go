package scoring

import (
	"sync/atomic"

	"github.com/rotisserie/eris"

	"github.com/pdesskyterra/vendor-tracking-app/internal/model"
)

// WeightsHolder owns the process-wide pillar weights. Updates build a
// complete new value and publish it in a single atomic store, so a
// concurrent reader sees either entirely the old weights or entirely
// the new ones, never a torn mix. The engine loads one copy at the
// start of each run and uses it for the whole batch.
type WeightsHolder struct {
	cur atomic.Pointer[model.Weights]
}

// NewWeightsHolder seeds the holder. Invalid weights fall back to the
// defaults; callers who need the validation error should Swap instead.
func NewWeightsHolder(w model.Weights) *WeightsHolder {
	h := &WeightsHolder{}
	if err := w.Validate(); err != nil {
		w = model.DefaultWeights()
	}
	h.cur.Store(&w)
	return h
}

// Load returns the current weights value.
func (h *WeightsHolder) Load() model.Weights {
	return *h.cur.Load()
}

// Swap validates and publishes a new weights value. In-progress scoring
// runs keep the weights they snapshotted at start; only runs beginning
// after Swap observe the new value.
func (h *WeightsHolder) Swap(w model.Weights) error {
	if err := w.Validate(); err != nil {
		return eris.Wrap(err, "scoring: swap weights")
	}
	h.cur.Store(&w)
	return nil
}
