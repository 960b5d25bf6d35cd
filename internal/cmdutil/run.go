package cmdutil

import (
	"github.com/acgtun/walt/internal/driver"
	"github.com/acgtun/walt/internal/fastqio"
)

// RunMapping streams batches of batchSize reads from r through d, applies
// visit to each classified Result, and forwards kept outputs to send. It
// returns the number of kept outputs and the first error encountered,
// stopping as soon as a batch comes back short (fastqio.Reader's EOF
// signal) or any of visit/send fails.
func RunMapping[T any](
	r *fastqio.Reader,
	d *driver.Driver,
	batchSize int,
	visit func(driver.Result) (bool, T, error),
	send func(T) error,
) (int, error) {
	total := 0
	for {
		batch, err := r.NextBatch(batchSize)
		if err != nil {
			return total, err
		}
		mapped, err := d.MapBatch(batch)
		if err != nil {
			return total, err
		}
		for _, res := range mapped {
			keep, out, vErr := visit(res)
			if vErr != nil {
				return total, vErr
			}
			if !keep {
				continue
			}
			if err := send(out); err != nil {
				return total, err
			}
			total++
		}
		if len(batch) < batchSize {
			return total, nil
		}
	}
}
