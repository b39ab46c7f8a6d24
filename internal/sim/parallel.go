package sim

import (
	"context"
	"runtime"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/san-kum/beerslab/internal/chem"
	"github.com/san-kum/beerslab/internal/config"
)

// Batch runs independent configurations concurrently. Each run gets its
// own model and metric set, so nothing is shared between goroutines.
type Batch struct {
	catalog    *chem.Catalog
	newMetrics func() []Metric
	workers    int
	log        logrus.FieldLogger
}

func NewBatch(catalog *chem.Catalog, newMetrics func() []Metric, workers int, log logrus.FieldLogger) *Batch {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Batch{catalog: catalog, newMetrics: newMetrics, workers: workers, log: log}
}

// Run returns results in the order of cfgs. The first error wins.
func (b *Batch) Run(ctx context.Context, cfgs []*config.Config) ([]*Result, error) {
	results := make([]*Result, len(cfgs))
	errs := make([]error, len(cfgs))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < b.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				s := New(b.catalog, b.log)
				if b.newMetrics != nil {
					for _, m := range b.newMetrics() {
						s.AddMetric(m)
					}
				}
				results[idx], errs[idx] = s.Run(ctx, cfgs[idx])
			}
		}()
	}

	for i := range cfgs {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}
