package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mkravets/denial-appeals/internal/core/domain"
	"github.com/mkravets/denial-appeals/internal/core/ports"
)

// ReadinessAggregator fans out one probe per external dependency and rolls
// the results into a single report. Probes run truly in parallel, so the
// slowest probe bounds total latency. A failing or panicking probe degrades
// the report; it never crashes the check.
type ReadinessAggregator struct {
	missingConfig func() []string
	probes        []ports.DependencyProbe
	probeTimeout  time.Duration
}

func NewReadinessAggregator(
	missingConfig func() []string,
	probeTimeout time.Duration,
	probes ...ports.DependencyProbe,
) *ReadinessAggregator {
	if probeTimeout <= 0 {
		probeTimeout = 5 * time.Second
	}
	return &ReadinessAggregator{
		missingConfig: missingConfig,
		probes:        probes,
		probeTimeout:  probeTimeout,
	}
}

func (a *ReadinessAggregator) CheckAll(ctx context.Context) domain.ReadinessReport {
	report := domain.ReadinessReport{
		Probes:    make([]domain.ProbeResult, len(a.probes)),
		CheckedAt: time.Now().UTC(),
	}
	if a.missingConfig != nil {
		report.MissingConfig = a.missingConfig()
	}

	var wg sync.WaitGroup
	for i, probe := range a.probes {
		wg.Add(1)
		go func(slot int, probe ports.DependencyProbe) {
			defer wg.Done()
			report.Probes[slot] = a.runProbe(ctx, probe)
		}(i, probe)
	}
	wg.Wait()

	report.AllPassed = len(report.MissingConfig) == 0
	for _, result := range report.Probes {
		if !result.OK {
			report.AllPassed = false
		}
	}
	return report
}

func (a *ReadinessAggregator) runProbe(ctx context.Context, probe ports.DependencyProbe) (result domain.ProbeResult) {
	result.Name = probe.Name()

	probeCtx, cancel := context.WithTimeout(ctx, a.probeTimeout)
	defer cancel()

	start := time.Now()
	defer func() {
		result.ElapsedMS = time.Since(start).Milliseconds()
		if r := recover(); r != nil {
			result.OK = false
			result.Detail = fmt.Sprintf("probe panic: %v", r)
		}
	}()

	if err := probe.Check(probeCtx); err != nil {
		result.OK = false
		result.Detail = err.Error()
		return result
	}
	result.OK = true
	return result
}
