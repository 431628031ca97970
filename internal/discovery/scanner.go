package discovery

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	consts "github.com/khanhnv2901/sanscout/internal/shared/constants"
)

// ProgressFunc is invoked once per processed target, whether or not the
// target yielded any SAN records.
type ProgressFunc func(target string, records int, found bool, duration float64)

// Scanner drives certificate retrieval, SAN extraction, resolution, and
// classification over the full target list.
type Scanner struct {
	Fetcher     *CertFetcher
	Cache       *ResolverCache
	Concurrency int // Maximum number of targets processed at once
	RateLimit   int // Handshake attempts per second (global)
	Port        int
	Logger      *zap.SugaredLogger // Optional absence diagnostics
	Progress    ProgressFunc
}

// Run scans every target and assembles the result mapping. Targets are
// independent I/O-bound work and are processed by a bounded worker pool;
// records within one target keep SAN extension order, while cross-target
// completion order is unspecified. No step is retried: a timeout or parse
// failure is a terminal absence for that target, never a run-level error.
func (s *Scanner) Run(ctx context.Context, targets []string) ScanResult {
	concurrency := s.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	rateLimit := s.RateLimit
	if rateLimit <= 0 {
		rateLimit = concurrency
	}
	port := s.Port
	if port == 0 {
		port = consts.DefaultTLSPort
	}
	if s.Fetcher == nil {
		s.Fetcher = &CertFetcher{Port: port}
	}
	if s.Cache == nil {
		s.Cache = NewResolverCache(s.Fetcher.Timeout, nil)
	}

	classifier := NewClassifier(targets)
	limiter := rate.NewLimiter(rate.Limit(rateLimit), rateLimit)

	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup
	mu := sync.Mutex{}
	result := make(ScanResult)

	for _, target := range targets {
		wg.Add(1)
		go func(t string) {
			defer wg.Done()

			// Acquire semaphore
			sem <- struct{}{}
			defer func() { <-sem }()

			if err := limiter.Wait(ctx); err != nil {
				return
			}

			start := time.Now()
			records := s.scanTarget(ctx, classifier, t)
			duration := time.Since(start).Seconds()

			if len(records) > 0 {
				key := fmt.Sprintf("%s:%d", t, port)
				mu.Lock()
				result[key] = records
				mu.Unlock()
			}

			if s.Progress != nil {
				s.Progress(t, len(records), len(records) > 0, duration)
			}
		}(target)
	}

	wg.Wait()
	return result
}

// scanTarget runs the full pipeline for one target. An empty result means
// the target served no certificate or a certificate without SAN entries.
func (s *Scanner) scanTarget(ctx context.Context, classifier *Classifier, target string) []DiscoveryRecord {
	pemBytes, ok := s.Fetcher.Fetch(ctx, target)
	if !ok {
		s.debugf("no certificate retrieved from %s", target)
		return nil
	}

	sans := ExtractSANs(pemBytes)
	if len(sans) == 0 {
		s.debugf("certificate from %s has no usable SAN entries", target)
		return nil
	}

	records := make([]DiscoveryRecord, 0, len(sans))
	for _, san := range sans {
		resolved := s.Cache.Resolve(ctx, san)
		records = append(records, classifier.Classify(target, san, resolved))
	}
	return records
}

func (s *Scanner) debugf(format string, args ...interface{}) {
	if s.Logger != nil {
		s.Logger.Debugf(format, args...)
	}
}
