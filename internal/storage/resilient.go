package storage

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jwalitptl/hms-api/pkg/circuitbreaker"
	apperrors "github.com/jwalitptl/hms-api/pkg/errors"
	"github.com/jwalitptl/hms-api/pkg/metrics"
)

// ResilientStore guards a Store with a circuit breaker and records
// metrics. Backend failures come back as UpstreamFailure app errors;
// ErrObjectNotFound passes through and does not count against the breaker.
type ResilientStore struct {
	next    Store
	cb      *circuitbreaker.CircuitBreaker
	metrics *metrics.Metrics
}

func NewResilientStore(next Store, m *metrics.Metrics) *ResilientStore {
	return &ResilientStore{
		next: next,
		cb: circuitbreaker.NewCircuitBreaker(circuitbreaker.Settings{
			Name:             "object-storage",
			MaxRequests:      1,
			Interval:         time.Minute,
			Timeout:          30 * time.Second,
			FailureThreshold: 5,
			OnStateChange:    m.ObserveCircuit,
		}),
		metrics: m,
	}
}

func (r *ResilientStore) do(op string, fn func() error) error {
	timer := prometheus.NewTimer(r.metrics.StorageLatency.WithLabelValues(op))
	defer timer.ObserveDuration()

	var notFound bool
	err := r.cb.Execute(func() error {
		err := fn()
		if errors.Is(err, ErrObjectNotFound) {
			notFound = true
			return nil
		}
		return err
	})

	switch {
	case notFound:
		r.metrics.StorageOperations.WithLabelValues(op, "not_found").Inc()
		return ErrObjectNotFound
	case err != nil:
		r.metrics.StorageOperations.WithLabelValues(op, "error").Inc()
		return apperrors.Upstream("object storage is unavailable", err)
	}
	r.metrics.StorageOperations.WithLabelValues(op, "success").Inc()
	return nil
}

func (r *ResilientStore) Put(ctx context.Context, key, contentType string, body []byte) error {
	return r.do("put", func() error {
		return r.next.Put(ctx, key, contentType, body)
	})
}

func (r *ResilientStore) Delete(ctx context.Context, key string) error {
	return r.do("delete", func() error {
		return r.next.Delete(ctx, key)
	})
}

func (r *ResilientStore) SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	var url string
	err := r.do("presign", func() error {
		var err error
		url, err = r.next.SignedURL(ctx, key, ttl)
		return err
	})
	return url, err
}
