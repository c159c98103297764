package service

import (
	"context"

	"github.com/exportguard/exportguardd/internal/core/domain"
)

// Endpoint pairs a device client with the source tag it reports as.
type Endpoint[C any] struct {
	Tag    domain.Source
	Client C
}

// PrimaryBackup builds the ordered endpoint list for a primary and an
// optional backup client. A nil-like backup is expressed by passing
// hasBackup=false.
func PrimaryBackup[C any](primary C, backup C, hasBackup bool) []Endpoint[C] {
	endpoints := []Endpoint[C]{{Tag: domain.SourcePrimary, Client: primary}}
	if hasBackup {
		endpoints = append(endpoints, Endpoint[C]{Tag: domain.SourceBackup, Client: backup})
	}
	return endpoints
}

// Failover calls op against each endpoint in order and returns the first
// result together with the source that produced it. Only connectivity-class
// failures advance to the next endpoint; when every endpoint fails the
// combined error is returned as AllSourcesUnreachableError.
//
// Each invocation walks the full order independently: a read that fell back
// to the backup does not make a later write start there.
func Failover[C, R any](ctx context.Context, op string, endpoints []Endpoint[C], call func(context.Context, C) (R, error)) (R, domain.Source, error) {
	var zero R
	var errs []error
	for _, endpoint := range endpoints {
		result, err := call(ctx, endpoint.Client)
		if err == nil {
			return result, endpoint.Tag, nil
		}
		if !domain.IsDeviceUnreachable(err) {
			return zero, endpoint.Tag, err
		}
		errs = append(errs, err)
	}
	return zero, domain.SourceNone, &domain.AllSourcesUnreachableError{Op: op, Errs: errs}
}
