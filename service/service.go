package service

import "context"

// Service is a long running part of the node. Run blocks until ctx is cancelled or the
// service fails.
type Service interface {
	Run(ctx context.Context) error
}
