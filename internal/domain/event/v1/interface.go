package eventv1

import "context"

// Publisher delivers business events to the downstream event bus.
//
//go:generate mockgen -source interface.go -destination=mock/interface_mock.go -package=eventv1_mock
type Publisher interface {
	PublishEvents(ctx context.Context, events []Event) error
}
