package receipts

import (
	"context"

	"github.com/Lumerin-protocol/crowdsale/internal/interfaces"
	"github.com/Lumerin-protocol/crowdsale/internal/lib"
	"github.com/Lumerin-protocol/crowdsale/internal/resources/sale/crowdsale"
	"github.com/ethereum/go-ethereum/event"
)

const recorderBufferSize = 64

type EventSource interface {
	SubscribeEvents(ch chan<- crowdsale.Event) event.Subscription
}

var _ interfaces.Runnable = (*Recorder)(nil)

// Recorder appends every event of the source to the store until its context is cancelled
type Recorder struct {
	source EventSource
	store  Store
	log    interfaces.ILogger
}

func NewRecorder(source EventSource, store Store, log interfaces.ILogger) *Recorder {
	return &Recorder{
		source: source,
		store:  store,
		log:    log,
	}
}

func (r *Recorder) Run(ctx context.Context) error {
	events := make(chan crowdsale.Event, recorderBufferSize)
	sub := r.source.SubscribeEvents(events)
	defer sub.Unsubscribe()

	r.log.Info("receipt recorder started")
	defer r.log.Info("receipt recorder stopped")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-sub.Err():
			return err
		case e := <-events:
			receipt, err := r.store.Append(ctx, FromEvent(e))
			if err != nil {
				// the event is already committed, a failed append is logged and skipped
				r.log.Errorf("cannot store receipt for %s event %s: %s", e.Kind, e.ID, err)
				continue
			}
			r.log.Debugf("receipt #%d stored: %s %s", receipt.Seq, receipt.Kind, lib.AddrShort(receipt.Account.Hex()))
		}
	}
}
