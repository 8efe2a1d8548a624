package corebound

import (
	"github.com/hedera-core/txcore/common"
	"github.com/hedera-core/txcore/core/round"
	"github.com/hedera-core/txcore/event"
)

// RoundOutcome is published to every RoundOutcome subscriber once per
// round, whether or not the round completed without error.
type RoundOutcome struct {
	ConsensusTime common.ConsensusTimestamp
	Trigger       Trigger
	Err           error
}

// ISSNotification is published whenever a round aborts on a fatal state
// error; subscribers use it to halt the node rather than let it sign over
// a possibly divergent state.
type ISSNotification struct {
	ConsensusTime common.ConsensusTimestamp
	Cause         error
}

// Notifier fans out round-lifecycle events to in-process subscribers
// (metrics exporters, admin APIs, the node's own health monitor) using the
// same Feed primitive the core's dependency stack uses elsewhere for
// one-to-many pub/sub.
type Notifier struct {
	roundFeed event.FeedOf[RoundOutcome]
	issFeed   event.FeedOf[ISSNotification]

	scope event.SubscriptionScope
}

// NewNotifier returns a ready-to-use Notifier; the zero value also works,
// this constructor exists only for symmetry with the rest of the package.
func NewNotifier() *Notifier {
	return &Notifier{}
}

// SubscribeRoundOutcomes delivers a RoundOutcome on ch after every round,
// including aborted ones. The subscription is tracked by the Notifier's
// scope and torn down by Close.
func (n *Notifier) SubscribeRoundOutcomes(ch chan<- RoundOutcome) event.Subscription {
	return n.scope.Track(n.roundFeed.Subscribe(ch))
}

// SubscribeISS delivers an ISSNotification whenever a round aborts with a
// fatal state error.
func (n *Notifier) SubscribeISS(ch chan<- ISSNotification) event.Subscription {
	return n.scope.Track(n.issFeed.Subscribe(ch))
}

// Close unsubscribes every tracked subscription.
func (n *Notifier) Close() {
	n.scope.Close()
}

func (n *Notifier) roundCompleted(outcome RoundOutcome) {
	n.roundFeed.Send(outcome)
	var iss *round.ErrISS
	if outcome.Err != nil && asISS(outcome.Err, &iss) {
		n.issFeed.Send(ISSNotification{ConsensusTime: outcome.ConsensusTime, Cause: iss.Cause})
	}
}

func asISS(err error, target **round.ErrISS) bool {
	iss, ok := err.(*round.ErrISS)
	if ok {
		*target = iss
	}
	return ok
}
