// Copyright 2023 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

package event

import (
	"context"
	"sync"
)

// FeedOf implements one-to-many subscriptions where the carrier of events is
// a channel, generically typed over the event payload. Unlike Feed, no
// runtime type assertion is needed since the element type is fixed at
// compile time.
//
// The zero value is ready to use.
type FeedOf[T any] struct {
	mu   sync.Mutex
	subs []*feedOfSub[T]
}

type feedOfSub[T any] struct {
	feed      *FeedOf[T]
	channel   chan<- T
	closeOnce sync.Once
	closed    chan struct{}
	err       chan error
}

// Subscribe adds a channel to the feed. Future sends will be delivered on
// the channel until the subscription is canceled.
func (f *FeedOf[T]) Subscribe(channel chan<- T) Subscription {
	sub := &feedOfSub[T]{
		feed:    f,
		channel: channel,
		closed:  make(chan struct{}),
		err:     make(chan error, 1),
	}
	f.mu.Lock()
	f.subs = append(f.subs, sub)
	f.mu.Unlock()
	return sub
}

func (f *FeedOf[T]) remove(sub *feedOfSub[T]) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, s := range f.subs {
		if s == sub {
			f.subs = append(f.subs[:i], f.subs[i+1:]...)
			return
		}
	}
}

// Send delivers value to every subscribed channel, blocking until each has
// received it or been unsubscribed. It returns the number of channels the
// value was delivered to.
func (f *FeedOf[T]) Send(value T) int {
	nsent, _ := f.SendWithCtx(context.Background(), false, value)
	return nsent
}

// SendWithCtx delivers value to every subscribed channel. If dropSlow is
// true, a subscriber that has not received the value by the time ctx is
// done is unsubscribed and its channel closed, so it will not block future
// sends. It returns the number of channels the value was delivered to and
// the number of subscribers dropped this way.
func (f *FeedOf[T]) SendWithCtx(ctx context.Context, dropSlow bool, value T) (nsent, ndropped int) {
	f.mu.Lock()
	subs := make([]*feedOfSub[T], len(f.subs))
	copy(subs, f.subs)
	f.mu.Unlock()

	var wg sync.WaitGroup
	results := make([]bool, len(subs))
	dropped := make([]bool, len(subs))
	wg.Add(len(subs))
	for i, sub := range subs {
		go func(i int, sub *feedOfSub[T]) {
			defer wg.Done()
			select {
			case sub.channel <- value:
				results[i] = true
			case <-sub.closed:
			case <-ctx.Done():
				if dropSlow {
					sub.dropAndClose()
					dropped[i] = true
				}
			}
		}(i, sub)
	}
	wg.Wait()

	for i, ok := range results {
		if ok {
			nsent++
		}
		if dropped[i] {
			ndropped++
		}
	}
	return nsent, ndropped
}

func (sub *feedOfSub[T]) dropAndClose() {
	sub.closeOnce.Do(func() {
		sub.feed.remove(sub)
		close(sub.closed)
		close(sub.err)
		close(sub.channel)
	})
}

func (sub *feedOfSub[T]) Unsubscribe() {
	sub.closeOnce.Do(func() {
		sub.feed.remove(sub)
		close(sub.closed)
		close(sub.err)
	})
}

func (sub *feedOfSub[T]) Err() <-chan error {
	return sub.err
}
