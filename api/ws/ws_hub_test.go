package ws

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	cachemocks "github.com/okulov/cipherpost/cache/mocks"
)

// Starts a hub with a mock redis subscription for bob's inbox and returns the
// captured delivery handler once the subscription exists.
func setupHubWatchingBob(t *testing.T, watchers ...*Client) (*Hub, func(message []byte), *cachemocks.MockCache) {
	mockCache := new(cachemocks.MockCache)

	var handler func(message []byte)
	subscribed := make(chan struct{})
	mockCache.On("Subscribe", mock.Anything, "inbox:bob", mock.Anything).
		Run(func(args mock.Arguments) {
			handler = args.Get(2).(func(message []byte))
			close(subscribed)
		}).Return(nil).Once()

	hub := NewHub(mockCache)
	go hub.Run()

	for _, watcher := range watchers {
		hub.OpenCh <- watcher
		hub.SubscribeCh <- subscription{client: watcher, username: "bob"}
	}

	select {
	case <-subscribed:
	case <-time.After(1 * time.Second):
		assert.FailNow(t, "redis subscription was never created")
	}
	return hub, handler, mockCache
}

func TestHub_FanOutReachesEveryWatcher(t *testing.T) {
	first := NewClient(nil, nil, "10.0.0.1:1111", nil)
	second := NewClient(nil, nil, "10.0.0.2:2222", nil)

	_, deliver, mockCache := setupHubWatchingBob(t, first, second)

	// Redis deliveries arrive on a pubsub goroutine, not the hub loop
	assert.Eventually(t, func() bool {
		deliver([]byte(`{"type":"new_message"}`))
		return len(first.Send) > 0 && len(second.Send) > 0
	}, 1*time.Second, 10*time.Millisecond)

	// One shared redis subscription per inbox, not one per watcher
	mockCache.AssertNumberOfCalls(t, "Subscribe", 1)
}

func TestHub_SlowClientDoesNotStallFanOut(t *testing.T) {
	slow := NewClient(nil, nil, "10.0.0.1:1111", nil)
	fast := NewClient(nil, nil, "10.0.0.2:2222", nil)

	for i := 0; i < cap(slow.Send); i++ {
		slow.Send <- []byte("backlog")
	}

	_, deliver, _ := setupHubWatchingBob(t, slow, fast)

	// Events for the full buffer are dropped while the other watcher keeps
	// receiving.
	assert.Eventually(t, func() bool {
		deliver([]byte(`{"type":"new_message"}`))
		select {
		case <-fast.Send:
			return true
		default:
			return false
		}
	}, 1*time.Second, 10*time.Millisecond)
	assert.Len(t, slow.Send, cap(slow.Send))
}

func TestHub_LastUnsubscribeTearsDownRedisSubscription(t *testing.T) {
	watcher := NewClient(nil, nil, "10.0.0.1:1111", nil)

	hub, _, mockCache := setupHubWatchingBob(t, watcher)

	subscribedAgain := make(chan struct{})
	mockCache.On("Subscribe", mock.Anything, "inbox:bob", mock.Anything).
		Run(func(args mock.Arguments) {
			close(subscribedAgain)
		}).Return(nil).Once()

	hub.UnsubscribeCh <- subscription{client: watcher, username: "bob"}

	// A fresh watcher after the teardown needs a fresh redis subscription
	hub.SubscribeCh <- subscription{client: watcher, username: "bob"}
	select {
	case <-subscribedAgain:
	case <-time.After(1 * time.Second):
		assert.FailNow(t, "redis subscription was not recreated")
	}
}
