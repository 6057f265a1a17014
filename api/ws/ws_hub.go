package ws

import (
	"context"
	"log"

	"github.com/okulov/cipherpost/cache"
)

type subscription struct {
	client   *Client
	username string
}

type inboxEvent struct {
	username string
	payload  []byte
}

// Hub maintains the set of active clients and fans inbox events out to the
// connections watching each inbox. A redis subscription for an inbox exists
// only while at least one local client watches it. Redis deliveries arrive on
// pubsub goroutines and are forwarded through BroadcastCh so that only Run
// touches the client maps.
type Hub struct {
	inboxCache              cache.InboxCache
	OpenCh                  chan *Client
	CloseCh                 chan *Client
	SubscribeCh             chan subscription
	UnsubscribeCh           chan subscription
	BroadcastCh             chan inboxEvent
	addrToClients           map[string]map[*Client]struct{}
	inboxToClients          map[string]map[*Client]struct{}
	inboxToSubscriberCancel map[string]context.CancelFunc
}

func NewHub(inboxCache cache.InboxCache) *Hub {
	return &Hub{
		inboxCache:              inboxCache,
		OpenCh:                  make(chan *Client, 256),
		CloseCh:                 make(chan *Client, 256),
		SubscribeCh:             make(chan subscription, 1024),
		UnsubscribeCh:           make(chan subscription, 1024),
		BroadcastCh:             make(chan inboxEvent, 1024),
		addrToClients:           make(map[string]map[*Client]struct{}),
		inboxToClients:          make(map[string]map[*Client]struct{}),
		inboxToSubscriberCancel: make(map[string]context.CancelFunc),
	}
}

const (
	maxConnectionsPerAddr         = 3
	maxSubscriptionsPerConnection = 16
)

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.OpenCh:
			if _, ok := h.addrToClients[client.remoteAddr]; !ok {
				h.addrToClients[client.remoteAddr] = make(map[*Client]struct{})
			}

			if len(h.addrToClients[client.remoteAddr]) >= maxConnectionsPerAddr {
				log.Printf("Client %s reached max connections (%d)", client.remoteAddr, maxConnectionsPerAddr)
				close(client.Send)
				continue
			}

			h.addrToClients[client.remoteAddr][client] = struct{}{}

		case client := <-h.CloseCh:
			for inbox := range client.subscribedInboxes {
				delete(h.inboxToClients[inbox], client)
				if len(h.inboxToClients[inbox]) == 0 {
					if cancel, ok := h.inboxToSubscriberCancel[inbox]; ok {
						cancel()
						delete(h.inboxToSubscriberCancel, inbox)
					}
					delete(h.inboxToClients, inbox)
				}
			}
			delete(h.addrToClients[client.remoteAddr], client)
			if len(h.addrToClients[client.remoteAddr]) == 0 {
				delete(h.addrToClients, client.remoteAddr)
			}

		case sub := <-h.SubscribeCh:
			if len(sub.client.subscribedInboxes) >= maxSubscriptionsPerConnection {
				log.Printf("Connection from %s reached max subscriptions (%d)", sub.client.remoteAddr, maxSubscriptionsPerConnection)
				continue
			}
			if h.inboxToClients[sub.username] == nil {
				ctx, cancel := context.WithCancel(context.Background())
				username := sub.username
				channel := "inbox:" + username

				err := h.inboxCache.Subscribe(ctx, channel, func(messageBytes []byte) {
					h.BroadcastCh <- inboxEvent{username: username, payload: messageBytes}
				})
				if err != nil {
					log.Printf("Failed to create redis sub for channel %s: %v", channel, err)
					cancel()
					continue
				}

				h.inboxToClients[sub.username] = make(map[*Client]struct{})
				h.inboxToSubscriberCancel[sub.username] = cancel
			}
			h.inboxToClients[sub.username][sub.client] = struct{}{}
			sub.client.subscribedInboxes[sub.username] = struct{}{}

		case event := <-h.BroadcastCh:
			for client := range h.inboxToClients[event.username] {
				select {
				case client.Send <- event.payload:
				default:
					// A full send buffer must not stall the other watchers
					log.Printf("Dropping inbox event for slow client %s", client.remoteAddr)
				}
			}

		case unsub := <-h.UnsubscribeCh:
			delete(h.inboxToClients[unsub.username], unsub.client)
			delete(unsub.client.subscribedInboxes, unsub.username)
			if len(h.inboxToClients[unsub.username]) == 0 {
				if cancel, ok := h.inboxToSubscriberCancel[unsub.username]; ok {
					cancel()
					delete(h.inboxToSubscriberCancel, unsub.username)
				}
				delete(h.inboxToClients, unsub.username)
			}
		}
	}
}
