// Package relay implements the streaming core of greetd: a process-wide
// Broadcaster, the per-connection StreamRelay that acknowledges, persists and
// publishes inbound messages, the SubscriptionRelay that feeds broadcasts to
// a live subscriber, and the classifier that separates benign disconnects
// from transport errors.
//
// Example:
//
//	hub := relay.NewBroadcaster(relay.WithSubscriberBuffer(16))
//	sr := relay.NewStreamRelay(store, hub, relay.StreamOptions{Reply: greeter.Greeting})
//	_ = sr.Run(inbound, sink)   // blocks until the inbound side ends
//
//	feed := relay.NewSubscriptionRelay(hub, relay.FeedOptions{})
//	_ = feed.Run(sink)          // blocks until the peer goes away
package relay
