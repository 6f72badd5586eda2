// Partwise - Auto Parts Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/partwise

package eventprocessor

import (
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	natsgo "github.com/nats-io/nats.go"

	"github.com/tomtom215/partwise/internal/config"
)

// Transport is the publisher and subscriber pair the ingest pipeline runs on.
type Transport struct {
	Publisher  message.Publisher
	Subscriber message.Subscriber
	// Kind is "nats" or "gochannel".
	Kind string
}

// Close closes the subscriber, then the publisher. The in-process channel is
// a single value and is closed once.
func (t *Transport) Close() error {
	subErr := t.Subscriber.Close()
	if any(t.Publisher) == any(t.Subscriber) {
		return subErr
	}
	return errors.Join(subErr, t.Publisher.Close())
}

// NewTransport connects to JetStream when cfg.NATSURL is set and falls back to
// an in-process gochannel otherwise.
func NewTransport(cfg *config.IngestConfig, logger watermill.LoggerAdapter) (*Transport, error) {
	if logger == nil {
		logger = watermill.NopLogger{}
	}
	if cfg.NATSURL == "" {
		return NewInProcessTransport(logger), nil
	}

	natsOpts := []natsgo.Option{
		natsgo.Name("partwise-ingest"),
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(-1),
		natsgo.ReconnectWait(2 * time.Second),
		natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
			if err != nil {
				logger.Error("NATS disconnected", err, nil)
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			logger.Info("NATS reconnected", watermill.LogFields{"url": nc.ConnectedUrl()})
		}),
	}

	pub, err := wmNats.NewPublisher(wmNats.PublisherConfig{
		URL:         cfg.NATSURL,
		NatsOptions: natsOpts,
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			AutoProvision: true,
			TrackMsgId:    true,
			PublishOptions: []natsgo.PubOpt{
				natsgo.RetryAttempts(3),
				natsgo.RetryWait(100 * time.Millisecond),
			},
		},
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("create nats publisher: %w", err)
	}

	sub, err := wmNats.NewSubscriber(wmNats.SubscriberConfig{
		URL:              cfg.NATSURL,
		QueueGroupPrefix: cfg.QueueGroup,
		SubscribersCount: cfg.SubscribersCount,
		AckWaitTimeout:   cfg.AckWait,
		CloseTimeout:     cfg.CloseTimeout,
		NatsOptions:      natsOpts,
		Unmarshaler:      &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			AutoProvision: true,
			AckAsync:      false,
			DurablePrefix: cfg.DurableName,
			SubscribeOptions: []natsgo.SubOpt{
				natsgo.AckWait(cfg.AckWait),
				natsgo.MaxAckPending(256),
				natsgo.DeliverAll(),
			},
		},
	}, logger)
	if err != nil {
		_ = pub.Close() //nolint:errcheck // best effort cleanup on construction failure
		return nil, fmt.Errorf("create nats subscriber: %w", err)
	}

	return &Transport{Publisher: pub, Subscriber: sub, Kind: "nats"}, nil
}

// NewInProcessTransport returns a gochannel pub/sub shared by publisher and
// subscriber. Messages are lost on restart.
func NewInProcessTransport(logger watermill.LoggerAdapter) *Transport {
	if logger == nil {
		logger = watermill.NopLogger{}
	}
	ch := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer:            256,
		BlockPublishUntilSubscriberAck: false,
	}, logger)
	return &Transport{Publisher: ch, Subscriber: ch, Kind: "gochannel"}
}
