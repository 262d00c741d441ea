package dispatch

import (
	"context"

	"cloud.google.com/go/pubsub"
	"nosbot/infrastructure/logger"
)

// PubSubDispatcher publishes index jobs to a Google Cloud Pub/Sub topic and
// receives them on a subscription in the same process.
type PubSubDispatcher struct {
	client       *pubsub.Client
	topicName    string
	subscription string
}

func NewPubSubDispatcher(client *pubsub.Client, topicName, subscription string) *PubSubDispatcher {
	return &PubSubDispatcher{
		client:       client,
		topicName:    topicName,
		subscription: subscription,
	}
}

func (d *PubSubDispatcher) DispatchIndexJob(ctx context.Context, job IndexJob) error {
	payload, err := encodeJob(job)
	if err != nil {
		return err
	}

	topic := d.client.Topic(d.topicName)

	// Create the topic if it doesn't exist.
	exists, err := topic.Exists(ctx)
	if err != nil {
		return err
	}
	if !exists {
		logger.GetLogger().WithField("topic", d.topicName).Info("Topic doesn't exist - creating it")
		if _, err := d.client.CreateTopic(ctx, d.topicName); err != nil {
			return err
		}
	}

	serverID, err := topic.Publish(ctx, &pubsub.Message{Data: payload}).Get(ctx)
	if err != nil {
		return err
	}

	logger.GetLogger().
		WithField("server ID", serverID).
		WithField("channel_id", job.ChannelID).
		Info("Index job published")
	return nil
}

// ReceiveIndexJobs blocks consuming the subscription until ctx is cancelled.
// Jobs that fail are nacked so Pub/Sub redelivers them.
func (d *PubSubDispatcher) ReceiveIndexJobs(ctx context.Context, handle func(context.Context, IndexJob) error) error {
	sub := d.client.Subscription(d.subscription)
	logger.GetLogger().WithField("subID", d.subscription).Info("Index job subscriber starting...")

	return sub.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		job, err := decodeJob(msg.Data)
		if err != nil {
			logger.GetLogger().WithField("error", err).Error("Discarding malformed index job")
			msg.Ack()
			return
		}

		if err := handle(ctx, job); err != nil {
			logger.GetLogger().
				WithField("channel_id", job.ChannelID).
				WithField("error", err).
				Error("Index job failed")
			msg.Nack()
			return
		}
		msg.Ack()
	})
}
