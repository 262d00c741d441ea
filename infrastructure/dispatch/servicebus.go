package dispatch

import (
	"context"

	"github.com/Azure/azure-sdk-for-go/sdk/messaging/azservicebus"
	"nosbot/infrastructure/logger"
)

// ServiceBusDispatcher publishes index jobs to an Azure Service Bus queue.
// Used when the worker pool runs outside this process.
type ServiceBusDispatcher struct {
	client *azservicebus.Client
	queue  string
}

func NewServiceBusDispatcher(client *azservicebus.Client, queue string) *ServiceBusDispatcher {
	return &ServiceBusDispatcher{client: client, queue: queue}
}

func (d *ServiceBusDispatcher) DispatchIndexJob(ctx context.Context, job IndexJob) error {
	payload, err := encodeJob(job)
	if err != nil {
		return err
	}

	sender, err := d.client.NewSender(d.queue, nil)
	if err != nil {
		logger.GetLogger().
			WithField("error", err).
			Error("Error while making new sender service bus.")
		return err
	}
	defer func() {
		if err := sender.Close(context.Background()); err != nil {
			logger.GetLogger().
				WithField("error", err).
				Error("Error while closing sender.")
		}
	}()

	err = sender.SendMessage(ctx, &azservicebus.Message{Body: payload}, nil)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while sending index job.")
		return err
	}
	return nil
}

// ReceiveIndexJobs drains the queue until ctx is cancelled. Failed jobs are
// abandoned for redelivery.
func (d *ServiceBusDispatcher) ReceiveIndexJobs(ctx context.Context, handle func(context.Context, IndexJob) error) error {
	receiver, err := d.client.NewReceiverForQueue(d.queue, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err := receiver.Close(context.Background()); err != nil {
			logger.GetLogger().
				WithField("error", err).
				Error("Error while closing receiver.")
		}
	}()

	for {
		messages, err := receiver.ReceiveMessages(ctx, 1, nil)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		for _, message := range messages {
			job, err := decodeJob(message.Body)
			if err != nil {
				logger.GetLogger().WithField("error", err).Error("Discarding malformed index job")
				_ = receiver.CompleteMessage(ctx, message, nil)
				continue
			}

			if err := handle(ctx, job); err != nil {
				logger.GetLogger().
					WithField("channel_id", job.ChannelID).
					WithField("error", err).
					Error("Index job failed")
				_ = receiver.AbandonMessage(ctx, message, nil)
				continue
			}
			_ = receiver.CompleteMessage(ctx, message, nil)
		}
	}
}
