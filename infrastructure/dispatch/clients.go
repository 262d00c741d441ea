package dispatch

import (
	"context"
	"fmt"

	"cloud.google.com/go/pubsub"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/messaging/azservicebus"
)

// NewPubSubClient connects to Google Cloud Pub/Sub using application
// default credentials.
func NewPubSubClient(ctx context.Context, projectID string) (*pubsub.Client, error) {
	client, err := pubsub.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("connect pubsub: %w", err)
	}
	return client, nil
}

// NewServiceBusClient connects to an Azure Service Bus namespace using the
// default credential chain.
func NewServiceBusClient(namespace string) (*azservicebus.Client, error) {
	credential, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("azure credential: %w", err)
	}
	client, err := azservicebus.NewClient(namespace, credential, nil)
	if err != nil {
		return nil, fmt.Errorf("connect service bus: %w", err)
	}
	return client, nil
}
