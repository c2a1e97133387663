package events

import (
	"context"
	"encoding/json"
	"fmt"

	"product-catalog/internal/model"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/rs/zerolog"
)

// SQSAPI is the subset of the SQS client used by Publisher.
type SQSAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// NewSQSClient builds an SQS client; endpoint overrides the AWS endpoint for LocalStack.
func NewSQSClient(ctx context.Context, region, endpoint string) (*sqs.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	if endpoint != "" {
		cfg.BaseEndpoint = aws.String(endpoint)
	}

	return sqs.NewFromConfig(cfg), nil
}

// Publisher sends product events to an SQS queue.
type Publisher struct {
	client   SQSAPI
	queueURL string
	logger   zerolog.Logger
}

// NewPublisher creates a Publisher for queueURL.
func NewPublisher(client SQSAPI, queueURL string, logger zerolog.Logger) *Publisher {
	return &Publisher{
		client:   client,
		queueURL: queueURL,
		logger:   logger.With().Str("component", "sqs-publisher").Logger(),
	}
}

// Publish sends event as a JSON message tagged with its type.
func (p *Publisher) Publish(ctx context.Context, event model.ProductEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	out, err := p.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(p.queueURL),
		MessageBody: aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"eventType": {
				DataType:    aws.String("String"),
				StringValue: aws.String(event.Type),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to send message to SQS: %w", err)
	}

	p.logger.Debug().
		Str("event_id", event.EventID.String()).
		Str("message_id", aws.ToString(out.MessageId)).
		Int("product_id", event.Product.ID).
		Msg("event published")

	return nil
}
