package queue

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/skillerhq/skiller/internal/config"
)

// SQSQueue implements TaskQueue on AWS SQS.
type SQSQueue struct {
	client            *sqs.Client
	queueURL          string
	waitSeconds       int32
	visibilitySeconds int32
	cfg               *config.QueueConfig
}

// NewSQSQueue creates an SQS-backed queue client.
// Parameters:
//   - cfg: queue configuration including URL, region, and credentials.
// Returns:
//   - *SQSQueue: initialized queue client.
//   - error: non-nil if the AWS configuration cannot be loaded.
func NewSQSQueue(cfg *config.QueueConfig) (*SQSQueue, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("queue url is required for the sqs driver")
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &SQSQueue{
		client:            sqs.NewFromConfig(awsCfg),
		queueURL:          cfg.URL,
		waitSeconds:       int32(cfg.WaitTime.Seconds()),
		visibilitySeconds: int32(cfg.VisibilityTimeout.Seconds()),
		cfg:               cfg,
	}, nil
}

// Enqueue submits the message body, bounded by the configured send timeout.
func (q *SQSQueue) Enqueue(ctx context.Context, body []byte) error {
	if q.cfg.SendTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, q.cfg.SendTimeout)
		defer cancel()
	}

	_, err := q.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(q.queueURL),
		MessageBody: aws.String(string(body)),
	})
	if err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

// Receive long-polls for up to max messages.
func (q *SQSQueue) Receive(ctx context.Context, max int) ([]Message, error) {
	if max > 10 {
		max = 10 // SQS receive cap
	}

	out, err := q.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:            aws.String(q.queueURL),
		MaxNumberOfMessages: int32(max),
		WaitTimeSeconds:     q.waitSeconds,
		VisibilityTimeout:   q.visibilitySeconds,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to receive messages: %w", err)
	}

	msgs := make([]Message, 0, len(out.Messages))
	for _, m := range out.Messages {
		msgs = append(msgs, fromSQSMessage(m))
	}
	return msgs, nil
}

// Ack deletes the delivered message from the queue.
func (q *SQSQueue) Ack(ctx context.Context, msg Message) error {
	_, err := q.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(q.queueURL),
		ReceiptHandle: aws.String(msg.Handle),
	})
	if err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}
	return nil
}

// Close is a no-op for SQS; the underlying HTTP client needs no teardown.
func (q *SQSQueue) Close() error {
	return nil
}

func fromSQSMessage(m types.Message) Message {
	msg := Message{}
	if m.MessageId != nil {
		msg.ID = *m.MessageId
	}
	if m.Body != nil {
		msg.Body = []byte(*m.Body)
	}
	if m.ReceiptHandle != nil {
		msg.Handle = *m.ReceiptHandle
	}
	return msg
}
