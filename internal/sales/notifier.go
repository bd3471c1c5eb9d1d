package sales

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
)

// PaymentNotifier publishes payment lifecycle events for downstream
// consumers (accounting, SMS gateways).
type PaymentNotifier interface {
	PaymentRecorded(ctx context.Context, sale *Sale, payment *Payment) error
	SaleOverdue(ctx context.Context, sale *Sale, overdueCount int) error
}

type snsNotifier struct {
	client   *sns.Client
	topicARN string
}

// NewSNSNotifier publishes events to an SNS topic as JSON messages with
// an event_type message attribute for subscription filtering.
func NewSNSNotifier(client *sns.Client, topicARN string) PaymentNotifier {
	return &snsNotifier{client: client, topicARN: topicARN}
}

func (n *snsNotifier) PaymentRecorded(ctx context.Context, sale *Sale, payment *Payment) error {
	return n.publish(ctx, "payment.recorded", map[string]interface{}{
		"sale_id":     sale.ID,
		"listing_id":  sale.ListingID,
		"buyer_name":  sale.BuyerName,
		"amount":      payment.Amount,
		"currency":    sale.Currency,
		"reference":   payment.Reference,
		"received_at": payment.ReceivedAt,
		"sale_status": sale.Status,
	})
}

func (n *snsNotifier) SaleOverdue(ctx context.Context, sale *Sale, overdueCount int) error {
	return n.publish(ctx, "sale.overdue", map[string]interface{}{
		"sale_id":       sale.ID,
		"listing_id":    sale.ListingID,
		"buyer_name":    sale.BuyerName,
		"buyer_phone":   sale.BuyerPhone,
		"overdue_count": overdueCount,
	})
}

func (n *snsNotifier) publish(ctx context.Context, eventType string, payload map[string]interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", eventType, err)
	}
	_, err = n.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(n.topicARN),
		Message:  aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"event_type": {
				DataType:    aws.String("String"),
				StringValue: aws.String(eventType),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("publish %s event: %w", eventType, err)
	}
	return nil
}

type nopNotifier struct{}

// NewNopNotifier returns a notifier that drops all events, for
// development without an SNS topic.
func NewNopNotifier() PaymentNotifier { return nopNotifier{} }

func (nopNotifier) PaymentRecorded(context.Context, *Sale, *Payment) error { return nil }
func (nopNotifier) SaleOverdue(context.Context, *Sale, int) error          { return nil }
