package inquiries

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// Mailer notifies a vendor that a buyer has inquired about their listing.
type Mailer interface {
	SendNewInquiry(ctx context.Context, vendorEmail, listingTitle string, inquiry *Inquiry) error
}

type sesMailer struct {
	client *sesv2.Client
	sender string
}

func NewSESMailer(client *sesv2.Client, sender string) Mailer {
	return &sesMailer{client: client, sender: sender}
}

func (m *sesMailer) SendNewInquiry(ctx context.Context, vendorEmail, listingTitle string, inquiry *Inquiry) error {
	subject := fmt.Sprintf("New inquiry on %q", listingTitle)
	body := fmt.Sprintf(
		"%s is interested in your listing %q.\n\nMessage:\n%s\n\nContact: %s / %s\n",
		inquiry.BuyerName, listingTitle, inquiry.Message, inquiry.BuyerEmail, inquiry.BuyerPhone,
	)

	_, err := m.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(m.sender),
		Destination: &types.Destination{
			ToAddresses: []string{vendorEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(subject)},
				Body: &types.Body{
					Text: &types.Content{Data: aws.String(body)},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("sending inquiry mail to %s: %w", vendorEmail, err)
	}
	return nil
}

type nopMailer struct{}

// NewNopMailer is used when no sender address is configured.
func NewNopMailer() Mailer { return nopMailer{} }

func (nopMailer) SendNewInquiry(context.Context, string, string, *Inquiry) error { return nil }
