package firebase

import (
	"context"
	"log"

	"firebase.google.com/go/v4/messaging"
)

type FCMClient struct {
	client *messaging.Client
}

func NewFCMClient(client *messaging.Client) *FCMClient {
	return &FCMClient{
		client: client,
	}
}

// SendToTokens pushes the same notification to every registered device
// token. Individual token failures are logged and skipped so one stale
// token never blocks the rest.
func (f *FCMClient) SendToTokens(ctx context.Context, tokens []string, title, body string, data map[string]string) error {
	if len(tokens) == 0 {
		return nil
	}

	message := &messaging.MulticastMessage{
		Tokens: tokens,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
	}

	response, err := f.client.SendEachForMulticast(ctx, message)
	if err != nil {
		log.Printf("FCM multicast error: %v", err)
		return err
	}

	if response.FailureCount > 0 {
		for i, result := range response.Responses {
			if result.Error != nil {
				log.Printf("FCM send failed for token %d: %v", i, result.Error)
			}
		}
	}

	return nil
}
