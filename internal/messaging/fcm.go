package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"

	"github.com/Hasnain4700/salah-tracker-app-sub000/internal/config"
)

// FCM sends push notifications via Firebase Cloud Messaging. The Firebase
// app is initialized exactly once, in NewFCM at process start; there is no
// lazy re-initialization path.
type FCM struct {
	client *messaging.Client
}

// NewFCM builds the service-account credentials from config and creates the
// messaging client. Returns an error when the service account is incomplete.
func NewFCM(ctx context.Context, cfg *config.Config) (*FCM, error) {
	if !cfg.MessagingConfigured() {
		return nil, fmt.Errorf("firebase service account is not configured")
	}

	cred, err := json.Marshal(map[string]string{
		"type":         "service_account",
		"project_id":   cfg.FCMProjectID,
		"client_email": cfg.FCMClientEmail,
		"private_key":  cfg.FCMPrivateKey,
		"token_uri":    "https://oauth2.googleapis.com/token",
	})
	if err != nil {
		return nil, fmt.Errorf("encode credentials: %w", err)
	}

	app, err := firebase.NewApp(ctx,
		&firebase.Config{ProjectID: cfg.FCMProjectID},
		option.WithCredentialsJSON(cred))
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("init messaging client: %w", err)
	}
	return &FCM{client: client}, nil
}

// Send delivers one message to one device token.
func (f *FCM) Send(ctx context.Context, token, title, body string, opts Options) (string, error) {
	msg := buildMessage(title, body, opts)
	msg.Token = token

	id, err := f.client.Send(ctx, msg)
	if err != nil {
		return "", &DeliveryError{Target: token, Err: err}
	}
	return id, nil
}

// SendToTopic delivers one message to every device subscribed to a topic.
func (f *FCM) SendToTopic(ctx context.Context, topic, title, body string) (string, error) {
	msg := buildMessage(title, body, Options{})
	msg.Topic = topic

	id, err := f.client.Send(ctx, msg)
	if err != nil {
		return "", &DeliveryError{Target: "topic:" + topic, Err: err}
	}
	return id, nil
}

func buildMessage(title, body string, opts Options) *messaging.Message {
	msg := &messaging.Message{
		Notification: &messaging.Notification{Title: title, Body: body},
	}
	if opts.Sound != "" || opts.ChannelID != "" || opts.Icon != "" {
		msg.Android = &messaging.AndroidConfig{
			Notification: &messaging.AndroidNotification{
				Sound:     opts.Sound,
				ChannelID: opts.ChannelID,
				Icon:      opts.Icon,
			},
		}
		if opts.Sound != "" {
			msg.APNS = &messaging.APNSConfig{
				Payload: &messaging.APNSPayload{
					Aps: &messaging.Aps{Sound: opts.Sound},
				},
			}
		}
	}
	if opts.Link != "" {
		msg.Webpush = &messaging.WebpushConfig{
			FCMOptions: &messaging.WebpushFCMOptions{Link: opts.Link},
		}
	}
	return msg
}
