// internal/workers/notify/handler.go
// Package notify fans a summary-created signal out to recipients. It runs
// decoupled from generation: a delivery failure here can never fail or
// retry the summary job that produced the signal.
package notify

import (
	"context"
	"encoding/json"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	"survey-workers/internal/common/errors"
	"survey-workers/internal/common/logger"
	"survey-workers/internal/common/metrics"
	"survey-workers/internal/models"
)

// EmailSender sends one email. Satisfied by the SES client wrapper.
type EmailSender interface {
	SendEmail(ctx context.Context, input *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// TopicPublisher broadcasts to an SNS topic.
type TopicPublisher interface {
	Publish(ctx context.Context, input *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SummaryReader loads the summary and survey a signal refers to.
type SummaryReader interface {
	GetSummaryByID(ctx context.Context, id int64) (*models.SurveySummary, error)
	GetSurvey(ctx context.Context, id int64) (*models.Survey, error)
}

type Config struct {
	FromAddress string
	TopicARN    string // empty disables the topic broadcast
	BaseURL     string
}

type Handler struct {
	cfg      Config
	reader   SummaryReader
	resolver RecipientResolver
	email    EmailSender
	topic    TopicPublisher
	logger   logger.Logger
}

func NewHandler(cfg Config, reader SummaryReader, resolver RecipientResolver, email EmailSender, topic TopicPublisher, log logger.Logger) *Handler {
	return &Handler{
		cfg:      cfg,
		reader:   reader,
		resolver: resolver,
		email:    email,
		topic:    topic,
		logger:   log.WithFields(map[string]interface{}{"worker": "notify"}),
	}
}

// HandleSummaryCreated delivers one signal: an email per resolved recipient
// plus an optional topic broadcast. One recipient's failure never blocks
// the others; failures are logged and counted, not returned.
func (h *Handler) HandleSummaryCreated(ctx context.Context, event models.SummaryCreated) {
	log := h.logger.WithFields(map[string]interface{}{
		"summaryId": event.SummaryID,
		"surveyId":  event.SurveyID,
	})

	summary, err := h.reader.GetSummaryByID(ctx, event.SummaryID)
	if err != nil {
		log.Error("failed to load summary for notification", map[string]interface{}{"error": err.Error()})
		return
	}
	if summary == nil {
		// The summary may have been re-upserted or removed since the
		// signal was published. Nothing to deliver.
		log.Warn("summary referenced by signal no longer exists", nil)
		return
	}

	survey, err := h.reader.GetSurvey(ctx, summary.SurveyID)
	if err != nil {
		log.Error("failed to load survey for notification", map[string]interface{}{"error": err.Error()})
		return
	}

	recipients, err := h.resolver.Resolve(ctx, *survey)
	if err != nil {
		log.Error("failed to resolve recipients", map[string]interface{}{"error": err.Error()})
		return
	}

	subject := buildSubject(*survey)
	sent := 0
	for _, recipient := range recipients {
		if err := h.sendEmail(ctx, subject, *survey, *summary, recipient); err != nil {
			metrics.NotificationsFailed.WithLabelValues("email").Inc()
			log.Error("failed to send notification email", map[string]interface{}{
				"recipient": recipient.Email,
				"error":     err.Error(),
			})
			continue
		}
		metrics.NotificationsSent.WithLabelValues("email").Inc()
		sent++
	}

	if h.cfg.TopicARN != "" && h.topic != nil {
		if err := h.broadcast(ctx, subject, *summary); err != nil {
			metrics.NotificationsFailed.WithLabelValues("sns").Inc()
			log.Error("failed to broadcast summary", map[string]interface{}{"error": err.Error()})
		} else {
			metrics.NotificationsSent.WithLabelValues("sns").Inc()
		}
	}

	log.Info("summary notifications delivered", map[string]interface{}{
		"recipients": len(recipients),
		"sent":       sent,
	})
}

func (h *Handler) sendEmail(ctx context.Context, subject string, survey models.Survey, summary models.SurveySummary, recipient models.User) error {
	input := &ses.SendEmailInput{
		Source: awssdk.String(h.cfg.FromAddress),
		Destination: &sestypes.Destination{
			ToAddresses: []string{recipient.Email},
		},
		Message: &sestypes.Message{
			Subject: &sestypes.Content{Data: awssdk.String(subject)},
			Body: &sestypes.Body{
				Text: &sestypes.Content{
					Data: awssdk.String(buildEmailBody(h.cfg.BaseURL, survey, summary, recipient)),
				},
			},
		},
	}

	if _, err := h.email.SendEmail(ctx, input); err != nil {
		return errors.NewNotificationSendFailedError("email", err)
	}
	return nil
}

func (h *Handler) broadcast(ctx context.Context, subject string, summary models.SurveySummary) error {
	payload, err := json.Marshal(summary)
	if err != nil {
		return errors.NewNotificationSendFailedError("sns", err)
	}

	input := &sns.PublishInput{
		TopicArn: awssdk.String(h.cfg.TopicARN),
		Subject:  awssdk.String(subject),
		Message:  awssdk.String(string(payload)),
	}

	if _, err := h.topic.Publish(ctx, input); err != nil {
		return errors.NewNotificationSendFailedError("sns", err)
	}
	return nil
}
