// internal/workers/notify/handler_test.go
package notify

import (
	"context"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"survey-workers/internal/common/errors"
	"survey-workers/internal/common/logger"
	"survey-workers/internal/models"
)

type fakeReader struct {
	summary *models.SurveySummary
	survey  *models.Survey
}

func (f *fakeReader) GetSummaryByID(context.Context, int64) (*models.SurveySummary, error) {
	return f.summary, nil
}

func (f *fakeReader) GetSurvey(context.Context, int64) (*models.Survey, error) {
	if f.survey == nil {
		return nil, errors.NewSurveyNotFoundError(0)
	}
	return f.survey, nil
}

type fakeResolver struct {
	users []models.User
	err   error
}

func (f *fakeResolver) Resolve(context.Context, models.Survey) ([]models.User, error) {
	return f.users, f.err
}

type fakeEmailSender struct {
	inputs  []*ses.SendEmailInput
	failFor map[string]bool
}

func (f *fakeEmailSender) SendEmail(_ context.Context, input *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	if len(input.Destination.ToAddresses) == 1 && f.failFor[input.Destination.ToAddresses[0]] {
		return nil, fmt.Errorf("mailbox unavailable")
	}
	f.inputs = append(f.inputs, input)
	return &ses.SendEmailOutput{}, nil
}

type fakeTopicPublisher struct {
	inputs []*sns.PublishInput
	err    error
}

func (f *fakeTopicPublisher) Publish(_ context.Context, input *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.inputs = append(f.inputs, input)
	return &sns.PublishOutput{}, nil
}

func testFixtures() (*fakeReader, models.SummaryCreated) {
	survey := &models.Survey{ID: 42, CompanyID: 1, Title: "Q3 Customer Satisfaction", Status: models.SurveyStatusCompleted}
	summary := &models.SurveySummary{
		ID:          501,
		SurveyID:    42,
		SummaryText: "Customers are mostly satisfied.",
		Sentiment:   models.SentimentPositive,
		Topics:      []string{"support", "pricing"},
	}
	return &fakeReader{summary: summary, survey: survey},
		models.SummaryCreated{SummaryID: 501, SurveyID: 42}
}

func testConfig() Config {
	return Config{FromAddress: "noreply@example.com", BaseURL: "https://app.example.com"}
}

func TestHandleSummaryCreatedSendsToAllRecipients(t *testing.T) {
	reader, event := testFixtures()
	resolver := &fakeResolver{users: []models.User{
		{ID: 1, Name: "Alice", Email: "alice@example.com"},
		{ID: 2, Name: "Bob", Email: "bob@example.com"},
	}}
	email := &fakeEmailSender{}

	handler := NewHandler(testConfig(), reader, resolver, email, nil, logger.NewTestLogger(t))
	handler.HandleSummaryCreated(context.Background(), event)

	require.Len(t, email.inputs, 2)
	assert.Equal(t, "noreply@example.com", *email.inputs[0].Source)
	assert.Equal(t, []string{"alice@example.com"}, email.inputs[0].Destination.ToAddresses)
	assert.Equal(t, []string{"bob@example.com"}, email.inputs[1].Destination.ToAddresses)
	assert.Equal(t, "New Survey Summary Available: Q3 Customer Satisfaction", *email.inputs[0].Message.Subject.Data)

	body := *email.inputs[0].Message.Body.Text.Data
	assert.Contains(t, body, "Hello Alice,")
	assert.Contains(t, body, "Overall Sentiment: Positive")
	assert.Contains(t, body, "Key Topics: support, pricing")
	assert.Contains(t, body, "Customers are mostly satisfied.")
	assert.Contains(t, body, "https://app.example.com/surveys/42")
}

func TestHandleSummaryCreatedNoTopics(t *testing.T) {
	reader, event := testFixtures()
	reader.summary.Topics = nil
	resolver := &fakeResolver{users: []models.User{{ID: 1, Name: "Alice", Email: "alice@example.com"}}}
	email := &fakeEmailSender{}

	handler := NewHandler(testConfig(), reader, resolver, email, nil, logger.NewTestLogger(t))
	handler.HandleSummaryCreated(context.Background(), event)

	require.Len(t, email.inputs, 1)
	assert.Contains(t, *email.inputs[0].Message.Body.Text.Data, "Key Topics: No topics identified")
}

func TestHandleSummaryCreatedRecipientFailureIsolated(t *testing.T) {
	reader, event := testFixtures()
	resolver := &fakeResolver{users: []models.User{
		{ID: 1, Name: "Alice", Email: "alice@example.com"},
		{ID: 2, Name: "Bob", Email: "bob@example.com"},
		{ID: 3, Name: "Cleo", Email: "cleo@example.com"},
	}}
	email := &fakeEmailSender{failFor: map[string]bool{"bob@example.com": true}}

	handler := NewHandler(testConfig(), reader, resolver, email, nil, logger.NewTestLogger(t))
	handler.HandleSummaryCreated(context.Background(), event)

	require.Len(t, email.inputs, 2)
	assert.Equal(t, []string{"alice@example.com"}, email.inputs[0].Destination.ToAddresses)
	assert.Equal(t, []string{"cleo@example.com"}, email.inputs[1].Destination.ToAddresses)
}

func TestHandleSummaryCreatedMissingSummary(t *testing.T) {
	reader := &fakeReader{summary: nil}
	email := &fakeEmailSender{}

	handler := NewHandler(testConfig(), reader, &fakeResolver{}, email, nil, logger.NewTestLogger(t))
	handler.HandleSummaryCreated(context.Background(), models.SummaryCreated{SummaryID: 999, SurveyID: 42})

	assert.Empty(t, email.inputs)
}

func TestHandleSummaryCreatedTopicBroadcast(t *testing.T) {
	reader, event := testFixtures()
	topic := &fakeTopicPublisher{}
	cfg := testConfig()
	cfg.TopicARN = "arn:aws:sns:us-east-1:123456789:summaries"

	handler := NewHandler(cfg, reader, &fakeResolver{}, &fakeEmailSender{}, topic, logger.NewTestLogger(t))
	handler.HandleSummaryCreated(context.Background(), event)

	require.Len(t, topic.inputs, 1)
	assert.Equal(t, cfg.TopicARN, *topic.inputs[0].TopicArn)
	assert.Contains(t, *topic.inputs[0].Message, "Customers are mostly satisfied.")
}

func TestHandleSummaryCreatedNoTopicConfigured(t *testing.T) {
	reader, event := testFixtures()
	topic := &fakeTopicPublisher{}

	handler := NewHandler(testConfig(), reader, &fakeResolver{}, &fakeEmailSender{}, topic, logger.NewTestLogger(t))
	handler.HandleSummaryCreated(context.Background(), event)

	assert.Empty(t, topic.inputs)
}

func TestAllUsersResolver(t *testing.T) {
	lister := &fakeUserLister{users: []models.User{{ID: 1, Name: "Alice", Email: "alice@example.com"}}}
	resolver := NewAllUsersResolver(lister)

	users, err := resolver.Resolve(context.Background(), models.Survey{ID: 42})
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

type fakeUserLister struct {
	users []models.User
}

func (f *fakeUserLister) ListUsers(context.Context) ([]models.User, error) {
	return f.users, nil
}
