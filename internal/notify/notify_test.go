package notify

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ranjit-agency/site/internal/domain"
)

type fakeSES struct {
	inputs []*sesv2.SendEmailInput
	err    error
}

func (f *fakeSES) SendEmail(_ context.Context, in *sesv2.SendEmailInput, _ ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.inputs = append(f.inputs, in)
	return &sesv2.SendEmailOutput{MessageId: aws.String("msg-1")}, nil
}

func submission() domain.ContactSubmission {
	return domain.ContactSubmission{
		ID:        "abc-123",
		Name:      "Jane Doe",
		Email:     "jane@example.com",
		Subject:   "Project inquiry",
		Message:   "We would like to discuss a new website.",
		CreatedAt: time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC),
	}
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func TestRenderDefaults(t *testing.T) {
	tpl, err := ParseTemplates("", "")
	require.NoError(t, err)

	subject, body, err := tpl.Render(submission())
	require.NoError(t, err)
	assert.Equal(t, "New enquiry from Jane Doe: Project inquiry", subject)
	assert.Contains(t, body, "Email:   jane@example.com")
	assert.Contains(t, body, "Phone:   not given")
	assert.Contains(t, body, "We would like to discuss a new website.")
	assert.Contains(t, body, "Reference: abc-123")

	s := submission()
	phone := "+1 555 0100"
	s.Phone = &phone
	_, body, err = tpl.Render(s)
	require.NoError(t, err)
	assert.Contains(t, body, "Phone:   +1 555 0100")
}

func TestCustomTemplates(t *testing.T) {
	tpl, err := ParseTemplates("[site] {{ subject | upcase }}", "{{ name }} <{{ email }}>")
	require.NoError(t, err)
	subject, body, err := tpl.Render(submission())
	require.NoError(t, err)
	assert.Equal(t, "[site] PROJECT INQUIRY", subject)
	assert.Equal(t, "Jane Doe <jane@example.com>", body)
}

func TestParseTemplatesError(t *testing.T) {
	_, err := ParseTemplates("{% if %}", "")
	assert.Error(t, err)
}

func TestSESNotifier(t *testing.T) {
	tpl, err := ParseTemplates("", "")
	require.NoError(t, err)
	fake := &fakeSES{}
	n := NewSES(fake, "site@agency.example", []string{"hello@agency.example"}, tpl, discard())

	require.NoError(t, n.Handle(context.Background(), submission()))
	require.Len(t, fake.inputs, 1)
	in := fake.inputs[0]
	assert.Equal(t, "site@agency.example", aws.ToString(in.FromEmailAddress))
	assert.Equal(t, []string{"hello@agency.example"}, in.Destination.ToAddresses)
	assert.Equal(t, []string{"jane@example.com"}, in.ReplyToAddresses)
	assert.Equal(t, "New enquiry from Jane Doe: Project inquiry", aws.ToString(in.Content.Simple.Subject.Data))
	assert.Contains(t, aws.ToString(in.Content.Simple.Body.Text.Data), "Reference: abc-123")
}

func TestSESNotifierError(t *testing.T) {
	tpl, err := ParseTemplates("", "")
	require.NoError(t, err)
	n := NewSES(&fakeSES{err: errors.New("Throttling")}, "a@b.co", []string{"c@d.co"}, tpl, discard())
	err = n.Handle(context.Background(), submission())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Throttling")
}

func TestLogNotifier(t *testing.T) {
	var buf bytes.Buffer
	n := NewLogNotifier(slog.New(slog.NewJSONHandler(&buf, nil)))
	require.NoError(t, n.Handle(context.Background(), submission()))
	assert.Contains(t, buf.String(), `"id":"abc-123"`)
	assert.Contains(t, buf.String(), `"has_phone":false`)
}
