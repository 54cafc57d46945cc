package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"github.com/ranjit-agency/site/internal/domain"
)

// SESAPI is the subset of the SES v2 client the notifier calls.
type SESAPI interface {
	SendEmail(ctx context.Context, in *sesv2.SendEmailInput, opts ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SESOptions configures NewSESNotifier.
type SESOptions struct {
	AccessKey string
	SecretKey string
	Region    string
	From      string
	To        []string
}

// SESNotifier emails each submission to the agency inbox. Reply-To is set
// to the submitter so staff can answer directly.
type SESNotifier struct {
	client    SESAPI
	from      string
	to        []string
	templates *Templates
	log       *slog.Logger
}

// NewSESNotifier builds an SES client. Static credentials are used when
// given, otherwise the default AWS chain (env, profile, task role).
func NewSESNotifier(ctx context.Context, o SESOptions, t *Templates, log *slog.Logger) (*SESNotifier, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(o.Region)}
	if o.AccessKey != "" && o.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(o.AccessKey, o.SecretKey, "")))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	return NewSES(sesv2.NewFromConfig(cfg), o.From, o.To, t, log), nil
}

// NewSES wraps an existing client.
func NewSES(client SESAPI, from string, to []string, t *Templates, log *slog.Logger) *SESNotifier {
	return &SESNotifier{client: client, from: from, to: to, templates: t, log: log}
}

func (n *SESNotifier) Name() string { return "ses-notify" }

func (n *SESNotifier) Handle(ctx context.Context, s domain.ContactSubmission) error {
	subject, body, err := n.templates.Render(s)
	if err != nil {
		return err
	}
	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(n.from),
		Destination:      &types.Destination{ToAddresses: n.to},
		ReplyToAddresses: []string{s.Email},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(subject), Charset: aws.String("UTF-8")},
				Body: &types.Body{
					Text: &types.Content{Data: aws.String(body), Charset: aws.String("UTF-8")},
				},
			},
		},
		EmailTags: []types.MessageTag{
			{Name: aws.String("type"), Value: aws.String("contact")},
		},
	}
	out, err := n.client.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("ses send: %w", err)
	}
	n.log.InfoContext(ctx, "contact notification sent",
		"id", s.ID, "message_id", aws.ToString(out.MessageId))
	return nil
}
