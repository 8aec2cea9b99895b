package notifications

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/felixgeelhaar/gatherly/pkg/observability"
)

// SESConfig configures the SES notifier. Empty keys fall back to the default
// AWS credential chain.
type SESConfig struct {
	Region      string
	AccessKeyID string
	SecretKey   string
	From        string
	DisplayZone *time.Location
	SendTimeout time.Duration
}

type emailSender interface {
	SendEmail(ctx context.Context, in *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SESNotifier sends HTML emails through Amazon SES.
type SESNotifier struct {
	client  emailSender
	from    string
	render  renderer
	timeout time.Duration
	logger  *slog.Logger
	metrics observability.Metrics
}

// NewSESNotifier builds an SES client from cfg.
func NewSESNotifier(ctx context.Context, cfg SESConfig, logger *slog.Logger, metrics observability.Metrics) (*SESNotifier, error) {
	if cfg.From == "" {
		return nil, errors.New("ses notifier: sender address is required")
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return newSESNotifier(sesv2.NewFromConfig(awsCfg), cfg, logger, metrics), nil
}

func newSESNotifier(client emailSender, cfg SESConfig, logger *slog.Logger, metrics observability.Metrics) *SESNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	loc := cfg.DisplayZone
	if loc == nil {
		loc = time.UTC
	}
	timeout := cfg.SendTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &SESNotifier{
		client:  client,
		from:    cfg.From,
		render:  renderer{loc: loc},
		timeout: timeout,
		logger:  logger,
		metrics: metrics,
	}
}

// SendInvitation implements Notifier.
func (n *SESNotifier) SendInvitation(ctx context.Context, msg Invitation) error {
	subject, body, err := n.render.invitation(msg)
	if err != nil {
		return err
	}
	return n.send(ctx, "invitation", msg.Email, subject, body)
}

// SendConfirmation implements Notifier.
func (n *SESNotifier) SendConfirmation(ctx context.Context, msg Confirmation) error {
	subject, body, err := n.render.confirmation(msg)
	if err != nil {
		return err
	}
	return n.send(ctx, "confirmation", msg.Email, subject, body)
}

func (n *SESNotifier) send(ctx context.Context, kind, to, subject, body string) error {
	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	out, err := observability.TimeOperation(n.metrics, "notifications.send_email", func() (*sesv2.SendEmailOutput, error) {
		return n.client.SendEmail(ctx, &sesv2.SendEmailInput{
			FromEmailAddress: aws.String(n.from),
			Destination:      &types.Destination{ToAddresses: []string{to}},
			Content: &types.EmailContent{
				Simple: &types.Message{
					Subject: &types.Content{Data: aws.String(subject), Charset: aws.String("UTF-8")},
					Body: &types.Body{
						Html: &types.Content{Data: aws.String(body), Charset: aws.String("UTF-8")},
					},
				},
			},
		})
	})
	if err != nil {
		n.metrics.Counter(observability.MetricNotifications, 1, observability.T("kind", kind), observability.T("result", "error"))
		return fmt.Errorf("send %s email: %w", kind, err)
	}

	n.metrics.Counter(observability.MetricNotifications, 1, observability.T("kind", kind), observability.T("result", "ok"))
	if out != nil {
		n.logger.DebugContext(ctx, "email sent", "kind", kind, "message_id", aws.ToString(out.MessageId))
	}
	return nil
}
