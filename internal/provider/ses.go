package provider

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// sesAPI is the subset of the SES v2 client used by the provider.
type sesAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
	GetAccount(ctx context.Context, params *sesv2.GetAccountInput, optFns ...func(*sesv2.Options)) (*sesv2.GetAccountOutput, error)
}

// SES implements the Provider interface with the AWS SES v2 SendEmail API.
type SES struct {
	region  string
	timeout time.Duration
	client  sesAPI
}

// NewSES loads AWS configuration for the configured region and creates an
// SES provider. Static credentials are used when both keys are set;
// otherwise the default credential chain applies.
func NewSES(ctx context.Context, cfg ProviderConfig) (*SES, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("ses: load aws config: %w", err)
	}

	return newSESWithClient(cfg, sesv2.NewFromConfig(awsCfg)), nil
}

func newSESWithClient(cfg ProviderConfig, client sesAPI) *SES {
	return &SES{
		region:  cfg.Region,
		timeout: cfg.Timeout,
		client:  client,
	}
}

func (s *SES) GetName() string { return "ses" }

// Send delivers a message via SES v2 SendEmail.
func (s *SES) Send(ctx context.Context, msg *Message) (*DeliveryResult, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	out, err := s.client.SendEmail(ctx, s.buildInput(msg))
	if err != nil {
		return nil, classifySESError(err)
	}

	return &DeliveryResult{
		ProviderMessageID: aws.ToString(out.MessageId),
		Status:            StatusSent,
		Timestamp:         time.Now(),
		Metadata:          map[string]string{"region": s.region},
	}, nil
}

// HealthCheck verifies SES connectivity and that sending is enabled.
func (s *SES) HealthCheck(ctx context.Context) error {
	out, err := s.client.GetAccount(ctx, &sesv2.GetAccountInput{})
	if err != nil {
		return fmt.Errorf("ses: health check: %w", err)
	}
	if !out.SendingEnabled {
		return errors.New("ses: sending is disabled for this account")
	}
	return nil
}

func (s *SES) buildInput(msg *Message) *sesv2.SendEmailInput {
	body := &types.Body{}
	if msg.TextBody != "" {
		body.Text = &types.Content{Data: aws.String(msg.TextBody), Charset: aws.String("UTF-8")}
	}
	if msg.HTMLBody != "" {
		body.Html = &types.Content{Data: aws.String(msg.HTMLBody), Charset: aws.String("UTF-8")}
	}

	return &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(msg.From),
		Destination:      &types.Destination{ToAddresses: msg.To},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(msg.Subject), Charset: aws.String("UTF-8")},
				Body:    body,
			},
		},
	}
}

func classifySESError(err error) error {
	var re *awshttp.ResponseError
	if errors.As(err, &re) {
		if pe := ClassifyHTTPError("ses", re.HTTPStatusCode(), err.Error()); pe != nil {
			pe.err = err
			return pe
		}
	}
	return fmt.Errorf("ses: send: %w", err)
}
