package provider

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	smithyhttp "github.com/aws/smithy-go/transport/http"
)

type fakeSESClient struct {
	input          *sesv2.SendEmailInput
	sendErr        error
	sendingEnabled bool
}

func (f *fakeSESClient) SendEmail(_ context.Context, in *sesv2.SendEmailInput, _ ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	f.input = in
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	return &sesv2.SendEmailOutput{MessageId: aws.String("ses-msg-1")}, nil
}

func (f *fakeSESClient) GetAccount(_ context.Context, _ *sesv2.GetAccountInput, _ ...func(*sesv2.Options)) (*sesv2.GetAccountOutput, error) {
	return &sesv2.GetAccountOutput{SendingEnabled: f.sendingEnabled}, nil
}

func TestSES_Send(t *testing.T) {
	client := &fakeSESClient{}
	p := newSESWithClient(ProviderConfig{Region: "us-east-1"}, client)

	result, err := p.Send(context.Background(), &Message{
		From:     "news@signalist.app",
		To:       []string{"a@x.com"},
		Subject:  "Summary",
		TextBody: "text",
		HTMLBody: "<p>html</p>",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.ProviderMessageID != "ses-msg-1" {
		t.Errorf("expected ses-msg-1, got %s", result.ProviderMessageID)
	}

	in := client.input
	if aws.ToString(in.FromEmailAddress) != "news@signalist.app" {
		t.Errorf("unexpected from %q", aws.ToString(in.FromEmailAddress))
	}
	if len(in.Destination.ToAddresses) != 1 || in.Destination.ToAddresses[0] != "a@x.com" {
		t.Errorf("unexpected destination %v", in.Destination.ToAddresses)
	}
	body := in.Content.Simple.Body
	if aws.ToString(body.Text.Data) != "text" || aws.ToString(body.Html.Data) != "<p>html</p>" {
		t.Error("expected both text and html parts")
	}
}

func TestSES_buildInput_HTMLOnly(t *testing.T) {
	p := &SES{}
	in := p.buildInput(&Message{HTMLBody: "<p>x</p>"})
	if in.Content.Simple.Body.Text != nil {
		t.Error("expected no text part")
	}
	if in.Content.Simple.Body.Html == nil {
		t.Error("expected html part")
	}
}

func TestSES_Send_ClassifiesHTTPErrors(t *testing.T) {
	respErr := &awshttp.ResponseError{
		ResponseError: &smithyhttp.ResponseError{
			Response: &smithyhttp.Response{Response: &http.Response{StatusCode: 400}},
			Err:      errors.New("MessageRejected: Email address is not verified"),
		},
	}
	p := newSESWithClient(ProviderConfig{Region: "us-east-1"}, &fakeSESClient{sendErr: respErr})

	_, err := p.Send(context.Background(), &Message{From: "a@x.com", To: []string{"b@x.com"}})
	if err == nil {
		t.Fatal("expected error")
	}
	var pe *ProviderError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ProviderError, got %T", err)
	}
	if pe.Code != 400 || !pe.Permanent {
		t.Errorf("expected permanent 400, got code=%d permanent=%v", pe.Code, pe.Permanent)
	}
}

func TestSES_Send_OtherErrors(t *testing.T) {
	p := newSESWithClient(ProviderConfig{Region: "us-east-1"}, &fakeSESClient{sendErr: errors.New("dial tcp: timeout")})

	_, err := p.Send(context.Background(), &Message{})
	if err == nil || !IsTransient(err) {
		t.Errorf("expected transient error, got %v", err)
	}
}

func TestSES_HealthCheck(t *testing.T) {
	if err := newSESWithClient(ProviderConfig{}, &fakeSESClient{sendingEnabled: true}).HealthCheck(context.Background()); err != nil {
		t.Errorf("expected healthy, got %v", err)
	}
	if err := newSESWithClient(ProviderConfig{}, &fakeSESClient{}).HealthCheck(context.Background()); err == nil {
		t.Error("expected error when sending is disabled")
	}
}
