package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/crm-mobile-api/internal/config"
	"github.com/crm-mobile-api/internal/infrastructure/awsconf"
)

type snsPublishClient interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNSPublisher publishes envelopes to an SNS topic. Subscribers filter on the
// user and event message attributes.
type SNSPublisher struct {
	client   snsPublishClient
	topicARN string
}

func NewSNSPublisher(ctx context.Context, cfg *config.Config) (*SNSPublisher, error) {
	if cfg.SNSTopicARN == "" {
		return nil, fmt.Errorf("SNS_TOPIC_ARN is required for the sns realtime backend")
	}
	awsCfg, err := awsconf.Load(ctx, cfg, cfg.SNSRegion)
	if err != nil {
		return nil, err
	}
	var opts []func(*sns.Options)
	if cfg.AWSEndpointURL != "" {
		opts = append(opts, func(o *sns.Options) {
			o.BaseEndpoint = aws.String(cfg.AWSEndpointURL)
		})
	}
	return &SNSPublisher{client: sns.NewFromConfig(awsCfg, opts...), topicARN: cfg.SNSTopicARN}, nil
}

func (p *SNSPublisher) Publish(ctx context.Context, user, event string, payload any) error {
	body, err := json.Marshal(newEnvelope(user, event, payload))
	if err != nil {
		return fmt.Errorf("marshal realtime event: %w", err)
	}
	_, err = p.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(p.topicARN),
		Message:  aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"event": {DataType: aws.String("String"), StringValue: aws.String(event)},
			"user":  {DataType: aws.String("String"), StringValue: aws.String(user)},
		},
	})
	if err != nil {
		return fmt.Errorf("sns publish %s: %w", event, err)
	}
	return nil
}
