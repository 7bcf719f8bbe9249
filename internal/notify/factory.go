package notify

import (
	"fmt"

	"grandprix-booking/config"
	"grandprix-booking/utils"
)

type Provider string

const (
	ProviderNone   Provider = "none"
	ProviderPubNub Provider = "pubnub"
	ProviderAMQP   Provider = "amqp"
)

func SupportedProviders() []Provider {
	return []Provider{ProviderNone, ProviderPubNub, ProviderAMQP}
}

// NewPublisher builds the publisher selected by cfg.NotifyProvider. Real
// providers come wrapped in a circuit breaker.
func NewPublisher(cfg *config.Config) (Publisher, error) {
	var (
		pub Publisher
		err error
	)

	switch Provider(cfg.NotifyProvider) {
	case ProviderNone, "":
		return Nop{}, nil

	case ProviderPubNub:
		pub, err = NewPubNubPublisher(PubNubConfig{
			PublishKey:   cfg.PubNubPublishKey,
			SubscribeKey: cfg.PubNubSubscribeKey,
			SecretKey:    cfg.PubNubSecretKey,
			Channel:      cfg.PubNubChannel,
			UserID:       cfg.AppName,
		})

	case ProviderAMQP:
		pub, err = NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPQueue)

	default:
		return nil, fmt.Errorf("unsupported notify provider %q, supported: %v", cfg.NotifyProvider, SupportedProviders())
	}
	if err != nil {
		return nil, err
	}

	breaker := utils.NewCircuitBreaker(cfg.NotifyProvider, cfg.BreakerMaxFailures, cfg.BreakerCooldown)
	return NewGuarded(pub, breaker), nil
}
