// Package kafka consumes fulfillment-side order status events and applies
// them to stored conversations.
package kafka

import (
	"fmt"
	"time"

	"github.com/IBM/sarama"
)

// NewGroup builds the consumer group for the status topic. Offsets start at
// newest: status events for sessions that expired while we were down are
// useless, so there is no point replaying history.
func NewGroup(brokers []string, groupID string) (sarama.ConsumerGroup, error) {
	cfg := sarama.NewConfig()
	cfg.Version = sarama.V2_6_0_0
	cfg.Consumer.Group.Rebalance.Strategy = sarama.BalanceStrategyRange
	cfg.Consumer.Offsets.Initial = sarama.OffsetNewest
	cfg.Net.DialTimeout = 5 * time.Second

	grp, err := sarama.NewConsumerGroup(brokers, groupID, cfg)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer group: %w", err)
	}
	return grp, nil
}
