// Copyright 2026 Roleflow Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package kafka wraps the confluent producer behind a config-driven
// constructor. Roleflow only publishes; consumption belongs to the
// downstream systems reading the lifecycle topic.
package kafka

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
)

// Conf is the producer configuration, populated from the config file.
type Conf struct {
	BootstrapServers string `mapstructure:"bootstrap_servers"`
	ClientID         string `mapstructure:"client_id"`
	Acks             string `mapstructure:"acks"`
	Retries          int    `mapstructure:"retries"`
	Compression      string `mapstructure:"compression"`
	SecurityProtocol string `mapstructure:"security_protocol"`
	SaslMechanism    string `mapstructure:"sasl_mechanism"`
	SaslUsername     string `mapstructure:"sasl_username"`
	SaslPassword     string `mapstructure:"sasl_password"`
}

// SetDefaults fills unset fields with defaults.
func (c *Conf) SetDefaults() {
	if c.Acks == "" {
		c.Acks = "all"
	}
	if c.Retries == 0 {
		c.Retries = 3
	}
	if c.Compression == "" {
		c.Compression = "snappy"
	}
}

// Producer wraps a Kafka producer instance.
type Producer struct {
	producer *kafka.Producer
}

// NewProducer creates a producer from conf.
func NewProducer(conf Conf) (*Producer, error) {
	conf.SetDefaults()
	if conf.BootstrapServers == "" {
		return nil, fmt.Errorf("bootstrap_servers is required")
	}
	if conf.ClientID == "" {
		return nil, fmt.Errorf("client_id is required")
	}

	config := &kafka.ConfigMap{
		"bootstrap.servers": conf.BootstrapServers,
		"client.id":         qualifiedClientID(conf.ClientID),
		"acks":              conf.Acks,
		"retries":           conf.Retries,
		"compression.type":  conf.Compression,
	}
	if conf.SecurityProtocol != "" {
		_ = config.SetKey("security.protocol", conf.SecurityProtocol)
		_ = config.SetKey("sasl.mechanism", conf.SaslMechanism)
		_ = config.SetKey("sasl.username", conf.SaslUsername)
		_ = config.SetKey("sasl.password", conf.SaslPassword)
	}

	producer, err := kafka.NewProducer(config)
	if err != nil {
		return nil, fmt.Errorf("create producer: %w", err)
	}
	return &Producer{producer: producer}, nil
}

// qualifiedClientID suffixes the client id with the hostname so brokers
// can tell replicas apart.
func qualifiedClientID(clientID string) string {
	hostname, err := os.Hostname()
	if err != nil || strings.TrimSpace(hostname) == "" {
		hostname = "UNKNOWN"
	}
	return strings.ToUpper(fmt.Sprintf("%s_CLIENT_%s", clientID, hostname))
}

// Send publishes one message and waits for its delivery report.
func (p *Producer) Send(ctx context.Context, topic string, key string, value []byte, headers map[string]string) error {
	if p == nil || p.producer == nil {
		return fmt.Errorf("producer is not initialized")
	}
	if topic == "" {
		return fmt.Errorf("topic is required")
	}

	kafkaHeaders := make([]kafka.Header, 0, len(headers))
	for k, v := range headers {
		kafkaHeaders = append(kafkaHeaders, kafka.Header{
			Key:   k,
			Value: []byte(v),
		})
	}

	message := &kafka.Message{
		TopicPartition: kafka.TopicPartition{
			Topic:     &topic,
			Partition: kafka.PartitionAny,
		},
		Key:     []byte(key),
		Value:   value,
		Headers: kafkaHeaders,
	}

	deliveryChan := make(chan kafka.Event, 1)
	if err := p.producer.Produce(message, deliveryChan); err != nil {
		return fmt.Errorf("produce message: %w", err)
	}

	select {
	case e := <-deliveryChan:
		m := e.(*kafka.Message)
		if m.TopicPartition.Error != nil {
			return fmt.Errorf("deliver message: %w", m.TopicPartition.Error)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close flushes outstanding messages and releases the producer.
func (p *Producer) Close() {
	if p == nil || p.producer == nil {
		return
	}
	p.producer.Flush(15 * 1000)
	p.producer.Close()
}
