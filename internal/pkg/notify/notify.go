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

// Package notify bridges terminal workflow lifecycle events from the
// in-process bus onto a kafka topic for downstream consumers.
package notify

import (
	"context"
	"time"

	"github.com/bytedance/sonic"

	"github.com/arcentrix/roleflow/internal/pkg/workflow"
	"github.com/arcentrix/roleflow/pkg/event"
	"github.com/arcentrix/roleflow/pkg/log"
	"github.com/arcentrix/roleflow/pkg/mq/kafka"
)

const publishTimeout = 10 * time.Second

// Conf configures the lifecycle notifier.
type Conf struct {
	Enabled bool       `mapstructure:"enabled"`
	Topic   string     `mapstructure:"topic"`
	Kafka   kafka.Conf `mapstructure:"kafka"`
}

// SetDefaults fills unset fields with defaults.
func (c *Conf) SetDefaults() {
	if c.Topic == "" {
		c.Topic = "roleflow.lifecycle"
	}
	if c.Kafka.ClientID == "" {
		c.Kafka.ClientID = "roleflow"
	}
}

// Publisher is the slice of the kafka producer the notifier needs.
type Publisher interface {
	Send(ctx context.Context, topic string, key string, value []byte, headers map[string]string) error
	Close()
}

// Notifier subscribes to lifecycle events and republishes them as JSON
// messages keyed by workflow id. Publishing is best effort: a broker
// outage must never affect workflow outcomes.
type Notifier struct {
	topic    string
	producer Publisher
}

// NewNotifier creates the notifier, or nil when disabled. A nil
// notifier is safe to register and close.
func NewNotifier(conf Conf) (*Notifier, error) {
	conf.SetDefaults()
	if !conf.Enabled {
		return nil, nil
	}
	producer, err := kafka.NewProducer(conf.Kafka)
	if err != nil {
		return nil, err
	}
	return &Notifier{topic: conf.Topic, producer: producer}, nil
}

// Register subscribes the notifier to terminal lifecycle events.
func (n *Notifier) Register(bus *event.Bus) {
	if n == nil || bus == nil {
		return
	}
	bus.RegisterHandler((&workflow.LifecycleEvent{}).EventName(), event.HandlerFunc(n.handle))
}

func (n *Notifier) handle(e event.Event) {
	le, ok := e.(*workflow.LifecycleEvent)
	if !ok {
		return
	}
	payload, err := sonic.Marshal(le)
	if err != nil {
		log.Errorw("marshal lifecycle event", "workflowId", le.WorkflowID, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	headers := map[string]string{
		"event":     le.EventName(),
		"tenant_id": le.TenantID,
	}
	if err := n.producer.Send(ctx, n.topic, le.WorkflowID, payload, headers); err != nil {
		log.Errorw("publish lifecycle event",
			"workflowId", le.WorkflowID,
			"topic", n.topic,
			"error", err,
		)
		return
	}
	log.Debugw("lifecycle event published", "workflowId", le.WorkflowID, "state", le.State)
}

// Close flushes and releases the underlying producer.
func (n *Notifier) Close() {
	if n == nil || n.producer == nil {
		return
	}
	n.producer.Close()
}
