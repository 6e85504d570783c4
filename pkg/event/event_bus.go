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

package event

import (
	"sync"

	"github.com/google/wire"
)

// ProviderSet is the Wire provider set for the event package.
var ProviderSet = wire.NewSet(NewEventBus)

// Event is anything that can be published on the bus.
type Event interface {
	EventName() string
}

// Handler consumes published events.
type Handler interface {
	Handle(event Event)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(event Event)

func (f HandlerFunc) Handle(event Event) {
	f(event)
}

// Bus is an in-process publish/subscribe registry keyed by event name.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
}

// NewEventBus creates an empty bus.
func NewEventBus() *Bus {
	return &Bus{
		handlers: make(map[string][]Handler),
	}
}

// RegisterHandler subscribes handler to events with the given name.
func (eb *Bus) RegisterHandler(eventName string, handler Handler) {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	eb.handlers[eventName] = append(eb.handlers[eventName], handler)
}

// Publish delivers event synchronously to every registered handler.
func (eb *Bus) Publish(event Event) {
	eb.mu.RLock()
	handlers := append([]Handler(nil), eb.handlers[event.EventName()]...)
	eb.mu.RUnlock()
	for _, handler := range handlers {
		handler.Handle(event)
	}
}
