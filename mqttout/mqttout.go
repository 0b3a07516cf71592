// Package mqttout implements the optional mqtt:output Connection: a pure
// consumer that republishes every interlock state transition onto an MQTT
// topic and advertises itself to Home Assistant via MQTT discovery.
package mqttout

import (
	"encoding/json"
	"log/slog"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/dallas-makerspace/interlock/message"
	"github.com/dallas-makerspace/interlock/state"
)

// Settings holds the mqtt:output entry's connection settings.
type Settings struct {
	Broker string `json:"broker"`
	Topic  string `json:"topic"`
}

// device is the "device" block Home Assistant groups an entity's
// discovery payload under.
type device struct {
	Name         string `json:"name,omitempty"`
	SerialNumber string `json:"serial_number,omitempty"`
}

type discoveryPayload struct {
	Device     device `json:"device"`
	StateTopic string `json:"state_topic"`
	UniqueID   string `json:"unique_id"`
	Name       string `json:"name"`
}

func buildDiscoveryPayload(name, topic, toolID string) discoveryPayload {
	return discoveryPayload{
		Device:     device{Name: "Interlock " + name, SerialNumber: toolID},
		StateTopic: topic + "/state",
		UniqueID:   toolID + "_" + name,
		Name:       name,
	}
}

// MqttOutput is a pure-consumer Connection: it never enqueues, since it is
// additive instrumentation outside the interlock-state contract.
type MqttOutput struct {
	name   string
	topic  string
	client mqtt.Client
	logger *slog.Logger
}

// New connects to settings.Broker and registers a Home Assistant discovery
// payload on every (re)connect.
func New(name, toolID string, settings Settings, logger *slog.Logger) (*MqttOutput, error) {
	if logger == nil {
		logger = slog.Default()
	}
	m := &MqttOutput{name: name, topic: settings.Topic, logger: logger}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(settings.Broker)
	opts.SetClientID("interlock/" + name)
	opts.SetConnectRetryInterval(2 * time.Second)
	opts.SetOnConnectHandler(func(c mqtt.Client) {
		m.publishDiscovery(c, toolID)
	})
	opts.SetConnectionLostHandler(func(c mqtt.Client, err error) {
		logger.Warn("mqtt_output: connection lost", "name", name, "error", err)
	})

	client := mqtt.NewClient(opts)
	if t := client.Connect(); t.Wait() && t.Error() != nil {
		return nil, t.Error()
	}
	m.client = client
	return m, nil
}

// Update republishes every non-RESET_TIMER state transition.
func (m *MqttOutput) Update(msg message.Message) error {
	if msg.State == state.ResetTimer {
		return nil
	}
	if t := m.client.Publish(m.topic+"/state", 0, false, string(msg.State)); t.Wait() && t.Error() != nil {
		m.logger.Warn("mqtt_output: publish failed", "name", m.name, "error", t.Error())
		return t.Error()
	}
	return nil
}

func (m *MqttOutput) publishDiscovery(c mqtt.Client, toolID string) {
	payload := buildDiscoveryPayload(m.name, m.topic, toolID)
	bytes, err := json.Marshal(payload)
	if err != nil {
		m.logger.Warn("mqtt_output: could not marshal discovery payload", "name", m.name, "error", err)
		return
	}
	topic := "homeassistant/sensor/" + payload.UniqueID + "/config"
	if t := c.Publish(topic, 0, true, string(bytes)); t.Wait() && t.Error() != nil {
		m.logger.Warn("mqtt_output: discovery publish failed", "name", m.name, "error", t.Error())
	}
}
