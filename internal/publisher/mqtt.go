// Package publisher sends emissions summaries to MQTT and Home Assistant.
package publisher

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/jgoulah/carbonform/internal/config"
	"github.com/jgoulah/carbonform/internal/emissions"
	"github.com/jgoulah/carbonform/internal/log"
	"github.com/jgoulah/carbonform/pkg/models"
)

const connectTimeout = 10 * time.Second

// mqttClient is the part of mqtt.Client the publisher uses
type mqttClient interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	IsConnected() bool
	Disconnect(quiesce uint)
}

// Publisher sends summaries to whichever destinations are enabled
type Publisher struct {
	client      mqttClient
	topicPrefix string
	haConfig    config.HAConfig
	httpClient  *http.Client
}

// Summary is the published view of an emissions result
type Summary struct {
	Business           string    `json:"business"`
	Industry           string    `json:"industry,omitempty"`
	ZipCode            string    `json:"zip_code,omitempty"`
	Months             int       `json:"months"`
	Factor             float64   `json:"factor"`
	TotalEmissionsTons float64   `json:"total_emissions_tons"`
	MonthlyAverageTons float64   `json:"monthly_average_tons"`
	AnnualEstimateTons float64   `json:"annual_estimate_tons"`
	EmissionsIntensity float64   `json:"emissions_intensity"`
	MilesDriven        float64   `json:"miles_driven_equivalent"`
	ComputedAt         time.Time `json:"computed_at"`
}

// NewSummary builds the published summary of a result
func NewSummary(b models.Business, r *models.EmissionsResult, at time.Time) Summary {
	return Summary{
		Business:           b.Name,
		Industry:           r.Industry,
		ZipCode:            b.ZipCode,
		Months:             len(r.Entries),
		Factor:             r.Factor,
		TotalEmissionsTons: r.TotalEmissionsTons,
		MonthlyAverageTons: r.MonthlyAverageTons,
		AnnualEstimateTons: r.AnnualEstimateTons,
		EmissionsIntensity: r.EmissionsIntensity,
		MilesDriven:        emissions.Equivalencies(r.AnnualEstimateTons).MilesDriven,
		ComputedAt:         at.UTC(),
	}
}

// New creates a publisher for the enabled MQTT and Home Assistant destinations
func New(mqttCfg config.MQTTConfig, haCfg config.HAConfig, topicPrefix string) (*Publisher, error) {
	if haCfg.Enabled {
		if haCfg.URL == "" {
			return nil, fmt.Errorf("Home Assistant URL is required when enabled")
		}
		if haCfg.Token == "" {
			return nil, fmt.Errorf("Home Assistant token is required when enabled")
		}
		if haCfg.EntityID == "" {
			return nil, fmt.Errorf("Home Assistant entity_id is required when enabled")
		}
	}

	p := &Publisher{
		topicPrefix: topicPrefix,
		haConfig:    haCfg,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
	}

	if mqttCfg.Enabled {
		if mqttCfg.Broker == "" {
			return nil, fmt.Errorf("MQTT broker address is required when enabled")
		}

		opts := mqtt.NewClientOptions()
		opts.AddBroker(fmt.Sprintf("tcp://%s", mqttCfg.Broker))
		opts.SetClientID("carbonform")
		opts.SetAutoReconnect(true)
		opts.SetConnectTimeout(connectTimeout)

		if mqttCfg.Username != "" {
			opts.SetUsername(mqttCfg.Username)
		}
		if mqttCfg.Password != "" {
			opts.SetPassword(mqttCfg.Password)
		}

		client := mqtt.NewClient(opts)
		token := client.Connect()
		if !token.WaitTimeout(connectTimeout) {
			client.Disconnect(0)
			return nil, fmt.Errorf("connecting to MQTT broker %s: timed out after %s", mqttCfg.Broker, connectTimeout)
		}
		if err := token.Error(); err != nil {
			return nil, fmt.Errorf("connecting to MQTT broker %s: %w", mqttCfg.Broker, err)
		}
		p.client = client
	}

	return p, nil
}

// Enabled reports whether any destination is configured
func (p *Publisher) Enabled() bool {
	return p.client != nil || p.haConfig.Enabled
}

// Publish sends the summary to every enabled destination
func (p *Publisher) Publish(s Summary) error {
	if !p.Enabled() {
		return fmt.Errorf("no publish destination is enabled in config")
	}

	if p.client != nil {
		if err := p.publishMQTT(s); err != nil {
			return err
		}
	}
	if p.haConfig.Enabled {
		if err := p.publishHA(s); err != nil {
			return err
		}
	}
	return nil
}

// Topic returns the MQTT topic for a business
func (p *Publisher) Topic(business string) string {
	return fmt.Sprintf("%s/%s/summary", p.topicPrefix, slug(business))
}

func (p *Publisher) publishMQTT(s Summary) error {
	body, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encoding summary: %w", err)
	}

	topic := p.Topic(s.Business)
	token := p.client.Publish(topic, 1, true, body)
	if !token.WaitTimeout(10 * time.Second) {
		return fmt.Errorf("publishing to %s: timed out", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publishing to %s: %w", topic, err)
	}

	log.Debugw("published summary", "topic", topic)
	return nil
}

// HAState is the body of a Home Assistant state update
type HAState struct {
	State      string                 `json:"state"`
	Attributes map[string]interface{} `json:"attributes"`
}

func (p *Publisher) publishHA(s Summary) error {
	apiURL := fmt.Sprintf("%s/api/states/%s", strings.TrimRight(p.haConfig.URL, "/"), p.haConfig.EntityID)

	payload := HAState{
		State: fmt.Sprintf("%.2f", s.AnnualEstimateTons),
		Attributes: map[string]interface{}{
			"unit_of_measurement":  "t",
			"friendly_name":        strings.TrimSpace(s.Business + " Annual CO2e"),
			"icon":                 "mdi:molecule-co2",
			"monthly_average_tons": emissions.Round2(s.MonthlyAverageTons),
			"total_emissions_tons": emissions.Round2(s.TotalEmissionsTons),
			"emissions_intensity":  emissions.Round2(s.EmissionsIntensity),
			"factor":               s.Factor,
			"months":               s.Months,
			"computed_at":          s.ComputedAt.Format(time.RFC3339),
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding payload: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, apiURL, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.haConfig.Token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("HTTP error: status %d, response: %s", resp.StatusCode, string(respBody))
	}

	log.Debugw("updated Home Assistant entity", "entity_id", p.haConfig.EntityID)
	return nil
}

// Close disconnects from the MQTT broker
func (p *Publisher) Close() {
	if p.client != nil && p.client.IsConnected() {
		p.client.Disconnect(250)
	}
}

// slug lowercases a name and replaces runs of other characters with one underscore
func slug(name string) string {
	var b strings.Builder
	underscore := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			underscore = false
			continue
		}
		if !underscore && b.Len() > 0 {
			b.WriteByte('_')
			underscore = true
		}
	}
	s := strings.TrimSuffix(b.String(), "_")
	if s == "" {
		return "business"
	}
	return s
}
