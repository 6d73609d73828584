package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidConfig = errors.New("invalid whatsapp configuration")
	ErrSendFailed    = errors.New("failed to send whatsapp message")
)

const (
	defaultBaseURL     = "https://publicapi.myoperator.co"
	defaultCountryCode = "91"
)

// Config holds the chat API credentials.
type Config struct {
	APIKey        string `env:"WHATSAPP_API_KEY,required"`
	CompanyID     string `env:"WHATSAPP_COMPANY_ID,required"`
	PhoneNumberID string `env:"WHATSAPP_PHONE_NUMBER_ID,required"`
	BaseURL       string `env:"WHATSAPP_BASE_URL" envDefault:"https://publicapi.myoperator.co"`
	CountryCode   string `env:"WHATSAPP_COUNTRY_CODE" envDefault:"91"`

	ContactTemplate string `env:"WHATSAPP_CONTACT_TEMPLATE" envDefault:"contact_enquiry"`
	TripTemplate    string `env:"WHATSAPP_TRIP_TEMPLATE" envDefault:"trip_enquiry"`
}

// Client sends template messages through a MyOperator-style chat API.
type Client struct {
	cfg    Config
	client *http.Client
}

// Option configures optional Client settings.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client, used by tests.
func WithHTTPClient(c *http.Client) Option {
	return func(w *Client) {
		if c != nil {
			w.client = c
		}
	}
}

// New creates a whatsapp client from credentials.
func New(cfg Config, opts ...Option) (*Client, error) {
	if cfg.APIKey == "" || cfg.CompanyID == "" || cfg.PhoneNumberID == "" {
		return nil, fmt.Errorf("%w: api key, company id and phone number id are required", ErrInvalidConfig)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.CountryCode == "" {
		cfg.CountryCode = defaultCountryCode
	}

	c := &Client{
		cfg:    cfg,
		client: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// ContactEnquiry is the payload for the contact-form template.
type ContactEnquiry struct {
	Name     string
	Phone    string
	TripType string
	Message  string
}

// SendContactEnquiry notifies the driver about a contact-form submission.
func (c *Client) SendContactEnquiry(ctx context.Context, driverPhone string, e ContactEnquiry) error {
	message := e.Message
	if message == "" {
		message = "No message provided"
	}
	return c.sendTemplate(ctx, driverPhone, c.cfg.ContactTemplate, map[string]string{
		"1": e.Name,
		"2": e.Phone,
		"3": e.TripType,
		"4": message,
	})
}

// TripEnquiry is the payload for the trip-booking template.
type TripEnquiry struct {
	Service  string
	TripType string
	Pickup   string
	Drop     string
	Stops    []string
	PickupAt time.Time
	ReturnAt time.Time
}

// SendTripEnquiry notifies the driver about a trip booking request.
func (c *Client) SendTripEnquiry(ctx context.Context, driverPhone string, e TripEnquiry) error {
	return c.sendTemplate(ctx, driverPhone, c.cfg.TripTemplate, map[string]string{
		"1": e.Service,
		"2": e.TripType,
		"3": e.Pickup,
		"4": e.Drop,
		"5": FormatStops(e.Stops),
		"6": formatDate(e.PickupAt),
		"7": FormatReturnDate(e.TripType, e.ReturnAt),
	})
}

// FormatStops renders the intermediate-stops template field.
func FormatStops(stops []string) string {
	cleaned := make([]string, 0, len(stops))
	for _, s := range stops {
		if s = strings.TrimSpace(s); s != "" {
			cleaned = append(cleaned, s)
		}
	}
	if len(cleaned) == 0 {
		return "Direct trip (no stops)"
	}
	return strings.Join(cleaned, " → ")
}

// FormatReturnDate renders the return-date template field. One-way trips
// have no return leg.
func FormatReturnDate(tripType string, returnAt time.Time) string {
	if strings.EqualFold(tripType, "one_way") {
		return "Not applicable (One way trip)"
	}
	if returnAt.IsZero() {
		return "Not specified"
	}
	return formatDate(returnAt)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "Not specified"
	}
	return t.Format("02 Jan 2006, 03:04 PM")
}

type messageRequest struct {
	PhoneNumberID       string      `json:"phone_number_id"`
	CustomerCountryCode string      `json:"customer_country_code"`
	CustomerNumber      string      `json:"customer_number"`
	Data                messageData `json:"data"`
	MyopRefID           string      `json:"myop_ref_id"`
}

type messageData struct {
	Type    string         `json:"type"`
	Context messageContext `json:"context"`
}

type messageContext struct {
	TemplateName string            `json:"template_name"`
	Language     string            `json:"language"`
	Body         map[string]string `json:"body"`
}

func (c *Client) sendTemplate(ctx context.Context, phone, template string, body map[string]string) error {
	phone = normalizePhone(phone)
	if phone == "" {
		return fmt.Errorf("%w: empty recipient number", ErrSendFailed)
	}

	payload, err := json.Marshal(messageRequest{
		PhoneNumberID:       c.cfg.PhoneNumberID,
		CustomerCountryCode: c.cfg.CountryCode,
		CustomerNumber:      phone,
		Data: messageData{
			Type: "template",
			Context: messageContext{
				TemplateName: template,
				Language:     "en",
				Body:         body,
			},
		},
		MyopRefID: uuid.NewString(),
	})
	if err != nil {
		return errors.Join(ErrSendFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/chat/messages", bytes.NewReader(payload))
	if err != nil {
		return errors.Join(ErrSendFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("X-MYOP-COMPANY-ID", c.cfg.CompanyID)

	resp, err := c.client.Do(req)
	if err != nil {
		return errors.Join(ErrSendFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%w: status %d: %s", ErrSendFailed, resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	return nil
}

// normalizePhone strips formatting and a leading country prefix so the API
// gets a bare local number.
func normalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) > 10 && strings.HasPrefix(digits, defaultCountryCode) {
		digits = digits[len(defaultCountryCode):]
	}
	return digits
}
