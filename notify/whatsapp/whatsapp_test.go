package whatsapp_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taxisafar/sitekit/notify/whatsapp"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *whatsapp.Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := whatsapp.New(whatsapp.Config{
		APIKey:          "test-key",
		CompanyID:       "company-1",
		PhoneNumberID:   "pn-1",
		BaseURL:         srv.URL,
		CountryCode:     "91",
		ContactTemplate: "contact_enquiry",
		TripTemplate:    "trip_enquiry",
	}, whatsapp.WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	return client
}

func TestNew(t *testing.T) {
	t.Parallel()

	_, err := whatsapp.New(whatsapp.Config{APIKey: "key"})
	assert.ErrorIs(t, err, whatsapp.ErrInvalidConfig)
}

func TestSendContactEnquiry(t *testing.T) {
	t.Parallel()

	t.Run("sends template with auth headers", func(t *testing.T) {
		t.Parallel()

		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/chat/messages", r.URL.Path)
			assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
			assert.Equal(t, "company-1", r.Header.Get("X-MYOP-COMPANY-ID"))

			var req map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "pn-1", req["phone_number_id"])
			assert.Equal(t, "91", req["customer_country_code"])
			assert.Equal(t, "9876543210", req["customer_number"])
			assert.NotEmpty(t, req["myop_ref_id"])

			data := req["data"].(map[string]any)
			assert.Equal(t, "template", data["type"])
			contextObj := data["context"].(map[string]any)
			assert.Equal(t, "contact_enquiry", contextObj["template_name"])

			body := contextObj["body"].(map[string]any)
			assert.Equal(t, "Asha", body["1"])
			assert.Equal(t, "No message provided", body["4"])

			w.WriteHeader(http.StatusOK)
		})

		err := client.SendContactEnquiry(context.Background(), "+91 98765 43210", whatsapp.ContactEnquiry{
			Name:     "Asha",
			Phone:    "9812345678",
			TripType: "one_way",
		})
		assert.NoError(t, err)
	})

	t.Run("provider error surfaces", func(t *testing.T) {
		t.Parallel()

		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "invalid template", http.StatusUnprocessableEntity)
		})

		err := client.SendContactEnquiry(context.Background(), "9876543210", whatsapp.ContactEnquiry{Name: "A"})
		assert.ErrorIs(t, err, whatsapp.ErrSendFailed)
	})

	t.Run("rejects empty recipient", func(t *testing.T) {
		t.Parallel()

		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			t.Error("request must not be sent")
		})

		err := client.SendContactEnquiry(context.Background(), "", whatsapp.ContactEnquiry{Name: "A"})
		assert.ErrorIs(t, err, whatsapp.ErrSendFailed)
	})
}

func TestSendTripEnquiry(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		body := req["data"].(map[string]any)["context"].(map[string]any)["body"].(map[string]any)
		assert.Equal(t, "Jaipur → Pushkar", body["5"])
		assert.Equal(t, "Not applicable (One way trip)", body["7"])

		w.WriteHeader(http.StatusOK)
	})

	err := client.SendTripEnquiry(context.Background(), "9876543210", whatsapp.TripEnquiry{
		Service:  "Outstation",
		TripType: "one_way",
		Pickup:   "Delhi",
		Drop:     "Ajmer",
		Stops:    []string{"Jaipur", "Pushkar"},
		PickupAt: time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC),
	})
	assert.NoError(t, err)
}

func TestFormatStops(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Direct trip (no stops)", whatsapp.FormatStops(nil))
	assert.Equal(t, "Direct trip (no stops)", whatsapp.FormatStops([]string{" ", ""}))
	assert.Equal(t, "Jaipur", whatsapp.FormatStops([]string{"Jaipur"}))
	assert.Equal(t, "Jaipur → Pushkar", whatsapp.FormatStops([]string{"Jaipur", " Pushkar "}))
}

func TestFormatReturnDate(t *testing.T) {
	t.Parallel()

	ret := time.Date(2026, 4, 5, 18, 30, 0, 0, time.UTC)

	assert.Equal(t, "Not applicable (One way trip)", whatsapp.FormatReturnDate("one_way", ret))
	assert.Equal(t, "Not applicable (One way trip)", whatsapp.FormatReturnDate("ONE_WAY", ret))
	assert.Equal(t, "05 Apr 2026, 06:30 PM", whatsapp.FormatReturnDate("round_trip", ret))
	assert.Equal(t, "Not specified", whatsapp.FormatReturnDate("round_trip", time.Time{}))
}
