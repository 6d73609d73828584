package enquiry

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/taxisafar/sitekit/notify/whatsapp"
	"github.com/taxisafar/sitekit/website"
)

// Notifier forwards enquiries to the driver over WhatsApp. Implemented by
// whatsapp.Client.
type Notifier interface {
	SendContactEnquiry(ctx context.Context, driverPhone string, e whatsapp.ContactEnquiry) error
	SendTripEnquiry(ctx context.Context, driverPhone string, e whatsapp.TripEnquiry) error
}

// SiteDirectory resolves driver contact details. Implemented by
// website.Service.
type SiteDirectory interface {
	Get(ctx context.Context, driverID string) (*website.Website, error)
}

// Service records enquiries from public sites and forwards them to drivers.
type Service struct {
	store    Store
	sites    SiteDirectory
	notifier Notifier
	log      *slog.Logger
}

// NewService creates an enquiry service. The notifier may be nil, in which
// case enquiries are stored without a WhatsApp forward.
func NewService(store Store, sites SiteDirectory, notifier Notifier, log *slog.Logger) *Service {
	if store == nil || sites == nil {
		panic("enquiry: Store and SiteDirectory are required")
	}
	if log == nil {
		log = slog.Default()
	}

	return &Service{
		store:    store,
		sites:    sites,
		notifier: notifier,
		log:      log,
	}
}

// CreateContact stores a contact-form submission and forwards it to the
// driver. The forward is best effort: a WhatsApp failure is logged and the
// enquiry still succeeds, since losing a lead is worse than a missed ping.
func (s *Service) CreateContact(ctx context.Context, c Contact) (*Contact, error) {
	if c.DriverID == "" || c.Name == "" || c.Phone == "" {
		return nil, fmt.Errorf("%w: driver, name and phone are required", ErrInvalidEnquiry)
	}

	if err := s.store.InsertContact(ctx, &c); err != nil {
		return nil, err
	}

	if phone := s.driverPhone(ctx, c.DriverID); phone != "" && s.notifier != nil {
		err := s.notifier.SendContactEnquiry(ctx, phone, whatsapp.ContactEnquiry{
			Name:     c.Name,
			Phone:    c.Phone,
			TripType: c.TripType,
			Message:  c.Message,
		})
		if err != nil {
			s.log.WarnContext(ctx, "failed to forward contact enquiry",
				"driver_id", c.DriverID, "enquiry_id", c.ID, "error", err)
		} else {
			c.WhatsappSent = true
			if err := s.store.MarkContactNotified(ctx, c.ID); err != nil {
				s.log.WarnContext(ctx, "failed to flag contact enquiry as notified",
					"enquiry_id", c.ID, "error", err)
			}
		}
	}

	return &c, nil
}

// ListContacts returns a driver's contact enquiries, newest first.
func (s *Service) ListContacts(ctx context.Context, driverID string) ([]Contact, error) {
	return s.store.ListContacts(ctx, driverID)
}

// GetContact retrieves a contact enquiry by id.
func (s *Service) GetContact(ctx context.Context, id string) (*Contact, error) {
	return s.store.FindContact(ctx, id)
}

// DeleteContact removes a contact enquiry.
func (s *Service) DeleteContact(ctx context.Context, id string) error {
	return s.store.DeleteContact(ctx, id)
}

// CreateTrip stores a trip booking request and forwards it to the driver.
func (s *Service) CreateTrip(ctx context.Context, t Trip) (*Trip, error) {
	if t.DriverID == "" || t.Name == "" || t.Phone == "" || t.Pickup == "" {
		return nil, fmt.Errorf("%w: driver, name, phone and pickup are required", ErrInvalidEnquiry)
	}
	if !t.TripType.Valid() {
		return nil, fmt.Errorf("%w: unknown trip type %q", ErrInvalidEnquiry, t.TripType)
	}
	t.Status = StatusPending

	if err := s.store.InsertTrip(ctx, &t); err != nil {
		return nil, err
	}

	if phone := s.driverPhone(ctx, t.DriverID); phone != "" && s.notifier != nil {
		err := s.notifier.SendTripEnquiry(ctx, phone, whatsapp.TripEnquiry{
			Service:  t.Service,
			TripType: string(t.TripType),
			Pickup:   t.Pickup,
			Drop:     t.Drop,
			Stops:    t.Stops,
			PickupAt: t.PickupAt,
			ReturnAt: t.ReturnAt,
		})
		if err != nil {
			s.log.WarnContext(ctx, "failed to forward trip enquiry",
				"driver_id", t.DriverID, "enquiry_id", t.ID, "error", err)
		} else {
			t.WhatsappSent = true
			if err := s.store.MarkTripNotified(ctx, t.ID); err != nil {
				s.log.WarnContext(ctx, "failed to flag trip enquiry as notified",
					"enquiry_id", t.ID, "error", err)
			}
		}
	}

	return &t, nil
}

// ListTrips returns a driver's trip enquiries, newest first.
func (s *Service) ListTrips(ctx context.Context, driverID string) ([]Trip, error) {
	return s.store.ListTrips(ctx, driverID)
}

// GetTrip retrieves a trip enquiry by id.
func (s *Service) GetTrip(ctx context.Context, id string) (*Trip, error) {
	return s.store.FindTrip(ctx, id)
}

// UpdateTripStatus moves a trip enquiry through its lifecycle.
func (s *Service) UpdateTripStatus(ctx context.Context, id string, status TripStatus) (*Trip, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	if err := s.store.UpdateTripStatus(ctx, id, status); err != nil {
		return nil, err
	}
	return s.store.FindTrip(ctx, id)
}

// DeleteTrip removes a trip enquiry.
func (s *Service) DeleteTrip(ctx context.Context, id string) error {
	return s.store.DeleteTrip(ctx, id)
}

// driverPhone resolves where to forward an enquiry, preferring the driver's
// WhatsApp number over the general phone.
func (s *Service) driverPhone(ctx context.Context, driverID string) string {
	site, err := s.sites.Get(ctx, driverID)
	if err != nil {
		s.log.WarnContext(ctx, "failed to resolve driver for enquiry forward",
			"driver_id", driverID, "error", err)
		return ""
	}
	if site.BasicInfo.WhatsappNumber != "" {
		return site.BasicInfo.WhatsappNumber
	}
	return site.BasicInfo.Phone
}
