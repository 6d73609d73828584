package enquiry

import "context"

// Store is the interface for enquiry persistence.
type Store interface {
	// InsertContact stores a contact-form submission.
	InsertContact(ctx context.Context, c *Contact) error

	// ListContacts returns a driver's contact enquiries, newest first.
	ListContacts(ctx context.Context, driverID string) ([]Contact, error)

	// FindContact retrieves a contact enquiry by id.
	FindContact(ctx context.Context, id string) (*Contact, error)

	// DeleteContact removes a contact enquiry by id.
	DeleteContact(ctx context.Context, id string) error

	// MarkContactNotified flags a contact enquiry as forwarded to WhatsApp.
	MarkContactNotified(ctx context.Context, id string) error

	// InsertTrip stores a trip booking request.
	InsertTrip(ctx context.Context, t *Trip) error

	// ListTrips returns a driver's trip enquiries, newest first.
	ListTrips(ctx context.Context, driverID string) ([]Trip, error)

	// FindTrip retrieves a trip enquiry by id.
	FindTrip(ctx context.Context, id string) (*Trip, error)

	// UpdateTripStatus moves a trip enquiry through its lifecycle.
	UpdateTripStatus(ctx context.Context, id string, status TripStatus) error

	// DeleteTrip removes a trip enquiry by id.
	DeleteTrip(ctx context.Context, id string) error

	// MarkTripNotified flags a trip enquiry as forwarded to WhatsApp.
	MarkTripNotified(ctx context.Context, id string) error
}
