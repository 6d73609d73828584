package enquiry

import "time"

// TripType is how the customer wants to travel.
type TripType string

const (
	TripOneWay    TripType = "one_way"
	TripRoundTrip TripType = "round_trip"
	TripLocal     TripType = "local"
)

// Valid reports whether the trip type is known.
func (t TripType) Valid() bool {
	return t == TripOneWay || t == TripRoundTrip || t == TripLocal
}

// TripStatus is the driver-facing lifecycle of a trip enquiry.
type TripStatus string

const (
	StatusPending   TripStatus = "pending"
	StatusConfirmed TripStatus = "confirmed"
	StatusCompleted TripStatus = "completed"
	StatusCancelled TripStatus = "cancelled"
)

// Valid reports whether the status is known.
func (s TripStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Contact is a contact-form submission from a driver's public site.
type Contact struct {
	ID           string    `bson:"-" json:"id"`
	DriverID     string    `bson:"driverId" json:"driverId"`
	Name         string    `bson:"name" json:"name"`
	Phone        string    `bson:"phone" json:"phone"`
	Email        string    `bson:"email,omitempty" json:"email,omitempty"`
	TripType     string    `bson:"tripType,omitempty" json:"tripType,omitempty"`
	Message      string    `bson:"message,omitempty" json:"message,omitempty"`
	WhatsappSent bool      `bson:"whatsappSent" json:"whatsappSent"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
}

// Trip is a structured trip booking request from a driver's public site.
type Trip struct {
	ID           string     `bson:"-" json:"id"`
	DriverID     string     `bson:"driverId" json:"driverId"`
	WebsiteID    string     `bson:"websiteId,omitempty" json:"websiteId,omitempty"`
	Name         string     `bson:"name" json:"name"`
	Phone        string     `bson:"phone" json:"phone"`
	Service      string     `bson:"service,omitempty" json:"service,omitempty"`
	TripType     TripType   `bson:"tripType" json:"tripType"`
	Pickup       string     `bson:"pickup" json:"pickup"`
	Drop         string     `bson:"drop,omitempty" json:"drop,omitempty"`
	Stops        []string   `bson:"stops,omitempty" json:"stops,omitempty"`
	PickupAt     time.Time  `bson:"pickupAt,omitempty" json:"pickupAt,omitempty"`
	ReturnAt     time.Time  `bson:"returnAt,omitempty" json:"returnAt,omitempty"`
	Status       TripStatus `bson:"status" json:"status"`
	WhatsappSent bool       `bson:"whatsappSent" json:"whatsappSent"`
	CreatedAt    time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time  `bson:"updatedAt" json:"updatedAt"`
}
