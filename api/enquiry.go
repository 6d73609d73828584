package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taxisafar/sitekit/enquiry"
)

func (h *Handler) createContactEnquiry(w http.ResponseWriter, r *http.Request) {
	var c enquiry.Contact
	if err := decode(w, r, &c); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	c.DriverID = driverID(r)

	created, err := h.enquiries.CreateContact(r.Context(), c)
	if err != nil {
		fail(w, err)
		return
	}
	respondMessage(w, http.StatusCreated, "enquiry received", created)
}

func (h *Handler) listContactEnquiries(w http.ResponseWriter, r *http.Request) {
	contacts, err := h.enquiries.ListContacts(r.Context(), driverID(r))
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, contacts)
}

func (h *Handler) deleteContactEnquiry(w http.ResponseWriter, r *http.Request) {
	if err := h.enquiries.DeleteContact(r.Context(), chi.URLParam(r, "enquiryID")); err != nil {
		fail(w, err)
		return
	}
	respondMessage(w, http.StatusOK, "enquiry deleted", nil)
}

func (h *Handler) createTripEnquiry(w http.ResponseWriter, r *http.Request) {
	var t enquiry.Trip
	if err := decode(w, r, &t); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	t.DriverID = driverID(r)

	created, err := h.enquiries.CreateTrip(r.Context(), t)
	if err != nil {
		fail(w, err)
		return
	}
	respondMessage(w, http.StatusCreated, "enquiry received", created)
}

func (h *Handler) listTripEnquiries(w http.ResponseWriter, r *http.Request) {
	trips, err := h.enquiries.ListTrips(r.Context(), driverID(r))
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, trips)
}

type updateTripStatusRequest struct {
	Status enquiry.TripStatus `json:"status"`
}

func (h *Handler) updateTripStatus(w http.ResponseWriter, r *http.Request) {
	var req updateTripStatusRequest
	if err := decode(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	trip, err := h.enquiries.UpdateTripStatus(r.Context(), chi.URLParam(r, "enquiryID"), req.Status)
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, trip)
}

func (h *Handler) deleteTripEnquiry(w http.ResponseWriter, r *http.Request) {
	if err := h.enquiries.DeleteTrip(r.Context(), chi.URLParam(r, "enquiryID")); err != nil {
		fail(w, err)
		return
	}
	respondMessage(w, http.StatusOK, "enquiry deleted", nil)
}
