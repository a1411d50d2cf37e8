// Package model defines the domain types and wire DTOs shared by the
// BitEvents API client and the development stub server.
package model

import "time"

// User is the account identity returned by the auth and profile endpoints.
type User struct {
	ID               int64      `json:"id"`
	FullName         string     `json:"fullName"`
	Email            string     `json:"email"`
	RegistrationDate *time.Time `json:"registrationDate,omitempty"`
	ProfilePicture   *string    `json:"profilePicture"`
	IsOrganizer      bool       `json:"isOrganizer"`
}

// Venue is where an event takes place. Latitude/longitude and the map link
// are optional; "online" events carry a venue whose city is "online".
type Venue struct {
	ID            int64    `json:"id,omitempty"`
	Name          string   `json:"name"`
	Address       string   `json:"address"`
	City          string   `json:"city"`
	Latitude      *float64 `json:"latitude,omitempty"`
	Longitude     *float64 `json:"longitude,omitempty"`
	GoogleMapsURL string   `json:"googleMapsUrl,omitempty"`
}

// Event is a single calendar item: conference, meetup, or hackathon.
type Event struct {
	ID               int64      `json:"id"`
	Name             string     `json:"name"`
	Description      string     `json:"description"`
	Type             string     `json:"type"`
	CreationDateTime time.Time  `json:"creationDateTime"`
	StartDateTime    time.Time  `json:"startDateTime"`
	EndDateTime      *time.Time `json:"endDateTime,omitempty"`
	Capacity         *int       `json:"capacity"`
	Price            float64    `json:"price"`
	ImageURL         *string    `json:"imageUrl"`
	Status           string     `json:"status"`
	Organizer        *User      `json:"organizer,omitempty"`
	Venue            *Venue     `json:"venue,omitempty"`
}

// EventDetail is the enriched payload of GET /events/{id}: the event plus
// registration context for the requesting user.
type EventDetail struct {
	Event
	RegistrationCount int64 `json:"registrationCount"`
	AvailableSpots    *int  `json:"availableSpots,omitempty"`
	IsUserRegistered  bool  `json:"isUserRegistered"`
}

// PagedEvents is the envelope of GET /events. Page numbers are 1-based.
type PagedEvents struct {
	Events     []Event `json:"events"`
	Total      int64   `json:"total"`
	Page       int     `json:"page"`
	Limit      int     `json:"limit"`
	TotalPages int     `json:"totalPages"`
}

// Registration is a user × event attendance record.
type Registration struct {
	ID               int64     `json:"id"`
	Event            *Event    `json:"event,omitempty"`
	UserID           int64     `json:"userId,omitempty"`
	RegistrationDate time.Time `json:"registrationDate"`
	Status           string    `json:"status"`
	TicketCode       string    `json:"ticketCode,omitempty"`
}

// SavedEvent is a user × event bookmark record.
type SavedEvent struct {
	ID        int64     `json:"id"`
	Event     *Event    `json:"event,omitempty"`
	UserID    int64     `json:"userId,omitempty"`
	SavedDate time.Time `json:"savedDate"`
}

// LoginRequest is the payload for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest is the payload for POST /auth/register.
type RegisterRequest struct {
	FullName    string `json:"fullName"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	IsOrganizer bool   `json:"isOrganizer"`
}

// AuthResponse is returned by both auth endpoints.
type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// EventRequest is the organizer payload for creating or updating an event.
// The venue is sent inline and upserted server-side.
type EventRequest struct {
	Name          string     `json:"name"`
	Description   string     `json:"description"`
	Type          string     `json:"type"`
	StartDateTime time.Time  `json:"startDateTime"`
	EndDateTime   *time.Time `json:"endDateTime,omitempty"`
	Capacity      *int       `json:"capacity,omitempty"`
	Price         float64    `json:"price"`
	ImageURL      *string    `json:"imageUrl,omitempty"`
	Venue         Venue      `json:"venue"`
}

// UpdateProfileRequest is the payload for PUT /users/me.
type UpdateProfileRequest struct {
	FullName       string  `json:"fullName"`
	ProfilePicture *string `json:"profilePicture,omitempty"`
}

// ChangePasswordRequest is the payload for PUT /users/me/password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// EventStatistics is the organizer view of a single event's registrations.
type EventStatistics struct {
	EventID            int64          `json:"eventId"`
	EventName          string         `json:"eventName"`
	TotalRegistrations int64          `json:"totalRegistrations"`
	Capacity           *int           `json:"capacity"`
	AvailableSpots     *int64         `json:"availableSpots"`
	Registrations      []Registration `json:"registrations"`
}

// OrganizerDashboard aggregates an organizer's events and registrations.
type OrganizerDashboard struct {
	TotalEvents        int64   `json:"totalEvents"`
	TotalRegistrations int64   `json:"totalRegistrations"`
	Events             []Event `json:"events"`
}

// ErrorResponse is the standard JSON error envelope of the REST API.
// Message takes precedence over Error when both are present.
type ErrorResponse struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Remaining returns the number of free spots, or -1 when the event has no
// capacity limit.
func (d *EventDetail) Remaining() int64 {
	if d.Capacity == nil {
		return -1
	}
	return int64(*d.Capacity) - d.RegistrationCount
}

// IsFull reports whether a capacity-limited event has no spots left.
func (d *EventDetail) IsFull() bool {
	return d.Capacity != nil && d.RegistrationCount >= int64(*d.Capacity)
}
