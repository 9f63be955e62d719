package webhook

import (
	"errors"
	"fmt"

	"github.com/dalemusser/threads/internal/app/system/inputval"
	"github.com/goccy/go-json"
)

// ErrInvalidEvent wraps every envelope or payload that fails to parse or validate.
var ErrInvalidEvent = errors.New("invalid webhook event")

// Recognized event types.
const (
	TypeOrganizationCreated = "organization.created"
	TypeInvitationCreated   = "organizationInvitation.created"
	TypeMembershipCreated   = "organizationMembership.created"
	TypeMembershipDeleted   = "organizationMembership.deleted"
	TypeOrganizationUpdated = "organization.updated"
	TypeOrganizationDeleted = "organization.deleted"
)

// Event is one parsed webhook payload. The concrete type tells the handler
// which branch applies; Unrecognized covers every other type string.
type Event interface {
	Type() string
}

type envelope struct {
	Type   string          `json:"type" validate:"required" label:"type"`
	Object string          `json:"object"`
	Data   json.RawMessage `json:"data"`
}

// OrganizationCreated carries a new organization.
type OrganizationCreated struct {
	ID        string `json:"id" validate:"required" label:"id"`
	Name      string `json:"name" validate:"required" label:"name"`
	Slug      string `json:"slug" validate:"required" label:"slug"`
	LogoURL   string `json:"logo_url" validate:"required_without=ImageURL" label:"logo_url"`
	ImageURL  string `json:"image_url"`
	CreatedBy string `json:"created_by" validate:"required" label:"created_by"`
	UpdatedAt int64  `json:"updated_at"`
}

func (OrganizationCreated) Type() string { return TypeOrganizationCreated }

// Image prefers the logo over the generic image.
func (e OrganizationCreated) Image() string {
	if e.LogoURL != "" {
		return e.LogoURL
	}
	return e.ImageURL
}

// InvitationCreated is acknowledged and logged; invitations are not stored.
type InvitationCreated struct {
	ID             string `json:"id"`
	EmailAddress   string `json:"email_address"`
	OrganizationID string `json:"organization_id"`
	Role           string `json:"role"`
	Status         string `json:"status"`
}

func (InvitationCreated) Type() string { return TypeInvitationCreated }

type orgRef struct {
	ID string `json:"id" validate:"required" label:"organization.id"`
}

type userRef struct {
	UserID string `json:"user_id" validate:"required" label:"public_user_data.user_id"`
}

// Membership is the shared payload of membership created and deleted events.
type Membership struct {
	Organization   orgRef  `json:"organization"`
	PublicUserData userRef `json:"public_user_data"`
}

// OrganizationID is the organization (community) of the edge.
func (m Membership) OrganizationID() string { return m.Organization.ID }

// UserID is the identity-provider user of the edge.
func (m Membership) UserID() string { return m.PublicUserData.UserID }

type MembershipCreated struct{ Membership }

func (MembershipCreated) Type() string { return TypeMembershipCreated }

type MembershipDeleted struct{ Membership }

func (MembershipDeleted) Type() string { return TypeMembershipDeleted }

// OrganizationUpdated carries the fields a community mirrors.
type OrganizationUpdated struct {
	ID        string `json:"id" validate:"required" label:"id"`
	Name      string `json:"name" validate:"required" label:"name"`
	Slug      string `json:"slug" validate:"required" label:"slug"`
	LogoURL   string `json:"logo_url" validate:"required_without=ImageURL" label:"logo_url"`
	ImageURL  string `json:"image_url"`
	UpdatedAt int64  `json:"updated_at"`
}

func (OrganizationUpdated) Type() string { return TypeOrganizationUpdated }

func (e OrganizationUpdated) Image() string {
	if e.LogoURL != "" {
		return e.LogoURL
	}
	return e.ImageURL
}

type OrganizationDeleted struct {
	ID      string `json:"id" validate:"required" label:"id"`
	Deleted bool   `json:"deleted"`
}

func (OrganizationDeleted) Type() string { return TypeOrganizationDeleted }

// Unrecognized is any event type the synchronizer does not handle.
type Unrecognized struct {
	Kind string
}

func (u Unrecognized) Type() string { return u.Kind }

// ParseEvent decodes and validates a verified body. Unknown types parse to
// Unrecognized without looking at data, so a missing data key is only an
// error for recognized types.
func ParseEvent(body []byte) (Event, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}
	if res := inputval.Validate(env); res.HasErrors() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidEvent, res.All())
	}

	switch env.Type {
	case TypeOrganizationCreated:
		return decode[OrganizationCreated](env.Data)
	case TypeInvitationCreated:
		return decode[InvitationCreated](env.Data)
	case TypeMembershipCreated:
		return decode[MembershipCreated](env.Data)
	case TypeMembershipDeleted:
		return decode[MembershipDeleted](env.Data)
	case TypeOrganizationUpdated:
		return decode[OrganizationUpdated](env.Data)
	case TypeOrganizationDeleted:
		return decode[OrganizationDeleted](env.Data)
	default:
		return Unrecognized{Kind: env.Type}, nil
	}
}

func decode[T Event](data json.RawMessage) (Event, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, fmt.Errorf("%w: data is required", ErrInvalidEvent)
	}
	var ev T
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}
	if res := inputval.Validate(ev); res.HasErrors() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidEvent, res.All())
	}
	return ev, nil
}

// versionOf returns the event's own updated_at when it carries one, else
// fallback (the verified delivery timestamp in ms). Only community fields are
// sequenced; membership edges are applied in arrival order.
func versionOf(ev Event, fallback int64) int64 {
	var v int64
	switch e := ev.(type) {
	case OrganizationCreated:
		v = e.UpdatedAt
	case OrganizationUpdated:
		v = e.UpdatedAt
	}
	if v > 0 {
		return v
	}
	return fallback
}
