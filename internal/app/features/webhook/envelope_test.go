package webhook_test

import (
	"errors"
	"testing"

	"github.com/dalemusser/threads/internal/app/features/webhook"
)

func TestParseEvent_Variants(t *testing.T) {
	tests := []struct {
		payload string
		want    string
	}{
		{orgCreatedBody, webhook.TypeOrganizationCreated},
		{orgUpdatedBody, webhook.TypeOrganizationUpdated},
		{orgDeletedBody, webhook.TypeOrganizationDeleted},
		{memberAddBody, webhook.TypeMembershipCreated},
		{memberDelBody, webhook.TypeMembershipDeleted},
		{inviteBody, webhook.TypeInvitationCreated},
		{unknownBody, "user.created"},
	}
	for _, tc := range tests {
		ev, err := webhook.ParseEvent([]byte(tc.payload))
		if err != nil {
			t.Errorf("%s: unexpected error: %v", tc.want, err)
			continue
		}
		if ev.Type() != tc.want {
			t.Errorf("Type() = %q, want %q", ev.Type(), tc.want)
		}
	}
}

func TestParseEvent_MembershipFields(t *testing.T) {
	ev, err := webhook.ParseEvent([]byte(memberAddBody))
	if err != nil {
		t.Fatalf("ParseEvent: %v", err)
	}
	m, ok := ev.(webhook.MembershipCreated)
	if !ok {
		t.Fatalf("got %T, want MembershipCreated", ev)
	}
	if m.OrganizationID() != "org_1" || m.UserID() != "user_2" {
		t.Errorf("edge = %s/%s", m.OrganizationID(), m.UserID())
	}
}

func TestParseEvent_UnknownTypeSkipsData(t *testing.T) {
	// Data shape is irrelevant for types we do not handle.
	ev, err := webhook.ParseEvent([]byte(`{"type":"session.created","data":[1,2,3]}`))
	if err != nil {
		t.Fatalf("ParseEvent: %v", err)
	}
	if _, ok := ev.(webhook.Unrecognized); !ok {
		t.Errorf("got %T, want Unrecognized", ev)
	}
}

func TestParseEvent_UnknownTypeWithoutData(t *testing.T) {
	for _, body := range []string{
		`{"type":"session.created"}`,
		`{"type":"email.created","data":null}`,
	} {
		ev, err := webhook.ParseEvent([]byte(body))
		if err != nil {
			t.Errorf("ParseEvent(%s): %v", body, err)
			continue
		}
		if _, ok := ev.(webhook.Unrecognized); !ok {
			t.Errorf("ParseEvent(%s) = %T, want Unrecognized", body, ev)
		}
	}
}

func TestParseEvent_RecognizedTypeRequiresData(t *testing.T) {
	for _, body := range []string{
		`{"type":"organization.deleted"}`,
		`{"type":"organization.deleted","data":null}`,
	} {
		if _, err := webhook.ParseEvent([]byte(body)); !errors.Is(err, webhook.ErrInvalidEvent) {
			t.Errorf("ParseEvent(%s) err = %v, want ErrInvalidEvent", body, err)
		}
	}
}

func TestParseEvent_InvalidWrapsSentinel(t *testing.T) {
	_, err := webhook.ParseEvent([]byte(`{"type":"organization.updated","data":{"id":"org_1"}}`))
	if !errors.Is(err, webhook.ErrInvalidEvent) {
		t.Fatalf("err = %v, want ErrInvalidEvent", err)
	}
}

func TestOrganizationCreated_Image(t *testing.T) {
	e := webhook.OrganizationCreated{LogoURL: "logo", ImageURL: "img"}
	if e.Image() != "logo" {
		t.Errorf("Image() = %q, want logo", e.Image())
	}
	e.LogoURL = ""
	if e.Image() != "img" {
		t.Errorf("Image() = %q, want img", e.Image())
	}
}

func TestNewVerifier_BadSecret(t *testing.T) {
	v, err := webhook.NewVerifier("whsec_%%%not-base64")
	if err == nil {
		t.Fatal("expected error for malformed secret")
	}
	if _, err := v.Verify([]byte(`{}`), nil); !errors.Is(err, webhook.ErrVerification) {
		t.Errorf("Verify err = %v, want ErrVerification", err)
	}
}
