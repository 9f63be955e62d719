package webhook_test

import (
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dalemusser/threads/internal/app/features/webhook"
	svix "github.com/svix/svix-webhooks/go"
)

var testSecret = "whsec_" + base64.StdEncoding.EncodeToString([]byte("threads-webhook-test-secret-0001"))

var msgSeq atomic.Int64

func newVerifier(t *testing.T) *webhook.Verifier {
	t.Helper()
	v, err := webhook.NewVerifier(testSecret)
	if err != nil {
		t.Fatalf("NewVerifier: %v", err)
	}
	return v
}

// signedRequestAt builds a delivery signed with secret at ts.
func signedRequestAt(t *testing.T, secret, body string, ts time.Time) *http.Request {
	t.Helper()
	wh, err := svix.NewWebhook(secret)
	if err != nil {
		t.Fatalf("svix.NewWebhook: %v", err)
	}
	id := "msg_" + strconv.FormatInt(msgSeq.Add(1), 10)
	sig, err := wh.Sign(id, ts, []byte(body))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/webhook/clerk", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("svix-id", id)
	req.Header.Set("svix-timestamp", strconv.FormatInt(ts.Unix(), 10))
	req.Header.Set("svix-signature", sig)
	return req
}

func signedRequest(t *testing.T, body string) *http.Request {
	t.Helper()
	return signedRequestAt(t, testSecret, body, time.Now())
}

const (
	orgCreatedBody = `{"type":"organization.created","object":"event","data":{"id":"org_1","name":"acme","slug":"acme","logo_url":"https://img.example.com/acme.png","created_by":"user_1","updated_at":1700000000000}}`
	orgUpdatedBody = `{"type":"organization.updated","object":"event","data":{"id":"org_1","name":"Acme Inc","slug":"acme-inc","logo_url":"https://img.example.com/acme2.png","updated_at":1700000005000}}`
	orgDeletedBody = `{"type":"organization.deleted","object":"event","data":{"id":"org_1","deleted":true}}`
	memberAddBody  = `{"type":"organizationMembership.created","object":"event","data":{"organization":{"id":"org_1"},"public_user_data":{"user_id":"user_2"}}}`
	memberDelBody  = `{"type":"organizationMembership.deleted","object":"event","data":{"organization":{"id":"org_1"},"public_user_data":{"user_id":"user_2"}}}`
	inviteBody     = `{"type":"organizationInvitation.created","object":"event","data":{"id":"orginv_1","email_address":"a@example.com","organization_id":"org_1","status":"pending"}}`
	unknownBody    = `{"type":"user.created","object":"event","data":{"id":"user_9"}}`
)

func body(rec *httptest.ResponseRecorder) string {
	return strings.TrimSpace(rec.Body.String())
}
