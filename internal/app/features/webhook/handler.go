package webhook

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	communitystore "github.com/dalemusser/threads/internal/app/store/communities"
	"github.com/dalemusser/threads/internal/app/system/limits"
	"github.com/dalemusser/threads/internal/app/system/metrics"
	"github.com/dalemusser/threads/internal/app/system/timeouts"
	"github.com/dalemusser/threads/internal/domain/models"
	"github.com/goccy/go-json"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// MaxBodyBytes caps the raw body read before verification.
const MaxBodyBytes = limits.MaxWebhookBodySize

// CommunitySyncer is the persistence the synchronizer drives.
// *communitystore.Store implements it.
type CommunitySyncer interface {
	Create(ctx context.Context, nc communitystore.NewCommunity) (models.Community, error)
	AddMember(ctx context.Context, externalID, userAuthID string) (bool, error)
	RemoveMember(ctx context.Context, externalID, userAuthID string) (bool, error)
	UpdateInfo(ctx context.Context, in communitystore.Info) error
	Delete(ctx context.Context, externalID string) (bool, error)
}

type Handler struct {
	Communities CommunitySyncer
	Verifier    *Verifier
	Log         *zap.Logger
}

func NewHandler(db *mongo.Database, verifier *Verifier, logger *zap.Logger) *Handler {
	return &Handler{
		Communities: communitystore.New(db),
		Verifier:    verifier,
		Log:         logger,
	}
}

type response struct {
	Message string `json:"message"`
}

const (
	msgInternal    = "Internal Server Error"
	msgUnavailable = "Service Unavailable"
)

// ServeClerk handles POST /api/webhook/clerk.
//
// Order: read (capped) -> verify signature -> parse -> dispatch. Nothing is
// written unless verification and parsing both succeed.
func (h *Handler) ServeClerk(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	label, outcome := "", metrics.OutcomeRejected
	defer func() { metrics.RecordWebhook(label, outcome, time.Since(start)) }()

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.Log.Warn("webhook body too large", zap.Int64("limit", tooLarge.Limit))
			writeJSON(w, http.StatusRequestEntityTooLarge, "Payload too large")
			return
		}
		h.Log.Warn("webhook body read failed", zap.Error(err))
		writeJSON(w, http.StatusBadRequest, "Failed to read request body")
		return
	}

	sentAt, err := h.Verifier.Verify(body, r.Header)
	if err != nil {
		h.Log.Warn("webhook rejected",
			zap.String("svix_id", r.Header.Get("svix-id")),
			zap.Error(err))
		writeJSON(w, http.StatusBadRequest, err.Error())
		return
	}

	ev, err := ParseEvent(body)
	if err != nil {
		h.Log.Warn("webhook payload invalid",
			zap.String("svix_id", r.Header.Get("svix-id")),
			zap.Error(err))
		writeJSON(w, http.StatusBadRequest, err.Error())
		return
	}

	label = metricLabel(ev)
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "webhook "+label)
	defer cancel()

	log := h.Log.With(
		zap.String("event_type", ev.Type()),
		zap.String("svix_id", r.Header.Get("svix-id")),
	)
	var status int
	var msg string
	status, msg, outcome = h.dispatch(ctx, log, ev, versionOf(ev, sentAt.UnixMilli()))
	writeJSON(w, status, msg)
}

// dispatch applies one event. The switch covers every Event type ParseEvent produces.
func (h *Handler) dispatch(ctx context.Context, log *zap.Logger, ev Event, version int64) (int, string, string) {
	switch e := ev.(type) {
	case OrganizationCreated:
		c, err := h.Communities.Create(ctx, communitystore.NewCommunity{
			ExternalID:      e.ID,
			Name:            e.Name,
			Username:        e.Slug,
			Image:           e.Image(),
			Bio:             models.DefaultCommunityBio,
			CreatedByAuthID: e.CreatedBy,
			Version:         version,
		})
		if err != nil {
			return fail(log, "create community", err, zap.String("community_id", e.ID))
		}
		log.Info("community created",
			zap.String("community_id", c.ExternalID),
			zap.Bool("creator_linked", c.CreatedBy != nil))
		return http.StatusCreated, "User created", metrics.OutcomeApplied

	case InvitationCreated:
		log.Info("invitation created",
			zap.String("invitation_id", e.ID),
			zap.String("community_id", e.OrganizationID),
			zap.String("status", e.Status))
		return http.StatusCreated, "Invitation created", metrics.OutcomeApplied

	case MembershipCreated:
		applied, err := h.Communities.AddMember(ctx, e.OrganizationID(), e.UserID())
		if err != nil {
			return fail(log, "add member", err, zap.String("community_id", e.OrganizationID()), zap.String("user_id", e.UserID()))
		}
		return membershipResult(log, applied, e.Membership, "Invitation accepted")

	case MembershipDeleted:
		applied, err := h.Communities.RemoveMember(ctx, e.OrganizationID(), e.UserID())
		if err != nil {
			return fail(log, "remove member", err, zap.String("community_id", e.OrganizationID()), zap.String("user_id", e.UserID()))
		}
		return membershipResult(log, applied, e.Membership, "Member removed")

	case OrganizationUpdated:
		err := h.Communities.UpdateInfo(ctx, communitystore.Info{
			ExternalID: e.ID,
			Name:       e.Name,
			Username:   e.Slug,
			Image:      e.Image(),
			Version:    version,
		})
		switch {
		case err == nil:
			log.Info("community updated", zap.String("community_id", e.ID), zap.Int64("version", version))
			return http.StatusCreated, "Community updated", metrics.OutcomeApplied
		case errors.Is(err, communitystore.ErrNotFound), errors.Is(err, communitystore.ErrStaleVersion):
			log.Info("community update skipped",
				zap.String("community_id", e.ID),
				zap.Int64("version", version),
				zap.String("reason", err.Error()))
			return http.StatusCreated, "Community updated", metrics.OutcomeStale
		default:
			return fail(log, "update community", err, zap.String("community_id", e.ID))
		}

	case OrganizationDeleted:
		deleted, err := h.Communities.Delete(ctx, e.ID)
		if err != nil {
			return fail(log, "delete community", err, zap.String("community_id", e.ID))
		}
		if !deleted {
			log.Info("community delete skipped: not found", zap.String("community_id", e.ID))
			return http.StatusCreated, "Organization deleted", metrics.OutcomeIgnored
		}
		log.Info("community deleted", zap.String("community_id", e.ID))
		return http.StatusCreated, "Organization deleted", metrics.OutcomeApplied

	default:
		log.Debug("webhook event ignored")
		return http.StatusOK, "Event ignored", metrics.OutcomeIgnored
	}
}

func membershipResult(log *zap.Logger, applied bool, m Membership, msg string) (int, string, string) {
	fields := []zap.Field{zap.String("community_id", m.OrganizationID()), zap.String("user_id", m.UserID())}
	if !applied {
		log.Info("membership change skipped: community or user missing", fields...)
		return http.StatusCreated, msg, metrics.OutcomeIgnored
	}
	log.Info("membership changed", fields...)
	return http.StatusCreated, msg, metrics.OutcomeApplied
}

func fail(log *zap.Logger, op string, err error, fields ...zap.Field) (int, string, string) {
	log.Error("webhook "+op+" failed", append(fields, zap.Error(err))...)
	return http.StatusInternalServerError, msgInternal, metrics.OutcomeFailed
}

// metricLabel keeps the type label bounded: unknown types share one series.
func metricLabel(ev Event) string {
	if _, ok := ev.(Unrecognized); ok {
		return "unrecognized"
	}
	return ev.Type()
}

// ServeUnavailable answers a delivery that arrived while the database is
// unreachable. The provider retries non-2xx deliveries.
func ServeUnavailable(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusServiceUnavailable, msgUnavailable)
}

func writeJSON(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(response{Message: msg})
}
