package leaderboard

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/gokatarajesh/sdk-quiz/internal/db/queries"
	httperrors "github.com/gokatarajesh/sdk-quiz/pkg/http/errors"
)

type snapshotReader interface {
	ListRecentSnapshots(ctx context.Context, arg queries.ListRecentSnapshotsParams) ([]queries.LeaderboardSnapshot, error)
}

// BankChecker reports whether a bank exists.
type BankChecker func(name string) bool

// HTTPHandler exposes REST endpoints for leaderboard queries.
type HTTPHandler struct {
	svc       *Service
	snapshots snapshotReader
	known     BankChecker
	logger    zerolog.Logger
}

// NewHTTPHandler constructs a leaderboard HTTP handler. snapshots may be nil.
func NewHTTPHandler(svc *Service, snapshots snapshotReader, known BankChecker, logger zerolog.Logger) *HTTPHandler {
	return &HTTPHandler{
		svc:       svc,
		snapshots: snapshots,
		known:     known,
		logger:    logger.With().Str("component", "leaderboard_http").Logger(),
	}
}

// HandleGet responds with the current leaderboard of a bank.
// Route: GET /v1/leaderboards/{bank}?limit=10
func (h *HTTPHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	bank := r.PathValue("bank")
	if bank == "" || (h.known != nil && !h.known(bank)) {
		httperrors.RespondNotFound(w, httperrors.ErrCodeUnknownBank, "Unknown question bank")
		return
	}
	limit := parseLimit(r, 10)

	ctx := r.Context()
	var (
		top    []Entry
		source = "redis"
		err    error
	)

	if h.svc != nil {
		top, err = h.svc.Top(ctx, bank, limit)
		if err != nil {
			h.logger.Warn().Err(err).Str("bank", bank).Msg("redis leaderboard fetch failed")
		}
	}

	if len(top) == 0 {
		if snap := h.snapshotFallback(ctx, bank, limit); snap != nil {
			source = "snapshot"
			top = snap
		} else if err != nil {
			httperrors.RespondServiceUnavailable(w, httperrors.ErrCodeLeaderboardFetchFailed, "Leaderboard unavailable")
			return
		}
	}
	if top == nil {
		top = []Entry{}
	}

	resp := map[string]interface{}{
		"bank":        bank,
		"top":         top,
		"source":      source,
		"retrievedAt": time.Now().UTC().Format(time.RFC3339),
	}

	writeJSON(w, resp)
}

func (h *HTTPHandler) snapshotFallback(ctx context.Context, bank string, limit int) []Entry {
	if h.snapshots == nil {
		return nil
	}
	rows, err := h.snapshots.ListRecentSnapshots(ctx, queries.ListRecentSnapshotsParams{
		Bank:  bank,
		Limit: 1,
	})
	if err != nil || len(rows) == 0 {
		if err != nil {
			h.logger.Warn().Err(err).Str("bank", bank).Msg("snapshot fetch failed")
		}
		return nil
	}

	var entries []Entry
	if err := json.Unmarshal(rows[0].Entries, &entries); err != nil {
		h.logger.Warn().Err(err).Msg("snapshot payload decode failed")
		return nil
	}
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}

func writeJSON(w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}
