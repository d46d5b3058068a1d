package careers

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"footybrain/internal/apperr"
	"footybrain/internal/dbx"
)

// Transactor is the slice of dbx.Pool that Service needs, narrowed to an
// interface so tests can run against MemoryRepository without a live
// database.
type Transactor interface {
	WithTx(ctx context.Context, fn func(pgx.Tx) error) error
	WithTxOpt(ctx context.Context, tx pgx.Tx, fn func(pgx.Tx) error) error
}

type Service struct {
	db   Transactor
	repo Repository
}

func NewService(db Transactor, repo Repository) *Service {
	return &Service{db: db, repo: repo}
}

// CreateInput mirrors spec.md §4.3's createPlayer signature.
type CreateInput struct {
	PlayerID    string
	UserID      string
	DisplayName string
	Rating      *int
	League      *League
}

// CreatePlayer idempotently inserts a player row and a zeroed CoachStats
// row for the owning coach. Existing rows are preserved on conflict,
// with only DisplayName optionally refreshed.
func (s *Service) CreatePlayer(ctx context.Context, in CreateInput) (*Player, error) {
	if in.PlayerID == "" || in.UserID == "" {
		return nil, apperr.Validation("player_id and user_id are required")
	}

	rating := defaultRating()
	if in.Rating != nil {
		rating = *in.Rating
	}
	league := defaultLeague()
	if in.League != nil {
		league = *in.League
	}

	p := &Player{
		ID:            in.PlayerID,
		UserID:        in.UserID,
		DisplayName:   in.DisplayName,
		OverallRating: rating,
		CurrentLeague: league,
	}

	err := s.db.WithTx(ctx, func(tx pgx.Tx) error {
		if _, err := s.repo.UpsertPlayer(ctx, tx, p); err != nil {
			return dbx.ClassifyError(err)
		}
		if err := s.repo.UpsertZeroedCoachStats(ctx, tx, in.UserID, in.DisplayName); err != nil {
			return dbx.ClassifyError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// UpdateProgressInput requires at least one of Rating/League set.
type UpdateProgressInput struct {
	PlayerID string
	Rating   *int
	League   *League
}

// UpdatePlayerProgress updates rating/league only while the player is
// still active; it silently no-ops (returns nil, nil) once completed.
func (s *Service) UpdatePlayerProgress(ctx context.Context, in UpdateProgressInput) (*Player, error) {
	if in.PlayerID == "" {
		return nil, apperr.Validation("player_id is required")
	}
	if in.Rating == nil && in.League == nil {
		return nil, apperr.Validation("at least one of rating or league is required")
	}

	var result *Player
	err := s.db.WithTx(ctx, func(tx pgx.Tx) error {
		p, err := s.repo.UpdateProgress(ctx, tx, in.PlayerID, in.Rating, in.League)
		if dbx.IsNoRows(err) {
			result = nil
			return nil
		}
		if err != nil {
			return dbx.ClassifyError(err)
		}
		result = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// GetPlayer reads a single player by id, returning (nil, nil) if absent —
// the caller decides whether that is a 404.
func (s *Service) GetPlayer(ctx context.Context, playerID string) (*Player, error) {
	var p *Player
	err := s.db.WithTx(ctx, func(tx pgx.Tx) error {
		var err error
		p, err = s.repo.GetPlayer(ctx, tx, playerID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// CompletePlayerCareer is the keystone atomic operation from spec.md
// §4.3: lock, stamp completion, record CareerCompletion, roll CoachStats
// forward, and credit the coach's active squad by one point. tx is
// optional — when non-nil (called from the sweep engine) the whole
// pipeline composes into the caller's transaction instead of opening its
// own.
func (s *Service) CompletePlayerCareer(ctx context.Context, tx pgx.Tx, playerID string) (*CompletionResult, error) {
	if playerID == "" {
		return nil, apperr.Validation("player_id is required")
	}

	var result *CompletionResult
	err := s.db.WithTxOpt(ctx, tx, func(tx pgx.Tx) error {
		r, err := s.completeLocked(ctx, tx, playerID)
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Service) completeLocked(ctx context.Context, tx pgx.Tx, playerID string) (*CompletionResult, error) {
	player, err := s.repo.LockPlayer(ctx, tx, playerID)
	if err != nil {
		return nil, dbx.ClassifyError(err)
	}
	if player == nil {
		return nil, apperr.NotFoundf("player %s not found", playerID)
	}
	if player.CareerStatus == StatusCompleted {
		return &CompletionResult{AlreadyCompleted: true}, nil
	}

	now := time.Now()
	daysToPremier := daysSince(player.CareerStartedAt, now)

	if err := s.repo.MarkPlayerCompleted(ctx, tx, playerID, now); err != nil {
		return nil, dbx.ClassifyError(err)
	}

	completion := &CareerCompletion{
		ID:            uuid.NewString(),
		PlayerID:      playerID,
		UserID:        player.UserID,
		DaysToPremier: daysToPremier,
		CompletedAt:   now,
	}
	inserted, err := s.repo.InsertCompletion(ctx, tx, completion)
	if err != nil {
		return nil, dbx.ClassifyError(err)
	}
	if !inserted {
		// Lost the race to a concurrent completer despite holding the row
		// lock (e.g. a prior attempt committed between our lock and this
		// insert in a lower isolation level) — report it the same way.
		return &CompletionResult{AlreadyCompleted: true}, nil
	}

	if err := s.repo.UpsertCoachStatsOnCompletion(ctx, tx, player.UserID, player.DisplayName, daysToPremier); err != nil {
		return nil, dbx.ClassifyError(err)
	}

	squadID, ok, err := s.repo.ActiveSquadMembership(ctx, tx, player.UserID)
	if err != nil {
		return nil, dbx.ClassifyError(err)
	}
	if ok {
		if err := s.repo.CreditSquadForCompletion(ctx, tx, squadID, player.UserID, playerID); err != nil {
			return nil, dbx.ClassifyError(err)
		}
	}

	return &CompletionResult{AlreadyCompleted: false, Completion: completion}, nil
}

// daysSince computes days_to_premier = max(1, ceil((now-started)/86_400_000ms)).
func daysSince(started, now time.Time) int {
	ms := now.Sub(started).Milliseconds()
	days := int(math.Ceil(float64(ms) / 86_400_000))
	if days < 1 {
		return 1
	}
	return days
}
