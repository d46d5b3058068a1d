// Package httpapi is the chi-routed HTTP surface for the brain service:
// it decodes requests, calls into the domain services, and maps their
// errors onto the response envelope spec.md §6/§7 define.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"footybrain/internal/apperr"
	"footybrain/internal/authgate"
	"footybrain/internal/careers"
	"footybrain/internal/groups"
	"footybrain/internal/leaderboard"
	"footybrain/internal/simulator"
	"footybrain/internal/squads"
	"footybrain/internal/sweep"
)

// Version is stamped into /health's response; bumped by release tooling,
// not by hand during feature work.
const Version = "0.1.0"

// Pinger is the slice of dbx.Pool the health check needs.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Config struct {
	AuthJWTSecret   string
	BrainHMACSecret string
	CronSecret      string
	DevBypassAuth   bool
}

type Server struct {
	cfg         Config
	log         *slog.Logger
	db          Pinger
	careers     *careers.Service
	sweep       *sweep.Engine
	simulator   *simulator.Service
	squads      *squads.Service
	groups      *groups.Service
	leaderboard *leaderboard.Service
	mux         *chi.Mux
}

func New(cfg Config, logger *slog.Logger, db Pinger, careersSvc *careers.Service, sweepEngine *sweep.Engine,
	simulatorSvc *simulator.Service, squadsSvc *squads.Service, groupsSvc *groups.Service, leaderboardSvc *leaderboard.Service) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		cfg:         cfg,
		log:         logger,
		db:          db,
		careers:     careersSvc,
		sweep:       sweepEngine,
		simulator:   simulatorSvc,
		squads:      squadsSvc,
		groups:      groupsSvc,
		leaderboard: leaderboardSvc,
		mux:         chi.NewRouter(),
	}
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) routes() {
	r := s.mux
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/health", s.handleHealth)

	jwt := authgate.JWT(s.cfg.AuthJWTSecret, s.cfg.DevBypassAuth)
	hmacAuth := authgate.HMAC(s.cfg.BrainHMACSecret)
	cron := authgate.Cron(s.cfg.CronSecret)

	r.Route("/api", func(r chi.Router) {
		r.Route("/players", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(jwt)
				r.Post("/create", s.handleCreatePlayer)
				r.Get("/{id}", s.handleGetPlayer)
				r.Post("/{id}/complete", s.handleCompletePlayer)
			})
			r.Group(func(r chi.Router) {
				r.Use(hmacAuth)
				r.Post("/{id}/progress", s.handlePlayerProgress)
			})
		})

		r.Route("/sweep", func(r chi.Router) {
			r.Get("/status", s.handleSweepStatus)
			r.With(cron).Post("/run", s.handleSweepRun)
		})

		r.Route("/seasons", func(r chi.Router) {
			r.With(cron).Post("/reset-sync", s.handleSeasonsResetSync)
			r.With(cron).Post("/simulate-day", s.handleSeasonsSimulateDay)
			r.Get("/status", s.handleSeasonsStatus)
		})

		r.Route("/leagues", func(r chi.Router) {
			r.Get("/", s.handleLeaguesList)
			r.Get("/{leagueId}/table", s.handleLeagueTable)
			r.Get("/{leagueId}/fixtures", s.handleLeagueFixtures)
			r.Get("/{leagueId}/results", s.handleLeagueResults)
		})

		r.Route("/squads", func(r chi.Router) {
			r.Get("/leaderboard", s.handleSquadsLeaderboard)
			r.Get("/search", s.handleSquadsSearch)
			r.Get("/{id}/profile", s.handleSquadProfile)

			r.Group(func(r chi.Router) {
				r.Use(jwt)
				r.Post("/create", s.handleSquadCreate)
				r.Post("/{id}/join", s.handleSquadJoin)
				r.Post("/{id}/request-join", s.handleSquadRequestJoin)
				r.Post("/{id}/upgrade", s.handleSquadUpgrade)
				r.Post("/{id}/set-role", s.handleSquadSetRole)
				r.Post("/requests/{id}/resolve", s.handleSquadResolveRequest)
				r.Post("/leave", s.handleSquadLeave)
				r.Get("/mine", s.handleSquadsMine)
				r.Get("/{id}/requests", s.handleSquadPendingRequests)
			})
		})

		r.Route("/groups", func(r chi.Router) {
			r.Use(jwt)
			r.Post("/create", s.handleGroupCreate)
			r.Post("/join", s.handleGroupJoin)
			r.Get("/mine", s.handleGroupsMine)
			r.Get("/{id}/leaderboard", s.handleGroupLeaderboard)
			r.Post("/{id}/leave", s.handleGroupLeave)
		})

		r.With(jwt).Get("/leaderboard/global", s.handleGlobalLeaderboard)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	storage := "ok"
	if err := s.db.Ping(ctx); err != nil {
		storage = "unreachable"
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"ok":      true,
		"service": "footybrain",
		"version": Version,
		"modules": []string{"careers", "sweep", "leagues", "squads", "groups", "leaderboard"},
		"auth":    map[string]bool{"jwt": s.cfg.AuthJWTSecret != "", "hmac": s.cfg.BrainHMACSecret != "", "cron": s.cfg.CronSecret != ""},
		"storage": storage,
	})
}

func writeDomainError(log *slog.Logger, w http.ResponseWriter, err error) {
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		writeError(w, http.StatusBadRequest, err.Error())
	case apperr.KindAuth:
		writeError(w, http.StatusUnauthorized, err.Error())
	case apperr.KindForbidden:
		writeError(w, http.StatusForbidden, err.Error())
	case apperr.KindNotFound:
		writeError(w, http.StatusNotFound, err.Error())
	case apperr.KindConflict:
		writeError(w, http.StatusBadRequest, err.Error())
	case apperr.KindInfra:
		log.Error("infrastructure error", "err", err)
		writeError(w, http.StatusServiceUnavailable, "service temporarily unavailable")
	default:
		log.Error("unclassified error", "err", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
