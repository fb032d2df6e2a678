package server

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/promptartclash/arena/cmd/arenaapi/internal/auth"
	"github.com/promptartclash/arena/cmd/arenaapi/internal/services/competition"
	"github.com/promptartclash/arena/cmd/arenaapi/internal/services/gallery"
	"github.com/promptartclash/arena/cmd/arenaapi/internal/services/generation"
	"github.com/promptartclash/arena/cmd/arenaapi/internal/web"
)

// handleShell returns the navigation for ?path= (default "/") as the caller
// would see it.
func (s *Server) handleShell(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		path = "/"
	}
	writeJSON(w, http.StatusOK, web.BuildShell(auth.GetViewFromContext(r.Context()), path))
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	p, err := s.opts.Profiles.GetProfile(r.Context(), userID(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProfileResponse(p))
}

// handleUpdateProfile applies a partial update. Only the keys present in the
// body change.
func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var fields map[string]any
	if err := decodeJSON(w, r, &fields); err != nil {
		s.writeError(w, r, err)
		return
	}
	p, err := s.opts.Profiles.UpdateProfile(r.Context(), userID(r), fields)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProfileResponse(p))
}

func (s *Server) handleListSubmissions(w http.ResponseWriter, r *http.Request) {
	sort, err := gallery.ParseSort(r.URL.Query().Get("sort"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	subs, err := s.opts.Gallery.List(r.Context(), sort)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]submissionResponse, 0, len(subs))
	for i := range subs {
		out = append(out, toSubmissionResponse(&subs[i]))
	}
	writeJSON(w, http.StatusOK, map[string]any{"submissions": out})
}

func (s *Server) handleCreateSubmission(w http.ResponseWriter, r *http.Request) {
	var in gallery.SubmitInput
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	sub, err := s.opts.Gallery.Submit(r.Context(), userID(r), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toSubmissionResponse(sub))
}

func (s *Server) handleToggleVote(w http.ResponseWriter, r *http.Request) {
	res, err := s.opts.Gallery.ToggleVote(r.Context(), chi.URLParam(r, "id"), userID(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.opts.Metrics.RecordVote(res.Voted)
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleGetVote(w http.ResponseWriter, r *http.Request) {
	voted, err := s.opts.Gallery.HasVoted(r.Context(), chi.URLParam(r, "id"), userID(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"voted": voted})
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			s.writeError(w, r, fmt.Errorf("%w: limit must be a positive integer", ErrBadRequest))
			return
		}
		limit = n
	}
	entries, err := s.opts.Leaderboard.Top(r.Context(), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

func (s *Server) handleListCompetitions(w http.ResponseWriter, r *http.Request) {
	comps, err := s.opts.Competitions.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]competitionResponse, 0, len(comps))
	for i := range comps {
		out = append(out, toCompetitionResponse(&comps[i]))
	}
	writeJSON(w, http.StatusOK, map[string]any{"competitions": out})
}

func (s *Server) handleCreateCompetition(w http.ResponseWriter, r *http.Request) {
	var in competition.CreateInput
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	c, err := s.opts.Competitions.Create(r.Context(), userID(r), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCompetitionResponse(c))
}

func (s *Server) handleJoinCompetition(w http.ResponseWriter, r *http.Request) {
	p, err := s.opts.Competitions.Join(r.Context(), chi.URLParam(r, "id"), userID(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toParticipantResponse(p))
}

func (s *Server) handleJoinedCompetitions(w http.ResponseWriter, r *http.Request) {
	joined, err := s.opts.Competitions.Joined(r.Context(), userID(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]participantResponse, 0, len(joined))
	for i := range joined {
		out = append(out, toParticipantResponse(&joined[i]))
	}
	writeJSON(w, http.StatusOK, map[string]any{"joined": out})
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generation.Request
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.opts.Generation.Generate(r.Context(), userID(r), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleGenerateRandom(w http.ResponseWriter, r *http.Request) {
	res, err := s.opts.Generation.GenerateRandom(r.Context(), userID(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleListPrompts lists the catalog, optionally narrowed by a boolean
// ?filter= expression over id, prompt, category and style.
func (s *Server) handleListPrompts(w http.ResponseWriter, r *http.Request) {
	catalog := s.opts.Generation.Catalog()
	prompts := catalog.All()
	if expr := r.URL.Query().Get("filter"); expr != "" {
		var err error
		if prompts, err = catalog.Filter(expr); err != nil {
			s.writeError(w, r, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"prompts": s.opts.Generation.WithSamples(prompts),
		"total":   len(prompts),
	})
}

// handleGetPrompt returns one catalog entry, rendering its sample image on
// first request. A failed render still returns the prompt.
func (s *Server) handleGetPrompt(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, fmt.Errorf("%w: prompt id must be a number", ErrBadRequest))
		return
	}
	p, ok := s.opts.Generation.Catalog().ByID(id)
	if !ok {
		s.writeError(w, r, fmt.Errorf("%w: %d", generation.ErrPromptNotFound, id))
		return
	}
	sample, err := s.opts.Generation.Sample(r.Context(), id)
	if err != nil && !errors.Is(err, generation.ErrGeneratorUnavailable) {
		s.logger.Warn("render sample image", zap.Int("prompt_id", id), zap.Error(err))
	}
	writeJSON(w, http.StatusOK, generation.PromptWithSample{Prompt: p, SampleImage: sample})
}

func (s *Server) handlePromptsByCategory(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")
	prompts := s.opts.Generation.Catalog().ByCategory(category)
	writeJSON(w, http.StatusOK, map[string]any{
		"category": category,
		"prompts":  s.opts.Generation.WithSamples(prompts),
		"total":    len(prompts),
	})
}

// handleGetImage serves a stored generated image as PNG.
func (s *Server) handleGetImage(w http.ResponseWriter, r *http.Request) {
	img, err := s.opts.Generation.Image(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	data, err := base64.StdEncoding.DecodeString(img.ImageData)
	if err != nil {
		s.writeError(w, r, fmt.Errorf("decode stored image %s: %w", img.ID, err))
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=86400, immutable")
	_, _ = w.Write(data)
}
