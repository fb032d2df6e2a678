package server

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/a-h/templ"
	"go.uber.org/zap"

	"github.com/promptartclash/arena/cmd/arenaapi/internal/access"
	"github.com/promptartclash/arena/cmd/arenaapi/internal/auth"
	"github.com/promptartclash/arena/cmd/arenaapi/internal/db/models"
	"github.com/promptartclash/arena/cmd/arenaapi/internal/services/competition"
	"github.com/promptartclash/arena/cmd/arenaapi/internal/services/gallery"
	"github.com/promptartclash/arena/cmd/arenaapi/internal/services/generation"
	"github.com/promptartclash/arena/cmd/arenaapi/internal/web"
)

// formTimeLayout is the value format of datetime-local inputs.
const formTimeLayout = "2006-01-02T15:04"

func parseForm(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		return fmt.Errorf("%w: invalid form: %v", ErrBadRequest, err)
	}
	return nil
}

func (s *Server) shell(r *http.Request) web.Shell {
	return web.BuildShell(auth.GetViewFromContext(r.Context()), r.URL.Path)
}

func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, status int, title string, body templ.Component) {
	if err := web.Render(w, r, status, title, s.shell(r), body); err != nil {
		s.logger.Error("render page", zap.String("path", r.URL.Path), zap.Error(err))
	}
}

func userID(r *http.Request) string {
	principal, _ := auth.GetUserFromContext(r.Context())
	return principal.UserID
}

// handleNotFound serves paths outside the router: JSON for the API, the
// not-found page otherwise.
func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, "/api/") || r.URL.Path == "/api" {
		s.writeError(w, r, fmt.Errorf("%w: %s", ErrNotFound, r.URL.Path))
		return
	}
	s.renderPage(w, r, http.StatusNotFound, "Not found", web.NotFoundPage(r.URL.Path))
}

func (s *Server) handleLanding(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, r, http.StatusOK, "", web.LandingPage(s.shell(r)))
}

func (s *Server) handleDemo(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, r, http.StatusOK, "Demo", web.DemoPage())
}

func (s *Server) handleProfilePage(w http.ResponseWriter, r *http.Request) {
	id := userID(r)
	if id == "" {
		s.renderPage(w, r, http.StatusOK, "Profile", web.ProfilePage(web.ProfileView{}))
		return
	}
	p, err := s.opts.Profiles.GetProfile(r.Context(), id)
	if err != nil {
		status, msg := userMessage(s.logger, r, err)
		s.renderPage(w, r, status, "Profile", web.ProfilePage(web.ProfileView{Error: msg}))
		return
	}
	s.renderPage(w, r, http.StatusOK, "Profile", web.ProfilePage(web.ProfileView{
		Profile: p,
		Saved:   r.URL.Query().Get("saved") == "1",
	}))
}

// profileFormFields lists the inputs the profile form may change. A blank
// role select means "leave as is".
var profileFormFields = []string{"username", "full_name", "institute_name", "bio", "avatar_url"}

func (s *Server) handleProfileForm(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(w, r); err != nil {
		s.renderPage(w, r, http.StatusBadRequest, "Profile", web.ProfilePage(web.ProfileView{Error: err.Error()}))
		return
	}
	fields := make(map[string]any, len(profileFormFields)+1)
	for _, name := range profileFormFields {
		if values, ok := r.PostForm[name]; ok && len(values) > 0 {
			fields[name] = values[0]
		}
	}
	if role := strings.TrimSpace(r.PostFormValue("role")); role != "" {
		fields["role"] = role
	}

	if _, err := s.opts.Profiles.UpdateProfile(r.Context(), userID(r), fields); err != nil {
		status, msg := userMessage(s.logger, r, err)
		current, _ := s.opts.Profiles.GetProfile(r.Context(), userID(r))
		s.renderPage(w, r, status, "Profile", web.ProfilePage(web.ProfileView{Profile: current, Error: msg}))
		return
	}
	http.Redirect(w, r, access.PathProfile+"?saved=1", http.StatusSeeOther)
}

func (s *Server) generateView() web.GenerateView {
	gen := s.opts.Generation
	return web.GenerateView{
		Prompts:   gen.WithSamples(gen.Catalog().All()),
		Available: gen.Available(),
	}
}

func (s *Server) handleGeneratePage(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, r, http.StatusOK, "Generate", web.GeneratePage(s.generateView()))
}

// handleGenerateForm renders an image from the form: "Surprise me" picks a
// random catalog prompt, a catalog button sends prompt_index, otherwise the
// typed prompt is used.
func (s *Server) handleGenerateForm(w http.ResponseWriter, r *http.Request) {
	view := s.generateView()
	if err := parseForm(w, r); err != nil {
		view.Error = err.Error()
		s.renderPage(w, r, http.StatusBadRequest, "Generate", web.GeneratePage(view))
		return
	}

	var (
		result *generation.Result
		err    error
	)
	switch {
	case r.PostFormValue("random") != "":
		result, err = s.opts.Generation.GenerateRandom(r.Context(), userID(r))
	default:
		req := generation.Request{Prompt: r.PostFormValue("prompt")}
		if raw := r.PostFormValue("prompt_index"); raw != "" {
			idx, convErr := strconv.Atoi(raw)
			if convErr != nil {
				err = fmt.Errorf("%w: prompt_index must be a number", ErrBadRequest)
				break
			}
			req.PromptIndex = &idx
		}
		view.Prompt = req.Prompt
		result, err = s.opts.Generation.Generate(r.Context(), userID(r), req)
	}

	status := http.StatusOK
	if err != nil {
		status, view.Error = userMessage(s.logger, r, err)
	}
	// Refresh so a newly cached sample shows up in the catalog.
	view.Prompts = s.opts.Generation.WithSamples(s.opts.Generation.Catalog().All())
	view.Result = result
	s.renderPage(w, r, status, "Generate", web.GeneratePage(view))
}

func (s *Server) galleryView(r *http.Request) (web.GalleryView, error) {
	sort, err := gallery.ParseSort(r.URL.Query().Get("sort"))
	if err != nil {
		return web.GalleryView{Sort: string(gallery.SortNewest)}, err
	}
	subs, err := s.opts.Gallery.List(r.Context(), sort)
	if err != nil {
		return web.GalleryView{Sort: string(sort)}, err
	}
	view := web.GalleryView{Submissions: subs, Sort: string(sort)}
	if id := userID(r); id != "" {
		view.CanVote = true
		view.Voted = make(map[string]bool, len(subs))
		for _, sub := range subs {
			voted, err := s.opts.Gallery.HasVoted(r.Context(), sub.ID, id)
			if err != nil {
				return view, err
			}
			view.Voted[sub.ID] = voted
		}
	}
	return view, nil
}

func (s *Server) handleGalleryPage(w http.ResponseWriter, r *http.Request) {
	view, err := s.galleryView(r)
	status := http.StatusOK
	if err != nil {
		status, view.Error = userMessage(s.logger, r, err)
	}
	s.renderPage(w, r, status, "Gallery", web.GalleryPage(view))
}

// handleGalleryForm toggles a vote (action=vote) or submits an image
// (action=submit), then returns to the gallery.
func (s *Server) handleGalleryForm(w http.ResponseWriter, r *http.Request) {
	err := parseForm(w, r)
	if err == nil {
		switch r.PostFormValue("action") {
		case "vote":
			var res gallery.VoteResult
			res, err = s.opts.Gallery.ToggleVote(r.Context(), r.PostFormValue("submission_id"), userID(r))
			if err == nil {
				s.opts.Metrics.RecordVote(res.Voted)
			}
		case "submit":
			in := gallery.SubmitInput{Prompt: r.PostFormValue("prompt"), ImageURL: r.PostFormValue("image_url")}
			if c := strings.TrimSpace(r.PostFormValue("competition_id")); c != "" {
				in.CompetitionID = &c
			}
			_, err = s.opts.Gallery.Submit(r.Context(), userID(r), in)
		default:
			err = fmt.Errorf("%w: unknown gallery action", ErrBadRequest)
		}
	}
	if err != nil {
		view, listErr := s.galleryView(r)
		if listErr != nil {
			s.logger.Warn("reload gallery", zap.Error(listErr))
		}
		var status int
		status, view.Error = userMessage(s.logger, r, err)
		s.renderPage(w, r, status, "Gallery", web.GalleryPage(view))
		return
	}
	http.Redirect(w, r, access.PathGallery, http.StatusSeeOther)
}

func (s *Server) handleLeaderboardPage(w http.ResponseWriter, r *http.Request) {
	entries, err := s.opts.Leaderboard.Top(r.Context(), 0)
	if err != nil {
		s.writePageError(w, r, "Leaderboard", err)
		return
	}
	s.renderPage(w, r, http.StatusOK, "Leaderboard", web.LeaderboardPage(entries))
}

func (s *Server) competitionsView(r *http.Request) (web.CompetitionsView, error) {
	comps, err := s.opts.Competitions.List(r.Context())
	if err != nil {
		return web.CompetitionsView{}, err
	}
	view := web.CompetitionsView{Competitions: comps, Joined: map[string]bool{}, Now: time.Now()}
	if id := userID(r); id != "" {
		view.CanJoin = true
		joined, err := s.opts.Competitions.Joined(r.Context(), id)
		if err != nil {
			return view, err
		}
		for _, p := range joined {
			view.Joined[p.CompetitionID] = true
		}
	}
	return view, nil
}

func (s *Server) handleCompetitionsPage(w http.ResponseWriter, r *http.Request) {
	view, err := s.competitionsView(r)
	status := http.StatusOK
	if err != nil {
		status, view.Error = userMessage(s.logger, r, err)
	}
	if r.URL.Query().Get("joined") == "1" {
		view.Notice = "You joined the competition."
	}
	s.renderPage(w, r, status, "Competitions", web.JoinCompetitionPage(view))
}

func (s *Server) handleJoinForm(w http.ResponseWriter, r *http.Request) {
	err := parseForm(w, r)
	if err == nil {
		_, err = s.opts.Competitions.Join(r.Context(), r.PostFormValue("competition_id"), userID(r))
	}
	if err != nil {
		view, listErr := s.competitionsView(r)
		if listErr != nil {
			s.logger.Warn("reload competitions", zap.Error(listErr))
		}
		var status int
		status, view.Error = userMessage(s.logger, r, err)
		s.renderPage(w, r, status, "Competitions", web.JoinCompetitionPage(view))
		return
	}
	http.Redirect(w, r, access.PathJoinCompetition+"?joined=1", http.StatusSeeOther)
}

func createHeading(path string) string {
	if path == access.PathCreateBattle {
		return "Create Battle"
	}
	return "Create Competition"
}

func (s *Server) handleCreateCompetitionPage(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, r, http.StatusOK, createHeading(r.URL.Path), web.CreateCompetitionPage(web.CreateCompetitionView{
		Heading: createHeading(r.URL.Path),
		Action:  r.URL.Path,
		Form:    web.CompetitionForm{MaxParticipants: strconv.Itoa(models.DefaultMaxParticipants)},
	}))
}

func (s *Server) handleCreateCompetitionForm(w http.ResponseWriter, r *http.Request) {
	view := web.CreateCompetitionView{Heading: createHeading(r.URL.Path), Action: r.URL.Path}
	err := parseForm(w, r)
	if err == nil {
		view.Form = web.CompetitionForm{
			Title:           r.PostFormValue("title"),
			Description:     r.PostFormValue("description"),
			Theme:           r.PostFormValue("theme"),
			StartTime:       r.PostFormValue("start_time"),
			EndTime:         r.PostFormValue("end_time"),
			MaxParticipants: r.PostFormValue("max_participants"),
		}
		var in competition.CreateInput
		in, err = competitionInput(view.Form)
		if err == nil {
			view.Created, err = s.opts.Competitions.Create(r.Context(), userID(r), in)
		}
	}
	status := http.StatusOK
	if err != nil {
		status, view.Error = userMessage(s.logger, r, err)
	} else {
		view.Form = web.CompetitionForm{MaxParticipants: strconv.Itoa(models.DefaultMaxParticipants)}
	}
	s.renderPage(w, r, status, view.Heading, web.CreateCompetitionPage(view))
}

// competitionInput parses the host form. Times are read as UTC.
func competitionInput(f web.CompetitionForm) (competition.CreateInput, error) {
	in := competition.CreateInput{Title: f.Title, Description: f.Description, Theme: f.Theme}
	var err error
	if f.StartTime != "" {
		if in.StartTime, err = time.Parse(formTimeLayout, f.StartTime); err != nil {
			return in, fmt.Errorf("%w: start_time must look like 2006-01-02T15:04", competition.ErrInvalid)
		}
	}
	if f.EndTime != "" {
		if in.EndTime, err = time.Parse(formTimeLayout, f.EndTime); err != nil {
			return in, fmt.Errorf("%w: end_time must look like 2006-01-02T15:04", competition.ErrInvalid)
		}
	}
	if raw := strings.TrimSpace(f.MaxParticipants); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return in, fmt.Errorf("%w: max_participants must be a number", competition.ErrInvalid)
		}
		in.MaxParticipants = &n
	}
	return in, nil
}

func (s *Server) writePageError(w http.ResponseWriter, r *http.Request, title string, err error) {
	status, msg := userMessage(s.logger, r, err)
	s.renderPage(w, r, status, title, web.ErrorPage(msg))
}
