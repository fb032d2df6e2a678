package web

import (
	"context"
	"io"
	"strconv"
	"time"

	"github.com/a-h/templ"

	"github.com/promptartclash/arena/cmd/arenaapi/internal/access"
	"github.com/promptartclash/arena/cmd/arenaapi/internal/db/models"
	"github.com/promptartclash/arena/cmd/arenaapi/internal/services/generation"
	"github.com/promptartclash/arena/cmd/arenaapi/internal/services/leaderboard"
)

const timeLayout = "2006-01-02 15:04"

// LandingPage is the public entry page. role picks the call to action.
func LandingPage(shell Shell) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := newHTMLWriter(w)
		h.raw(`<section class="hero"><h1>`)
		h.text(AppName)
		h.raw(`</h1><p>Turn prompts into art and battle for votes.</p><p class="cta">`)
		switch {
		case shell.Role == access.RoleHost.String():
			h.raw(`<a href="`, access.PathCreateBattle, `">Create a competition</a>`)
		default:
			h.raw(`<a href="`, access.PathGenerate, `">Start generating</a>`)
		}
		h.raw(` <a href="`, access.PathSelectRole, `">Choose your role</a>`,
			` <a href="`, access.PathDemo, `">Watch the demo</a></p></section>`)
		return h.err
	})
}

// DemoPage walks through the game loop.
func DemoPage() templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := newHTMLWriter(w)
		h.raw(`<section class="demo"><h1>How it works</h1><ol>`,
			`<li>Pick a role: hosts run competitions, participants create.</li>`,
			`<li>Write a prompt or pick one from the catalog and generate an image.</li>`,
			`<li>Submit your best image to the gallery or a competition.</li>`,
			`<li>Vote for others and climb the leaderboard.</li>`,
			`</ol></section>`)
		return h.err
	})
}

// GenerateView is the state of the generate page.
type GenerateView struct {
	Prompts   []generation.PromptWithSample
	Result    *generation.Result
	Available bool
	Prompt    string
	Error     string
}

// GeneratePage renders the prompt form, the catalog and the last result.
func GeneratePage(v GenerateView) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := newHTMLWriter(w)
		h.raw(`<section class="generate"><h1>Generate</h1>`)
		if !v.Available {
			h.raw(`<p class="notice">Image generation is offline. Browse the prompt catalog meanwhile.</p>`)
		}
		h.alert(v.Error)
		h.raw(`<form method="post" action="`, access.PathGenerate, `">`)
		h.raw(`<label>Prompt<textarea name="prompt" rows="3">`)
		h.text(v.Prompt)
		h.raw(`</textarea></label><button type="submit">Generate</button>`,
			`<button type="submit" name="random" value="1">Surprise me</button></form>`)

		if r := v.Result; r != nil {
			h.raw(`<figure class="result"><img alt="generated image" src="data:image/png;base64,`)
			h.text(r.ImageData)
			h.raw(`"><figcaption>`)
			h.text(r.Description)
			h.raw(`</figcaption></figure>`)
		}
		if r := v.Result; r != nil && r.ImageID != "" {
			h.raw(`<form method="post" action="`, access.PathGallery, `"><input type="hidden" name="action" value="submit">`,
				`<input type="hidden" name="prompt" value="`)
			h.text(r.Prompt)
			h.raw(`"><input type="hidden" name="image_url" value="/api/images/`)
			h.text(r.ImageID)
			h.raw(`"><button type="submit">Submit to gallery</button></form>`)
		}

		h.raw(`<h2>Prompt catalog</h2><ul class="catalog">`)
		for _, p := range v.Prompts {
			h.raw(`<li><form method="post" action="`, access.PathGenerate, `">`,
				`<input type="hidden" name="prompt_index" value="`, strconv.Itoa(p.ID), `">`)
			if p.SampleImage != "" {
				h.raw(`<img alt="sample" src="data:image/png;base64,`)
				h.text(p.SampleImage)
				h.raw(`">`)
			}
			h.raw(`<p>`)
			h.text(p.Prompt.Prompt)
			h.raw(`</p><small>`)
			h.text(p.Category)
			h.raw(` / `)
			h.text(p.Style)
			h.raw(`</small><button type="submit">Use</button></form></li>`)
		}
		h.raw(`</ul></section>`)
		return h.err
	})
}

// GalleryView is the state of the gallery page.
type GalleryView struct {
	Submissions []models.Submission
	Sort        string
	Voted       map[string]bool
	CanVote     bool
	Error       string
}

// GalleryPage lists submissions with vote toggles.
func GalleryPage(v GalleryView) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := newHTMLWriter(w)
		h.raw(`<section class="gallery"><h1>Gallery</h1>`)
		h.alert(v.Error)
		h.raw(`<nav class="sort">`)
		for _, s := range []string{"newest", "oldest"} {
			h.raw(`<a href="/gallery?sort=`, s, `"`)
			if s == v.Sort {
				h.raw(` class="active"`)
			}
			h.raw(`>`, s, `</a> `)
		}
		h.raw(`</nav>`)
		if len(v.Submissions) == 0 {
			h.raw(`<p>No submissions yet.</p></section>`)
			return h.err
		}
		h.raw(`<ul class="submissions">`)
		for _, s := range v.Submissions {
			h.raw(`<li><img alt="submission" src="`)
			h.url(s.ImageURL)
			h.raw(`"><p>`)
			h.text(s.Prompt)
			h.raw(`</p>`)
			if s.Author != nil {
				h.raw(`<small>by `)
				h.text(s.Author.Username)
				h.raw(`</small>`)
			}
			h.raw(`<span class="votes">`)
			h.int(s.VotesCount)
			h.raw(` votes</span>`)
			if v.CanVote {
				label := "Vote"
				if v.Voted[s.ID] {
					label = "Remove vote"
				}
				h.raw(`<form method="post" action="`, access.PathGallery, `">`,
					`<input type="hidden" name="action" value="vote">`,
					`<input type="hidden" name="submission_id" value="`)
				h.text(s.ID)
				h.raw(`"><button type="submit">`, label, `</button></form>`)
			}
			h.raw(`</li>`)
		}
		h.raw(`</ul></section>`)
		return h.err
	})
}

// LeaderboardPage ranks users and refreshes when the stream reports a change.
func LeaderboardPage(entries []leaderboard.Entry) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := newHTMLWriter(w)
		h.raw(`<section class="leaderboard"><h1>Leaderboard</h1>`,
			`<table><thead><tr><th>#</th><th>User</th><th>Votes</th><th>Submissions</th><th>Streak</th></tr></thead><tbody>`)
		for _, e := range entries {
			h.raw(`<tr><td>`)
			h.int(e.Rank)
			h.raw(`</td><td>`)
			h.text(e.Username)
			h.raw(`</td><td>`)
			h.int(e.VotesCount)
			h.raw(`</td><td>`)
			h.int(e.SubmissionsCount)
			h.raw(`</td><td>`)
			h.int(e.Streak)
			h.raw(`</td></tr>`)
		}
		h.raw(`</tbody></table>`)
		if len(entries) == 0 {
			h.raw(`<p>No scores yet.</p>`)
		}
		h.raw(`<script>(function(){var p=location.protocol==="https:"?"wss://":"ws://";`,
			`var s=new WebSocket(p+location.host+"/api/leaderboard/stream");`,
			`s.onmessage=function(){location.reload();};})();</script></section>`)
		return h.err
	})
}

// CompetitionsView is the state of the join-competition page.
type CompetitionsView struct {
	Competitions []models.Competition
	Joined       map[string]bool
	CanJoin      bool
	Notice       string
	Error        string
	// Now decides each status and join window. Zero means render time.
	Now time.Time
}

// JoinCompetitionPage lists competitions with join buttons.
func JoinCompetitionPage(v CompetitionsView) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := newHTMLWriter(w)
		now := v.Now
		if now.IsZero() {
			now = time.Now()
		}
		h.raw(`<section class="competitions"><h1>Competitions</h1>`)
		if v.Notice != "" {
			h.raw(`<p class="notice">`)
			h.text(v.Notice)
			h.raw(`</p>`)
		}
		h.alert(v.Error)
		if len(v.Competitions) == 0 {
			h.raw(`<p>No competitions scheduled.</p></section>`)
			return h.err
		}
		h.raw(`<ul>`)
		for _, c := range v.Competitions {
			h.raw(`<li><h2>`)
			h.text(c.Title)
			h.raw(`</h2><p>`)
			h.text(c.Description)
			h.raw(`</p><dl><dt>Theme</dt><dd>`)
			h.text(c.Theme)
			h.raw(`</dd><dt>Runs</dt><dd>`)
			h.text(c.StartTime.UTC().Format(timeLayout))
			h.raw(` to `)
			h.text(c.EndTime.UTC().Format(timeLayout))
			h.raw(`</dd><dt>Status</dt><dd>`)
			h.text(c.StatusAt(now))
			h.raw(`</dd><dt>Participants</dt><dd>`)
			h.int(c.CurrentParticipants)
			h.raw(` / `)
			h.int(c.MaxParticipants)
			h.raw(`</dd></dl>`)
			switch {
			case v.Joined[c.ID]:
				h.raw(`<span class="joined">Joined</span>`)
			case c.Full():
				h.raw(`<span class="full">Full</span>`)
			case now.Before(c.StartTime):
				h.raw(`<span class="closed">Not started</span>`)
			case now.After(c.EndTime):
				h.raw(`<span class="closed">Ended</span>`)
			case v.CanJoin:
				h.raw(`<form method="post" action="`, access.PathJoinCompetition, `">`,
					`<input type="hidden" name="competition_id" value="`)
				h.text(c.ID)
				h.raw(`"><button type="submit">Join</button></form>`)
			}
			h.raw(`</li>`)
		}
		h.raw(`</ul></section>`)
		return h.err
	})
}

// CompetitionForm is the sticky state of the create-competition form.
type CompetitionForm struct {
	Title           string
	Description     string
	Theme           string
	StartTime       string
	EndTime         string
	MaxParticipants string
}

// CreateCompetitionView is the state of the host's creation page.
type CreateCompetitionView struct {
	Heading string
	Action  string
	Form    CompetitionForm
	Created *models.Competition
	Error   string
}

// CreateCompetitionPage renders the host form. Both host creation routes use
// it with their own heading and form action.
func CreateCompetitionPage(v CreateCompetitionView) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := newHTMLWriter(w)
		h.raw(`<section class="create-competition"><h1>`)
		h.text(v.Heading)
		h.raw(`</h1>`)
		if v.Created != nil {
			h.raw(`<p class="notice">Created `)
			h.text(v.Created.Title)
			h.raw(`, starting `)
			h.text(v.Created.StartTime.UTC().Format(time.RFC1123))
			h.raw(`.</p>`)
		}
		h.alert(v.Error)
		h.raw(`<form method="post" action="`)
		h.url(v.Action)
		h.raw(`">`)
		h.input("Title", "title", "text", v.Form.Title, true)
		h.input("Description", "description", "text", v.Form.Description, true)
		h.input("Theme", "theme", "text", v.Form.Theme, true)
		h.input("Starts", "start_time", "datetime-local", v.Form.StartTime, true)
		h.input("Ends", "end_time", "datetime-local", v.Form.EndTime, true)
		h.input("Max participants", "max_participants", "number", v.Form.MaxParticipants, false)
		h.raw(`<button type="submit">Create</button></form></section>`)
		return h.err
	})
}

// NotFoundPage is rendered for paths outside the route table.
func NotFoundPage(path string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := newHTMLWriter(w)
		h.raw(`<section class="not-found"><h1>Page not found</h1><p>Nothing lives at <code>`)
		h.text(path)
		h.raw(`</code>.</p><p><a href="/">Back to the arena</a></p></section>`)
		return h.err
	})
}

// ErrorPage shows a failure that left nothing else to render.
func ErrorPage(message string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := newHTMLWriter(w)
		h.raw(`<section class="error"><h1>Something went wrong</h1>`)
		h.alert(message)
		h.raw(`<p><a href="/">Back to the arena</a></p></section>`)
		return h.err
	})
}
