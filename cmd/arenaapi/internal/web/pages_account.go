package web

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/promptartclash/arena/cmd/arenaapi/internal/access"
	"github.com/promptartclash/arena/cmd/arenaapi/internal/db/models"
)

// LoginForm is the sticky state of the login page.
type LoginForm struct {
	Email string
	Error string
}

// LoginPage renders the email and password form.
func LoginPage(form LoginForm) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := newHTMLWriter(w)
		h.raw(`<section class="auth"><h1>Login</h1>`)
		h.alert(form.Error)
		h.raw(`<form method="post" action="/login">`)
		h.input("Email", "email", "email", form.Email, true)
		h.input("Password", "password", "password", "", true)
		h.raw(`<button type="submit">Login</button></form>`,
			`<p>No account yet? <a href="/signup">Sign up</a></p></section>`)
		return h.err
	})
}

// SignupForm is the sticky state of the sign-up page.
type SignupForm struct {
	Email         string
	Username      string
	FullName      string
	InstituteName string
	Role          string
	Error         string
}

// SignupPage renders account creation. The role choice is optional and
// stored on the profile.
func SignupPage(form SignupForm) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := newHTMLWriter(w)
		h.raw(`<section class="auth"><h1>Sign up</h1>`)
		h.alert(form.Error)
		h.raw(`<form method="post" action="/signup">`)
		h.input("Email", "email", "email", form.Email, true)
		h.input("Password", "password", "password", "", true)
		h.input("Username", "username", "text", form.Username, false)
		h.input("Full name", "full_name", "text", form.FullName, false)
		h.input("Institute", "institute_name", "text", form.InstituteName, false)
		writeRoleSelect(h, form.Role)
		h.raw(`<button type="submit">Create account</button></form>`,
			`<p>Already registered? <a href="/login">Login</a></p></section>`)
		return h.err
	})
}

func writeRoleSelect(h *htmlWriter, selected string) {
	h.raw(`<label>Role<select name="role">`)
	for _, opt := range []struct{ value, label string }{
		{"", "Decide later"},
		{access.RoleParticipant.String(), "Participant"},
		{access.RoleHost.String(), "Host"},
	} {
		h.raw(`<option value="`, opt.value, `"`)
		if opt.value == selected {
			h.raw(` selected`)
		}
		h.raw(`>`, opt.label, `</option>`)
	}
	h.raw(`</select></label>`)
}

// SelectRolePage offers the two role choices. current is the existing flag.
func SelectRolePage(current access.Claim, errMsg string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := newHTMLWriter(w)
		h.raw(`<section class="select-role"><h1>Choose your role</h1>`)
		h.alert(errMsg)
		h.raw(`<form method="post" action="/select-role" class="roles">`)
		for _, choice := range []struct {
			role  access.Role
			title string
			blurb string
		}{
			{access.RoleHost, "Host", "Create and run art battles."},
			{access.RoleParticipant, "Participant", "Generate images, vote and compete."},
		} {
			h.raw(`<button type="submit" name="role" value="`, choice.role.String(), `"`)
			if current.Present() && current.Role() == choice.role {
				h.raw(` class="current"`)
			}
			h.raw(`><strong>`)
			h.text(choice.title)
			h.raw(`</strong><span>`)
			h.text(choice.blurb)
			h.raw(`</span></button>`)
		}
		h.raw(`</form></section>`)
		return h.err
	})
}

// ProfileView is the state of the profile page.
type ProfileView struct {
	Profile *models.Profile
	Saved   bool
	Error   string
}

// ProfilePage shows and edits the signed-in user's profile. Anonymous
// visitors get a login prompt.
func ProfilePage(v ProfileView) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := newHTMLWriter(w)
		h.raw(`<section class="profile"><h1>Profile</h1>`)
		if v.Profile == nil {
			h.alert(v.Error)
			h.raw(`<p><a href="/login">Login</a> to see your profile.</p></section>`)
			return h.err
		}
		p := v.Profile
		if v.Saved {
			h.raw(`<p class="notice">Profile saved.</p>`)
		}
		h.alert(v.Error)
		h.raw(`<dl class="stats"><dt>Submissions</dt><dd>`)
		h.int(p.SubmissionsCount)
		h.raw(`</dd><dt>Votes</dt><dd>`)
		h.int(p.VotesCount)
		h.raw(`</dd><dt>Streak</dt><dd>`)
		h.int(p.Streak)
		h.raw(`</dd></dl><form method="post" action="/profile">`)
		h.input("Username", "username", "text", p.Username, true)
		h.input("Full name", "full_name", "text", p.FullName, false)
		h.input("Institute", "institute_name", "text", p.InstituteName, false)
		h.input("Bio", "bio", "text", p.Bio, false)
		h.input("Avatar URL", "avatar_url", "url", p.AvatarURL, false)
		role := ""
		if claim := access.ClaimOf(p.RoleValue()); claim.Present() {
			role = claim.Role().String()
		}
		writeRoleSelect(h, role)
		h.raw(`<button type="submit">Save</button></form></section>`)
		return h.err
	})
}
