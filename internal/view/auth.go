package view

import (
	"context"

	"github.com/a-h/templ"
)

// AuthForms carries what the login/register page needs to re-render after a
// failed submission.
type AuthForms struct {
	LoginEmail    string
	LoginError    string
	Register      RegisterForm
	RegisterError string
}

// RegisterForm holds the submitted registration values, minus the password.
type RegisterForm struct {
	Email     string
	FirstName string
	LastName  string
	Errors    map[string]string
}

// AuthPage renders the sign-in and sign-up forms side by side.
func AuthPage(f AuthForms) templ.Component {
	return Page("Task Manager", component(func(ctx context.Context, h *htmlWriter) {
		h.raw(`<header><h1>Task Manager</h1></header><div class="auth">`)

		h.raw(`<section><h2>Sign in</h2><form method="post" action="/ui/login">`)
		errorLine(h, f.LoginError)
		input(h, "email", "email", "Email", f.LoginEmail, "")
		input(h, "password", "password", "Password", "", "")
		h.raw(`<button type="submit">Sign in</button></form></section>`)

		r := f.Register
		h.raw(`<section><h2>Create an account</h2><form method="post" action="/ui/register">`)
		errorLine(h, f.RegisterError)
		input(h, "email", "email", "Email", r.Email, r.Errors["email"])
		input(h, "password", "password", "Password (6+ characters)", "", r.Errors["password"])
		input(h, "text", "first_name", "First name", r.FirstName, r.Errors["firstName"])
		input(h, "text", "last_name", "Last name", r.LastName, r.Errors["lastName"])
		h.raw(`<button type="submit">Sign up</button></form></section>`)

		h.raw(`</div>`)
	}))
}

func input(h *htmlWriter, typ, name, label, value, fieldErr string) {
	h.raw(`<label>`)
	h.text(label)
	h.raw(`<br><input type="` + typ + `" name="` + name + `" value="`)
	h.text(value)
	h.raw(`"></label>`)
	errorLine(h, fieldErr)
}

func errorLine(h *htmlWriter, msg string) {
	if msg == "" {
		return
	}
	h.raw(`<p class="error">`)
	h.text(msg)
	h.raw(`</p>`)
}
