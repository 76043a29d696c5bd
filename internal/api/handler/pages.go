package handler

import (
	"html/template"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/verifactor/auth-service/internal/api/middleware"
)

// QRRenderer renders an enrollment URI as a PNG of the given pixel size.
// It is a pure function of its inputs; the TOTP engine provides one.
type QRRenderer func(uri string, size int) ([]byte, error)

// PageHandler serves the boundary pages of the flow: the forms, the one-time
// enrollment artifact and the protected landing page. The pages are
// deliberately plain; they exist so the flow is usable end to end from a
// browser, nothing more.
type PageHandler struct {
	renderQR QRRenderer
}

func NewPageHandler(renderQR QRRenderer) *PageHandler {
	return &PageHandler{renderQR: renderQR}
}

var pageTmpl = template.Must(template.New("page").Parse(`<!doctype html>
<html>
<head><title>{{.Title}}</title></head>
<body>
<h1>{{.Title}}</h1>
{{if .Error}}<p style="color:red">{{.Error}}</p>{{end}}
{{if eq .Page "index"}}
<p><a href="/login">Log in</a> or <a href="/register">register</a>.</p>
{{else if eq .Page "register"}}
<form method="POST" action="/auth/register">
<label>Username <input name="username" required></label><br>
<label>Email <input name="email" type="email" required></label><br>
<label>Password <input name="password" type="password" required></label><br>
<button type="submit">Register</button>
</form>
{{else if eq .Page "login"}}
<form method="POST" action="/auth/login">
<label>Email <input name="email" type="email" required></label><br>
<label>Password <input name="password" type="password" required></label><br>
<button type="submit">Log in</button>
</form>
{{else if eq .Page "enroll"}}
<p>Scan this code with your authenticator app. It is shown only once.</p>
<img src="/enroll/qr.png" alt="enrollment QR code" width="200" height="200">
<p><code>{{.URI}}</code></p>
<p><a href="/login">Continue to login</a></p>
{{else if eq .Page "verify"}}
<form method="POST" action="/auth/verify_2fa/{{.UserID}}">
<label>Verification code <input name="token" inputmode="numeric" autocomplete="one-time-code" required></label><br>
<button type="submit">Verify</button>
</form>
{{else if eq .Page "success"}}
<p>You are fully authenticated.</p>
<form method="POST" action="/auth/logout"><button type="submit">Log out</button></form>
{{end}}
</body>
</html>
`))

type pageData struct {
	Page   string
	Title  string
	Error  string
	UserID string
	URI    string
}

func (h *PageHandler) render(c echo.Context, data pageData) error {
	data.Error = c.QueryParam("error")
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(http.StatusOK)
	return pageTmpl.Execute(c.Response(), data)
}

func (h *PageHandler) Index(c echo.Context) error {
	return h.render(c, pageData{Page: "index", Title: "Welcome"})
}

func (h *PageHandler) RegisterForm(c echo.Context) error {
	return h.render(c, pageData{Page: "register", Title: "Register"})
}

func (h *PageHandler) LoginForm(c echo.Context) error {
	return h.render(c, pageData{Page: "login", Title: "Log in"})
}

// ChallengeForm renders the second-factor challenge for the user resolved at
// stage 1.
func (h *PageHandler) ChallengeForm(c echo.Context) error {
	return h.render(c, pageData{
		Page:   "verify",
		Title:  "Two-factor verification",
		UserID: c.Param("userId"),
	})
}

// EnrollPage shows the one-time enrollment artifact. Without a pending
// enrollment in the session there is nothing to show.
func (h *PageHandler) EnrollPage(c echo.Context) error {
	session := middleware.GetSession(c)
	if session == nil || session.EnrollmentURI == "" {
		return c.Redirect(http.StatusSeeOther, "/register")
	}
	return h.render(c, pageData{
		Page:  "enroll",
		Title: "Enroll your authenticator",
		URI:   session.EnrollmentURI,
	})
}

// EnrollQR serves the pending enrollment URI as a QR PNG.
func (h *PageHandler) EnrollQR(c echo.Context) error {
	session := middleware.GetSession(c)
	if session == nil || session.EnrollmentURI == "" {
		return echo.NewHTTPError(http.StatusNotFound, "no pending enrollment")
	}

	img, err := h.renderQR(session.EnrollmentURI, 200)
	if err != nil {
		return err
	}
	return c.Blob(http.StatusOK, "image/png", img)
}

// Success is the protected resource; the session gate admits it.
func (h *PageHandler) Success(c echo.Context) error {
	return h.render(c, pageData{Page: "success", Title: "Success"})
}
