package app

import (
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"

	"social-blog/config"
	"social-blog/models"

	"github.com/PuerkitoBio/goquery"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"github.com/tidwall/gjson"
	"golang.org/x/crypto/bcrypt"
)

type recordingSender struct {
	sent chan *models.Email
}

func (r *recordingSender) Send(email *models.Email) error {
	r.sent <- email
	return nil
}

type AppTestSuite struct {
	suite.Suite
	app     *App
	router  *gin.Engine
	mail    *recordingSender
	cookies map[string]string
}

func (s *AppTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	models.BcryptCost = bcrypt.MinCost

	cfg := config.ForTesting()
	log := config.NewLogger(cfg)
	db, err := config.InitDB(cfg, log)
	s.Require().NoError(err)

	s.mail = &recordingSender{sent: make(chan *models.Email, 10)}
	s.app = New(cfg, log, db, nil, s.mail)
	s.Require().NoError(s.app.Deploy())
	s.router = s.app.Router()
	s.cookies = map[string]string{}
}

func (s *AppTestSuite) TearDownTest() {
	if sqlDB, err := s.app.DB.DB(); err == nil {
		sqlDB.Close()
	}
}

func (s *AppTestSuite) createUser(email, username, password string, confirmed bool) *models.User {
	user := &models.User{Email: email, Username: username, Confirmed: confirmed}
	s.Require().NoError(s.app.Users.Create(user, password))
	return user
}

func basicAuth(username, password string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(username+":"+password))
}

func (s *AppTestSuite) api(method, path, auth, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

// web sends a browser request carrying the cookies collected so far.
func (s *AppTestSuite) web(method, path string, form url.Values) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	req.Header.Set("Accept", "text/html")
	for name, value := range s.cookies {
		req.AddCookie(&http.Cookie{Name: name, Value: value})
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	for _, cookie := range w.Result().Cookies() {
		if cookie.MaxAge < 0 || cookie.Value == "" {
			delete(s.cookies, cookie.Name)
		} else {
			s.cookies[cookie.Name] = cookie.Value
		}
	}
	return w
}

func (s *AppTestSuite) document(w *httptest.ResponseRecorder) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(w.Body)
	s.Require().NoError(err)
	return doc
}

func (s *AppTestSuite) nextEmail() *models.Email {
	select {
	case email := <-s.mail.sent:
		return email
	case <-time.After(2 * time.Second):
		s.FailNow("no email sent")
		return nil
	}
}

func pathOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return u.RequestURI()
}

func (s *AppTestSuite) TestHealth() {
	w := s.api(http.MethodGet, "/health", "", "")
	s.Equal(http.StatusOK, w.Code)
	s.Equal("healthy", gjson.Get(w.Body.String(), "status").String())
}

func (s *AppTestSuite) TestNotFoundIsNegotiated() {
	w := s.api(http.MethodGet, "/wrong/url", "", "")
	s.Equal(http.StatusNotFound, w.Code)
	s.Equal("not found", gjson.Get(w.Body.String(), "error").String())

	w = s.web(http.MethodGet, "/wrong/url", nil)
	s.Equal(http.StatusNotFound, w.Code)
	s.Contains(w.Header().Get("Content-Type"), "text/html")
	s.Equal("Not found", strings.TrimSpace(s.document(w).Find(".page-header h1").Text()))
}

func (s *AppTestSuite) TestUnknownAPIRouteRequiresCredentials() {
	w := s.api(http.MethodGet, "/api/v1.0/nope", "", "")
	s.Equal(http.StatusUnauthorized, w.Code)
	s.Equal("Invalid credentials", gjson.Get(w.Body.String(), "message").String())

	s.createUser("john@example.com", "john", "cat", true)
	w = s.api(http.MethodGet, "/api/v1.0/nope", basicAuth("john@example.com", "cat"), "")
	s.Equal(http.StatusNotFound, w.Code)
	s.Equal("not found", gjson.Get(w.Body.String(), "error").String())

	w = s.api(http.MethodGet, "/api/v1.0x/nope", "", "")
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *AppTestSuite) TestAPIRequiresCredentials() {
	w := s.api(http.MethodGet, "/api/v1.0/posts/", "", "")
	s.Equal(http.StatusUnauthorized, w.Code)
	s.Equal("unauthorized", gjson.Get(w.Body.String(), "error").String())
	s.Equal("Invalid credentials", gjson.Get(w.Body.String(), "message").String())

	s.createUser("john@example.com", "john", "cat", true)
	w = s.api(http.MethodGet, "/api/v1.0/posts/", basicAuth("john@example.com", "dog"), "")
	s.Equal(http.StatusUnauthorized, w.Code)

	w = s.api(http.MethodGet, "/api/v1.0/posts/", basicAuth("john@example.com", "cat"), "")
	s.Equal(http.StatusOK, w.Code)
	s.Equal(int64(0), gjson.Get(w.Body.String(), "count").Int())
}

func (s *AppTestSuite) TestAPIRejectsUnconfirmedAccount() {
	s.createUser("john@example.com", "john", "cat", false)

	w := s.api(http.MethodGet, "/api/v1.0/posts/", basicAuth("john@example.com", "cat"), "")
	s.Equal(http.StatusForbidden, w.Code)
	s.Equal("forbidden", gjson.Get(w.Body.String(), "error").String())
	s.Equal("Unconfirmed account", gjson.Get(w.Body.String(), "message").String())
}

func (s *AppTestSuite) TestAPITokenAuth() {
	s.createUser("john@example.com", "john", "cat", true)

	w := s.api(http.MethodGet, "/api/v1.0/token", basicAuth("john@example.com", "cat"), "")
	s.Require().Equal(http.StatusOK, w.Code)
	token := gjson.Get(w.Body.String(), "token").String()
	s.NotEmpty(token)
	s.Equal(int64(3600), gjson.Get(w.Body.String(), "expiration").Int())

	w = s.api(http.MethodGet, "/api/v1.0/posts/", basicAuth(token, ""), "")
	s.Equal(http.StatusOK, w.Code)

	w = s.api(http.MethodGet, "/api/v1.0/token", basicAuth(token, ""), "")
	s.Equal(http.StatusUnauthorized, w.Code)

	w = s.api(http.MethodGet, "/api/v1.0/posts/", basicAuth("bad-token", ""), "")
	s.Equal(http.StatusUnauthorized, w.Code)

	w = s.api(http.MethodGet, "/api/v1.0/token?expiration=60", basicAuth("john@example.com", "cat"), "")
	s.Equal(int64(60), gjson.Get(w.Body.String(), "expiration").Int())
}

func (s *AppTestSuite) TestAPIPosts() {
	john := s.createUser("john@example.com", "john", "cat", true)
	auth := basicAuth("john@example.com", "cat")

	w := s.api(http.MethodPost, "/api/v1.0/posts/", auth, `{"body": ""}`)
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal("bad request", gjson.Get(w.Body.String(), "error").String())
	s.Equal("post does not have a body", gjson.Get(w.Body.String(), "message").String())

	w = s.api(http.MethodPost, "/api/v1.0/posts/", auth, `{"body": "body of the *blog* post"}`)
	s.Require().Equal(http.StatusCreated, w.Code)
	location := w.Header().Get("Location")
	s.NotEmpty(location)
	s.Equal(location, gjson.Get(w.Body.String(), "url").String())

	w = s.api(http.MethodGet, pathOf(location), auth, "")
	s.Require().Equal(http.StatusOK, w.Code)
	post := w.Body.String()
	s.Equal(location, gjson.Get(post, "url").String())
	s.Equal("body of the *blog* post", gjson.Get(post, "body").String())
	s.Equal("<p>body of the <em>blog</em> post</p>", gjson.Get(post, "body_html").String())
	s.Equal(int64(0), gjson.Get(post, "comment_count").Int())
	_, err := time.Parse(time.RFC3339, gjson.Get(post, "timestamp").String())
	s.NoError(err)

	s.Equal("http://example.com/api/v1.0/users/"+itoa(john.ID), gjson.Get(post, "author").String())

	w = s.api(http.MethodGet, "/api/v1.0/users/"+itoa(john.ID)+"/posts/", auth, "")
	s.Require().Equal(http.StatusOK, w.Code)
	s.Equal(int64(1), gjson.Get(w.Body.String(), "count").Int())
	s.JSONEq(post, gjson.Get(w.Body.String(), "posts.0").Raw)
	s.Equal(gjson.Null, gjson.Get(w.Body.String(), "prev").Type)
	s.Equal(gjson.Null, gjson.Get(w.Body.String(), "next").Type)

	w = s.api(http.MethodGet, "/api/v1.0/users/"+itoa(john.ID)+"/timeline/", auth, "")
	s.Require().Equal(http.StatusOK, w.Code)
	s.JSONEq(post, gjson.Get(w.Body.String(), "posts.0").Raw)

	w = s.api(http.MethodPut, pathOf(location), auth, `{"body": "updated body"}`)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Equal("<p>updated body</p>", gjson.Get(w.Body.String(), "body_html").String())

	s.createUser("susan@example.com", "susan", "dog", true)
	w = s.api(http.MethodPut, pathOf(location), basicAuth("susan@example.com", "dog"), `{"body": "hijack"}`)
	s.Equal(http.StatusForbidden, w.Code)

	w = s.api(http.MethodGet, "/api/v1.0/users/"+itoa(john.ID), auth, "")
	s.Require().Equal(http.StatusOK, w.Code)
	s.Equal("john", gjson.Get(w.Body.String(), "username").String())
	s.Equal(int64(1), gjson.Get(w.Body.String(), "post_count").Int())

	w = s.api(http.MethodGet, "/api/v1.0/posts/999", auth, "")
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *AppTestSuite) TestAPIPagination() {
	s.createUser("john@example.com", "john", "cat", true)
	auth := basicAuth("john@example.com", "cat")
	s.app.Config.PostsPerPage = 1
	s.router = s.app.Router()

	w := s.api(http.MethodPost, "/api/v1.0/posts/", auth, `{"body": "only post"}`)
	s.Require().Equal(http.StatusCreated, w.Code)

	w = s.api(http.MethodGet, "/api/v1.0/posts/", auth, "")
	s.Equal(int64(1), gjson.Get(w.Body.String(), "count").Int())
	s.Len(gjson.Get(w.Body.String(), "posts").Array(), 1)
	s.Equal(gjson.Null, gjson.Get(w.Body.String(), "next").Type)

	w = s.api(http.MethodGet, "/api/v1.0/posts/?page=2", auth, "")
	s.Require().Equal(http.StatusOK, w.Code)
	s.Len(gjson.Get(w.Body.String(), "posts").Array(), 0)
	s.Equal("http://example.com/api/v1.0/posts/?page=1", gjson.Get(w.Body.String(), "prev").String())
}

func (s *AppTestSuite) TestAPIComments() {
	s.createUser("john@example.com", "john", "cat", true)
	auth := basicAuth("john@example.com", "cat")

	w := s.api(http.MethodPost, "/api/v1.0/posts/", auth, `{"body": "a post"}`)
	s.Require().Equal(http.StatusCreated, w.Code)
	postURL := w.Header().Get("Location")

	w = s.api(http.MethodPost, pathOf(postURL)+"/comments/", auth, `{"body": "Good [post](http://example.com)!"}`)
	s.Require().Equal(http.StatusCreated, w.Code)
	commentURL := w.Header().Get("Location")
	bodyHTML := gjson.Get(w.Body.String(), "body_html").String()
	s.Contains(bodyHTML, `href="http://example.com"`)
	s.Contains(bodyHTML, `rel="nofollow"`)
	s.NotContains(bodyHTML, "<p>")
	s.Equal(postURL, gjson.Get(w.Body.String(), "post").String())

	w = s.api(http.MethodGet, pathOf(commentURL), auth, "")
	s.Require().Equal(http.StatusOK, w.Code)
	comment := w.Body.String()

	w = s.api(http.MethodGet, pathOf(postURL)+"/comments/", auth, "")
	s.Equal(int64(1), gjson.Get(w.Body.String(), "count").Int())
	s.JSONEq(comment, gjson.Get(w.Body.String(), "comments.0").Raw)

	w = s.api(http.MethodGet, "/api/v1.0/comments/", auth, "")
	s.JSONEq(comment, gjson.Get(w.Body.String(), "comments.0").Raw)

	w = s.api(http.MethodGet, pathOf(postURL), auth, "")
	s.Equal(int64(1), gjson.Get(w.Body.String(), "comment_count").Int())
}

func (s *AppTestSuite) TestHomePage() {
	w := s.web(http.MethodGet, "/", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Contains(s.document(w).Find("h1").First().Text(), "Stranger")
}

func (s *AppTestSuite) TestRegisterConfirmFlow() {
	w := s.web(http.MethodPost, "/auth/register", url.Values{
		"email":     {"john@example.com"},
		"username":  {"john"},
		"password":  {"cat"},
		"password2": {"cat"},
	})
	s.Require().Equal(http.StatusFound, w.Code)
	s.Equal("/auth/login", w.Header().Get("Location"))

	email := s.nextEmail()
	s.Equal([]string{"john@example.com"}, email.To)
	confirmURL := regexp.MustCompile(`http://\S+/auth/confirm/\S+`).FindString(email.Text)
	s.Require().NotEmpty(confirmURL)

	w = s.web(http.MethodPost, "/auth/login", url.Values{
		"email":    {"john@example.com"},
		"password": {"cat"},
	})
	s.Require().Equal(http.StatusFound, w.Code)
	s.Equal("/", w.Header().Get("Location"))

	w = s.web(http.MethodGet, "/", nil)
	s.Require().Equal(http.StatusFound, w.Code)
	s.Equal("/auth/unconfirmed", w.Header().Get("Location"))

	w = s.web(http.MethodGet, "/auth/unconfirmed", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	doc := s.document(w)
	s.Contains(doc.Find("h1").Text(), "Hello, john!")
	s.Contains(doc.Find("h3").Text(), "You have not confirmed your account yet.")

	w = s.web(http.MethodGet, pathOf(confirmURL), nil)
	s.Require().Equal(http.StatusFound, w.Code)
	s.Equal("/", w.Header().Get("Location"))

	w = s.web(http.MethodGet, "/", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Contains(s.document(w).Find(".alert").Text(), "You have confirmed your account")

	w = s.web(http.MethodGet, "/auth/logout", nil)
	s.Require().Equal(http.StatusFound, w.Code)
	w = s.web(http.MethodGet, "/", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	doc = s.document(w)
	s.Contains(doc.Find(".alert").Text(), "You have been logged out.")
	s.Contains(doc.Find("h1").First().Text(), "Stranger")
}

func (s *AppTestSuite) TestRegisterShowsFormErrors() {
	s.createUser("john@example.com", "john", "cat", true)

	w := s.web(http.MethodPost, "/auth/register", url.Values{
		"email":     {"john@example.com"},
		"username":  {"1bad name"},
		"password":  {"cat"},
		"password2": {"dog"},
	})
	s.Require().Equal(http.StatusOK, w.Code)
	errs := s.document(w).Find(".has-error")
	s.Equal(2, errs.Length())

	w = s.web(http.MethodPost, "/auth/register", url.Values{
		"email":     {"john@example.com"},
		"username":  {"johnny"},
		"password":  {"cat"},
		"password2": {"cat"},
	})
	s.Require().Equal(http.StatusOK, w.Code)
	s.Contains(s.document(w).Find(".help-block").Text(), "Email already registered.")
}

func (s *AppTestSuite) TestLoginRequired() {
	w := s.web(http.MethodGet, "/edit-profile", nil)
	s.Equal(http.StatusFound, w.Code)
	s.Equal("/auth/login?next=%2Fedit-profile", w.Header().Get("Location"))

	w = s.web(http.MethodPost, "/auth/login", url.Values{
		"email":    {"nobody@example.com"},
		"password": {"cat"},
	})
	s.Require().Equal(http.StatusOK, w.Code)
	s.Contains(s.document(w).Find(".alert").Text(), "Invalid username or password.")
}

func (s *AppTestSuite) login(email, password string) {
	w := s.web(http.MethodPost, "/auth/login", url.Values{"email": {email}, "password": {password}})
	s.Require().Equal(http.StatusFound, w.Code)
}

func (s *AppTestSuite) TestPostAndComment() {
	s.createUser("john@example.com", "john", "cat", true)
	s.login("john@example.com", "cat")

	w := s.web(http.MethodPost, "/", url.Values{"body": {"*first* post"}})
	s.Require().Equal(http.StatusFound, w.Code)

	w = s.web(http.MethodGet, "/", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	doc := s.document(w)
	s.Equal(1, doc.Find(".post").Length())
	s.Equal("first", doc.Find(".post-body em").Text())

	w = s.web(http.MethodPost, "/post/1", url.Values{"body": {"nice"}})
	s.Require().Equal(http.StatusFound, w.Code)
	s.Equal("/post/1?page=-1", w.Header().Get("Location"))

	w = s.web(http.MethodGet, "/post/1?page=-1", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	doc = s.document(w)
	s.Contains(doc.Find(".comment-body").Text(), "nice")
	s.Contains(doc.Find(".alert").Text(), "Your comment has been published.")
}

func (s *AppTestSuite) TestFollowFlow() {
	s.createUser("john@example.com", "john", "cat", true)
	s.createUser("susan@example.com", "susan", "dog", true)
	s.login("john@example.com", "cat")

	w := s.web(http.MethodGet, "/follow/susan", nil)
	s.Require().Equal(http.StatusFound, w.Code)
	s.Equal("/user/susan", w.Header().Get("Location"))

	w = s.web(http.MethodGet, "/user/susan", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	doc := s.document(w)
	s.Contains(doc.Find(".alert").Text(), "You are now following susan.")
	s.Equal("1", doc.Find(`a[href="/followers/susan"] .badge`).Text())
	s.Equal(1, doc.Find(`a[href="/unfollow/susan"]`).Length())

	w = s.web(http.MethodGet, "/followers/susan", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Contains(s.document(w).Find("table.followers").Text(), "john")

	w = s.web(http.MethodGet, "/follow/nobody", nil)
	s.Equal(http.StatusFound, w.Code)
	s.Equal("/", w.Header().Get("Location"))
}

func (s *AppTestSuite) TestModerationRequiresPermission() {
	s.createUser("john@example.com", "john", "cat", true)
	s.login("john@example.com", "cat")

	w := s.web(http.MethodGet, "/moderate", nil)
	s.Equal(http.StatusForbidden, w.Code)

	s.cookies = map[string]string{}
	s.createUser("admin@example.com", "admin", "cat", true)
	s.login("admin@example.com", "cat")
	w = s.web(http.MethodGet, "/moderate", nil)
	s.Equal(http.StatusOK, w.Code)
}

func (s *AppTestSuite) TestMetrics() {
	s.api(http.MethodGet, "/health", "", "")

	w := s.api(http.MethodGet, "/metrics", "", "")
	s.Require().Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), `social_blog_http_requests_total{method="GET",route="/health",status="200"} 1`)
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func TestAppTestSuite(t *testing.T) {
	suite.Run(t, new(AppTestSuite))
}
