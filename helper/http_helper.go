package helper

import (
	"errors"
	"net/http"
	"net/url"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"social-blog/models"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/locales/en"
	"github.com/munnerz/goautoneg"
	ut "github.com/go-playground/universal-translator"
	"gopkg.in/go-playground/validator.v9"
	en_translations "gopkg.in/go-playground/validator.v9/translations/en"
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_.]*$`)

// HTTPHelper ...
type HTTPHelper struct {
	Validate   *validator.Validate
	Translator ut.Translator
}

// NewHTTPHelper builds a helper with an English translator for validation
// messages and the "username" rule registered.
func NewHTTPHelper() *HTTPHelper {
	english := en.New()
	uni := ut.New(english, english)
	trans, _ := uni.GetTranslator("en")

	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		if label := fld.Tag.Get("label"); label != "" {
			return label
		}
		return fld.Name
	})
	_ = en_translations.RegisterDefaultTranslations(validate, trans)

	_ = validate.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})
	_ = validate.RegisterTranslation("username", trans,
		func(t ut.Translator) error {
			return t.Add("username", "Usernames must have only letters, numbers, dots or underscores", true)
		},
		func(t ut.Translator, fe validator.FieldError) string {
			msg, _ := t.T("username")
			return msg
		},
	)

	return &HTTPHelper{Validate: validate, Translator: trans}
}

// GetStatusCode ...
func (u *HTTPHelper) GetStatusCode(err error) int {
	if err == nil {
		return http.StatusOK
	}

	var (
		validation   models.ErrorValidation
		unauthorized models.ErrorUnauthorized
		forbidden    models.ErrorForbidden
		notFound     models.ErrorNotFound
		conflict     models.ErrorConflict
	)
	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.As(err, &unauthorized):
		return http.StatusUnauthorized
	case errors.As(err, &forbidden):
		return http.StatusForbidden
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &conflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// SendError ...
// Send an API error body: {"error": kind, "message": message}.
func (u *HTTPHelper) SendError(c *gin.Context, status int, message string) {
	body := gin.H{"error": strings.ToLower(http.StatusText(status))}
	if message != "" {
		body["message"] = message
	}
	c.JSON(status, body)
}

// SendBadRequest ...
func (u *HTTPHelper) SendBadRequest(c *gin.Context, message string) {
	u.SendError(c, http.StatusBadRequest, message)
}

// SendUnauthorizedError ...
func (u *HTTPHelper) SendUnauthorizedError(c *gin.Context, message string) {
	u.SendError(c, http.StatusUnauthorized, message)
}

// SendForbiddenError ...
func (u *HTTPHelper) SendForbiddenError(c *gin.Context, message string) {
	u.SendError(c, http.StatusForbidden, message)
}

// SendNotFoundError ...
func (u *HTTPHelper) SendNotFoundError(c *gin.Context, message string) {
	u.SendError(c, http.StatusNotFound, message)
}

// SendServiceError maps a service error to its status. Internal errors
// never leak their cause to the client.
func (u *HTTPHelper) SendServiceError(c *gin.Context, err error) {
	status := u.GetStatusCode(err)
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		u.SendError(c, status, "")
		return
	}
	u.SendError(c, status, err.Error())
}

// SendValidationError ...
// Send the first translated validation message as a bad request.
func (u *HTTPHelper) SendValidationError(c *gin.Context, validationErrors validator.ValidationErrors) {
	message := "invalid input"
	if len(validationErrors) > 0 {
		message = validationErrors[0].Translate(u.Translator)
	}
	u.SendBadRequest(c, message)
}

// ValidateForm returns form-field-name → message, or nil when form is valid.
func (u *HTTPHelper) ValidateForm(form interface{}) map[string]string {
	err := u.Validate.Struct(form)
	if err == nil {
		return nil
	}
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return map[string]string{"form": err.Error()}
	}

	names := formFieldNames(form)
	errorResponse := map[string]string{}
	for _, fe := range validationErrors {
		key, ok := names[fe.StructField()]
		if !ok {
			key = Underscore(fe.StructField())
		}
		if _, seen := errorResponse[key]; !seen {
			errorResponse[key] = fe.Translate(u.Translator)
		}
	}
	return errorResponse
}

func formFieldNames(form interface{}) map[string]string {
	names := map[string]string{}
	t := reflect.TypeOf(form)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return names
	}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if name := strings.Split(f.Tag.Get("form"), ",")[0]; name != "" {
			names[f.Name] = name
		}
	}
	return names
}

// ExternalURL returns an absolute URL for path on the host serving c.
func (u *HTTPHelper) ExternalURL(c *gin.Context, path string) string {
	r := c.Request
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return scheme + "://" + r.Host + path
}

// GetPagingUrl returns the absolute URL of the current request with its
// page query value replaced.
func (u *HTTPHelper) GetPagingUrl(c *gin.Context, page int) string {
	query := url.Values{}
	for k, v := range c.Request.URL.Query() {
		query[k] = v
	}
	query.Set("page", strconv.Itoa(page))
	return u.ExternalURL(c, c.Request.URL.Path) + "?" + query.Encode()
}

// GeneratePaging returns the prev/next URLs of p, nil at either boundary.
func (u *HTTPHelper) GeneratePaging(c *gin.Context, p *Pagination) (prev, next *string) {
	if p.HasPrev() {
		s := u.GetPagingUrl(c, p.PrevNum())
		prev = &s
	}
	if p.HasNext() {
		s := u.GetPagingUrl(c, p.NextNum())
		next = &s
	}
	return prev, next
}

// WantsJSON reports whether the client accepts JSON but not HTML. Ranges
// with q=0 do not count as accepted.
func WantsJSON(c *gin.Context) bool {
	accept := c.GetHeader("Accept")
	if strings.TrimSpace(accept) == "" {
		return false
	}
	ranges := goautoneg.ParseAccept(accept)
	return quality(ranges, "application", "json") > 0 && quality(ranges, "text", "html") == 0
}

// quality returns the q-value of the most specific range matching
// typ/subtype, or 0 when no range matches.
func quality(ranges []goautoneg.Accept, typ, subtype string) float64 {
	q, specificity := 0.0, -1
	for _, r := range ranges {
		level := -1
		switch {
		case strings.EqualFold(r.Type, typ) && strings.EqualFold(r.SubType, subtype):
			level = 2
		case strings.EqualFold(r.Type, typ) && r.SubType == "*":
			level = 1
		case r.Type == "*" && r.SubType == "*":
			level = 0
		}
		if level > specificity {
			q, specificity = r.Q, level
		}
	}
	return q
}

// Underscore converts a Go field name to its snake_case form name.
func Underscore(s string) string {
	var b strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 && (unicode.IsLower(runes[i-1]) || (i+1 < len(runes) && unicode.IsLower(runes[i+1]))) {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
