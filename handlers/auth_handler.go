package handlers

import (
	"errors"
	"net/http"
	"strings"

	"social-blog/helper"
	"social-blog/middleware"
	"social-blog/models"
	"social-blog/services"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService services.AuthService
	userService services.UserService
	mailService services.MailService
	Helper      *helper.HTTPHelper
}

func NewAuthHandler(
	authService services.AuthService,
	userService services.UserService,
	mailService services.MailService,
	httpHelper *helper.HTTPHelper,
) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		userService: userService,
		mailService: mailService,
		Helper:      httpHelper,
	}
}

// fieldErrors merges a field-level service error into errs. It reports
// whether err was a validation error.
func fieldErrors(err error, errs map[string]string) (map[string]string, bool) {
	var validation models.ErrorValidation
	if !errors.As(err, &validation) {
		return errs, false
	}
	if validation.Field == "" {
		return errs, true
	}
	if errs == nil {
		errs = map[string]string{}
	}
	errs[validation.Field] = validation.Message
	return errs, true
}

// safeNext accepts only local absolute paths.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}

func (h *AuthHandler) serverError(c *gin.Context, err error) {
	_ = c.Error(err)
	middleware.RenderError(c, http.StatusInternalServerError, "Internal server error")
}

func (h *AuthHandler) sendAccountMail(c *gin.Context, to, subject, name string, user *models.User, path string) {
	err := h.mailService.SendEmail(to, subject, name, services.MailData{
		User: user,
		URL:  h.Helper.ExternalURL(c, path),
	})
	if err != nil {
		_ = c.Error(err)
	}
}

func (h *AuthHandler) Login(c *gin.Context) {
	form := models.LoginForm{Next: c.Query("next")}
	if c.Request.Method == http.MethodGet {
		middleware.Render(c, http.StatusOK, "login.html", gin.H{"title": "Login", "form": form})
		return
	}

	_ = c.ShouldBind(&form)
	errs := h.Helper.ValidateForm(form)
	if errs == nil {
		user, err := h.authService.Login(form.Email, form.Password)
		if err == nil {
			if err := middleware.CurrentSession(c).Login(user.ID, form.RememberMe); err != nil {
				h.serverError(c, err)
				return
			}
			c.Redirect(http.StatusFound, safeNext(form.Next))
			return
		}
		if h.Helper.GetStatusCode(err) == http.StatusInternalServerError {
			h.serverError(c, err)
			return
		}
		middleware.Flash(c, "Invalid username or password.")
	}
	middleware.Render(c, http.StatusOK, "login.html", gin.H{"title": "Login", "form": form, "errors": errs})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	if err := middleware.CurrentSession(c).Logout(); err != nil {
		h.serverError(c, err)
		return
	}
	middleware.Flash(c, "You have been logged out.")
	c.Redirect(http.StatusFound, "/")
}

func (h *AuthHandler) Register(c *gin.Context) {
	var form models.RegisterForm
	if c.Request.Method == http.MethodGet {
		middleware.Render(c, http.StatusOK, "register.html", gin.H{"title": "Register", "form": form})
		return
	}

	_ = c.ShouldBind(&form)
	errs := h.Helper.ValidateForm(form)
	if errs == nil {
		user, err := h.authService.Register(form)
		if err == nil {
			token, err := h.authService.GenerateConfirmationToken(user)
			if err != nil {
				h.serverError(c, err)
				return
			}
			h.sendAccountMail(c, user.Email, "Confirm Your Account", "confirm", user, "/auth/confirm/"+token)
			middleware.Flash(c, "A confirmation email has been sent to you by email.")
			c.Redirect(http.StatusFound, "/auth/login")
			return
		}
		var ok bool
		if errs, ok = fieldErrors(err, errs); !ok {
			h.serverError(c, err)
			return
		}
	}
	middleware.Render(c, http.StatusOK, "register.html", gin.H{"title": "Register", "form": form, "errors": errs})
}

func (h *AuthHandler) Confirm(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user.Confirmed {
		c.Redirect(http.StatusFound, "/")
		return
	}
	err := h.authService.Confirm(user, c.Param("token"))
	switch h.Helper.GetStatusCode(err) {
	case http.StatusOK:
		middleware.Flash(c, "You have confirmed your account. Thanks!")
	case http.StatusInternalServerError:
		h.serverError(c, err)
		return
	default:
		middleware.Flash(c, "The confirmation link is invalid or has expired.")
	}
	c.Redirect(http.StatusFound, "/")
}

func (h *AuthHandler) ResendConfirmation(c *gin.Context) {
	user := middleware.CurrentUser(c)
	token, err := h.authService.GenerateConfirmationToken(user)
	if err != nil {
		h.serverError(c, err)
		return
	}
	h.sendAccountMail(c, user.Email, "Confirm Your Account", "confirm", user, "/auth/confirm/"+token)
	middleware.Flash(c, "A new confirmation email has been sent to you by email.")
	c.Redirect(http.StatusFound, "/")
}

func (h *AuthHandler) Unconfirmed(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil || user.Confirmed {
		c.Redirect(http.StatusFound, "/")
		return
	}
	middleware.Render(c, http.StatusOK, "unconfirmed.html", gin.H{"title": "Confirm your account"})
}

func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var form models.ChangePasswordForm
	if c.Request.Method == http.MethodGet {
		middleware.Render(c, http.StatusOK, "change_password.html", gin.H{"title": "Change Password"})
		return
	}

	_ = c.ShouldBind(&form)
	errs := h.Helper.ValidateForm(form)
	if errs == nil {
		err := h.authService.ChangePassword(middleware.CurrentUser(c), form.OldPassword, form.Password)
		switch h.Helper.GetStatusCode(err) {
		case http.StatusOK:
			middleware.Flash(c, "Your password has been updated.")
			c.Redirect(http.StatusFound, "/")
			return
		case http.StatusInternalServerError:
			h.serverError(c, err)
			return
		default:
			middleware.Flash(c, "Invalid password.")
		}
	}
	middleware.Render(c, http.StatusOK, "change_password.html", gin.H{"title": "Change Password", "errors": errs})
}

// PasswordResetRequest mails a reset link to a known address.
func (h *AuthHandler) PasswordResetRequest(c *gin.Context) {
	if middleware.CurrentUser(c) != nil {
		c.Redirect(http.StatusFound, "/")
		return
	}
	var form models.PasswordResetRequestForm
	if c.Request.Method == http.MethodGet {
		middleware.Render(c, http.StatusOK, "reset_password.html", gin.H{"title": "Password Reset", "form": form})
		return
	}

	_ = c.ShouldBind(&form)
	errs := h.Helper.ValidateForm(form)
	if errs == nil {
		user, err := h.userService.GetByEmail(strings.ToLower(strings.TrimSpace(form.Email)))
		switch h.Helper.GetStatusCode(err) {
		case http.StatusOK:
			token, err := h.authService.GenerateResetToken(user)
			if err != nil {
				h.serverError(c, err)
				return
			}
			h.sendAccountMail(c, user.Email, "Reset Your Password", "reset_password", user, "/auth/reset/"+token)
			middleware.Flash(c, "An email with instructions to reset your password has been sent to you.")
			c.Redirect(http.StatusFound, "/auth/login")
			return
		case http.StatusNotFound:
			errs = map[string]string{"email": "Unknown email address."}
		default:
			h.serverError(c, err)
			return
		}
	}
	middleware.Render(c, http.StatusOK, "reset_password.html", gin.H{"title": "Password Reset", "form": form, "errors": errs})
}

func (h *AuthHandler) PasswordReset(c *gin.Context) {
	if middleware.CurrentUser(c) != nil {
		c.Redirect(http.StatusFound, "/")
		return
	}
	var form models.PasswordResetForm
	data := gin.H{"title": "Password Reset", "token": c.Param("token")}
	if c.Request.Method == http.MethodGet {
		data["form"] = form
		middleware.Render(c, http.StatusOK, "reset_password.html", data)
		return
	}

	_ = c.ShouldBind(&form)
	errs := h.Helper.ValidateForm(form)
	if errs == nil {
		err := h.authService.ResetPassword(c.Param("token"), form.Email, form.Password)
		switch h.Helper.GetStatusCode(err) {
		case http.StatusOK:
			middleware.Flash(c, "Your password has been updated.")
			c.Redirect(http.StatusFound, "/auth/login")
		case http.StatusInternalServerError:
			h.serverError(c, err)
		default:
			middleware.Flash(c, err.Error())
			c.Redirect(http.StatusFound, "/")
		}
		return
	}
	data["form"] = form
	data["errors"] = errs
	middleware.Render(c, http.StatusOK, "reset_password.html", data)
}

func (h *AuthHandler) ChangeEmailRequest(c *gin.Context) {
	var form models.ChangeEmailForm
	if c.Request.Method == http.MethodGet {
		middleware.Render(c, http.StatusOK, "change_email.html", gin.H{"title": "Change Email Address", "form": form})
		return
	}

	_ = c.ShouldBind(&form)
	errs := h.Helper.ValidateForm(form)
	if errs == nil {
		user := middleware.CurrentUser(c)
		token, err := h.authService.RequestEmailChange(user, form.Email, form.Password)
		if err == nil {
			newEmail := strings.ToLower(strings.TrimSpace(form.Email))
			h.sendAccountMail(c, newEmail, "Confirm your email address", "change_email", user, "/auth/change-email/"+token)
			middleware.Flash(c, "An email with instructions to confirm your new email address has been sent to you.")
			c.Redirect(http.StatusFound, "/")
			return
		}
		var validation models.ErrorValidation
		if !errors.As(err, &validation) {
			h.serverError(c, err)
			return
		}
		if validation.Field != "" {
			errs = map[string]string{validation.Field: validation.Message}
		} else {
			middleware.Flash(c, validation.Message)
		}
	}
	middleware.Render(c, http.StatusOK, "change_email.html", gin.H{"title": "Change Email Address", "form": form, "errors": errs})
}

func (h *AuthHandler) ChangeEmail(c *gin.Context) {
	err := h.authService.ChangeEmail(middleware.CurrentUser(c), c.Param("token"))
	switch h.Helper.GetStatusCode(err) {
	case http.StatusOK:
		middleware.Flash(c, "Your email address has been updated.")
	case http.StatusInternalServerError:
		h.serverError(c, err)
		return
	default:
		middleware.Flash(c, "Invalid request.")
	}
	c.Redirect(http.StatusFound, "/")
}
