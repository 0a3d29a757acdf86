package models

import "time"

type LoginForm struct {
	Email      string `form:"email" label:"Email" validate:"required,max=64,email"`
	Password   string `form:"password" label:"Password" validate:"required"`
	RememberMe bool   `form:"remember_me"`
	Next       string `form:"next"`
}

type RegisterForm struct {
	Email     string `form:"email" label:"Email" validate:"required,max=64,email"`
	Username  string `form:"username" label:"Username" validate:"required,max=64,username"`
	Password  string `form:"password" label:"Password" validate:"required"`
	Password2 string `form:"password2" label:"Confirm password" validate:"required,eqfield=Password"`
}

type ChangePasswordForm struct {
	OldPassword string `form:"old_password" label:"Old password" validate:"required"`
	Password    string `form:"password" label:"New password" validate:"required"`
	Password2   string `form:"password2" label:"Confirm new password" validate:"required,eqfield=Password"`
}

type PasswordResetRequestForm struct {
	Email string `form:"email" label:"Email" validate:"required,max=64,email"`
}

type PasswordResetForm struct {
	Email     string `form:"email" label:"Email" validate:"required,max=64,email"`
	Password  string `form:"password" label:"New Password" validate:"required"`
	Password2 string `form:"password2" label:"Confirm password" validate:"required,eqfield=Password"`
}

type ChangeEmailForm struct {
	Email    string `form:"email" label:"New Email" validate:"required,max=64,email"`
	Password string `form:"password" label:"Password" validate:"required"`
}

type EditProfileForm struct {
	Name     string `form:"name" label:"Real name" validate:"max=64"`
	Location string `form:"location" label:"Location" validate:"max=64"`
	AboutMe  string `form:"about_me" label:"About me"`
}

type EditProfileAdminForm struct {
	Email     string `form:"email" label:"Email" validate:"required,max=64,email"`
	Username  string `form:"username" label:"Username" validate:"required,max=64,username"`
	Confirmed bool   `form:"confirmed"`
	RoleID    uint   `form:"role" label:"Role" validate:"required"`
	Name      string `form:"name" label:"Real name" validate:"max=64"`
	Location  string `form:"location" label:"Location" validate:"max=64"`
	AboutMe   string `form:"about_me" label:"About me"`
}

type PostForm struct {
	Body string `form:"body" label:"What's on your mind?" validate:"required"`
}

type CommentForm struct {
	Body string `form:"body" label:"Enter your comment" validate:"required"`
}

type CreatePostRequest struct {
	Body string `json:"body"`
}

type CreateCommentRequest struct {
	Body string `json:"body"`
}

type TokenResponse struct {
	Token      string `json:"token"`
	Expiration int    `json:"expiration"`
}

type UserResponse struct {
	URL           string    `json:"url"`
	Username      string    `json:"username"`
	MemberSince   time.Time `json:"member_since"`
	LastSeen      time.Time `json:"last_seen"`
	Posts         string    `json:"posts"`
	FollowedPosts string    `json:"followed_posts"`
	PostCount     int64     `json:"post_count"`
}

type PostResponse struct {
	URL          string    `json:"url"`
	Body         string    `json:"body"`
	BodyHTML     string    `json:"body_html"`
	Timestamp    time.Time `json:"timestamp"`
	Author       string    `json:"author"`
	Comments     string    `json:"comments"`
	CommentCount int64     `json:"comment_count"`
}

type CommentResponse struct {
	URL       string    `json:"url"`
	Post      string    `json:"post"`
	Body      string    `json:"body"`
	BodyHTML  string    `json:"body_html"`
	Timestamp time.Time `json:"timestamp"`
	Author    string    `json:"author"`
}
