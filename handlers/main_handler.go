package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"social-blog/helper"
	"social-blog/middleware"
	"social-blog/models"
	"social-blog/services"

	"github.com/gin-gonic/gin"
)

const showFollowedCookie = "show_followed"

// PageSizes are the per-page counts of the paginated views.
type PageSizes struct {
	Posts     int
	Followers int
	Comments  int
}

type MainHandler struct {
	userService    services.UserService
	postService    services.PostService
	commentService services.CommentService
	roleService    services.RoleService
	pageSizes      PageSizes
	Helper         *helper.HTTPHelper
}

func NewMainHandler(
	userService services.UserService,
	postService services.PostService,
	commentService services.CommentService,
	roleService services.RoleService,
	pageSizes PageSizes,
	httpHelper *helper.HTTPHelper,
) *MainHandler {
	return &MainHandler{
		userService:    userService,
		postService:    postService,
		commentService: commentService,
		roleService:    roleService,
		pageSizes:      pageSizes,
		Helper:         httpHelper,
	}
}

// followRow is one line of the followers and followed-by tables.
type followRow struct {
	User      *models.User
	Timestamp time.Time
}

func (h *MainHandler) fail(c *gin.Context, err error) {
	status := h.Helper.GetStatusCode(err)
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		middleware.RenderError(c, status, "Internal server error")
		return
	}
	middleware.RenderError(c, status, err.Error())
}

func (h *MainHandler) paramID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		middleware.RenderError(c, http.StatusNotFound, "Not found")
		return 0, false
	}
	return uint(id), true
}

// lookupUser resolves the :username parameter. Unknown users are flashed
// and sent to the index.
func (h *MainHandler) lookupUser(c *gin.Context) (*models.User, bool) {
	user, err := h.userService.GetByUsername(c.Param("username"))
	switch h.Helper.GetStatusCode(err) {
	case http.StatusOK:
		return user, true
	case http.StatusNotFound:
		middleware.Flash(c, "Invalid user.")
		c.Redirect(http.StatusFound, "/")
	default:
		h.fail(c, err)
	}
	return nil, false
}

func (h *MainHandler) renderPosts(c *gin.Context, name string, data gin.H, posts []models.Post) {
	counts, err := h.postService.CommentCounts(posts)
	if err != nil {
		h.fail(c, err)
		return
	}
	data["posts"] = posts
	data["comment_counts"] = counts
	middleware.Render(c, http.StatusOK, name, data)
}

func (h *MainHandler) Index(c *gin.Context) {
	user := middleware.CurrentUser(c)
	var (
		form models.PostForm
		errs map[string]string
	)

	if c.Request.Method == http.MethodPost && user != nil && user.Can(models.PermissionWriteArticles) {
		_ = c.ShouldBind(&form)
		if errs = h.Helper.ValidateForm(form); errs == nil {
			if _, err := h.postService.Create(user, form.Body); err != nil {
				var ok bool
				if errs, ok = fieldErrors(err, errs); !ok {
					h.fail(c, err)
					return
				}
				if errs == nil {
					errs = map[string]string{"body": err.Error()}
				}
			} else {
				c.Redirect(http.StatusFound, "/")
				return
			}
		}
	}

	showFollowed := false
	if user != nil {
		cookie, _ := c.Cookie(showFollowedCookie)
		showFollowed = cookie != ""
	}

	page := helper.ParsePage(c)
	var (
		posts []models.Post
		total int64
		err   error
	)
	if showFollowed {
		posts, total, err = h.postService.ListFollowed(user.ID, page, h.pageSizes.Posts)
	} else {
		posts, total, err = h.postService.List(page, h.pageSizes.Posts)
	}
	if err != nil {
		h.fail(c, err)
		return
	}

	h.renderPosts(c, "index.html", gin.H{
		"form":          form,
		"errors":        errs,
		"show_followed": showFollowed,
		"pagination":    helper.NewPagination(page, h.pageSizes.Posts, total),
		"page_path":     "/",
	}, posts)
}

func (h *MainHandler) ShowAll(c *gin.Context) {
	c.SetCookie(showFollowedCookie, "", 30*24*60*60, "/", "", false, true)
	c.Redirect(http.StatusFound, "/")
}

func (h *MainHandler) ShowFollowed(c *gin.Context) {
	c.SetCookie(showFollowedCookie, "1", 30*24*60*60, "/", "", false, true)
	c.Redirect(http.StatusFound, "/")
}

func (h *MainHandler) User(c *gin.Context) {
	user, err := h.userService.GetByUsername(c.Param("username"))
	if err != nil {
		h.fail(c, err)
		return
	}

	page := helper.ParsePage(c)
	posts, total, err := h.postService.ListByAuthor(user.ID, page, h.pageSizes.Posts)
	if err != nil {
		h.fail(c, err)
		return
	}
	stats, err := h.userService.Stats(user)
	if err != nil {
		h.fail(c, err)
		return
	}

	data := gin.H{
		"title":           user.Username,
		"user":            user,
		"post_count":      stats.Posts,
		"followers_count": stats.Followers,
		"followed_count":  stats.Followed,
		"pagination":      helper.NewPagination(page, h.pageSizes.Posts, total),
		"page_path":       "/user/" + user.Username,
	}
	if current := middleware.CurrentUser(c); current != nil {
		data["is_self"] = current.ID == user.ID
		if data["is_following"], err = h.userService.IsFollowing(current, user); err != nil {
			h.fail(c, err)
			return
		}
		if data["follows_you"], err = h.userService.IsFollowing(user, current); err != nil {
			h.fail(c, err)
			return
		}
	}
	h.renderPosts(c, "user.html", data, posts)
}

func (h *MainHandler) EditProfile(c *gin.Context) {
	user := middleware.CurrentUser(c)
	form := models.EditProfileForm{Name: user.Name, Location: user.Location, AboutMe: user.AboutMe}
	var errs map[string]string

	if c.Request.Method == http.MethodPost {
		form = models.EditProfileForm{}
		_ = c.ShouldBind(&form)
		if errs = h.Helper.ValidateForm(form); errs == nil {
			if err := h.userService.UpdateProfile(user, form); err != nil {
				h.fail(c, err)
				return
			}
			middleware.Flash(c, "Your profile has been updated.")
			c.Redirect(http.StatusFound, "/user/"+user.Username)
			return
		}
	}
	middleware.Render(c, http.StatusOK, "edit_profile.html", gin.H{"title": "Edit Profile", "form": form, "errors": errs})
}

func (h *MainHandler) EditProfileAdmin(c *gin.Context) {
	id, ok := h.paramID(c)
	if !ok {
		return
	}
	user, err := h.userService.GetByID(id)
	if err != nil {
		h.fail(c, err)
		return
	}
	roles, err := h.roleService.GetAll()
	if err != nil {
		h.fail(c, err)
		return
	}

	form := models.EditProfileAdminForm{
		Email:     user.Email,
		Username:  user.Username,
		Confirmed: user.Confirmed,
		RoleID:    user.RoleID,
		Name:      user.Name,
		Location:  user.Location,
		AboutMe:   user.AboutMe,
	}
	var errs map[string]string

	if c.Request.Method == http.MethodPost {
		form = models.EditProfileAdminForm{}
		_ = c.ShouldBind(&form)
		if errs = h.Helper.ValidateForm(form); errs == nil {
			err := h.userService.AdminUpdateProfile(user, form)
			if err == nil {
				middleware.Flash(c, "The profile has been updated.")
				c.Redirect(http.StatusFound, "/user/"+user.Username)
				return
			}
			var ok bool
			if errs, ok = fieldErrors(err, errs); !ok {
				h.fail(c, err)
				return
			}
		}
	}
	middleware.Render(c, http.StatusOK, "edit_profile.html", gin.H{
		"title":      "Edit Profile",
		"admin_form": true,
		"roles":      roles,
		"user":       user,
		"form":       form,
		"errors":     errs,
	})
}

func (h *MainHandler) Post(c *gin.Context) {
	id, ok := h.paramID(c)
	if !ok {
		return
	}
	post, err := h.postService.GetByID(id)
	if err != nil {
		h.fail(c, err)
		return
	}

	var (
		form models.CommentForm
		errs map[string]string
	)
	if c.Request.Method == http.MethodPost {
		user := middleware.CurrentUser(c)
		if user == nil || !user.Can(models.PermissionComment) {
			middleware.RenderError(c, http.StatusForbidden, "Forbidden")
			return
		}
		_ = c.ShouldBind(&form)
		if errs = h.Helper.ValidateForm(form); errs == nil {
			if _, err := h.commentService.Create(user, post, form.Body); err != nil {
				h.fail(c, err)
				return
			}
			middleware.Flash(c, "Your comment has been published.")
			c.Redirect(http.StatusFound, fmt.Sprintf("/post/%d?page=%d", post.ID, services.LastPage))
			return
		}
	}

	comments, total, page, err := h.commentService.ListByPost(post.ID, helper.ParsePage(c), h.pageSizes.Comments)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.renderPosts(c, "post.html", gin.H{
		"title":      "Post",
		"form":       form,
		"errors":     errs,
		"comments":   comments,
		"pagination": helper.NewPagination(page, h.pageSizes.Comments, total),
		"page_path":  fmt.Sprintf("/post/%d", post.ID),
	}, []models.Post{*post})
}

func (h *MainHandler) Edit(c *gin.Context) {
	id, ok := h.paramID(c)
	if !ok {
		return
	}
	post, err := h.postService.GetByID(id)
	if err != nil {
		h.fail(c, err)
		return
	}
	user := middleware.CurrentUser(c)
	if user.ID != post.AuthorID && !user.IsAdministrator() {
		middleware.RenderError(c, http.StatusForbidden, "Forbidden")
		return
	}

	form := models.PostForm{Body: post.Body}
	var errs map[string]string
	if c.Request.Method == http.MethodPost {
		form = models.PostForm{}
		_ = c.ShouldBind(&form)
		if errs = h.Helper.ValidateForm(form); errs == nil {
			if err := h.postService.Update(user, post, form.Body); err != nil {
				h.fail(c, err)
				return
			}
			middleware.Flash(c, "The post has been updated.")
			c.Redirect(http.StatusFound, fmt.Sprintf("/post/%d", post.ID))
			return
		}
	}
	middleware.Render(c, http.StatusOK, "edit_post.html", gin.H{"title": "Edit Post", "form": form, "errors": errs})
}

func (h *MainHandler) Follow(c *gin.Context) {
	target, ok := h.lookupUser(c)
	if !ok {
		return
	}
	user := middleware.CurrentUser(c)
	following, err := h.userService.IsFollowing(user, target)
	if err != nil {
		h.fail(c, err)
		return
	}
	if following {
		middleware.Flash(c, "You are already following this user.")
	} else {
		if err := h.userService.Follow(user, target); err != nil {
			h.fail(c, err)
			return
		}
		middleware.Flash(c, fmt.Sprintf("You are now following %s.", target.Username))
	}
	c.Redirect(http.StatusFound, "/user/"+target.Username)
}

func (h *MainHandler) Unfollow(c *gin.Context) {
	target, ok := h.lookupUser(c)
	if !ok {
		return
	}
	user := middleware.CurrentUser(c)
	following, err := h.userService.IsFollowing(user, target)
	if err != nil {
		h.fail(c, err)
		return
	}
	if !following {
		middleware.Flash(c, "You are not following this user.")
		c.Redirect(http.StatusFound, "/user/"+target.Username)
		return
	}
	err = h.userService.Unfollow(user, target)
	if _, ok := fieldErrors(err, nil); ok {
		middleware.Flash(c, err.Error())
	} else if err != nil {
		h.fail(c, err)
		return
	} else {
		middleware.Flash(c, fmt.Sprintf("You are not following %s anymore.", target.Username))
	}
	c.Redirect(http.StatusFound, "/user/"+target.Username)
}

func (h *MainHandler) Followers(c *gin.Context) {
	h.follows(c, "Followers of", "/followers/", func(user *models.User, page int) ([]models.Follow, int64, error) {
		return h.userService.Followers(user, page, h.pageSizes.Followers)
	}, func(f models.Follow) *models.User { return f.Follower })
}

func (h *MainHandler) FollowedBy(c *gin.Context) {
	h.follows(c, "Followed by", "/followed_by/", func(user *models.User, page int) ([]models.Follow, int64, error) {
		return h.userService.Followed(user, page, h.pageSizes.Followers)
	}, func(f models.Follow) *models.User { return f.Followed })
}

func (h *MainHandler) follows(
	c *gin.Context,
	title, path string,
	list func(user *models.User, page int) ([]models.Follow, int64, error),
	other func(models.Follow) *models.User,
) {
	user, ok := h.lookupUser(c)
	if !ok {
		return
	}
	page := helper.ParsePage(c)
	follows, total, err := list(user, page)
	if err != nil {
		h.fail(c, err)
		return
	}
	rows := make([]followRow, 0, len(follows))
	for _, f := range follows {
		rows = append(rows, followRow{User: other(f), Timestamp: f.Timestamp})
	}
	middleware.Render(c, http.StatusOK, "followers.html", gin.H{
		"title":      title,
		"user":       user,
		"follows":    rows,
		"pagination": helper.NewPagination(page, h.pageSizes.Followers, total),
		"page_path":  path + user.Username,
	})
}

func (h *MainHandler) Moderate(c *gin.Context) {
	page := helper.ParsePage(c)
	comments, total, err := h.commentService.List(page, h.pageSizes.Comments)
	if err != nil {
		h.fail(c, err)
		return
	}
	middleware.Render(c, http.StatusOK, "moderate.html", gin.H{
		"title":      "Comment Moderation",
		"comments":   comments,
		"moderate":   true,
		"pagination": helper.NewPagination(page, h.pageSizes.Comments, total),
		"page_path":  "/moderate",
	})
}

func (h *MainHandler) ModerateEnable(c *gin.Context) {
	h.setDisabled(c, false)
}

func (h *MainHandler) ModerateDisable(c *gin.Context) {
	h.setDisabled(c, true)
}

func (h *MainHandler) setDisabled(c *gin.Context, disabled bool) {
	id, ok := h.paramID(c)
	if !ok {
		return
	}
	if err := h.commentService.SetDisabled(id, disabled); err != nil {
		h.fail(c, err)
		return
	}
	c.Redirect(http.StatusFound, fmt.Sprintf("/moderate?page=%d", helper.ParsePage(c)))
}
