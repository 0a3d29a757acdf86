package services

import (
	"strings"

	"social-blog/models"
	"social-blog/repositories"
)

// LastPage is the page sentinel that selects the final page of comments.
const LastPage = -1

type CommentService interface {
	Create(author *models.User, post *models.Post, body string) (*models.Comment, error)
	GetByID(id uint) (*models.Comment, error)
	List(page, perPage int) ([]models.Comment, int64, error)
	ListByPost(postID uint, page, perPage int) ([]models.Comment, int64, int, error)
	SetDisabled(id uint, disabled bool) error
}

type commentService struct {
	commentRepo repositories.CommentRepository
}

func NewCommentService(commentRepo repositories.CommentRepository) CommentService {
	return &commentService{commentRepo: commentRepo}
}

func (s *commentService) Create(author *models.User, post *models.Post, body string) (*models.Comment, error) {
	if strings.TrimSpace(body) == "" {
		return nil, models.ErrorValidation{Message: "comment does not have a body"}
	}
	comment := &models.Comment{
		AuthorID: author.ID,
		Author:   author,
		PostID:   post.ID,
		Post:     post,
	}
	comment.SetBody(body)
	if err := s.commentRepo.Create(comment); err != nil {
		return nil, internal("create comment", err)
	}
	return comment, nil
}

func (s *commentService) GetByID(id uint) (*models.Comment, error) {
	comment, err := s.commentRepo.GetByID(id)
	if err != nil {
		return nil, translate(err, "comment")
	}
	return comment, nil
}

func (s *commentService) List(page, perPage int) ([]models.Comment, int64, error) {
	comments, total, err := s.commentRepo.List(page, perPage)
	return comments, total, internal("list comments", err)
}

// ListByPost pages through the comments of a post, oldest first, and
// returns the page actually served. Page LastPage resolves to the final page.
func (s *commentService) ListByPost(postID uint, page, perPage int) ([]models.Comment, int64, int, error) {
	if page == LastPage {
		total, err := s.commentRepo.CountByPost(postID)
		if err != nil {
			return nil, 0, 0, internal("count comments", err)
		}
		page = int((total + int64(perPage) - 1) / int64(perPage))
		if page < 1 {
			page = 1
		}
	}
	comments, total, err := s.commentRepo.ListByPost(postID, page, perPage)
	if err != nil {
		return nil, 0, 0, internal("list comments", err)
	}
	return comments, total, page, nil
}

func (s *commentService) SetDisabled(id uint, disabled bool) error {
	return translate(s.commentRepo.SetDisabled(id, disabled), "comment")
}
