package services

import (
	"strings"

	"social-blog/models"
	"social-blog/repositories"
)

var errEmptyPost = models.ErrorValidation{Message: "post does not have a body"}

type PostService interface {
	Create(author *models.User, body string) (*models.Post, error)
	Update(editor *models.User, post *models.Post, body string) error
	GetByID(id uint) (*models.Post, error)
	List(page, perPage int) ([]models.Post, int64, error)
	ListByAuthor(authorID uint, page, perPage int) ([]models.Post, int64, error)
	ListFollowed(userID uint, page, perPage int) ([]models.Post, int64, error)
	CountComments(postID uint) (int64, error)
	CommentCounts(posts []models.Post) (map[uint]int64, error)
}

type postService struct {
	postRepo    repositories.PostRepository
	commentRepo repositories.CommentRepository
}

func NewPostService(postRepo repositories.PostRepository, commentRepo repositories.CommentRepository) PostService {
	return &postService{postRepo: postRepo, commentRepo: commentRepo}
}

func (s *postService) Create(author *models.User, body string) (*models.Post, error) {
	if strings.TrimSpace(body) == "" {
		return nil, errEmptyPost
	}
	post := &models.Post{AuthorID: author.ID, Author: author}
	post.SetBody(body)
	if err := s.postRepo.Create(post); err != nil {
		return nil, internal("create post", err)
	}
	return post, nil
}

// Update replaces the body of post. Only the author or an administrator may
// edit a post.
func (s *postService) Update(editor *models.User, post *models.Post, body string) error {
	if editor.ID != post.AuthorID && !editor.IsAdministrator() {
		return models.ErrorForbidden{Message: "Insufficient permissions"}
	}
	if strings.TrimSpace(body) == "" {
		return errEmptyPost
	}
	post.SetBody(body)
	return internal("update post", s.postRepo.Update(post))
}

func (s *postService) GetByID(id uint) (*models.Post, error) {
	post, err := s.postRepo.GetByID(id)
	if err != nil {
		return nil, translate(err, "post")
	}
	return post, nil
}

func (s *postService) List(page, perPage int) ([]models.Post, int64, error) {
	posts, total, err := s.postRepo.List(page, perPage)
	return posts, total, internal("list posts", err)
}

func (s *postService) ListByAuthor(authorID uint, page, perPage int) ([]models.Post, int64, error) {
	posts, total, err := s.postRepo.ListByAuthor(authorID, page, perPage)
	return posts, total, internal("list posts", err)
}

func (s *postService) ListFollowed(userID uint, page, perPage int) ([]models.Post, int64, error) {
	posts, total, err := s.postRepo.ListFollowed(userID, page, perPage)
	return posts, total, internal("list followed posts", err)
}

func (s *postService) CountComments(postID uint) (int64, error) {
	count, err := s.commentRepo.CountByPost(postID)
	return count, internal("count comments", err)
}

// CommentCounts returns the comment count of every post, keyed by post id.
func (s *postService) CommentCounts(posts []models.Post) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(posts))
	for _, post := range posts {
		n, err := s.CountComments(post.ID)
		if err != nil {
			return nil, err
		}
		counts[post.ID] = n
	}
	return counts, nil
}
