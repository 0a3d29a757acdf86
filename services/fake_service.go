package services

import (
	"strings"
	"time"

	"social-blog/models"
	"social-blog/repositories"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/sirupsen/logrus"
)

// FakeService fills a development database with random confirmed users and
// posts.
type FakeService interface {
	Users(count int) (int, error)
	Posts(count int) (int, error)
}

type fakeService struct {
	users    UserService
	userRepo repositories.UserRepository
	postRepo repositories.PostRepository
	faker    *gofakeit.Faker
	log      *logrus.Logger
}

func NewFakeService(
	users UserService,
	userRepo repositories.UserRepository,
	postRepo repositories.PostRepository,
	seed int64,
	log *logrus.Logger,
) FakeService {
	return &fakeService{
		users:    users,
		userRepo: userRepo,
		postRepo: postRepo,
		faker:    gofakeit.New(seed),
		log:      log,
	}
}

// Users creates up to count users. Generated duplicates are skipped, so the
// number created may be lower.
func (s *fakeService) Users(count int) (int, error) {
	created := 0
	now := time.Now()
	for i := 0; i < count; i++ {
		user := &models.User{
			Email:       strings.ToLower(s.faker.Email()),
			Username:    s.username(),
			Confirmed:   true,
			Name:        s.faker.Name(),
			Location:    s.faker.City(),
			AboutMe:     s.faker.Sentence(8),
			MemberSince: s.faker.DateRange(now.AddDate(-1, 0, 0), now).UTC(),
		}

		emailTaken, err := s.users.EmailTaken(user.Email)
		if err != nil {
			return created, err
		}
		nameTaken, err := s.users.UsernameTaken(user.Username)
		if err != nil {
			return created, err
		}
		if emailTaken || nameTaken {
			s.log.WithField("username", user.Username).Debug("skipping duplicate fake user")
			continue
		}

		if err := s.users.Create(user, s.faker.Word()); err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}

func (s *fakeService) username() string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '.':
			return r
		}
		return -1
	}, s.faker.Username())
	if name == "" || !strings.ContainsAny(name[:1], "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		name = "u" + name
	}
	if len(name) > 64 {
		name = name[:64]
	}
	return name
}

// Posts creates count posts, each by a random existing user.
func (s *fakeService) Posts(count int) (int, error) {
	users, err := s.userRepo.GetAll()
	if err != nil {
		return 0, internal("list users", err)
	}
	if len(users) == 0 {
		return 0, models.ErrorValidation{Message: "no users to author fake posts"}
	}

	now := time.Now()
	for i := 0; i < count; i++ {
		author := users[s.faker.Number(0, len(users)-1)]
		sentences := make([]string, s.faker.Number(1, 5))
		for j := range sentences {
			sentences[j] = s.faker.Sentence(s.faker.Number(4, 12))
		}

		post := &models.Post{
			AuthorID:  author.ID,
			Timestamp: s.faker.DateRange(author.MemberSince, now).UTC().Truncate(time.Microsecond),
		}
		post.SetBody(strings.Join(sentences, " "))
		if err := s.postRepo.Create(post); err != nil {
			return i, internal("create post", err)
		}
	}
	return count, nil
}
