package content

import (
	"context"
	"errors"
	"strings"

	apperrors "github.com/bonitaforward/bonita-forward/internal/platform/errors"
	"github.com/bonitaforward/bonita-forward/internal/platform/pagination"
	"github.com/bonitaforward/bonita-forward/internal/platform/validate"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/access"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/category"
	"github.com/bonitaforward/bonita-forward/internal/services/directory/storage"
)

// ErrPostNotFound is returned when a post is missing or unpublished.
var ErrPostNotFound = apperrors.New(apperrors.CodePostNotFound, "post not found")

// PostInput is the editable shape of a blog post.
type PostInput struct {
	Category  string   `json:"category"`
	Title     string   `json:"title" validate:"required,max=300"`
	Content   string   `json:"content" validate:"max=200000"`
	Images    []string `json:"images" validate:"max=20,dive,image_ref"`
	Published bool     `json:"published"`
}

// ListPosts returns published posts, newest first, optionally by category.
func (s *Service) ListPosts(ctx context.Context, categoryKey string, pageSize int, pageToken string) (storage.Page[storage.BlogPost], error) {
	return s.listPosts(ctx, categoryKey, true, pageSize, pageToken)
}

// AdminListPosts returns every post including drafts.
func (s *Service) AdminListPosts(ctx context.Context, pageSize int, pageToken string) (storage.Page[storage.BlogPost], error) {
	return s.listPosts(ctx, "", false, pageSize, pageToken)
}

func (s *Service) listPosts(ctx context.Context, categoryKey string, publishedOnly bool, pageSize int, pageToken string) (storage.Page[storage.BlogPost], error) {
	if err := s.ready(); err != nil {
		return storage.Page[storage.BlogPost]{}, err
	}
	query := storage.PostQuery{PublishedOnly: publishedOnly}
	if strings.TrimSpace(categoryKey) != "" {
		key, err := category.Require(categoryKey)
		if err != nil {
			return storage.Page[storage.BlogPost]{}, err
		}
		query.CategoryKey = key
	}
	page, err := pagination.Parse(pageSize, pageToken, pagination.Standard)
	if err != nil {
		return storage.Page[storage.BlogPost]{}, err
	}
	query.Page = page
	return s.store.ListPosts(ctx, query)
}

// GetPost returns a post; drafts are visible only to admins.
func (s *Service) GetPost(ctx context.Context, actor access.Actor, postID string) (storage.BlogPost, error) {
	if err := s.ready(); err != nil {
		return storage.BlogPost{}, err
	}
	post, err := s.post(ctx, postID)
	if err != nil {
		return storage.BlogPost{}, err
	}
	if !post.Published && !actor.Admin {
		return storage.BlogPost{}, ErrPostNotFound
	}
	return post, nil
}

// CreatePost stores a new post with a derived excerpt.
func (s *Service) CreatePost(ctx context.Context, in PostInput) (storage.BlogPost, error) {
	if err := s.ready(); err != nil {
		return storage.BlogPost{}, err
	}
	post, err := postFromInput(in)
	if err != nil {
		return storage.BlogPost{}, err
	}
	postID, err := s.nextID("post")
	if err != nil {
		return storage.BlogPost{}, err
	}
	now := s.now()
	post.ID = postID
	post.CreatedAt = now
	post.UpdatedAt = now
	if err := s.store.CreatePost(ctx, post); err != nil {
		return storage.BlogPost{}, err
	}
	return post, nil
}

// UpdatePost replaces a post's content.
func (s *Service) UpdatePost(ctx context.Context, postID string, in PostInput) (storage.BlogPost, error) {
	if err := s.ready(); err != nil {
		return storage.BlogPost{}, err
	}
	current, err := s.post(ctx, postID)
	if err != nil {
		return storage.BlogPost{}, err
	}
	post, err := postFromInput(in)
	if err != nil {
		return storage.BlogPost{}, err
	}
	post.ID = current.ID
	post.CreatedAt = current.CreatedAt
	post.UpdatedAt = s.now()
	if err := s.store.UpdatePost(ctx, post); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return storage.BlogPost{}, ErrPostNotFound
		}
		return storage.BlogPost{}, err
	}
	return post, nil
}

// DeletePost removes a post.
func (s *Service) DeletePost(ctx context.Context, postID string) error {
	if err := s.ready(); err != nil {
		return err
	}
	err := s.store.DeletePost(ctx, strings.TrimSpace(postID))
	if errors.Is(err, storage.ErrNotFound) {
		return ErrPostNotFound
	}
	return err
}

func (s *Service) post(ctx context.Context, postID string) (storage.BlogPost, error) {
	postID = strings.TrimSpace(postID)
	if postID == "" {
		return storage.BlogPost{}, ErrPostNotFound
	}
	post, err := s.store.GetPost(ctx, postID)
	if errors.Is(err, storage.ErrNotFound) {
		return storage.BlogPost{}, ErrPostNotFound
	}
	return post, err
}

func postFromInput(in PostInput) (storage.BlogPost, error) {
	in.Title = strings.TrimSpace(in.Title)
	if err := validate.Struct(in); err != nil {
		return storage.BlogPost{}, err
	}
	post := storage.BlogPost{
		Title:     in.Title,
		Content:   in.Content,
		Excerpt:   Excerpt(in.Content),
		Images:    in.Images,
		Published: in.Published,
	}
	if strings.TrimSpace(in.Category) != "" {
		key, err := category.Require(in.Category)
		if err != nil {
			return storage.BlogPost{}, err
		}
		post.CategoryKey = key
	}
	return post, nil
}
