package ingest

import (
	"context"
	"time"

	"github.com/hoganho/kingsroom-sub004/internal/gql"
)

// PostRecord is the persisted form of a reviewed post. The deterministic ID
// ({platform}_{platformPostId}) makes automated scrapes and manual uploads
// converge on the same record.
type PostRecord struct {
	ID             string                 `json:"id"`
	AccountID      string                 `json:"accountId"`
	Platform       string                 `json:"platform"`
	PlatformPostID string                 `json:"platformPostId"`
	URL            string                 `json:"url,omitempty"`
	Content        string                 `json:"content"`
	Author         string                 `json:"author,omitempty"`
	PostedAt       time.Time              `json:"postedAt"`
	PostType       string                 `json:"postType"`
	PostYearMonth  string                 `json:"postYearMonth"`
	MediaURLs      []string               `json:"mediaUrls"`
	ThumbnailURL   string                 `json:"thumbnailUrl,omitempty"`
	Likes          int                    `json:"likes"`
	Comments       int                    `json:"comments"`
	Shares         int                    `json:"shares"`
	// EntityID and VenueID stay nil when unknown so they never enter the
	// backend's secondary indexes as empty strings.
	EntityID   *string                `json:"entityId,omitempty"`
	VenueID    *string                `json:"venueId,omitempty"`
	RawContent map[string]interface{} `json:"rawContent"`
}

// Account is the social-media account a bundle belongs to.
type Account struct {
	ID       string
	Platform string
	EntityID string
	VenueID  string
}

// RecordStore is the persistence contract for post records.
type RecordStore interface {
	// PostExists reports whether a record with the deterministic id exists.
	PostExists(ctx context.Context, id string) (bool, error)
	// FindByPlatformPostID looks a record up by the platform-native
	// secondary key, returning its id when found.
	FindByPlatformPostID(ctx context.Context, platformPostID string) (string, bool, error)
	// Create persists a new record.
	Create(ctx context.Context, rec PostRecord) error
}

const queryGetSocialPost = `
query GetSocialPost($id: ID!) {
  getSocialPost(id: $id) { id }
}`

const querySocialPostByPlatformPostID = `
query SocialPostByPlatformPostId($platformPostId: String!) {
  socialPostByPlatformPostId(platformPostId: $platformPostId) {
    items { id }
  }
}`

const mutationCreateSocialPost = `
mutation CreateSocialPost($input: CreateSocialPostInput!) {
  createSocialPost(input: $input) { id }
}`

// GraphQLRecordStore is the production RecordStore over the backend API.
type GraphQLRecordStore struct {
	exec gql.Executor
}

var _ RecordStore = (*GraphQLRecordStore)(nil)

// NewRecordStore returns a RecordStore over the given executor.
func NewRecordStore(exec gql.Executor) *GraphQLRecordStore {
	return &GraphQLRecordStore{exec: exec}
}

// PostExists implements RecordStore.PostExists.
func (s *GraphQLRecordStore) PostExists(ctx context.Context, id string) (bool, error) {
	var resp struct {
		GetSocialPost *struct {
			ID string `json:"id"`
		} `json:"getSocialPost"`
	}
	if err := s.exec.Run(ctx, queryGetSocialPost, map[string]interface{}{"id": id}, &resp); err != nil {
		return false, err
	}
	return resp.GetSocialPost != nil, nil
}

// FindByPlatformPostID implements RecordStore.FindByPlatformPostID.
func (s *GraphQLRecordStore) FindByPlatformPostID(ctx context.Context, platformPostID string) (string, bool, error) {
	var resp struct {
		SocialPostByPlatformPostID struct {
			Items []struct {
				ID string `json:"id"`
			} `json:"items"`
		} `json:"socialPostByPlatformPostId"`
	}
	vars := map[string]interface{}{"platformPostId": platformPostID}
	if err := s.exec.Run(ctx, querySocialPostByPlatformPostID, vars, &resp); err != nil {
		return "", false, err
	}
	if len(resp.SocialPostByPlatformPostID.Items) == 0 {
		return "", false, nil
	}
	return resp.SocialPostByPlatformPostID.Items[0].ID, true, nil
}

// Create implements RecordStore.Create.
func (s *GraphQLRecordStore) Create(ctx context.Context, rec PostRecord) error {
	var resp struct {
		CreateSocialPost *struct {
			ID string `json:"id"`
		} `json:"createSocialPost"`
	}
	return s.exec.Run(ctx, mutationCreateSocialPost, map[string]interface{}{"input": rec}, &resp)
}
