package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/hoganho/kingsroom-sub004/internal/postparse"
)

// Skip reasons for the two-key duplicate check.
const (
	SkipMatchedByID             = "matched by id"
	SkipMatchedByPlatformPostID = "matched by platformPostId"
)

// UploadResult is the outcome for one post.
type UploadResult struct {
	PostID        string `json:"postId"`
	SocialPostID  string `json:"socialPostId,omitempty"`
	Created       bool   `json:"created"`
	Skipped       bool   `json:"skipped"`
	SkipReason    string `json:"skipReason,omitempty"`
	DryRun        bool   `json:"dryRun,omitempty"`
	AttachmentsUp int    `json:"attachmentsUploaded"`
	Err           string `json:"error,omitempty"`
}

// BatchResult summarizes one batch run, including partial runs stopped by
// the cancel predicate.
type BatchResult struct {
	TotalProcessed int            `json:"totalProcessed"`
	SuccessCount   int            `json:"successCount"`
	ErrorCount     int            `json:"errorCount"`
	SkippedCount   int            `json:"skippedCount"`
	Cancelled      bool           `json:"cancelled"`
	Results        []UploadResult `json:"results"`
	Errors         []string       `json:"errors"`
}

// Progress reports batch position after each step.
type Progress struct {
	Current int    `json:"current"`
	Total   int    `json:"total"`
	Stage   string `json:"stage"`
}

// BatchOptions gate and steer a batch run.
type BatchOptions struct {
	// AllowedTypes limits upload to the listed post types; empty allows all
	// non-comment types.
	AllowedTypes []postparse.PostType
	// MinConfidence drops posts classified below the threshold.
	MinConfidence int
	// SelectedOnly uploads only posts with the selection flag set.
	SelectedOnly bool
	DryRun       bool
	// Cancel is checked before each post; returning true stops the batch
	// cleanly with partial results.
	Cancel func() bool
	// Progress receives position updates after each step.
	Progress func(Progress)
}

// Args configures an Uploader.
type Args struct {
	Records RecordStore
	Store   ObjectStore
	Logger  *logrus.Logger
	// Prefix is the object-store key prefix for attachments.
	Prefix string
	// Delay is the pause between posts in a batch; defaults to 100ms.
	Delay time.Duration
}

// Uploader runs the social post upload pipeline.
type Uploader struct {
	records RecordStore
	store   ObjectStore
	log     *logrus.Logger
	prefix  string
	delay   time.Duration
	now     func() time.Time
	randTag func() string
	readFile func(string) ([]byte, error)
}

// NewUploader returns an Uploader.
func NewUploader(a Args) *Uploader {
	delay := a.Delay
	if delay <= 0 {
		delay = 100 * time.Millisecond
	}
	prefix := a.Prefix
	if prefix == "" {
		prefix = "social-media/post-attachments"
	}
	return &Uploader{
		records:  a.Records,
		store:    a.Store,
		log:      a.Logger,
		prefix:   prefix,
		delay:    delay,
		now:      time.Now,
		randTag:  func() string { return uuid.NewString()[:8] },
		readFile: os.ReadFile,
	}
}

// DeterministicID builds the primary record id shared by automated and
// manual ingestion: {platform}_{platformPostId}.
func DeterministicID(platform, platformPostID string) string {
	return platform + "_" + platformPostID
}

// UploadBatch processes items serially with a short delay between records.
func (u *Uploader) UploadBatch(ctx context.Context, items []Item, account Account, opts BatchOptions) BatchResult {
	eligible := make([]Item, 0, len(items))
	for _, item := range items {
		if u.eligible(item.Post, opts) {
			eligible = append(eligible, item)
		}
	}

	res := BatchResult{Results: []UploadResult{}, Errors: []string{}}
	total := len(eligible)
	for i, item := range eligible {
		if opts.Cancel != nil && opts.Cancel() {
			res.Cancelled = true
			break
		}
		if i > 0 {
			select {
			case <-ctx.Done():
				res.Cancelled = true
				return res
			case <-time.After(u.delay):
			}
		}

		one := u.UploadPost(ctx, item, account, opts.DryRun)
		res.Results = append(res.Results, one)
		res.TotalProcessed++
		switch {
		case one.Err != "":
			res.ErrorCount++
			res.Errors = append(res.Errors, fmt.Sprintf("%s: %s", one.PostID, one.Err))
		case one.Skipped:
			res.SkippedCount++
		default:
			res.SuccessCount++
		}

		if opts.Progress != nil {
			stage := "created"
			if one.Skipped {
				stage = "skipped: " + one.SkipReason
			} else if one.Err != "" {
				stage = "failed"
			} else if one.AttachmentsUp > 0 {
				stage = fmt.Sprintf("created with %d attachments", one.AttachmentsUp)
			}
			opts.Progress(Progress{Current: i + 1, Total: total, Stage: stage})
		}
	}
	return res
}

func (u *Uploader) eligible(post postparse.ReviewablePost, opts BatchOptions) bool {
	if post.IsComment {
		return false
	}
	if opts.SelectedOnly && !post.Selected {
		return false
	}
	if opts.MinConfidence > 0 && post.Confidence < opts.MinConfidence {
		return false
	}
	if len(opts.AllowedTypes) > 0 {
		allowed := false
		for _, t := range opts.AllowedTypes {
			if post.PostType == t {
				allowed = true
				break
			}
		}
		if !allowed {
			return false
		}
	}
	return true
}

// UploadPost ingests one post: duplicate check against both keys, media
// upload, and record creation.
func (u *Uploader) UploadPost(ctx context.Context, item Item, account Account, dryRun bool) UploadResult {
	post := item.Post
	out := UploadResult{PostID: post.PostID}

	if post.IsComment {
		out.Skipped = true
		out.SkipReason = "comment"
		return out
	}

	platform := account.Platform
	if platform == "" {
		platform = post.Platform
	}
	if platform == "" || post.PostID == "" {
		out.Err = "post missing platform or id"
		return out
	}
	recordID := DeterministicID(platform, post.PostID)
	out.SocialPostID = recordID

	exists, err := u.records.PostExists(ctx, recordID)
	if err != nil {
		out.Err = errors.Wrap(err, "lookup by id").Error()
		return out
	}
	if exists {
		out.Skipped = true
		out.SkipReason = SkipMatchedByID
		return out
	}
	if foundID, found, err := u.records.FindByPlatformPostID(ctx, post.PostID); err != nil {
		out.Err = errors.Wrap(err, "lookup by platformPostId").Error()
		return out
	} else if found {
		out.Skipped = true
		out.SkipReason = SkipMatchedByPlatformPostID
		out.SocialPostID = foundID
		return out
	}

	if dryRun {
		out.DryRun = true
		u.log.WithField("id", recordID).Info("dry run: would create post")
		return out
	}

	mediaURLs := u.uploadAttachments(ctx, item.AttachmentPaths, account.ID, post.PostID)
	out.AttachmentsUp = len(mediaURLs)
	if len(mediaURLs) == 0 && len(post.AttachmentURLs) > 0 {
		// The manifest already carries remote media; reuse it.
		mediaURLs = post.AttachmentURLs
	}

	rec := u.assembleRecord(post, item.Manifest, account, platform, recordID, mediaURLs, len(mediaURLs) > 0 || out.AttachmentsUp > 0)
	if err := u.records.Create(ctx, rec); err != nil {
		out.Err = errors.Wrap(err, "create record").Error()
		return out
	}
	out.Created = true
	return out
}

// uploadAttachments uploads each file, skipping individual failures so one
// bad attachment never sinks the post.
func (u *Uploader) uploadAttachments(ctx context.Context, paths []string, accountID, postID string) []string {
	urls := []string{}
	if u.store == nil {
		return urls
	}
	for _, path := range paths {
		body, err := u.readFile(path)
		if err != nil {
			u.log.WithError(err).WithField("path", path).Warn("skipping unreadable attachment")
			continue
		}
		name := filepath.Base(path)
		key := fmt.Sprintf("%s/%s/%s/%d-%s-%s",
			u.prefix, accountID, postID, u.now().Unix(), u.randTag(), SanitizeFilename(name))
		url, err := u.store.Put(ctx, key, body, contentTypeFor(path), map[string]string{
			"post-id":           postID,
			"account-id":        accountID,
			"original-filename": name,
			"uploaded-at":       u.now().UTC().Format(time.RFC3339),
		})
		if err != nil {
			u.log.WithError(err).WithField("path", path).Warn("attachment upload failed")
			continue
		}
		urls = append(urls, url)
	}
	return urls
}

func (u *Uploader) assembleRecord(post postparse.ReviewablePost, manifest map[string]interface{}, account Account, platform, recordID string, mediaURLs []string, hasMedia bool) PostRecord {
	raw := map[string]interface{}{}
	if sanitized, ok := SanitizeJSON(manifest).(map[string]interface{}); ok {
		raw = sanitized
	}
	raw["_parsed"] = map[string]interface{}{
		"postType":        string(post.PostType),
		"confidence":      post.Confidence,
		"resultScore":     post.ResultScore,
		"promoScore":      post.PromoScore,
		"matchedPatterns": post.MatchedPatterns,
		"placements":      jsonClone(post.Placements),
		"prizes":          jsonClone(post.Prizes),
		"metadata":        jsonClone(post.Metadata),
	}
	raw["_uploadedAttachments"] = map[string]interface{}{
		"count":      len(mediaURLs),
		"urls":       mediaURLs,
		"uploadedAt": u.now().UTC().Format(time.RFC3339),
	}

	postType := "TEXT"
	if hasMedia && len(mediaURLs) > 0 {
		postType = "IMAGE"
	}
	thumbnail := ""
	if len(mediaURLs) > 0 {
		thumbnail = mediaURLs[0]
	}

	rec := PostRecord{
		ID:             recordID,
		AccountID:      account.ID,
		Platform:       platform,
		PlatformPostID: post.PostID,
		URL:            post.URL,
		Content:        SanitizeText(post.Content),
		Author:         SanitizeText(post.Author),
		PostedAt:       post.PostedAt,
		PostType:       postType,
		PostYearMonth:  post.PostedAt.Format("2006-01"),
		MediaURLs:      mediaURLs,
		ThumbnailURL:   thumbnail,
		Likes:          post.Engagement.Likes,
		Comments:       post.Engagement.Comments,
		Shares:         post.Engagement.Shares,
		RawContent:     raw,
	}
	if account.EntityID != "" {
		entityID := account.EntityID
		rec.EntityID = &entityID
	}
	if account.VenueID != "" {
		venueID := account.VenueID
		rec.VenueID = &venueID
	}
	return rec
}

// jsonClone deep-copies a value through JSON so the record's raw content
// holds plain maps and slices rather than domain structs.
func jsonClone(v interface{}) interface{} {
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	var out interface{}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil
	}
	return SanitizeJSON(out)
}
