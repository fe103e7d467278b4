package service

import (
	"context"

	"chirp/internal/cache"
	"chirp/internal/models"
	"chirp/internal/observability"
	"chirp/internal/repository"
)

// FeedMode selects which tweets a feed page contains.
type FeedMode string

const (
	FeedTimeline   FeedMode = "timeline"
	FeedFollowing  FeedMode = "following"
	FeedAuthor     FeedMode = "author"
	FeedLiked      FeedMode = "liked"
	FeedRetweeted  FeedMode = "retweeted"
	FeedCommented  FeedMode = "commented"
	FeedBookmarked FeedMode = "bookmarked"
)

// FeedPageSize is the fixed number of tweets per feed page.
const FeedPageSize = 20

// FeedPage is one assembled, annotated page of a feed.
type FeedPage struct {
	Tweets      []*models.Tweet `json:"tweets"`
	Page        int             `json:"page"`
	TotalPages  int             `json:"total_pages"`
	TotalItems  int64           `json:"total_items"`
	HasNext     bool            `json:"has_next"`
	HasPrevious bool            `json:"has_previous"`
}

// GetFeedInput selects a feed page.
// ViewerID 0 is an anonymous viewer. TargetUserID identifies whose
// tweets/likes/retweets/comments to list for the profile-scoped modes; it
// defaults to the viewer when zero.
type GetFeedInput struct {
	Mode         FeedMode
	Page         int
	ViewerID     uint
	TargetUserID uint
}

type FeedService struct {
	tweetRepo repository.TweetRepository
	graphRepo repository.GraphRepository
}

func NewFeedService(tweetRepo repository.TweetRepository, graphRepo repository.GraphRepository) *FeedService {
	return &FeedService{
		tweetRepo: tweetRepo,
		graphRepo: graphRepo,
	}
}

// GetFeed assembles one page of the requested feed: filter, count, clamp the
// page number, fetch the window with authors and counts in one query, then
// annotate for the viewer.
func (s *FeedService) GetFeed(ctx context.Context, in GetFeedInput) (*FeedPage, error) {
	target := in.TargetUserID
	if target == 0 {
		target = in.ViewerID
	}

	switch in.Mode {
	case FeedTimeline:
	case FeedFollowing:
		if in.ViewerID == 0 {
			return nil, models.NewUnauthorizedError("Sign in to view your following feed")
		}
	case FeedBookmarked:
		// Bookmarks are private to their owner.
		if in.ViewerID == 0 || target != in.ViewerID {
			return nil, models.NewUnauthorizedError("Bookmarks are only visible to their owner")
		}
	case FeedAuthor, FeedLiked, FeedRetweeted, FeedCommented:
		if target == 0 {
			return nil, models.NewValidationError("A target user is required for this feed")
		}
	default:
		return nil, models.NewValidationError("Unknown feed mode")
	}

	if in.Mode == FeedTimeline && in.Page <= 1 {
		return s.timelineFirstPage(ctx, in.ViewerID)
	}

	var followingIDs []uint
	if in.Mode == FeedFollowing {
		ids, err := s.graphRepo.FollowingIDs(ctx, in.ViewerID)
		if err != nil {
			return nil, err
		}
		followingIDs = ids
	}

	total, err := s.countFeed(ctx, in.Mode, target, followingIDs)
	if err != nil {
		return nil, err
	}

	page, totalPages := clampPage(in.Page, total)
	offset := (page - 1) * FeedPageSize

	tweets, err := s.listFeed(ctx, in.Mode, target, followingIDs, offset)
	if err != nil {
		return nil, err
	}

	if err := s.annotateForViewer(ctx, tweets, in.ViewerID); err != nil {
		return nil, err
	}

	observability.FeedPagesServed.WithLabelValues(string(in.Mode)).Inc()

	return &FeedPage{
		Tweets:      tweets,
		Page:        page,
		TotalPages:  totalPages,
		TotalItems:  total,
		HasNext:     page < totalPages,
		HasPrevious: page > 1,
	}, nil
}

// cachedTimeline is the Redis value behind cache.TimelineKey: the public
// first page before any viewer annotations.
type cachedTimeline struct {
	Tweets []*models.Tweet `json:"tweets"`
	Total  int64           `json:"total"`
}

// timelineFirstPage serves the hottest feed read cache-aside. Tweet creates
// and deletes invalidate the key; viewer annotations are applied after the
// cached page is loaded, so all viewers share one entry.
func (s *FeedService) timelineFirstPage(ctx context.Context, viewerID uint) (*FeedPage, error) {
	var cached cachedTimeline
	err := cache.CacheAside(ctx, cache.TimelineKey(1), &cached, cache.TimelineTTL, func() error {
		total, err := s.tweetRepo.CountTimeline(ctx)
		if err != nil {
			return err
		}
		tweets, err := s.tweetRepo.ListTimeline(ctx, FeedPageSize, 0)
		if err != nil {
			return err
		}
		cached = cachedTimeline{Tweets: tweets, Total: total}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.annotateForViewer(ctx, cached.Tweets, viewerID); err != nil {
		return nil, err
	}

	observability.FeedPagesServed.WithLabelValues(string(FeedTimeline)).Inc()

	_, totalPages := clampPage(1, cached.Total)
	return &FeedPage{
		Tweets:     cached.Tweets,
		Page:       1,
		TotalPages: totalPages,
		TotalItems: cached.Total,
		HasNext:    totalPages > 1,
	}, nil
}

// Search returns a page of tweets matching the query, annotated for the viewer.
func (s *FeedService) Search(ctx context.Context, query string, pageNum int, viewerID uint) (*FeedPage, error) {
	if query == "" {
		return nil, models.NewValidationError("Search query is required")
	}

	total, err := s.tweetRepo.CountSearch(ctx, query)
	if err != nil {
		return nil, err
	}

	page, totalPages := clampPage(pageNum, total)
	offset := (page - 1) * FeedPageSize

	tweets, err := s.tweetRepo.Search(ctx, query, FeedPageSize, offset)
	if err != nil {
		return nil, err
	}

	if err := s.annotateForViewer(ctx, tweets, viewerID); err != nil {
		return nil, err
	}

	return &FeedPage{
		Tweets:      tweets,
		Page:        page,
		TotalPages:  totalPages,
		TotalItems:  total,
		HasNext:     page < totalPages,
		HasPrevious: page > 1,
	}, nil
}

func (s *FeedService) countFeed(ctx context.Context, mode FeedMode, target uint, followingIDs []uint) (int64, error) {
	switch mode {
	case FeedTimeline:
		return s.tweetRepo.CountTimeline(ctx)
	case FeedFollowing:
		return s.tweetRepo.CountByAuthors(ctx, followingIDs)
	case FeedAuthor:
		return s.tweetRepo.CountByAuthors(ctx, []uint{target})
	case FeedLiked:
		return s.tweetRepo.CountLikedBy(ctx, target)
	case FeedRetweeted:
		return s.tweetRepo.CountRetweetedBy(ctx, target)
	case FeedCommented:
		return s.tweetRepo.CountCommentedBy(ctx, target)
	case FeedBookmarked:
		return s.tweetRepo.CountBookmarkedBy(ctx, target)
	}
	return 0, models.NewValidationError("Unknown feed mode")
}

func (s *FeedService) listFeed(ctx context.Context, mode FeedMode, target uint, followingIDs []uint, offset int) ([]*models.Tweet, error) {
	switch mode {
	case FeedTimeline:
		return s.tweetRepo.ListTimeline(ctx, FeedPageSize, offset)
	case FeedFollowing:
		return s.tweetRepo.ListByAuthors(ctx, followingIDs, FeedPageSize, offset)
	case FeedAuthor:
		return s.tweetRepo.ListByAuthors(ctx, []uint{target}, FeedPageSize, offset)
	case FeedLiked:
		return s.tweetRepo.ListLikedBy(ctx, target, FeedPageSize, offset)
	case FeedRetweeted:
		return s.tweetRepo.ListRetweetedBy(ctx, target, FeedPageSize, offset)
	case FeedCommented:
		return s.tweetRepo.ListCommentedBy(ctx, target, FeedPageSize, offset)
	case FeedBookmarked:
		return s.tweetRepo.ListBookmarkedBy(ctx, target, FeedPageSize, offset)
	}
	return nil, models.NewValidationError("Unknown feed mode")
}

// annotateForViewer loads the viewer's relation sets for exactly the tweets on
// the page and applies them. Anonymous viewers only get image renditions.
func (s *FeedService) annotateForViewer(ctx context.Context, tweets []*models.Tweet, viewerID uint) error {
	if viewerID == 0 {
		Annotate(tweets, ViewerRelations{})
		return nil
	}

	rel, err := s.LoadViewerRelations(ctx, tweets, viewerID)
	if err != nil {
		return err
	}
	Annotate(tweets, rel)
	return nil
}

// LoadViewerRelations gathers the viewer's engagement and follow sets scoped
// to the given tweets, one bulk query per relation.
func (s *FeedService) LoadViewerRelations(ctx context.Context, tweets []*models.Tweet, viewerID uint) (ViewerRelations, error) {
	rel := ViewerRelations{ViewerID: viewerID}
	if len(tweets) == 0 {
		return rel, nil
	}

	tweetIDs := make([]uint, 0, len(tweets))
	for _, t := range tweets {
		tweetIDs = append(tweetIDs, t.ID)
	}

	liked, err := s.graphRepo.LikedTweetIDs(ctx, viewerID, tweetIDs)
	if err != nil {
		return rel, err
	}
	retweeted, err := s.graphRepo.RetweetedTweetIDs(ctx, viewerID, tweetIDs)
	if err != nil {
		return rel, err
	}
	bookmarked, err := s.graphRepo.BookmarkedTweetIDs(ctx, viewerID, tweetIDs)
	if err != nil {
		return rel, err
	}
	following, err := s.graphRepo.FollowingIDs(ctx, viewerID)
	if err != nil {
		return rel, err
	}
	followers, err := s.graphRepo.FollowerIDs(ctx, viewerID)
	if err != nil {
		return rel, err
	}

	rel.LikedIDs = toSet(liked)
	rel.RetweetedIDs = toSet(retweeted)
	rel.BookmarkedIDs = toSet(bookmarked)
	rel.FollowingIDs = toSet(following)
	rel.FollowerIDs = toSet(followers)
	return rel, nil
}

// clampPage maps any requested page onto the valid range for the total item
// count. Empty feeds collapse to a single empty page.
func clampPage(requested int, total int64) (page, totalPages int) {
	totalPages = int((total + FeedPageSize - 1) / FeedPageSize)
	if totalPages < 1 {
		totalPages = 1
	}

	page = requested
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}
	return page, totalPages
}
