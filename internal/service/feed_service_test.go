package service

import (
	"context"
	"errors"
	"testing"

	"chirp/internal/cache"
	"chirp/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tweetRepoStub is a stub for repository.TweetRepository
type tweetRepoStub struct {
	createFn          func(ctx context.Context, tweet *models.Tweet) error
	getByIDFn         func(ctx context.Context, id uint) (*models.Tweet, error)
	deleteFn          func(ctx context.Context, id uint) error
	listTimelineFn    func(ctx context.Context, limit, offset int) ([]*models.Tweet, error)
	countTimelineFn   func(ctx context.Context) (int64, error)
	listByAuthorsFn   func(ctx context.Context, authorIDs []uint, limit, offset int) ([]*models.Tweet, error)
	countByAuthorsFn  func(ctx context.Context, authorIDs []uint) (int64, error)
	listLikedFn       func(ctx context.Context, userID uint, limit, offset int) ([]*models.Tweet, error)
	countLikedFn      func(ctx context.Context, userID uint) (int64, error)
	listRetweetedFn   func(ctx context.Context, userID uint, limit, offset int) ([]*models.Tweet, error)
	countRetweetedFn  func(ctx context.Context, userID uint) (int64, error)
	listBookmarkedFn  func(ctx context.Context, userID uint, limit, offset int) ([]*models.Tweet, error)
	countBookmarkedFn func(ctx context.Context, userID uint) (int64, error)
	listCommentedFn   func(ctx context.Context, userID uint, limit, offset int) ([]*models.Tweet, error)
	countCommentedFn  func(ctx context.Context, userID uint) (int64, error)
	searchFn          func(ctx context.Context, query string, limit, offset int) ([]*models.Tweet, error)
	countSearchFn     func(ctx context.Context, query string) (int64, error)
}

func (s *tweetRepoStub) Create(ctx context.Context, tweet *models.Tweet) error {
	return s.createFn(ctx, tweet)
}
func (s *tweetRepoStub) GetByID(ctx context.Context, id uint) (*models.Tweet, error) {
	return s.getByIDFn(ctx, id)
}
func (s *tweetRepoStub) Delete(ctx context.Context, id uint) error { return s.deleteFn(ctx, id) }
func (s *tweetRepoStub) ListTimeline(ctx context.Context, limit, offset int) ([]*models.Tweet, error) {
	return s.listTimelineFn(ctx, limit, offset)
}
func (s *tweetRepoStub) CountTimeline(ctx context.Context) (int64, error) {
	return s.countTimelineFn(ctx)
}
func (s *tweetRepoStub) ListByAuthors(ctx context.Context, authorIDs []uint, limit, offset int) ([]*models.Tweet, error) {
	return s.listByAuthorsFn(ctx, authorIDs, limit, offset)
}
func (s *tweetRepoStub) CountByAuthors(ctx context.Context, authorIDs []uint) (int64, error) {
	return s.countByAuthorsFn(ctx, authorIDs)
}
func (s *tweetRepoStub) ListLikedBy(ctx context.Context, userID uint, limit, offset int) ([]*models.Tweet, error) {
	return s.listLikedFn(ctx, userID, limit, offset)
}
func (s *tweetRepoStub) CountLikedBy(ctx context.Context, userID uint) (int64, error) {
	return s.countLikedFn(ctx, userID)
}
func (s *tweetRepoStub) ListRetweetedBy(ctx context.Context, userID uint, limit, offset int) ([]*models.Tweet, error) {
	return s.listRetweetedFn(ctx, userID, limit, offset)
}
func (s *tweetRepoStub) CountRetweetedBy(ctx context.Context, userID uint) (int64, error) {
	return s.countRetweetedFn(ctx, userID)
}
func (s *tweetRepoStub) ListBookmarkedBy(ctx context.Context, userID uint, limit, offset int) ([]*models.Tweet, error) {
	return s.listBookmarkedFn(ctx, userID, limit, offset)
}
func (s *tweetRepoStub) CountBookmarkedBy(ctx context.Context, userID uint) (int64, error) {
	return s.countBookmarkedFn(ctx, userID)
}
func (s *tweetRepoStub) ListCommentedBy(ctx context.Context, userID uint, limit, offset int) ([]*models.Tweet, error) {
	return s.listCommentedFn(ctx, userID, limit, offset)
}
func (s *tweetRepoStub) CountCommentedBy(ctx context.Context, userID uint) (int64, error) {
	return s.countCommentedFn(ctx, userID)
}
func (s *tweetRepoStub) Search(ctx context.Context, query string, limit, offset int) ([]*models.Tweet, error) {
	return s.searchFn(ctx, query, limit, offset)
}
func (s *tweetRepoStub) CountSearch(ctx context.Context, query string) (int64, error) {
	return s.countSearchFn(ctx, query)
}

// graphRepoStub is a stub for repository.GraphRepository
type graphRepoStub struct {
	likedFn      func(ctx context.Context, userID uint, tweetIDs []uint) ([]uint, error)
	retweetedFn  func(ctx context.Context, userID uint, tweetIDs []uint) ([]uint, error)
	bookmarkedFn func(ctx context.Context, userID uint, tweetIDs []uint) ([]uint, error)
	followingFn  func(ctx context.Context, userID uint) ([]uint, error)
	followersFn  func(ctx context.Context, userID uint) ([]uint, error)
}

func (s *graphRepoStub) LikedTweetIDs(ctx context.Context, userID uint, tweetIDs []uint) ([]uint, error) {
	return s.likedFn(ctx, userID, tweetIDs)
}
func (s *graphRepoStub) RetweetedTweetIDs(ctx context.Context, userID uint, tweetIDs []uint) ([]uint, error) {
	return s.retweetedFn(ctx, userID, tweetIDs)
}
func (s *graphRepoStub) BookmarkedTweetIDs(ctx context.Context, userID uint, tweetIDs []uint) ([]uint, error) {
	return s.bookmarkedFn(ctx, userID, tweetIDs)
}
func (s *graphRepoStub) FollowingIDs(ctx context.Context, userID uint) ([]uint, error) {
	return s.followingFn(ctx, userID)
}
func (s *graphRepoStub) FollowerIDs(ctx context.Context, userID uint) ([]uint, error) {
	return s.followersFn(ctx, userID)
}

// noopGraphRepo returns a graph stub where every relation is empty.
func noopGraphRepo() *graphRepoStub {
	empty2 := func(ctx context.Context, userID uint, tweetIDs []uint) ([]uint, error) {
		return nil, nil
	}
	empty1 := func(ctx context.Context, userID uint) ([]uint, error) { return nil, nil }
	return &graphRepoStub{
		likedFn:      empty2,
		retweetedFn:  empty2,
		bookmarkedFn: empty2,
		followingFn:  empty1,
		followersFn:  empty1,
	}
}

func stubTweets(ids ...uint) []*models.Tweet {
	tweets := make([]*models.Tweet, 0, len(ids))
	for _, id := range ids {
		t := &models.Tweet{Content: "tweet"}
		t.ID = id
		tweets = append(tweets, t)
	}
	return tweets
}

func TestClampPage(t *testing.T) {
	tests := []struct {
		name           string
		requested      int
		total          int64
		wantPage       int
		wantTotalPages int
	}{
		{"empty feed collapses to one page", 5, 0, 1, 1},
		{"zero requested becomes first page", 0, 50, 1, 3},
		{"negative requested becomes first page", -3, 50, 1, 3},
		{"in range unchanged", 2, 50, 2, 3},
		{"past the end clamps to last page", 99, 50, 3, 3},
		{"exact multiple of page size", 1, 40, 1, 2},
		{"one item", 1, 1, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, totalPages := clampPage(tt.requested, tt.total)
			assert.Equal(t, tt.wantPage, page)
			assert.Equal(t, tt.wantTotalPages, totalPages)
		})
	}
}

func TestFeedService_TimelinePagination(t *testing.T) {
	var gotLimit, gotOffset int
	tweetRepo := &tweetRepoStub{
		countTimelineFn: func(ctx context.Context) (int64, error) { return 45, nil },
		listTimelineFn: func(ctx context.Context, limit, offset int) ([]*models.Tweet, error) {
			gotLimit, gotOffset = limit, offset
			return stubTweets(30, 29, 28), nil
		},
	}
	svc := NewFeedService(tweetRepo, noopGraphRepo())

	page, err := svc.GetFeed(context.Background(), GetFeedInput{Mode: FeedTimeline, Page: 2})
	require.NoError(t, err)

	assert.Equal(t, FeedPageSize, gotLimit)
	assert.Equal(t, FeedPageSize, gotOffset)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 3, page.TotalPages)
	assert.EqualValues(t, 45, page.TotalItems)
	assert.True(t, page.HasNext)
	assert.True(t, page.HasPrevious)
	assert.Len(t, page.Tweets, 3)
}

func TestFeedService_OutOfRangePageClamped(t *testing.T) {
	var gotOffset int
	tweetRepo := &tweetRepoStub{
		countTimelineFn: func(ctx context.Context) (int64, error) { return 25, nil },
		listTimelineFn: func(ctx context.Context, limit, offset int) ([]*models.Tweet, error) {
			gotOffset = offset
			return stubTweets(5, 4, 3, 2, 1), nil
		},
	}
	svc := NewFeedService(tweetRepo, noopGraphRepo())

	page, err := svc.GetFeed(context.Background(), GetFeedInput{Mode: FeedTimeline, Page: 40})
	require.NoError(t, err)

	assert.Equal(t, 2, page.Page)
	assert.Equal(t, FeedPageSize, gotOffset)
	assert.False(t, page.HasNext)
	assert.True(t, page.HasPrevious)
}

func TestFeedService_FollowingFeedUsesFollowedAuthors(t *testing.T) {
	var countAuthors, listAuthors []uint
	tweetRepo := &tweetRepoStub{
		countByAuthorsFn: func(ctx context.Context, authorIDs []uint) (int64, error) {
			countAuthors = authorIDs
			return 2, nil
		},
		listByAuthorsFn: func(ctx context.Context, authorIDs []uint, limit, offset int) ([]*models.Tweet, error) {
			listAuthors = authorIDs
			return stubTweets(12, 11), nil
		},
	}
	graphRepo := noopGraphRepo()
	graphRepo.followingFn = func(ctx context.Context, userID uint) ([]uint, error) {
		assert.EqualValues(t, 7, userID)
		return []uint{3, 4}, nil
	}
	svc := NewFeedService(tweetRepo, graphRepo)

	page, err := svc.GetFeed(context.Background(), GetFeedInput{Mode: FeedFollowing, Page: 1, ViewerID: 7})
	require.NoError(t, err)

	assert.Equal(t, []uint{3, 4}, countAuthors)
	assert.Equal(t, []uint{3, 4}, listAuthors)
	assert.Len(t, page.Tweets, 2)
}

func TestFeedService_FollowingRequiresSignIn(t *testing.T) {
	svc := NewFeedService(&tweetRepoStub{}, noopGraphRepo())

	_, err := svc.GetFeed(context.Background(), GetFeedInput{Mode: FeedFollowing, Page: 1})
	require.Error(t, err)

	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "UNAUTHORIZED", appErr.Code)
}

func TestFeedService_BookmarksPrivateToOwner(t *testing.T) {
	tweetRepo := &tweetRepoStub{
		countBookmarkedFn: func(ctx context.Context, userID uint) (int64, error) { return 1, nil },
		listBookmarkedFn: func(ctx context.Context, userID uint, limit, offset int) ([]*models.Tweet, error) {
			return stubTweets(1), nil
		},
	}
	svc := NewFeedService(tweetRepo, noopGraphRepo())

	// Anonymous viewer
	_, err := svc.GetFeed(context.Background(), GetFeedInput{Mode: FeedBookmarked, Page: 1})
	require.Error(t, err)

	// Someone else's bookmarks
	_, err = svc.GetFeed(context.Background(), GetFeedInput{Mode: FeedBookmarked, Page: 1, ViewerID: 7, TargetUserID: 8})
	require.Error(t, err)

	// The owner
	page, err := svc.GetFeed(context.Background(), GetFeedInput{Mode: FeedBookmarked, Page: 1, ViewerID: 7, TargetUserID: 7})
	require.NoError(t, err)
	assert.Len(t, page.Tweets, 1)
}

func TestFeedService_AuthorFeedDefaultsTargetToViewer(t *testing.T) {
	var gotAuthors []uint
	tweetRepo := &tweetRepoStub{
		countByAuthorsFn: func(ctx context.Context, authorIDs []uint) (int64, error) { return 0, nil },
		listByAuthorsFn: func(ctx context.Context, authorIDs []uint, limit, offset int) ([]*models.Tweet, error) {
			gotAuthors = authorIDs
			return nil, nil
		},
	}
	svc := NewFeedService(tweetRepo, noopGraphRepo())

	_, err := svc.GetFeed(context.Background(), GetFeedInput{Mode: FeedAuthor, Page: 1, ViewerID: 9})
	require.NoError(t, err)
	assert.Equal(t, []uint{9}, gotAuthors)
}

func TestFeedService_ProfileFeedsRequireTarget(t *testing.T) {
	svc := NewFeedService(&tweetRepoStub{}, noopGraphRepo())

	for _, mode := range []FeedMode{FeedAuthor, FeedLiked, FeedRetweeted, FeedCommented} {
		t.Run(string(mode), func(t *testing.T) {
			_, err := svc.GetFeed(context.Background(), GetFeedInput{Mode: mode, Page: 1})
			require.Error(t, err)

			var appErr *models.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
		})
	}
}

func TestFeedService_UnknownMode(t *testing.T) {
	svc := NewFeedService(&tweetRepoStub{}, noopGraphRepo())

	_, err := svc.GetFeed(context.Background(), GetFeedInput{Mode: "trending", Page: 1, ViewerID: 1})
	require.Error(t, err)
}

func TestFeedService_AnnotatesForViewer(t *testing.T) {
	tweetRepo := &tweetRepoStub{
		countTimelineFn: func(ctx context.Context) (int64, error) { return 4, nil },
		listTimelineFn: func(ctx context.Context, limit, offset int) ([]*models.Tweet, error) {
			return stubTweets(11, 9, 7, 5), nil
		},
	}
	graphRepo := noopGraphRepo()
	graphRepo.likedFn = func(ctx context.Context, userID uint, tweetIDs []uint) ([]uint, error) {
		assert.ElementsMatch(t, []uint{11, 9, 7, 5}, tweetIDs)
		return []uint{7, 9}, nil
	}
	svc := NewFeedService(tweetRepo, graphRepo)

	page, err := svc.GetFeed(context.Background(), GetFeedInput{Mode: FeedTimeline, Page: 1, ViewerID: 3})
	require.NoError(t, err)

	liked := map[uint]bool{}
	for _, tweet := range page.Tweets {
		liked[tweet.ID] = tweet.IsLiked
	}
	assert.True(t, liked[7])
	assert.True(t, liked[9])
	assert.False(t, liked[5])
	assert.False(t, liked[11])
}

func TestFeedService_RepoErrorPropagates(t *testing.T) {
	boom := errors.New("database down")
	tweetRepo := &tweetRepoStub{
		countTimelineFn: func(ctx context.Context) (int64, error) { return 0, boom },
	}
	svc := NewFeedService(tweetRepo, noopGraphRepo())

	_, err := svc.GetFeed(context.Background(), GetFeedInput{Mode: FeedTimeline, Page: 1})
	assert.ErrorIs(t, err, boom)
}

func TestFeedService_Search(t *testing.T) {
	tweetRepo := &tweetRepoStub{
		countSearchFn: func(ctx context.Context, query string) (int64, error) {
			assert.Equal(t, "gopher", query)
			return 2, nil
		},
		searchFn: func(ctx context.Context, query string, limit, offset int) ([]*models.Tweet, error) {
			return stubTweets(2, 1), nil
		},
	}
	svc := NewFeedService(tweetRepo, noopGraphRepo())

	page, err := svc.Search(context.Background(), "gopher", 1, 0)
	require.NoError(t, err)
	assert.Len(t, page.Tweets, 2)
	assert.EqualValues(t, 2, page.TotalItems)

	_, err = svc.Search(context.Background(), "", 1, 0)
	require.Error(t, err)
}

func TestFeedService_TimelineFirstPageCacheAside(t *testing.T) {
	mr := setupTestCache(t)

	listCalls, countCalls := 0, 0
	tweetRepo := &tweetRepoStub{
		countTimelineFn: func(ctx context.Context) (int64, error) {
			countCalls++
			return 2, nil
		},
		listTimelineFn: func(ctx context.Context, limit, offset int) ([]*models.Tweet, error) {
			listCalls++
			return stubTweets(2, 1), nil
		},
	}
	graphRepo := noopGraphRepo()
	graphRepo.likedFn = func(ctx context.Context, userID uint, tweetIDs []uint) ([]uint, error) {
		return []uint{2}, nil
	}
	svc := NewFeedService(tweetRepo, graphRepo)
	ctx := context.Background()

	page, err := svc.GetFeed(ctx, GetFeedInput{Mode: FeedTimeline, Page: 1})
	require.NoError(t, err)
	require.Len(t, page.Tweets, 2)
	assert.Equal(t, 1, countCalls)
	assert.Equal(t, 1, listCalls)
	assert.True(t, mr.Exists(cache.TimelineKey(1)))

	// Second read is served from the cache, and viewer annotations are
	// still applied to the cached copy.
	page, err = svc.GetFeed(ctx, GetFeedInput{Mode: FeedTimeline, Page: 1, ViewerID: 7})
	require.NoError(t, err)
	assert.Equal(t, 1, countCalls)
	assert.Equal(t, 1, listCalls)
	require.Len(t, page.Tweets, 2)
	assert.True(t, page.Tweets[0].IsLiked)
	assert.False(t, page.Tweets[1].IsLiked)

	cache.InvalidateTimeline(ctx)

	_, err = svc.GetFeed(ctx, GetFeedInput{Mode: FeedTimeline, Page: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, listCalls)
}

func TestFeedService_DeeperTimelinePagesSkipCache(t *testing.T) {
	mr := setupTestCache(t)

	tweetRepo := &tweetRepoStub{
		countTimelineFn: func(ctx context.Context) (int64, error) { return 45, nil },
		listTimelineFn: func(ctx context.Context, limit, offset int) ([]*models.Tweet, error) {
			return stubTweets(30, 29), nil
		},
	}
	svc := NewFeedService(tweetRepo, noopGraphRepo())

	page, err := svc.GetFeed(context.Background(), GetFeedInput{Mode: FeedTimeline, Page: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Page)
	assert.False(t, mr.Exists(cache.TimelineKey(2)))
}
