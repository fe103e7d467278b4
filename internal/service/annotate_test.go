package service

import (
	"testing"

	"chirp/internal/models"

	"github.com/stretchr/testify/assert"
)

func tweetsWithIDs(ids ...uint) []*models.Tweet {
	tweets := make([]*models.Tweet, 0, len(ids))
	for _, id := range ids {
		tweets = append(tweets, &models.Tweet{ID: id, UserID: 100 + id})
	}
	return tweets
}

func TestAnnotate_MarksViewerRelations(t *testing.T) {
	t.Parallel()

	tweets := tweetsWithIDs(5, 7, 9, 11)
	rel := ViewerRelations{
		ViewerID:     1,
		LikedIDs:     toSet([]uint{7, 9}),
		RetweetedIDs: toSet([]uint{5}),
	}

	Annotate(tweets, rel)

	liked := make([]uint, 0, 2)
	for _, tw := range tweets {
		if tw.IsLiked {
			liked = append(liked, tw.ID)
		}
	}
	assert.ElementsMatch(t, []uint{7, 9}, liked)

	assert.True(t, tweets[0].IsRetweeted)
	assert.False(t, tweets[1].IsRetweeted)
	for _, tw := range tweets {
		assert.False(t, tw.IsBookmarked)
	}
}

func TestAnnotate_AuthorFollowFlags(t *testing.T) {
	t.Parallel()

	tweets := []*models.Tweet{
		{ID: 1, UserID: 10},
		{ID: 2, UserID: 20},
	}
	rel := ViewerRelations{
		ViewerID:     1,
		FollowingIDs: toSet([]uint{10}),
		FollowerIDs:  toSet([]uint{20}),
	}

	Annotate(tweets, rel)

	assert.True(t, tweets[0].User.IsFollowed)
	assert.False(t, tweets[0].User.IsFollower)
	assert.False(t, tweets[1].User.IsFollowed)
	assert.True(t, tweets[1].User.IsFollower)
}

func TestAnnotate_AnonymousViewer(t *testing.T) {
	t.Parallel()

	tweets := []*models.Tweet{
		{ID: 1, UserID: 10, ImageURL: "https://res.cloudinary.com/demo/image/upload/v1/pic.png"},
		{ID: 2, UserID: 20},
	}

	// Sets populated but ViewerID zero: flags must stay false.
	rel := ViewerRelations{
		LikedIDs:     toSet([]uint{1, 2}),
		FollowingIDs: toSet([]uint{10, 20}),
	}

	Annotate(tweets, rel)

	for _, tw := range tweets {
		assert.False(t, tw.IsLiked)
		assert.False(t, tw.User.IsFollowed)
	}

	// Image renditions are viewer-independent
	assert.Contains(t, tweets[0].DisplayImageURL, "c_fill,g_auto,w_150,h_150")
	assert.Empty(t, tweets[1].DisplayImageURL)
}

func TestAnnotate_EmptySlice(t *testing.T) {
	t.Parallel()
	assert.NotPanics(t, func() {
		Annotate(nil, ViewerRelations{ViewerID: 1})
	})
}
