// Package service contains the application's business logic.
package service

import (
	"chirp/internal/media"
	"chirp/internal/models"
)

// ViewerRelations holds the viewer's relation sets for one annotation pass.
// The zero value is an anonymous viewer.
type ViewerRelations struct {
	ViewerID      uint
	LikedIDs      map[uint]struct{}
	RetweetedIDs  map[uint]struct{}
	BookmarkedIDs map[uint]struct{}
	FollowingIDs  map[uint]struct{}
	FollowerIDs   map[uint]struct{}
}

// toSet converts an ID slice into a membership set.
func toSet(ids []uint) map[uint]struct{} {
	set := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// Annotate marks each tweet with the viewer's relation to it and derives the
// display rendition of attached images. It mutates the tweets in place and
// performs no I/O. An anonymous viewer (ID 0) leaves all flags false.
func Annotate(tweets []*models.Tweet, rel ViewerRelations) {
	for _, tweet := range tweets {
		if tweet.ImageURL != "" {
			tweet.DisplayImageURL = media.IconURL(tweet.ImageURL)
		}

		if rel.ViewerID == 0 {
			continue
		}

		_, tweet.IsLiked = rel.LikedIDs[tweet.ID]
		_, tweet.IsRetweeted = rel.RetweetedIDs[tweet.ID]
		_, tweet.IsBookmarked = rel.BookmarkedIDs[tweet.ID]

		_, tweet.User.IsFollowed = rel.FollowingIDs[tweet.UserID]
		_, tweet.User.IsFollower = rel.FollowerIDs[tweet.UserID]
	}
}
