package models

// PostView is a post as shown on a timeline, enriched with author details and
// like state at query time. It is never persisted.
type PostView struct {
	PostID           uint   `json:"postId"`
	Content          string `json:"content"`
	RelativeAge      string `json:"relativeTime"`
	AuthorID         uint   `json:"userId"`
	AuthorName       string `json:"userName"`
	AuthorLoginID    string `json:"loginId"`
	LikeCount        int64  `json:"likeCount"`
	LikedByLoginUser bool   `json:"likedByLoginUser"`
}

// UserSuggestion is one row of the user search dropdown.
type UserSuggestion struct {
	UserID              uint   `json:"userId"`
	UserName            string `json:"userName"`
	LoginID             string `json:"loginId"`
	FollowedByLoginUser bool   `json:"followedByLoginUser"`
	IsSelf              bool   `json:"isSelf"`
	FollowingLoginUser  bool   `json:"followingLoginUser"`
}

// UserProfile summarizes a user for their profile page.
type UserProfile struct {
	UserID              uint   `json:"userId"`
	UserName            string `json:"userName"`
	LoginID             string `json:"loginId"`
	Bio                 string `json:"userBio"`
	PostCount           int64  `json:"postCount"`
	FollowingCount      int64  `json:"followingCount"`
	FollowerCount       int64  `json:"followerCount"`
	LikedPostCount      int64  `json:"likedPostCount"`
	FollowedByLoginUser bool   `json:"followedByLoginUser"`
	IsSelf              bool   `json:"isSelf"`
}

// LikeState is returned after a like toggle so clients can update a counter in place.
type LikeState struct {
	Liked     bool  `json:"liked"`
	LikeCount int64 `json:"likeCount"`
}
