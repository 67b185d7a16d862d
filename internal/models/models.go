package models

import "time"

// User represents an account within the StreamTube platform. Password holds
// the bcrypt hash; RefreshToken is the single currently-valid refresh token
// slot, overwritten on every login or rotation and cleared on logout.
type User struct {
	ID           string
	Username     string
	Email        string
	Fullname     string
	Password     string
	AvatarURL    string
	CoverURL     string
	RefreshToken string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Profile is the public projection of a user, excluding the password hash
// and refresh token.
type Profile struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Fullname  string    `json:"fullname"`
	AvatarURL string    `json:"avatar"`
	CoverURL  string    `json:"coverImage"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Profile returns the public projection of the user.
func (u User) Profile() Profile {
	return Profile{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Fullname:  u.Fullname,
		AvatarURL: u.AvatarURL,
		CoverURL:  u.CoverURL,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// Subscription relates a subscriber to a channel, both of which are users.
// This service only reads subscriptions when building channel profiles.
type Subscription struct {
	ID           string
	SubscriberID string
	ChannelID    string
	CreatedAt    time.Time
}

// Video is the catalogue entry referenced from watch histories. Videos are
// owned by the media service; only read access happens here.
type Video struct {
	ID           string
	OwnerID      string
	Title        string
	Description  string
	VideoURL     string
	ThumbnailURL string
	Duration     float64
	Views        int64
	CreatedAt    time.Time
}

// ChannelProfile is the aggregated public view of a channel: the user's
// public fields plus subscriber counts and whether the requesting viewer
// already subscribes.
type ChannelProfile struct {
	ID                      string `json:"id"`
	Username                string `json:"username"`
	Email                   string `json:"email"`
	Fullname                string `json:"fullname"`
	AvatarURL               string `json:"avatar"`
	CoverURL                string `json:"coverImage"`
	SubscribersCount        int64  `json:"subscribersCount"`
	ChannelsSubscribedCount int64  `json:"channelsSubscribedToCount"`
	IsSubscribed            bool   `json:"isSubscribed"`
}

// VideoOwner is the reduced owner projection attached to watch history items.
type VideoOwner struct {
	Fullname  string `json:"fullname"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatar"`
}

// WatchedVideo is one entry of a user's watch history: the video joined with
// its owner's public fields.
type WatchedVideo struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	VideoURL     string     `json:"videoUrl"`
	ThumbnailURL string     `json:"thumbnail"`
	Duration     float64    `json:"duration"`
	Views        int64      `json:"views"`
	CreatedAt    time.Time  `json:"createdAt"`
	Owner        VideoOwner `json:"owner"`
}

// TokenPair groups the bearer credentials issued to authenticated users.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}
