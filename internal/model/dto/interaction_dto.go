package dto

// LikeState 点赞后的目标状态
type LikeState struct {
	TargetType string `json:"target_type"`
	TargetID   int64  `json:"target_id"`
	Liked      bool   `json:"liked"`
	LikesCount int    `json:"likes_count"`
}

// RetweetState 转发后的目标状态
type RetweetState struct {
	TargetType    string `json:"target_type"`
	TargetID      int64  `json:"target_id"`
	Retweeted     bool   `json:"retweeted"`
	RetweetsCount int    `json:"retweets_count"`
}
