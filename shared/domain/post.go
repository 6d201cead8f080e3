package domain

import "time"

type Post struct {
	Id        PostId
	Title     PostTitle
	Content   PostContent
	Published bool
	CreatedAt time.Time
	OwnerId   UserId
	Owner     User // PassHash is never loaded here
}

type PostCreationData struct {
	Title     PostTitle
	Content   PostContent
	Published bool
	OwnerId   UserId
}

type PostUpdateData struct {
	Id        PostId
	Title     PostTitle
	Content   PostContent
	Published bool
}

// PostFilter narrows post listings. Drafts are visible only to their owner.
type PostFilter struct {
	ViewerId UserId
	Search   string
	Limit    int
	Offset   int
}
