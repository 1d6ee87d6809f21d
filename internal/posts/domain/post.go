package domain

import "time"

type Post struct {
	ID         string
	AuthorID   string
	AuthorName string
	Title      string
	Content    string
	Thumbnail  string
	CreatedAt  time.Time
}

type ScopeKind int

const (
	ScopeAll ScopeKind = iota
	ScopeAllExcludingCaller
	ScopeOnlyCaller
)

// Scope selects which subset of posts a listing draws from. CallerID is set
// for every kind except ScopeAll.
type Scope struct {
	Kind     ScopeKind
	CallerID string
}

func All() Scope {
	return Scope{Kind: ScopeAll}
}

func AllExcluding(callerID string) Scope {
	return Scope{Kind: ScopeAllExcludingCaller, CallerID: callerID}
}

func OnlyCaller(callerID string) Scope {
	return Scope{Kind: ScopeOnlyCaller, CallerID: callerID}
}

func (s Scope) String() string {
	switch s.Kind {
	case ScopeAllExcludingCaller:
		return "all_excluding_caller"
	case ScopeOnlyCaller:
		return "only_caller"
	default:
		return "all"
	}
}

type PageRequest struct {
	Page   int
	Limit  int
	Search string
}

// Normalize clamps the request to sane values: page defaults to 1, a missing
// limit takes defaultLimit, and limit is capped at maxLimit.
func (p PageRequest) Normalize(defaultLimit, maxLimit int) PageRequest {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = defaultLimit
	}
	if p.Limit > maxLimit {
		p.Limit = maxLimit
	}
	return p
}

func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.Limit
}

type PageResult struct {
	Posts       []Post
	Total       int
	TotalPages  int
	CurrentPage int
}

func NewPageResult(posts []Post, total, page, limit int) PageResult {
	totalPages := 0
	if total > 0 {
		totalPages = (total + limit - 1) / limit
	}
	return PageResult{
		Posts:       posts,
		Total:       total,
		TotalPages:  totalPages,
		CurrentPage: page,
	}
}
