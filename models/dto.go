package models

type RegisterRequest struct {
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"required,max=100"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type CreateUserRequest struct {
	FirstName string   `json:"first_name" validate:"required,max=100"`
	LastName  string   `json:"last_name" validate:"required,max=100"`
	Email     string   `json:"email" validate:"required,email"`
	Password  string   `json:"password" validate:"required,min=6"`
	Role      UserRole `json:"role" validate:"required,oneof=admin editor writer reader"`
}

type UpdateUserRequest struct {
	FirstName string   `json:"first_name" validate:"required,max=100"`
	LastName  string   `json:"last_name" validate:"required,max=100"`
	Email     string   `json:"email" validate:"required,email"`
	Password  string   `json:"password" validate:"omitempty,min=6"`
	Role      UserRole `json:"role" validate:"required,oneof=admin editor writer reader"`
}

type CreateArticleRequest struct {
	Title    string `json:"title" validate:"required,max=255"`
	Subtitle string `json:"subtitle" validate:"required,max=255"`
	Body     string `json:"body" validate:"required"`
	ImageURL string `json:"image_url" validate:"required"`
	TagIDs   []uint `json:"tag_ids"`
}

// UpdateArticleRequest replaces the article content. A nil TagIDs leaves the
// tags untouched, an empty one clears them.
type UpdateArticleRequest struct {
	Title    string `json:"title" validate:"required,max=255"`
	Subtitle string `json:"subtitle" validate:"required,max=255"`
	Body     string `json:"body" validate:"required"`
	ImageURL string `json:"image_url" validate:"required"`
	TagIDs   []uint `json:"tag_ids"`
}

type SetTagsRequest struct {
	TagIDs []uint `json:"tag_ids"`
}

type TagRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

type CreateCommentRequest struct {
	Body string `json:"body" validate:"required"`
}

type VoteRequest struct {
	Positive *bool `json:"positive" validate:"required"`
}

type ArticleListParams struct {
	Status   string `form:"status"`
	AuthorID uint   `form:"author_id"`
	TagID    uint   `form:"tag_id"`
	Page     int    `form:"page,default=1"`
	Limit    int    `form:"limit,default=10"`
}

// Normalize clamps paging values into a sane range.
func (p *ArticleListParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = 10
	}
	if p.Limit > 100 {
		p.Limit = 100
	}
}

func (p ArticleListParams) Offset() int {
	return (p.Page - 1) * p.Limit
}
