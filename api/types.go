package api

import (
	"time"

	"github.com/rpupo63/blog-platform-backend/models"
)

// routeHandlers contains all the handlers for different route types
type routeHandlers struct {
	authHandler     authHandler
	userHandler     userHandler
	blogPostHandler blogPostHandler
	commentHandler  commentHandler
	tagHandler      tagHandler
	healthHandler   healthHandler
}

// ErrorResponse represents an error response from the API
// @Description Error response structure
type ErrorResponse struct {
	Error   string `json:"error" example:"Internal Server Error"`
	Status  string `json:"status" example:"error"`
	Field   string `json:"field,omitempty" example:"title"`
	Details string `json:"details,omitempty" example:"Additional error details"`
	Cause   string `json:"cause,omitempty" example:"Underlying error cause"`
}

type MessageResponse struct {
	Message string `json:"message" example:"Post liked!"`
}

// UserResponse is the public view of a user
type UserResponse struct {
	UserID         uint    `json:"user_id" example:"1"`
	Email          string  `json:"email" example:"a@x.com"`
	Username       *string `json:"username" example:"a"`
	Name           *string `json:"name,omitempty" example:"Ada"`
	ProfilePicture *string `json:"profile_picture" example:"https://media.example.com/uploads/a.png"`
	IsActive       bool    `json:"is_active" example:"true"`
}

func newUserResponse(u *models.User) UserResponse {
	return UserResponse{
		UserID:         u.ID,
		Email:          u.Email,
		Username:       u.Username,
		Name:           u.Name,
		ProfilePicture: u.ProfilePicture,
		IsActive:       u.IsActive,
	}
}

// MeResponse adds the account's role flags for the logged in user
type MeResponse struct {
	UserResponse
	IsStaff     bool       `json:"is_staff"`
	IsSuperuser bool       `json:"is_superuser"`
	LastLogin   *time.Time `json:"last_login"`
	CreatedAt   time.Time  `json:"created_at"`
}

type SignupResponse struct {
	Success        string       `json:"success" example:"User created successfully"`
	ProfilePicture *string      `json:"profile_picture"`
	User           UserResponse `json:"user"`
}

type LoginResponse struct {
	Message     string       `json:"message" example:"Login successful"`
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type" example:"Bearer"`
	User        UserResponse `json:"user"`
}

type ResetLinkResponse struct {
	Valid   bool   `json:"valid" example:"true"`
	Message string `json:"message"`
	Email   string `json:"email"`
}

type TagResponse struct {
	TagID uint   `json:"tag_id" example:"1"`
	Name  string `json:"name" example:"go"`
}

func newTagResponse(t *models.Tag) TagResponse {
	return TagResponse{TagID: t.ID, Name: t.Name}
}

// BlogPostResponse lists tag names and the derived like and comment counts
type BlogPostResponse struct {
	PostID       uint         `json:"post_id" example:"5"`
	User         UserResponse `json:"user"`
	Title        string       `json:"title"`
	Content      string       `json:"content"`
	Image        *string      `json:"image"`
	Tags         []string     `json:"tags"`
	LikeCount    int64        `json:"like_count"`
	CommentCount int64        `json:"comment_count"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

func newBlogPostResponse(p *models.BlogPost, likes, comments int64) BlogPostResponse {
	tags := make([]string, 0, len(p.Tags))
	for _, t := range p.Tags {
		tags = append(tags, t.Name)
	}
	return BlogPostResponse{
		PostID:       p.ID,
		User:         newUserResponse(&p.User),
		Title:        p.Title,
		Content:      p.Content,
		Image:        p.ImageURL,
		Tags:         tags,
		LikeCount:    likes,
		CommentCount: comments,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

type BlogPostDetailResponse struct {
	BlogPostResponse
	Comments []CommentResponse `json:"comments"`
}

type CommentResponse struct {
	CommentID uint         `json:"comment_id" example:"1"`
	Post      uint         `json:"post" example:"5"`
	User      UserResponse `json:"user"`
	Text      string       `json:"text"`
	CreatedAt time.Time    `json:"created_at"`
}

func newCommentResponse(c *models.Comment) CommentResponse {
	return CommentResponse{
		CommentID: c.ID,
		Post:      c.PostID,
		User:      newUserResponse(&c.User),
		Text:      c.Text,
		CreatedAt: c.CreatedAt,
	}
}

type LikeResponse struct {
	Message   string `json:"message" example:"Post liked!"`
	Liked     bool   `json:"liked"`
	LikeCount int64  `json:"like_count"`
}

type HealthResponse struct {
	Status    string    `json:"status" example:"ok"`
	StartedAt time.Time `json:"started_at"`
	Uptime    string    `json:"uptime"`
}

// Request bodies

type signupRequest struct {
	Email    string `json:"email" validate:"omitempty,email,max=254"`
	Username string `json:"username" validate:"omitempty,max=255"`
	Name     string `json:"name" validate:"omitempty,max=255"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type passwordResetRequest struct {
	Email string `json:"email"`
}

type passwordResetConfirmRequest struct {
	NewPassword string `json:"new_password" validate:"required"`
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required"`
}

type blogPostRequest struct {
	Title   string   `json:"title" validate:"required,max=255"`
	Content string   `json:"content" validate:"required"`
	Tags    []string `json:"tags" validate:"omitempty,dive,required,max=50"`
}

type blogPostUpdateRequest struct {
	Title   *string   `json:"title" validate:"omitempty,min=1,max=255"`
	Content *string   `json:"content" validate:"omitempty,min=1"`
	Tags    []string `json:"tags" validate:"omitempty,dive,required,max=50"` // nil keeps the current tags
}

type commentRequest struct {
	Text string `json:"text" validate:"required,max=5000"`
}

type tagRequest struct {
	Name string `json:"name" validate:"required,max=50"`
}
