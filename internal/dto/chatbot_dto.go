package dto

// ChatRequest is the form posted by the chat page.
type ChatRequest struct {
	Msg string `form:"msg" validate:"required"`
}
