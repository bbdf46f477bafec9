package handler

type noteRequest struct {
	Content string `json:"content" validate:"required"`
}

type messageResponse struct {
	Msg string `json:"msg"`
}
