package dto

type AddQuestionRequest struct {
	Question string `json:"question"`
}

// QuestionResponse ответ на изменение списка вопросов
type QuestionResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type QuestionsResponse struct {
	Truth []string `json:"truth"`
	Dare  []string `json:"dare"`
}
