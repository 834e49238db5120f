package constant

const (
	// ContextualizeQuestionPrompt turns a follow-up into a standalone question
	// before retrieval. It is sent as the system message, followed by the chat
	// history and the new question.
	ContextualizeQuestionPrompt = "Given a chat history and the latest user question which might reference context in the chat history, " +
		"formulate a standalone question which can be understood without the chat history. " +
		"Do NOT answer the question, just reformulate it if needed and otherwise return it as is."
)
