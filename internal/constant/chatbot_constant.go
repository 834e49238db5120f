package constant

const (
	ContextPlaceholder  = "{context}"
	QuestionPlaceholder = "{input}"

	// ProductBotTemplate is the answer step's system prompt. The retrieved
	// reviews replace {context} and the standalone question replaces {input}.
	ProductBotTemplate = `
Your ecommercebot bot is an expert in product recommendations and customer queries.
It analyzes product titles and reviews to provide accurate and helpful responses.
Ensure your answers are relevant to the product context and refrain from straying off-topic.
Your responses should be concise and informative.

CONTEXT:
{context}

QUESTION: {input}

YOUR ANSWER:
`

	DocumentSeparator = "\n\n"

	// DemoSearchQuery is run against the store after a CLI ingestion.
	DemoSearchQuery = "Can you tell me the low budget sound basshead?"

	// DemoSessionID is used by the ask command when no session is given.
	DemoSessionID = "demo"
)

var DemoQuestions = []string{
	"Can you tell me the best bluetooth buds?",
	"What is my previous question?",
}
