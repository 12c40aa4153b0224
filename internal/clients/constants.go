package clients

const (
	USER_AGENT = "reviewlens-client/1.0 (+https://github.com/spacesedan/reviewlens)"

	openAIMaxTokens = 32
)
