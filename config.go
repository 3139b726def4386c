package curachef

type ModelConfig struct {
	ModelID     string  `env:"MODEL_ID,required"`
	MaxTokens   int32   `env:"MAX_TOKENS,default=4096"`
	Temperature float32 `env:"TEMPERATURE,default=0.2"`
	TopP        float32 `env:"TOP_P,default=0.9"`
}

type AppConfig struct {
	UsersPath          string `env:"USERS_PATH,default=artifacts/users.json"`
	BaseOllamaEndpoint string `env:"BASE_OLLAMA_ENDPOINT,default=http://localhost:11434"`
	SlackWebhookURL    string `env:"SLACK_WEBHOOK_URL,default="`
	SlackChannel       string `env:"SLACK_CHANNEL,default=#kitchen"`
}
