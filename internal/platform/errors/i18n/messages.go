package i18n

// Error codes must match the codes defined in internal/platform/errors/codes.go.
const (
	CodeUnknown            = "UNKNOWN"
	CodeNotFound           = "NOT_FOUND"
	CodeStoreUnavailable   = "STORE_UNAVAILABLE"
	CodeControlMalformed   = "CONTROL_MALFORMED"
	CodeControlUnknownView = "CONTROL_UNKNOWN_VIEW"
	CodeControlInvalidID   = "CONTROL_INVALID_ID"
	CodeHandlerFailure     = "HANDLER_FAILURE"
	CodeConfigInvalid      = "CONFIG_INVALID"
)

var enUS = map[Code]string{
	CodeUnknown:            "Something went wrong. Please try again.",
	CodeNotFound:           `Could not find "{{.Query}}".`,
	CodeStoreUnavailable:   "The dex is unavailable right now. Please try again in a moment.",
	CodeControlMalformed:   "Sorry, I could not understand this button.",
	CodeControlUnknownView: "Sorry, I could not understand this button.",
	CodeControlInvalidID:   "Sorry, I could not understand this button.",
	CodeHandlerFailure:     "Could not load {{.View}} right now. Please try again.",
	CodeConfigInvalid:      "The bot is misconfigured.",
}

var ptBR = map[Code]string{
	CodeUnknown:            "Algo deu errado. Tente novamente.",
	CodeNotFound:           `Não foi possível encontrar "{{.Query}}".`,
	CodeStoreUnavailable:   "A dex está indisponível agora. Tente novamente em instantes.",
	CodeControlMalformed:   "Desculpe, não entendi este botão.",
	CodeControlUnknownView: "Desculpe, não entendi este botão.",
	CodeControlInvalidID:   "Desculpe, não entendi este botão.",
	CodeHandlerFailure:     "Não foi possível carregar {{.View}} agora. Tente novamente.",
	CodeConfigInvalid:      "O bot está mal configurado.",
}
