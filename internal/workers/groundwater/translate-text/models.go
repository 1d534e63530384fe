// internal/workers/groundwater/translate-text/models.go
package translatetext

type Input struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

type Output struct {
	TranslatedText string `json:"translatedText"`
}
