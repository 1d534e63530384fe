// internal/workers/groundwater/generate-response/templates.go
package generateresponse

import (
	"fmt"

	"ingres-assistant/internal/models"
)

// replyTemplates holds the fixed, localised replies. summary takes the
// state, year, stage of extraction, category label, extractable resource
// and extraction (BCM), then the advisory sentence.
type replyTemplates struct {
	summary        string
	categoryLabels map[models.Category]string
	advisories     map[models.Category]string
	help           string
	busy           string
	technical      string
	malformed      string
}

var englishTemplates = replyTemplates{
	summary: "In the %[2]d assessment, %[1]s has a stage of groundwater extraction of %.1[3]f%%, " +
		"which places it in the %[4]s category. Annual extractable resource is %.2[5]f BCM " +
		"against an annual extraction of %.2[6]f BCM. %[7]s",
	categoryLabels: map[models.Category]string{
		models.CategorySafe:          "Safe",
		models.CategorySemiCritical:  "Semi-Critical",
		models.CategoryCritical:      "Critical",
		models.CategoryOverExploited: "Over-Exploited",
	},
	advisories: map[models.Category]string{
		models.CategorySafe:          "Extraction is within sustainable limits.",
		models.CategorySemiCritical:  "Extraction is approaching critical levels and should be monitored.",
		models.CategoryCritical:      "Extraction is close to the annual extractable resource, so conservation measures are advised.",
		models.CategoryOverExploited: "Extraction exceeds the annual extractable resource and recharge measures are urgently needed.",
	},
	help: "Hello! I can answer questions about India's groundwater assessments. " +
		"Which state would you like to know about? For example, ask \"What is the groundwater status in Punjab 2025?\"",
	busy:      "The assistant is receiving too many requests right now. Please try again in a moment.",
	technical: "I'm experiencing technical difficulties. Please try again or contact support.",
	malformed: "I apologize, but I couldn't generate a proper response. Please try rephrasing your question.",
}

var hindiTemplates = replyTemplates{
	summary: "%[2]d के आकलन में %[1]s में भूजल निष्कर्षण का स्तर %.1[3]f%% है, " +
		"जिससे यह %[4]s श्रेणी में आता है। वार्षिक निष्कर्षण योग्य संसाधन %.2[5]f BCM है " +
		"और वार्षिक निष्कर्षण %.2[6]f BCM है। %[7]s",
	categoryLabels: map[models.Category]string{
		models.CategorySafe:          "सुरक्षित (Safe)",
		models.CategorySemiCritical:  "अर्ध-गंभीर (Semi-Critical)",
		models.CategoryCritical:      "गंभीर (Critical)",
		models.CategoryOverExploited: "अति-दोहित (Over-Exploited)",
	},
	advisories: map[models.Category]string{
		models.CategorySafe:          "निष्कर्षण टिकाऊ सीमा के भीतर है।",
		models.CategorySemiCritical:  "निष्कर्षण गंभीर स्तर के करीब है और इसकी निगरानी की जानी चाहिए।",
		models.CategoryCritical:      "निष्कर्षण वार्षिक संसाधन के करीब है, इसलिए संरक्षण उपाय आवश्यक हैं।",
		models.CategoryOverExploited: "निष्कर्षण वार्षिक संसाधन से अधिक है और पुनर्भरण उपाय तत्काल आवश्यक हैं।",
	},
	help: "नमस्ते! मैं भारत के भूजल आकलन से जुड़े प्रश्नों का उत्तर दे सकता हूँ। " +
		"आप किस राज्य के बारे में जानना चाहेंगे? उदाहरण के लिए पूछें: \"पंजाब 2025 में भूजल की स्थिति क्या है?\"",
	busy:      "सहायक को इस समय बहुत अधिक अनुरोध मिल रहे हैं। कृपया थोड़ी देर बाद पुनः प्रयास करें।",
	technical: "मुझे तकनीकी कठिनाइयों का सामना करना पड़ रहा है। कृपया पुनः प्रयास करें या सहायता से संपर्क करें।",
	malformed: "क्षमा करें, मैं उचित उत्तर नहीं बना सका। कृपया अपना प्रश्न दूसरे शब्दों में पूछें।",
}

var templatesByLanguage = map[string]replyTemplates{
	"en": englishTemplates,
	"hi": hindiTemplates,
}

// templatesFor falls back to English for languages without templates.
func templatesFor(language string) replyTemplates {
	if t, ok := templatesByLanguage[models.NormalizeLanguage(language)]; ok {
		return t
	}
	return englishTemplates
}

func (t replyTemplates) summarize(r models.AssessmentRecord) string {
	return fmt.Sprintf(t.summary,
		r.State,
		r.Year,
		r.StageOfExtraction,
		t.categoryLabels[r.Category],
		r.ExtractableResource/models.HamPerBCM,
		r.AnnualExtraction/models.HamPerBCM,
		t.advisories[r.Category],
	)
}
