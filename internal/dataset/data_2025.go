package dataset

import "ingres-assistant/internal/models"

// StaticYear is the assessment year of the built-in table.
const StaticYear = 2025

// Categories are the published labels; a few differ from Classify and are
// reported by CategoryMismatches. Volumes are in ham.
var static2025 = []models.AssessmentRecord{
	stateRecord("Andaman and Nicobar Islands", 34818.07, 785.83, 2.27, models.CategorySafe),
	stateRecord("Arunachal Pradesh", 328838.35, 1343.76, 0.41, models.CategorySafe),
	stateRecord("Assam", 2064417.52, 293141.2, 14.2, models.CategorySafe),
	stateRecord("Bihar", 3132096.73, 1446952.86, 46.2, models.CategorySafe),
	stateRecord("Chandigarh", 4693.75, 3206.89, 68.32, models.CategorySemiCritical),
	stateRecord("Chhattisgarh", 1306865.95, 629687.36, 48.18, models.CategorySafe),
	stateRecord("Delhi", 34557.15, 31828.23, 92.1, models.CategoryOverExploited),
	stateRecord("Gujarat", 3741168.27, 1746073.42, 56.12, models.CategorySemiCritical),
	stateRecord("Haryana", 930112.81, 1371952.39, 136.75, models.CategoryOverExploited),
	stateRecord("Karnataka", 1741410.74, 1157913.85, 66.49, models.CategorySemiCritical),
	stateRecord("Kerala", 464546.88, 232251.54, 50.0, models.CategorySafe),
	stateRecord("Maharashtra", 2577586.51, 1286494.45, 49.71, models.CategorySafe),
	stateRecord("Punjab", 1889095.02, 2795751.6, 156.36, models.CategoryOverExploited),
	stateRecord("Rajasthan", 1476785.16, 1793068.91, 147.11, models.CategoryOverExploited),
	stateRecord("Tamil Nadu", 2267584.33, 1565976.35, 71.66, models.CategoryCritical),
	stateRecord("Telangana", 1961255.42, 918993.91, 46.86, models.CategorySafe),
	stateRecord("West Bengal", 2349657.61, 1060324.44, 45.13, models.CategorySafe),
}

// stateRecord builds a state-level row; recharge equals the extractable resource.
func stateRecord(state string, recharge, extraction, stage float64, category models.Category) models.AssessmentRecord {
	return models.AssessmentRecord{
		State:               state,
		District:            "All Districts",
		Block:               "All Blocks",
		Year:                StaticYear,
		AnnualRecharge:      recharge,
		ExtractableResource: recharge,
		AnnualExtraction:    extraction,
		StageOfExtraction:   stage,
		Category:            category,
	}
}
