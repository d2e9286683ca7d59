package scans

// Coverage tells the reader what the automated layers checked and what
// still needs a human.
type Coverage struct {
	CheckedAutomatically []string `json:"checked_automatically"`
	RequiresManual       []string `json:"requires_manual"`
}

// CoverageInfo returns the coverage block for the requested locale.
func CoverageInfo(locale Locale) Coverage {
	if locale == LocaleHebrew {
		return Coverage{
			CheckedAutomatically: []string{
				"תמונות ללא alt text",
				"ניגודיות צבעים",
				"תגיות ARIA",
				"טפסים ללא labels",
				"מבנה כותרות",
				"ניווט מקלדת",
				"אינדיקטור פוקוס",
				"קישורי דילוג",
				"טיפול בשגיאות בטפסים",
				"הצהרת נגישות (תקן 5568)",
			},
			RequiresManual: []string{
				"איכות תיאורי תמונות",
				"בהירות טקסט קישורים",
				"כתוביות וידאו",
				"בדיקת קורא מסך",
				"בדיקת משתמשים",
			},
		}
	}
	return Coverage{
		CheckedAutomatically: []string{
			"Images without alt text",
			"Color contrast",
			"ARIA tags",
			"Forms without labels",
			"Heading structure",
			"Keyboard navigation",
			"Focus indicator",
			"Skip links",
			"Form error handling",
			"Accessibility statement (IL 5568)",
		},
		RequiresManual: []string{
			"Alt text quality",
			"Link text clarity",
			"Video captions",
			"Screen reader testing",
			"User testing",
		},
	}
}

// NextSteps returns recommended actions for the given score and locale.
func NextSteps(score int, locale Locale) []string {
	if locale == LocaleHebrew {
		switch {
		case score >= 80:
			return []string{
				"המשך לשמור על רמת הנגישות הגבוהה",
				"בצע בדיקה ידנית לכיסוי המלא",
				"הוסף בדיקות נגישות ל-CI/CD",
			}
		case score >= 60:
			return []string{
				"טפל בבעיות הקריטיות תחילה",
				"הוסף alt text לכל התמונות",
				"תקן ניגודיות צבעים",
				"בצע בדיקה ידנית",
			}
		default:
			return []string{
				"התייעץ עם מומחה נגישות",
				"טפל בכל הבעיות הקריטיות מיד",
				"צור תוכנית נגישות ארגונית",
			}
		}
	}
	switch {
	case score >= 80:
		return []string{
			"Maintain high accessibility level",
			"Perform manual testing for full coverage",
			"Add accessibility checks to CI/CD",
		}
	case score >= 60:
		return []string{
			"Address critical issues first",
			"Add alt text to all images",
			"Fix color contrast",
			"Perform manual testing",
		}
	default:
		return []string{
			"Consult accessibility expert",
			"Fix all critical issues immediately",
			"Create organizational accessibility plan",
		}
	}
}
