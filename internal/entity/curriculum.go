package entity

import "time"

// DefaultExamOffsetDays places the exam of a freshly seeded plan a month out.
const DefaultExamOffsetDays = 30

// DefaultCurriculum returns the built-in accounting standards catalog with the
// exam placed examOffsetDays after now.
func DefaultCurriculum(now time.Time, examOffsetDays int) *Snapshot {
	if examOffsetDays <= 0 {
		examOffsetDays = DefaultExamOffsetDays
	}
	return &Snapshot{
		Categories:         defaultCategories(),
		ExamDate:           now.AddDate(0, 0, examOffsetDays),
		WeeklyAvailability: DefaultWeeklyAvailability,
	}
}

func defaultCategories() []Category {
	return []Category{
		{ID: 1, Name: "Foundational Concepts", Expanded: true, Items: []StudyItem{
			todo("LKAS1", "LKAS 1 - Presentation of Financial Statements", LevelHigh, LevelMedium, 3, 2),
			todo("LKAS7", "LKAS 7 - Statement of Cash Flows", LevelMedium, LevelMedium, 2, 1),
		}},
		{ID: 2, Name: "Specific Balance Sheet Items", Expanded: false, Items: []StudyItem{
			todo("LKAS38", "LKAS 38 - Intangible Assets", LevelHigh, LevelHigh, 3, 2),
			todo("LKAS40", "LKAS 40 - Investment Property", LevelMedium, LevelMedium, 2, 1),
			todo("LKAS41", "LKAS 41 - Agriculture", LevelLow, LevelMedium, 2, 1),
			todo("LKAS37", "LKAS 37 - Provisions, Contingent Liabilities and Assets", LevelHigh, LevelHigh, 4, 3),
			todo("LKAS19", "LKAS 19 - Employee Benefits", LevelHigh, LevelHigh, 4, 3),
		}},
		{ID: 3, Name: "Specific Transactions and Events", Expanded: false, Items: []StudyItem{
			todo("LKAS11", "LKAS 11 - Construction Contracts", LevelMedium, LevelMedium, 2, 1),
			todo("LKAS18", "LKAS 18 - Revenue", LevelHigh, LevelMedium, 3, 2),
			todo("SLFRS2", "SLFRS 2 - Share-based Payment", LevelMedium, LevelMedium, 2, 1),
			todo("LKAS23", "LKAS 23 - Borrowing Costs", LevelMedium, LevelLow, 1, 1),
		}},
		{ID: 4, Name: "Financial Instruments", Expanded: false, Items: []StudyItem{
			todo("LKAS32", "LKAS 32 - Financial Instruments: Presentation", LevelHigh, LevelHigh, 4, 3),
			todo("LKAS39", "LKAS 39 - Financial Instruments: Recognition and Measurement", LevelHigh, LevelHigh, 5, 4),
			todo("SLFRS7", "SLFRS 7 - Financial Instruments: Disclosures", LevelHigh, LevelMedium, 3, 2),
			todo("LKAS33", "LKAS 33 - Earnings per Share", LevelMedium, LevelMedium, 2, 1),
		}},
		{ID: 5, Name: "Group Accounting and Related Disclosures", Expanded: false, Items: []StudyItem{
			todo("SLFRS10", "SLFRS 10 - Consolidated Financial Statements", LevelHigh, LevelHigh, 4, 3),
			todo("SLFRS11", "SLFRS 11 - Joint Arrangements", LevelHigh, LevelHigh, 3, 2),
			todo("LKAS28", "LKAS 28 - Investments in Associates and Joint Ventures", LevelHigh, LevelHigh, 3, 2),
			todo("LKAS27", "LKAS 27 - Separate Financial Statements", LevelMedium, LevelMedium, 2, 1),
			todo("SLFRS12", "SLFRS 12 - Disclosure of Interests in Other Entities", LevelMedium, LevelMedium, 2, 1),
		}},
		{ID: 6, Name: "Other Specific Standards", Expanded: false, Items: []StudyItem{
			todo("SLFRS3", "SLFRS 3 - Business Combinations", LevelHigh, LevelHigh, 4, 3),
			todo("SLFRS5", "SLFRS 5 - Non-current Assets Held for Sale and Discontinued Operations", LevelMedium, LevelMedium, 2, 1),
			todo("SLFRS6", "SLFRS 6 - Exploration for and Evaluation of Mineral Resources", LevelLow, LevelLow, 1, 1),
			todo("SLFRS4", "SLFRS 4 - Insurance Contracts", LevelMedium, LevelMedium, 2, 1),
			todo("LKAS34", "LKAS 34 - Interim Financial Reporting", LevelMedium, LevelMedium, 2, 1),
		}},
		{ID: 7, Name: "Accounting Policies, Estimates, and Errors", Expanded: false, Items: []StudyItem{
			todo("LKAS8", "LKAS 8 - Accounting Policies, Changes in Accounting Estimates and Errors", LevelHigh, LevelMedium, 2, 1),
		}},
		{ID: 8, Name: "Already Covered", Expanded: false, Items: []StudyItem{
			done("LKAS17", "LKAS 17 - Leasing", 3),
			done("LKAS2", "LKAS 2 - Inventory", 2),
			done("LKAS16", "LKAS 16 - Property, Plant and Equipment", 3),
		}},
	}
}

func todo(id, name string, priority, difficulty Level, hours float64, days int) StudyItem {
	return StudyItem{
		ID:              id,
		Name:            name,
		Priority:        priority,
		Difficulty:      difficulty,
		TotalHours:      hours,
		RecommendedDays: days,
	}
}

func done(id, name string, hours float64) StudyItem {
	return StudyItem{
		ID:         id,
		Name:       name,
		Completed:  true,
		Priority:   LevelCompleted,
		Difficulty: LevelCompleted,
		TotalHours: hours,
		HoursSpent: hours,
		Notes:      "Completed",
	}
}
