package prompts

const (
	KindParentEmail          = "parent-email"
	KindRecommendationLetter = "recommendation-letter"
	KindDifferentiation      = "differentiation"
)

var builtinTemplates = []Template{
	{
		Kind:     KindParentEmail,
		Title:    "Parent Emails",
		Category: "parent-communication",
		System:   "You are an experienced K-12 teacher writing clear, respectful messages to families.",
		Fields: []Field{
			{Name: "parentName", Label: "Parent or guardian"},
			{Name: "positives", Label: "Positive observations"},
			{Name: "concerns", Label: "Concerns"},
			{Name: "action", Label: "Requested action"},
		},
		Settings: []Field{
			{Name: "teacherName", Label: "Teacher"},
			{Name: "subject", Label: "Subject"},
			{Name: "gradeLevel", Label: "Grade level"},
			{Name: "tone", Label: "Tone"},
		},
		SecondaryField: "parentName",
		MaxTokens:      600,
	},
	{
		Kind:     KindRecommendationLetter,
		Title:    "Recommendation Letters",
		Category: "recommendation-letter",
		System:   "You are a teacher writing sincere, specific letters of recommendation for your students.",
		Fields: []Field{
			{Name: "destination", Label: "Program or school"},
			{Name: "academicStrengths", Label: "Academic strengths"},
			{Name: "characterTraits", Label: "Character traits"},
			{Name: "anecdote", Label: "Anecdote"},
			{Name: "goals", Label: "Student goals"},
		},
		Settings: []Field{
			{Name: "writerName", Label: "Recommender"},
			{Name: "writerTitle", Label: "Recommender title"},
			{Name: "relationship", Label: "Relationship to student"},
			{Name: "letterType", Label: "Letter type"},
			{Name: "tone", Label: "Tone"},
		},
		SecondaryField: "destination",
		MaxTokens:      1500,
	},
	{
		Kind:     KindDifferentiation,
		Title:    "Differentiated Lesson Plans",
		Category: "differentiation",
		System:   "You are an instructional coach who adapts lessons for diverse learners.",
		Fields: []Field{
			{Name: "needs", Label: "Learning needs"},
			{Name: "strengths", Label: "Strengths"},
			{Name: "readingLevel", Label: "Reading level"},
			{Name: "accommodations", Label: "Required accommodations"},
		},
		Settings: []Field{
			{Name: "lessonTopic", Label: "Lesson topic"},
			{Name: "objective", Label: "Learning objective"},
			{Name: "subject", Label: "Subject"},
			{Name: "gradeLevel", Label: "Grade level"},
		},
		MaxTokens: 1200,
	},
}
