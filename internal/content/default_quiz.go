package content

// DefaultQuestions returns the built-in question bank used when no
// override file is configured. Reversed questions carry the scrambled
// word as the prompt; flags use the emoji as the prompt.
func DefaultQuestions() []Question {
	return []Question{
		{ID: "r1", Kind: QuestionReversed, Text: "ةرهاقلا", Answer: "القاهرة", Alternates: []string{"القاهره"}},
		{ID: "r2", Kind: QuestionReversed, Text: "لينلا", Answer: "النيل", Alternates: []string{"نهر النيل"}},
		{ID: "r3", Kind: QuestionReversed, Text: "مره", Answer: "هرم", Alternates: []string{"الهرم"}},
		{ID: "r4", Kind: QuestionReversed, Text: "رمق", Answer: "قمر", Alternates: []string{"القمر"}},
		{ID: "r5", Kind: QuestionReversed, Text: "يرشك", Answer: "كشري", Alternates: []string{"كشرى"}},
		{ID: "r6", Kind: QuestionReversed, Text: "ةسردم", Answer: "مدرسة", Alternates: []string{"مدرسه"}},
		{ID: "f1", Kind: QuestionFlag, Text: "🇪🇬", Answer: "مصر", Alternates: []string{"egypt"}},
		{ID: "f2", Kind: QuestionFlag, Text: "🇯🇵", Answer: "اليابان", Alternates: []string{"japan"}},
		{ID: "f3", Kind: QuestionFlag, Text: "🇧🇷", Answer: "البرازيل", Alternates: []string{"brazil"}},
		{ID: "f4", Kind: QuestionFlag, Text: "🇫🇷", Answer: "فرنسا", Alternates: []string{"france"}},
		{ID: "f5", Kind: QuestionFlag, Text: "🇸🇦", Answer: "السعودية", Alternates: []string{"السعوديه", "saudi arabia"}},
		{ID: "q1", Kind: QuestionTrivia, Text: "ما هي عاصمة مصر؟", Answer: "القاهرة", Alternates: []string{"القاهره"}},
		{ID: "q2", Kind: QuestionTrivia, Text: "ما هو أطول نهر في العالم؟", Answer: "النيل", Alternates: []string{"نهر النيل"}},
		{ID: "q3", Kind: QuestionTrivia, Text: "في أي مدينة يقع برج القاهرة؟", Answer: "القاهرة", Alternates: []string{"الزمالك"}},
		{ID: "q4", Kind: QuestionTrivia, Text: "من هو لاعب كرة القدم المصري المحترف في ليفربول سابقاً؟", Answer: "محمد صلاح", Alternates: []string{"صلاح", "mo salah"}},
		{ID: "q5", Kind: QuestionTrivia, Text: "كم عدد أهرامات الجيزة الكبرى؟", Answer: "ثلاثة", Alternates: []string{"3", "ثلاثه"}},
		{ID: "q6", Kind: QuestionTrivia, Text: "ما هي أكبر قارة في العالم؟", Answer: "آسيا", Alternates: []string{"اسيا"}},
		{ID: "q7", Kind: QuestionTrivia, Text: "ما اسم البحر الذي يفصل مصر عن السعودية؟", Answer: "البحر الأحمر", Alternates: []string{"الاحمر"}},
		{ID: "q8", Kind: QuestionTrivia, Text: "من بنى معبد أبو سمبل؟", Answer: "رمسيس الثاني", Alternates: []string{"رمسيس"}},
		{ID: "q9", Kind: QuestionTrivia, Text: "كم عدد محافظات مصر؟", Answer: "27", Alternates: []string{"سبعة وعشرون", "٢٧"}},
		{ID: "q10", Kind: QuestionTrivia, Text: "ما هي عملة اليابان؟", Answer: "الين", Alternates: []string{"ين", "yen"}},
		{ID: "q11", Kind: QuestionTrivia, Text: "في أي عام تم افتتاح قناة السويس؟", Answer: "1869", Alternates: []string{"١٨٦٩"}},
		{ID: "q12", Kind: QuestionTrivia, Text: "ما هو أكبر محيط في العالم؟", Answer: "المحيط الهادي", Alternates: []string{"الهادي", "الهادئ"}},
		{ID: "d1", Kind: QuestionDrawing, Text: "ارسم قطة"},
		{ID: "d2", Kind: QuestionDrawing, Text: "ارسم الأهرامات"},
		{ID: "d3", Kind: QuestionDrawing, Text: "ارسم عربية ملاكي"},
		{ID: "d4", Kind: QuestionDrawing, Text: "ارسم طبق كشري"},
	}
}
