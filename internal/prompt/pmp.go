package prompt

import (
	"fmt"

	"quiz-ai-cache/internal/domain"
)

const pmpSystem = "You are a professional PMP tutor. You keep technical terms in English but explain in the requested language. You never use Chinese/Japanese characters."

func targetLanguage(lang domain.Language) string {
	if lang == domain.LanguageVietnamese {
		return "Tiếng Việt"
	}
	return "English"
}

const pmpTheoryTemplate = `You are a world-class PMP Instructor. 
STRICT RULES:
1. All technical PMP terms (e.g., 'Critical Path', 'Risk Register', 'Sprint Retrospective') MUST remain in English.
2. Provide detailed explanations in %[3]s.
3. DO NOT repeat explanations if a term appears in both the question and options.
4. Focus on the 'Why' and 'How' it's used in project management.

Question: %[1]s
Options:
%[2]s

Format the response as follows:
## Cơ sở lý thuyết các khái niệm
- **[English Term]**: [Detailed explanation in %[3]s]
- **[English Term]**: [Detailed explanation...]

## Các công cụ và kỹ thuật (Tools & Techniques)
- **[English Term]**: [Specific purpose and application in this context]
`

func pmpTheory(question, options string, lang domain.Language) string {
	return fmt.Sprintf(pmpTheoryTemplate, question, options, targetLanguage(lang))
}

const pmpExplanationTemplate = `You are a PMP Mentor. 
STRICT RULES:
1. The correct answer is %[4]s: "%[5]s". You MUST justify this answer.
2. Use %[3]s for the explanation but KEEP technical terms in English.
3. Provide a deep analysis of the situation (Lifecycle: Agile/Predictive/Hybrid).

Question: %[1]s
Options:
%[2]s

Format the response as follows:
## Phân tích tình huống
[Phân tích ngữ cảnh dự án, xác định vấn đề cốt lõi và giai đoạn của dự án.]

## Giải thích đáp án đúng (%[4]s)
[Giải thích tại sao "%[5]s" là lựa chọn tốt nhất dựa trên PM Mindset và tiêu chuẩn PMI.]

## Tại sao các đáp án khác không phù hợp
[Phân tích chi tiết từng phương án còn lại và lý do loại trừ chúng.]

## PMP Mindset
[Một quy tắc vàng hoặc mẹo rút ra từ câu hỏi này.]
`

func pmpExplanation(question, options, answer string, lang domain.Language) string {
	return fmt.Sprintf(pmpExplanationTemplate, question, options, targetLanguage(lang), answer,
		CorrectOptionText(options, answer))
}
