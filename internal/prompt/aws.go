package prompt

import (
	"fmt"

	"quiz-ai-cache/internal/domain"
)

const awsSystem = "You are a helpful AWS expert assistant."

func languageInstruction(lang domain.Language) string {
	if lang == domain.LanguageVietnamese {
		return "Vui lòng trả lời bằng tiếng Việt."
	}
	return "Please respond in English."
}

const awsTheoryStructureVI = `## Cơ sở lý thuyết các thuật ngữ trong câu hỏi

Liệt kê và giải thích TẤT CẢ các AWS services, concepts, và thuật ngữ kỹ thuật được đề cập trong câu hỏi.

Định dạng cho mỗi thuật ngữ:
- **Tên thuật ngữ** (in đậm, không có dấu hai chấm)
- Giải thích ngắn gọn và đầy đủ về thuật ngữ đó (trên dòng mới)

## Cơ sở lý thuyết các thuật ngữ trong đáp án

Liệt kê và giải thích TẤT CẢ các AWS services, concepts, và thuật ngữ kỹ thuật xuất hiện trong các đáp án (A, B, C, D).

Định dạng cho mỗi thuật ngữ:
- **Tên thuật ngữ** (in đậm, không có dấu hai chấm)
- Giải thích ngắn gọn và đầy đủ về thuật ngữ đó (trên dòng mới)

QUAN TRỌNG: KHÔNG dùng dấu hai chấm (:) sau tên thuật ngữ.`

const awsTheoryStructureEN = `## Theoretical Foundation of Question Terms

List and explain ALL AWS services, concepts, and technical terms mentioned in the question.

Format for each term:
- **Term name** (bold, NO colon)
- Concise but thorough explanation (on new line)

## Theoretical Foundation of Answer Terms

List and explain ALL AWS services, concepts, and technical terms appearing in the answers (A, B, C, D).

Format for each term:
- **Term name** (bold, NO colon)
- Concise but thorough explanation (on new line)

IMPORTANT: Do NOT use colons (:) after term names.`

const awsTheoryTemplate = `You are an AWS Solutions Architect expert. Provide theoretical foundation for this question.

Question: %s

Options:
%s

%s

IMPORTANT: Start directly with the theoretical content. Do NOT include any greetings, introductions (like "Chào bạn, là một chuyên gia..." or "Hello, as an expert..."), or conclusions. Go straight to the structured content below.

Provide a comprehensive theoretical breakdown:

%s

Keep the theory organized and easy to reference (max 500 words).`

func awsTheory(question, options string, lang domain.Language) string {
	structure := awsTheoryStructureEN
	if lang == domain.LanguageVietnamese {
		structure = awsTheoryStructureVI
	}
	return fmt.Sprintf(awsTheoryTemplate, question, options, languageInstruction(lang), structure)
}

const awsExplanationStructureVI = `## Giải thích câu hỏi

Phân tích yêu cầu chính của câu hỏi, xác định các điểm mấu chốt cần chú ý.

## Giải thích đáp án đúng

Tại sao đáp án %s là đúng? Giải thích chi tiết.

## Tại sao không chọn các đáp án khác

Phân tích từng đáp án sai, giải thích lý do.

## Các lỗi thường gặp

Liệt kê các lỗi mà thí sinh hay mắc phải.

## Mẹo để nhớ

Cung cấp các mẹo, tricks để áp dụng cho các câu hỏi tương tự.

QUAN TRỌNG: Khi đề cập đến các keywords hoặc concepts trong nội dung, viết chúng ở dạng **in đậm** KHÔNG CÓ dấu hai chấm (:) phía sau. Ví dụ: **Keyword** chứ không phải **Keyword:**`

const awsExplanationStructureEN = `## Question Analysis

Analyze the main requirements of the question and identify the key points.

## Correct Answer Explanation

Why is answer %s correct? Explain in detail.

## Why Other Answers Are Wrong

Analyze each incorrect answer and explain why.

## Common Mistakes

List the mistakes students often make.

## Tips to Remember

Provide tips and tricks to apply to similar questions.

IMPORTANT: When mentioning keywords or concepts in content, write them in **bold** withOUT colons (:) after. Example: **Keyword** NOT **Keyword:**`

const awsExplanationTemplate = `You are an AWS Solutions Architect expert. Analyze this SAA-C03 exam question.

Question: %s

Options:
%s

Correct Answer: %s

%s

IMPORTANT: Start directly with the analysis. Do NOT include any greetings, introductions, or conclusions. Go straight to the structured content.

Do NOT use colons (:) after bold keywords. Write descriptions on the same line or new line without colons.

Provide a comprehensive explanation:

%s

Keep the explanation structured and easy to understand (max 500 words).`

func awsExplanation(question, options, answer string, lang domain.Language) string {
	structure := awsExplanationStructureEN
	if lang == domain.LanguageVietnamese {
		structure = awsExplanationStructureVI
	}
	return fmt.Sprintf(awsExplanationTemplate, question, options, answer, languageInstruction(lang),
		fmt.Sprintf(structure, answer))
}
