package importer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const simpleBlock = `## Exam X question 7 discussion

Which service stores objects?

A. Amazon EBS
B. Amazon EFS
C. Amazon S3
D. Amazon RDS

**Answer: C**`

const scrapedBlock = `## Exam AWS Certified Solutions Architect - Associate SAA-C03 topic 1 question 12 discussion

Actual exam question from Amazon's AWS Certified Solutions Architect - Associate SAA-C03
Question #: 12
Topic #: 1
[All AWS Certified Solutions Architect - Associate SAA-C03 Questions]

A company needs durable storage.
Which solutions meet these requirements? (Choose two.)

A. Amazon S3 Standard
B. Amazon S3 Glacier
C. Instance store
D. Amazon EBS
E. Amazon ElastiCache

Suggested Answer: AB

**Answer: BD**

[View on ExamTopics](https://www.examtopics.com/discussions/amazon/view/12)`

func TestParse_SimpleBlock(t *testing.T) {
	questions, skipped := Parse(simpleBlock)
	require.Len(t, questions, 1)
	assert.Empty(t, skipped)

	q := questions[0]
	assert.Equal(t, "7", q.ID)
	assert.Len(t, q.Options, 4)
	assert.Equal(t, "C. Amazon S3", q.Options[2])
	assert.Equal(t, "C", q.CorrectAnswer)
	assert.False(t, q.IsMultiselect)
	assert.Equal(t, "Which service stores objects?", q.Question)
	assert.Equal(t, "Unknown", q.Topic)
	assert.Empty(t, q.DiscussionLink)
}

func TestParse_ScrapedBlock(t *testing.T) {
	questions, skipped := Parse(scrapedBlock)
	require.Len(t, questions, 1)
	assert.Empty(t, skipped)

	q := questions[0]
	assert.Equal(t, "12", q.ID)
	assert.Equal(t, "1", q.Topic)
	assert.Equal(t, "AB", q.CorrectAnswer, "suggested answer wins over the official one")
	assert.True(t, q.IsMultiselect)
	assert.Len(t, q.Options, 5)
	assert.Equal(t, "https://www.examtopics.com/discussions/amazon/view/12", q.DiscussionLink)
	assert.Equal(t, "A company needs durable storage.\nWhich solutions meet these requirements? (Choose two.)", q.Question)
}

func TestParse_MultiselectFromBodyOnly(t *testing.T) {
	block := strings.Replace(simpleBlock, "Which service stores objects?", "Pick storage services. (Choose three.)", 1)
	questions, _ := Parse(block)
	require.Len(t, questions, 1)
	assert.True(t, questions[0].IsMultiselect)
	assert.Equal(t, "C", questions[0].CorrectAnswer)
}

func TestParse_SkipsBadBlocks(t *testing.T) {
	noAnswer := strings.Replace(simpleBlock, "**Answer: C**", "", 1)
	oneOption := "## Exam X question 9 discussion\n\nQ?\n\nA. only\n\n**Answer: A**"
	doc := strings.Join([]string{
		"# Export header",
		simpleBlock,
		noAnswer,
		oneOption,
	}, "\n"+DefaultDelimiter+"\n")

	questions, skipped := Parse(doc)
	require.Len(t, questions, 1)
	assert.Equal(t, "7", questions[0].ID)

	require.Len(t, skipped, 3)
	assert.Equal(t, "no question heading", skipped[0].Reason)
	assert.Equal(t, "7", skipped[1].ID)
	assert.Equal(t, "no answer marker", skipped[1].Reason)
	assert.Equal(t, "9", skipped[2].ID)
	assert.Equal(t, "only 1 options", skipped[2].Reason)
	assert.Contains(t, skipped[2].String(), "question 9")
}

func TestParser_CustomDelimiter(t *testing.T) {
	doc := simpleBlock + "\n===\n" + strings.Replace(simpleBlock, "question 7", "question 8", 1)
	questions, skipped := NewParser("===").Parse(doc)
	assert.Empty(t, skipped)
	require.Len(t, questions, 2)
	assert.Equal(t, "8", questions[1].ID)
}
