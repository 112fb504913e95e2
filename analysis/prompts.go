package analysis

import "fmt"

// Kinds of extraction, used in logs, spans, metrics and Report.Degraded.
const (
	KindActionItems = "action_items"
	KindDecisions   = "decisions"
	KindTopics      = "key_topics"
	KindQuestions   = "open_questions"
	KindCommitments = "implicit_commitments"
	KindSummary     = "executive_summary"
	KindSentiment   = "sentiment"
	KindQuery       = "query"
)

const systemPrompt = "You analyze meeting transcripts and answer with the requested JSON only."

const transcriptTail = `

TRANSCRIPT:
%s

JSON OUTPUT:
`

const actionItemsPrompt = `%s

Analyze the following meeting transcript and extract ALL action items. An action item is a specific task
that someone needs to complete after the meeting.

For each action item, provide:
1. **description**: Clear, actionable description of the task
2. **owner**: Person responsible (extract from context like "John will...", "Can Sarah...", etc.)
3. **due_date**: Due date if mentioned (extract from phrases like "by Friday", "end of month", "next week")
4. **priority**: Estimated priority (high/medium/low) based on context and urgency
5. **context**: Relevant context or discussion that led to this action item
6. **confidence**: Your confidence score (0.0-1.0) in this extraction
7. **source_text**: The exact quote from the transcript that indicates this action item

Return ONLY a valid JSON array of action items. Do not include any explanatory text.`

const decisionsPrompt = `Analyze the following meeting transcript and extract all KEY DECISIONS that were made.

For each decision, provide:
1. **decision**: Clear statement of what was decided
2. **rationale**: Why this decision was made (if discussed)
3. **impact**: Potential impact or implications
4. **stakeholders**: People or teams affected by this decision
5. **source_text**: The exact quote from the transcript

Return ONLY a valid JSON array. No explanatory text.`

const topicsPrompt = `Analyze the following meeting transcript and identify the KEY TOPICS that were discussed.

For each topic, provide:
1. **topic**: Name of the topic
2. **summary**: Brief summary of the discussion (2-3 sentences)
3. **duration**: Estimated time spent on this topic (if discernible)
4. **participants**: Key participants in this discussion
5. **outcome**: What was resolved or next steps for this topic

Return ONLY a valid JSON array. No explanatory text.`

const questionsPrompt = `Analyze the following meeting transcript and identify OPEN QUESTIONS and UNRESOLVED ISSUES
that need follow-up.

For each open question/issue, provide:
1. **question**: The question or issue that remains open
2. **context**: Context or discussion around this question
3. **who_needs_to_answer**: Person or team who should address this
4. **urgency**: Urgency level (high/medium/low)
5. **source_text**: The exact quote from the transcript

Return ONLY a valid JSON array. No explanatory text.`

const commitmentsPrompt = `Analyze the following meeting transcript and identify IMPLICIT COMMITMENTS - phrases where
someone verbally commits to doing something but it wasn't formalized as an action item.

Look for phrases like:
- "I'll look into that"
- "Let me check"
- "I can take care of that"
- "I'll get back to you"
- "I'll follow up"

For each implicit commitment, provide:
1. **commitment**: What the person committed to do
2. **person**: Who made the commitment
3. **source_text**: The exact quote from the transcript
4. **confidence**: Your confidence score (0.0-1.0)

Return ONLY a valid JSON array. No explanatory text.`

const summaryPrompt = `%s

Create a concise EXECUTIVE SUMMARY of this meeting suitable for leadership review.

Provide the following in JSON format:
1. **overview**: 2-3 sentence overview of the meeting (what was discussed and why)
2. **key_outcomes**: List of 3-5 most important outcomes or takeaways
3. **critical_action_items**: Top 3-5 most critical action items with owners
4. **risks_or_blockers**: Any risks, concerns, or blockers mentioned
5. **next_meeting**: Information about next steps or follow-up meetings if mentioned

Keep the summary professional, concise (100-150 words for overview), and focused on
what executives need to know.

Return ONLY valid JSON. No explanatory text.`

const sentimentPrompt = `Analyze the overall SENTIMENT and TONE of this meeting.

Provide:
1. **overall_sentiment**: Overall sentiment (positive/neutral/negative)
2. **tone**: Tone of the meeting (collaborative/confrontational/productive/chaotic/etc.)
3. **engagement_level**: Perceived engagement level (high/medium/low)
4. **concerns**: Any notable concerns or tensions
5. **highlights**: Positive highlights or moments

Return ONLY valid JSON.`

const queryPrompt = `Based on the following meeting transcript, please answer this question:

QUESTION: %s

Provide a clear, concise answer based only on information in the transcript.
If the information is not in the transcript, say so.

TRANSCRIPT:
%s

ANSWER:
`

// buildPrompt returns the user prompt for an extraction kind.
func buildPrompt(kind, transcript string, meta *Metadata) string {
	var head string
	switch kind {
	case KindActionItems:
		head = fmt.Sprintf(actionItemsPrompt, BuildContext(meta))
	case KindDecisions:
		head = decisionsPrompt
	case KindTopics:
		head = topicsPrompt
	case KindQuestions:
		head = questionsPrompt
	case KindCommitments:
		head = commitmentsPrompt
	case KindSummary:
		head = fmt.Sprintf(summaryPrompt, BuildContext(meta))
	case KindSentiment:
		head = sentimentPrompt
	}
	return head + fmt.Sprintf(transcriptTail, transcript)
}

func fmtQuery(question, transcript string) string {
	return fmt.Sprintf(queryPrompt, question, transcript)
}
