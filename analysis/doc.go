// Package analysis turns a meeting transcript into a Report: attributed
// action items, decisions, key topics, open questions, implicit
// commitments, an executive summary and the meeting's sentiment.
//
// Each extraction is a single prompt to an llm.Completer. Analyze issues
// them concurrently; an extraction that fails degrades to its empty value
// so one bad model reply never loses the rest of the report.
package analysis
