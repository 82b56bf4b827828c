package steps

import (
	"fmt"
	"strings"
)

// Analysis types accepted by DocumentAnalysisPrompt and AnalyzeDocument.
const (
	AnalysisSummary   = "summary"
	AnalysisEntities  = "entities"
	AnalysisTopics    = "topics"
	AnalysisSentiment = "sentiment"
)

// RAGQueryPrompt builds a grounded question-answering prompt from retrieved
// context. The model is told to answer only from the provided chunks.
func RAGQueryPrompt(query, context string) string {
	var b strings.Builder
	b.WriteString("Answer the question using only the context below. ")
	b.WriteString("If the context does not contain the answer, say so.\n\n")
	b.WriteString("Context:\n")
	b.WriteString(context)
	b.WriteString("\n\nQuestion: ")
	b.WriteString(query)
	return b.String()
}

// DocumentAnalysisPrompt builds an analysis prompt for one of the known
// analysis types. Unknown types fall back to a general analysis request.
func DocumentAnalysisPrompt(content, analysisType string) string {
	var instruction string
	switch analysisType {
	case AnalysisSummary:
		instruction = "Provide a concise summary of the key points in this document."
	case AnalysisEntities:
		instruction = "List the named entities (people, organizations, places, products) mentioned in this document."
	case AnalysisTopics:
		instruction = "Identify the main topics and themes covered in this document."
	case AnalysisSentiment:
		instruction = "Describe the overall sentiment and tone of this document."
	default:
		instruction = "Analyze this document and report anything notable."
	}
	return fmt.Sprintf("%s\n\nDocument:\n%s", instruction, content)
}

func analysisPrompt(topic, context string) string {
	return fmt.Sprintf(
		"Analyze the following search results about %q. Identify the key findings, "+
			"points of agreement, and any contradictions between sources.\n\n%s",
		topic, context)
}

func summaryPrompt(analysis string) string {
	return fmt.Sprintf(
		"Condense the following analysis into a short executive summary of at most "+
			"three sentences.\n\n%s",
		analysis)
}

func comparisonPrompt(topics []string, sections []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Compare and contrast the following topics: %s.\n", strings.Join(topics, ", "))
	b.WriteString("Base the comparison only on the retrieved material below.\n\n")
	for i, section := range sections {
		fmt.Fprintf(&b, "## %s\n%s\n\n", topics[i], section)
	}
	b.WriteString("Produce a structured comparison covering similarities, differences, and gaps.")
	return b.String()
}

func extractionPrompt(content, schema string) string {
	return fmt.Sprintf(
		"Extract structured data from the text below. Respond with a single JSON "+
			"object matching this schema, and nothing else:\n%s\n\nText:\n%s",
		schema, content)
}

func followupPrompt(query, answer string, count int) string {
	return fmt.Sprintf(
		"A user asked: %q\nThey received this answer:\n%s\n\n"+
			"Suggest %d concise follow-up questions the user might ask next, one per line, "+
			"without numbering.",
		query, answer, count)
}
