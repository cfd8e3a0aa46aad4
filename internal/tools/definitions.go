package tools

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// Tool names exposed over MCP.
const (
	ToolGetStudentData        = "get_student_data"
	ToolSearchArticles        = "search_articles"
	ToolGetArticleContent     = "get_article_content"
	ToolAddNote               = "add_note"
	ToolSendChallenge         = "send_challenge"
	ToolUpdateReadingProgress = "update_reading_progress"
	ToolSaveGeneratedQuiz     = "save_generated_quiz"
)

// Definitions returns the MCP tool definitions for the learning platform.
// The schemas mirror the parameters accepted by the backend conversation
// profile endpoint.
func Definitions() []mcp.Tool {
	return []mcp.Tool{
		{
			Name:        ToolGetStudentData,
			Description: "Retrieve the student's data from the modular profile API",
			InputSchema: mcp.ToolInputSchema{
				Type: "object",
				Properties: map[string]any{
					"user_profile":           map[string]any{"type": "boolean", "description": "Include the user profile"},
					"activitati_recente":     map[string]any{"type": "integer", "minimum": 1, "maximum": 10, "description": "Number of recent activities"},
					"profil_comportamental":  map[string]any{"type": "boolean", "description": "Include the behavioral profile"},
					"progres_teorie":         map[string]any{"type": "boolean", "description": "Include theory progress"},
					"analiza_lacunelor":      map[string]any{"type": "boolean", "description": "Include the knowledge gap analysis"},
					"utilizatori_compatibili": map[string]any{"type": "integer", "minimum": 1, "maximum": 10, "description": "Number of compatible users for peer matching"},
					"materie":                map[string]any{"type": "integer", "description": "Subject ID used for filtering"},
					"only": map[string]any{"type": "string", "enum": []string{
						"a_simulat_examenul", "are_lacune_de_clarificat", "a_citit_materia",
						"s_a_testat_pe_lectie_capitol", "a_notat_la_lectii", "are_provocari_sustinute",
						"este_in_eroare_la",
					}},
					"focus":           map[string]any{"type": "string", "enum": []string{"toate", "judet", "an_admitere", "judet_si_an"}},
					"instructiuni_llm": map[string]any{"type": "boolean", "description": "Rewrite the data as instructions for an LLM"},
					"all_modules":     map[string]any{"type": "boolean", "description": "Include every available module"},
				},
				Required: []string{},
			},
		},
		{
			Name:        ToolSearchArticles,
			Description: "Search articles and lessons with fuzzy title matching",
			InputSchema: mcp.ToolInputSchema{
				Type: "object",
				Properties: map[string]any{
					"query": map[string]any{"type": "string", "description": "Search term"},
					"limit": map[string]any{"type": "integer", "minimum": 1, "maximum": 20, "default": 10},
				},
				Required: []string{"query"},
			},
		},
		{
			Name:        ToolGetArticleContent,
			Description: "Fetch a lesson or article's content, paginated at 5000 words per page",
			InputSchema: mcp.ToolInputSchema{
				Type: "object",
				Properties: map[string]any{
					"article_id": map[string]any{"type": "integer", "description": "Article ID"},
					"page":       map[string]any{"type": "integer", "minimum": 1, "default": 1, "description": "Page number"},
				},
				Required: []string{"article_id"},
			},
		},
		{
			Name:        ToolAddNote,
			Description: "Attach a note to an article or lesson",
			InputSchema: mcp.ToolInputSchema{
				Type: "object",
				Properties: map[string]any{
					"article_id":   map[string]any{"type": "integer", "description": "Article ID"},
					"note_content": map[string]any{"type": "string", "description": "Note text"},
				},
				Required: []string{"article_id", "note_content"},
			},
		},
		{
			Name:        ToolSendChallenge,
			Description: "Send a quiz challenge to another user",
			InputSchema: mcp.ToolInputSchema{
				Type: "object",
				Properties: map[string]any{
					"to_user_id":       map[string]any{"type": "integer", "description": "ID of the user to challenge"},
					"subject_grile_id": map[string]any{"type": "integer", "description": "Subject ID for the challenge"},
					"nr_questions":     map[string]any{"type": "integer", "minimum": 5, "maximum": 30, "default": 10},
					"message":          map[string]any{"type": "string", "description": "Optional message for the challenge"},
				},
				Required: []string{"to_user_id", "subject_grile_id"},
			},
		},
		{
			Name:        ToolUpdateReadingProgress,
			Description: "Update reading progress for an article",
			InputSchema: mcp.ToolInputSchema{
				Type: "object",
				Properties: map[string]any{
					"article_id": map[string]any{"type": "integer", "description": "Article ID"},
					"progress":   map[string]any{"type": "integer", "minimum": 0, "maximum": 100, "description": "Percentage read (0-100)"},
					"pages_read": map[string]any{"type": "array", "items": map[string]any{"type": "integer"}, "description": "Pages already read"},
				},
				Required: []string{"article_id", "progress"},
			},
		},
		{
			Name:        ToolSaveGeneratedQuiz,
			Description: "Persist LLM-generated quiz questions",
			InputSchema: mcp.ToolInputSchema{
				Type: "object",
				Properties: map[string]any{
					"article_id":       map[string]any{"type": "integer", "description": "Article the quiz was generated from"},
					"subject_grile_id": map[string]any{"type": "integer", "description": "Question bank category ID"},
					"model":            map[string]any{"type": "string", "description": "LLM model used for generation"},
					"questions": map[string]any{
						"type":     "array",
						"maxItems": 10,
						"items": map[string]any{
							"type": "object",
							"properties": map[string]any{
								"title":          map[string]any{"type": "string", "description": "Question text"},
								"options":        map[string]any{"type": "array", "items": map[string]any{"type": "string"}, "minItems": 4, "maxItems": 4},
								"correct_answer": map[string]any{"type": "integer", "minimum": 1, "maximum": 4},
								"explanation":    map[string]any{"type": "string", "description": "Explanation of the correct answer"},
							},
							"required": []string{"title", "options", "correct_answer", "explanation"},
						},
					},
				},
				Required: []string{"article_id", "subject_grile_id", "model", "questions"},
			},
		},
	}
}
