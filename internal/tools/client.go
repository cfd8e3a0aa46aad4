package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"remotemcp/pkg/logging"
)

const profileEndpoint = "/profile_for_conversation.php"

// UserContext identifies the end user a tool call runs on behalf of. The
// backend receives both the user ID and the backend-issued JWT.
type UserContext struct {
	UserID   string
	APIToken string
}

// Result is the envelope wrapped around every successful tool call.
type Result struct {
	Tool    string          `json:"tool"`
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
}

// Client calls the learning platform's conversation profile endpoint. Every
// tool routes to the same PHP endpoint: the student data query as a GET with
// module flags, the action tools as form POSTs with a per-tool flag in the
// query string.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a downstream API client. baseURL is the internal API
// root, without a trailing slash.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Call executes the named tool with the given arguments on behalf of user.
func (c *Client) Call(ctx context.Context, user UserContext, toolName string, args map[string]any) (*Result, error) {
	query := url.Values{}
	query.Set("user_id", user.UserID)
	query.Set("jwt_token", user.APIToken)

	var req *http.Request
	var err error

	switch toolName {
	case ToolGetStudentData:
		for key, value := range args {
			if value == nil {
				continue
			}
			query.Set(key, formValue(value))
		}
		req, err = http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+profileEndpoint+"?"+query.Encode(), nil)

	case ToolSearchArticles, ToolGetArticleContent, ToolAddNote,
		ToolSendChallenge, ToolUpdateReadingProgress, ToolSaveGeneratedQuiz:
		// Action tools carry their flag in the query string and their
		// arguments as a form body.
		query.Set(toolName, "1")
		form, formErr := actionForm(toolName, args)
		if formErr != nil {
			return nil, formErr
		}
		req, err = http.NewRequestWithContext(ctx, http.MethodPost,
			c.baseURL+profileEndpoint+"?"+query.Encode(), strings.NewReader(form.Encode()))

	default:
		return nil, fmt.Errorf("unknown tool %q", toolName)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", toolName, err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", "RemoteMCP/1.0")

	logging.Debug("Tools", "Calling %s for user %s", toolName, user.UserID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tool execution failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("tool execution failed: API returned status %d", resp.StatusCode)
	}

	var data json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("tool execution failed: %w", err)
	}

	return &Result{Tool: toolName, Success: true, Data: data}, nil
}

// actionForm builds the form body for an action tool, applying the same
// defaults the tool schemas advertise.
func actionForm(toolName string, args map[string]any) (url.Values, error) {
	form := url.Values{}

	switch toolName {
	case ToolSearchArticles:
		query, ok := args["query"]
		if !ok {
			return nil, fmt.Errorf("%s: query is required", toolName)
		}
		form.Set("query", formValue(query))
		form.Set("limit", formValueOr(args, "limit", "10"))

	case ToolGetArticleContent:
		articleID, ok := args["article_id"]
		if !ok {
			return nil, fmt.Errorf("%s: article_id is required", toolName)
		}
		form.Set("article_id", formValue(articleID))
		form.Set("page", formValueOr(args, "page", "1"))

	case ToolAddNote:
		articleID, ok := args["article_id"]
		if !ok {
			return nil, fmt.Errorf("%s: article_id is required", toolName)
		}
		noteContent, ok := args["note_content"]
		if !ok {
			return nil, fmt.Errorf("%s: note_content is required", toolName)
		}
		form.Set("article_id", formValue(articleID))
		form.Set("note_content", formValue(noteContent))

	case ToolSendChallenge:
		toUserID, ok := args["to_user_id"]
		if !ok {
			return nil, fmt.Errorf("%s: to_user_id is required", toolName)
		}
		subjectID, ok := args["subject_grile_id"]
		if !ok {
			return nil, fmt.Errorf("%s: subject_grile_id is required", toolName)
		}
		form.Set("to_user_id", formValue(toUserID))
		form.Set("subject_grile_id", formValue(subjectID))
		form.Set("nr_questions", formValueOr(args, "nr_questions", "10"))
		if message, ok := args["message"]; ok && formValue(message) != "" {
			form.Set("message", formValue(message))
		}

	case ToolUpdateReadingProgress:
		articleID, ok := args["article_id"]
		if !ok {
			return nil, fmt.Errorf("%s: article_id is required", toolName)
		}
		progress, ok := args["progress"]
		if !ok {
			return nil, fmt.Errorf("%s: progress is required", toolName)
		}
		form.Set("article_id", formValue(articleID))
		form.Set("progress", formValue(progress))
		if pagesRead, ok := args["pages_read"]; ok {
			encoded, err := json.Marshal(pagesRead)
			if err != nil {
				return nil, fmt.Errorf("%s: invalid pages_read: %w", toolName, err)
			}
			form.Set("pages_read", string(encoded))
		}

	case ToolSaveGeneratedQuiz:
		for _, field := range []string{"article_id", "subject_grile_id", "model", "questions"} {
			if _, ok := args[field]; !ok {
				return nil, fmt.Errorf("%s: %s is required", toolName, field)
			}
		}
		form.Set("article_id", formValue(args["article_id"]))
		form.Set("subject_grile_id", formValue(args["subject_grile_id"]))
		form.Set("model", formValue(args["model"]))
		encoded, err := json.Marshal(args["questions"])
		if err != nil {
			return nil, fmt.Errorf("%s: invalid questions: %w", toolName, err)
		}
		form.Set("questions", string(encoded))
	}

	return form, nil
}

// formValue renders a JSON-decoded argument as a form field. Whole-number
// floats render without a decimal point, matching what the backend expects
// for integer parameters.
func formValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case bool:
		if t {
			return "1"
		}
		return "0"
	case float64:
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%g", t)
	case int:
		return fmt.Sprintf("%d", t)
	case json.Number:
		return t.String()
	default:
		return fmt.Sprintf("%v", t)
	}
}

func formValueOr(args map[string]any, key, fallback string) string {
	if v, ok := args[key]; ok && v != nil {
		return formValue(v)
	}
	return fallback
}
