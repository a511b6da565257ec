package generation

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"google.golang.org/genai"

	"paperforge-server/models"
)

// Gemini generates questions through the Gemini API. It also serves as the
// free-text summarizer for analytics.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini builds a Gemini generator.
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &Gemini{client: client, model: model}, nil
}

// Generate asks the model for a full question set and parses its JSON reply.
func (g *Gemini) Generate(ctx context.Context, req models.GenerationRequest, feedback string) ([]models.Question, error) {
	prompt := BuildPrompt(req, feedback)
	result, err := g.client.Models.GenerateContent(ctx, g.model,
		genai.Text(prompt),
		&genai.GenerateContentConfig{
			ResponseMIMEType: "application/json",
		},
	)
	if err != nil {
		return nil, fmt.Errorf("gemini generation failed: %w", err)
	}
	questions, err := ParseQuestions(result.Text(), req)
	if err != nil {
		return nil, err
	}
	log.Printf("Gemini returned %d questions for %s %s", len(questions), req.Subject, req.ExamType)
	return questions, nil
}

// Analyze runs a plain-text prompt and returns the model's reply.
func (g *Gemini) Analyze(ctx context.Context, prompt string) (string, error) {
	result, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("gemini analysis failed: %w", err)
	}
	text := strings.TrimSpace(result.Text())
	if text == "" {
		return "", fmt.Errorf("gemini returned an empty response")
	}
	return text, nil
}

type generatedQuestion struct {
	Text          string   `json:"question_text"`
	AnswerKey     string   `json:"answer_key"`
	Explanation   string   `json:"explanation"`
	Category      string   `json:"question_type"`
	BloomsLevel   string   `json:"blooms_level"`
	Marks         int      `json:"marks"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
	Difficulty    string   `json:"difficulty"`
	Unit          int      `json:"unit"`
}

// ParseQuestions decodes the model output into questions, fills defaults
// the model tends to omit, and stamps provenance by position.
func ParseQuestions(raw string, req models.GenerationRequest) ([]models.Question, error) {
	raw = stripCodeFence(raw)

	var decoded []generatedQuestion
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		// Some replies wrap the array in an object.
		var wrapper struct {
			Questions []generatedQuestion `json:"questions"`
		}
		if werr := json.Unmarshal([]byte(raw), &wrapper); werr != nil || len(wrapper.Questions) == 0 {
			return nil, fmt.Errorf("could not decode model output as questions: %w", err)
		}
		decoded = wrapper.Questions
	}
	if len(decoded) == 0 {
		return nil, fmt.Errorf("model returned no questions")
	}

	marksByCategory := make(map[models.QuestionCategory]int, len(req.Categories))
	for _, spec := range req.Categories {
		marksByCategory[spec.Category] = spec.MarksEach
	}

	questions := make([]models.Question, 0, len(decoded))
	for i, d := range decoded {
		if strings.TrimSpace(d.Text) == "" {
			return nil, fmt.Errorf("question %d has empty text", i+1)
		}
		cat := models.QuestionCategory(d.Category)
		if _, known := marksByCategory[cat]; !known {
			return nil, fmt.Errorf("question %d has unrequested type %q", i+1, d.Category)
		}
		q := models.Question{
			Text:           strings.TrimSpace(d.Text),
			AnswerKey:      strings.TrimSpace(d.AnswerKey),
			Explanation:    strings.TrimSpace(d.Explanation),
			Category:       cat,
			CognitiveLevel: d.BloomsLevel,
			Marks:          d.Marks,
			Options:        d.Options,
			CorrectAnswer:  d.CorrectAnswer,
			Difficulty:     d.Difficulty,
			Unit:           d.Unit,
		}
		if q.Marks == 0 {
			q.Marks = marksByCategory[cat]
		}
		if q.Explanation == "" {
			q.Explanation = q.AnswerKey
		}
		questions = append(questions, q)
	}
	assignProvenance(questions, req.Provenance)
	return questions, nil
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if after, ok := strings.CutPrefix(s, "```json"); ok {
		s = after
	} else if after, ok := strings.CutPrefix(s, "```"); ok {
		s = after
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
