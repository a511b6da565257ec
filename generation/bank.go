package generation

import (
	"context"
	"crypto/sha256"
	"fmt"
	"math/rand"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"paperforge-server/models"
	"paperforge-server/utils"
)

// Bank generates papers from a YAML question bank instead of a model. Used
// for offline/dev mode and as a deterministic fixture source.
type Bank struct {
	subjects map[string][]bankQuestion
}

type bankFile struct {
	Subjects []struct {
		Subject   string         `yaml:"subject"`
		Questions []bankQuestion `yaml:"questions"`
	} `yaml:"subjects"`
}

type bankQuestion struct {
	Text          string   `yaml:"text"`
	AnswerKey     string   `yaml:"answer_key"`
	Explanation   string   `yaml:"explanation"`
	Category      string   `yaml:"category"`
	BloomsLevel   string   `yaml:"blooms_level"`
	Unit          int      `yaml:"unit"`
	Options       []string `yaml:"options"`
	CorrectAnswer string   `yaml:"correct_answer"`
	Difficulty    string   `yaml:"difficulty"`
}

// LoadBank reads a question bank from a YAML file.
func LoadBank(path string) (*Bank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read question bank: %w", err)
	}
	return ParseBank(data)
}

// ParseBank decodes question bank YAML.
func ParseBank(data []byte) (*Bank, error) {
	var f bankFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse question bank: %w", err)
	}
	b := &Bank{subjects: make(map[string][]bankQuestion)}
	for _, s := range f.Subjects {
		key := strings.ToLower(strings.TrimSpace(s.Subject))
		if key == "" {
			continue
		}
		b.subjects[key] = append(b.subjects[key], s.Questions...)
	}
	if len(b.subjects) == 0 {
		return nil, fmt.Errorf("question bank contains no subjects")
	}
	return b, nil
}

// Generate fills each category quota from the bank with a seeded shuffle, so
// the same request yields the same paper and feedback reshuffles it.
func (b *Bank) Generate(ctx context.Context, req models.GenerationRequest, feedback string) ([]models.Question, error) {
	pool, ok := b.subjects[strings.ToLower(strings.TrimSpace(req.Subject))]
	if !ok {
		return nil, fmt.Errorf("no bank questions for subject %q", req.Subject)
	}

	seedStr := fmt.Sprintf("%s:%s:%d:%s", req.Subject, req.ExamType, req.TotalMarks(), feedback)
	digest := sha256.Sum256([]byte(seedStr))
	r := rand.New(rand.NewSource(utils.BytesToInt(digest[:])))

	byCategory := make(map[models.QuestionCategory][]bankQuestion)
	for _, q := range pool {
		byCategory[models.QuestionCategory(q.Category)] = append(byCategory[models.QuestionCategory(q.Category)], q)
	}

	var questions []models.Question
	for _, spec := range req.Categories {
		candidates := byCategory[spec.Category]
		if len(candidates) < spec.Count {
			return nil, fmt.Errorf("bank has %d %s questions for %q, need %d",
				len(candidates), spec.Category, req.Subject, spec.Count)
		}
		picked := make([]bankQuestion, len(candidates))
		copy(picked, candidates)
		r.Shuffle(len(picked), func(i, j int) {
			picked[i], picked[j] = picked[j], picked[i]
		})
		for _, q := range picked[:spec.Count] {
			questions = append(questions, models.Question{
				Text:           q.Text,
				AnswerKey:      q.AnswerKey,
				Explanation:    defaultString(q.Explanation, q.AnswerKey),
				Category:       spec.Category,
				CognitiveLevel: defaultString(q.BloomsLevel, defaultBloomLevel(spec.Category)),
				Marks:          spec.MarksEach,
				Unit:           q.Unit,
				Options:        q.Options,
				CorrectAnswer:  q.CorrectAnswer,
				Difficulty:     q.Difficulty,
			})
		}
	}
	assignProvenance(questions, req.Provenance)
	return questions, nil
}

func defaultString(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func defaultBloomLevel(cat models.QuestionCategory) string {
	switch cat {
	case models.CategoryMCQ:
		return "Remember"
	case models.CategoryShort:
		return "Understand"
	case models.CategoryMedium:
		return "Apply"
	default:
		return "Analyze"
	}
}
