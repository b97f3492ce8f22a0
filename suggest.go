package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// errOpenAINotConfigured is returned when no API key is set.
var errOpenAINotConfigured = errors.New("openai api key not configured")

// suggestRequest is the request body for POST /api/foods/suggest.
type suggestRequest struct {
	Name string `json:"name" binding:"required,notblank"`
}

// foodSuggestion is a per-portion nutrition estimate in catalog shape, so a
// client can submit it as a food without reshaping.
type foodSuggestion struct {
	Name               string  `json:"name"`
	CaloriesPerPortion float64 `json:"calories_per_portion"`
	ProteinG           float64 `json:"protein_g"`
	CarbsG             float64 `json:"carbs_g"`
	FatG               float64 `json:"fat_g"`
	FiberG             float64 `json:"fiber_g"`
	SugarG             float64 `json:"sugar_g"`
	Unit               string  `json:"unit"`
	GramsPerUnit       float64 `json:"grams_per_unit"`
	Confidence         int     `json:"confidence"`
}

// normalize coerces the unit into the enumeration and clamps negatives.
func (s *foodSuggestion) normalize() {
	if !validUnits[s.Unit] {
		s.Unit = defaultUnit
	}
	for _, v := range []*float64{&s.CaloriesPerPortion, &s.ProteinG, &s.CarbsG, &s.FatG, &s.FiberG, &s.SugarG} {
		*v = max(*v, 0)
	}
	if s.GramsPerUnit <= 0 {
		s.GramsPerUnit = defaultGramsPerUnit
	}
	s.Confidence = min(max(s.Confidence, 1), 5)
}

const foodSystemPrompt = `You are a nutrition assistant. Estimate nutrition for ONE portion of the named food and return a JSON object with:
- "name" (string, cleaned up title case)
- "calories_per_portion" (number, kcal for one portion)
- "protein_g", "carbs_g", "fat_g", "fiber_g", "sugar_g" (numbers, grams for one portion)
- "unit" (one of: piece, bowl, cup, ml, bar, can; the natural serving unit)
- "grams_per_unit" (number, weight of one portion in grams)
- "confidence" (integer 1-5: 5=exact known nutritional data, 3=reasonable estimate, 1=very uncertain)

Always provide your best estimate for regional dishes. Only return {"error": "unrecognized"} if the input is not food at all.
Return only valid JSON, no explanation.`

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIRequest struct {
	Model          string            `json:"model"`
	Messages       []openAIMessage   `json:"messages"`
	Temperature    float64           `json:"temperature"`
	ResponseFormat map[string]string `json:"response_format"`
}

// callOpenAI sends a chat completions request and returns the content of the
// first choice.
func callOpenAI(ctx context.Context, baseURL, apiKey string, messages []openAIMessage) (string, error) {
	if apiKey == "" {
		return "", errOpenAINotConfigured
	}

	bodyBytes, err := json.Marshal(openAIRequest{
		Model:          "gpt-4o-mini",
		Messages:       messages,
		ResponseFormat: map[string]string{"type": "json_object"},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/v1/chat/completions", bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	client := &http.Client{Timeout: 15 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("openai returned status %d: %s", resp.StatusCode, respBytes)
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(respBytes, &result); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	if len(result.Choices) == 0 {
		return "", errors.New("no choices in response")
	}
	return result.Choices[0].Message.Content, nil
}

// parseSuggestion decodes the model output. ok is false when the model did
// not recognize the input as food.
func parseSuggestion(content string) (s foodSuggestion, ok bool, err error) {
	var raw struct {
		foodSuggestion
		Error string `json:"error"`
	}
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return s, false, fmt.Errorf("parse suggestion: %w", err)
	}
	if raw.Error != "" || raw.Name == "" {
		return s, false, nil
	}
	s = raw.foodSuggestion
	s.normalize()
	return s, true, nil
}

// suggestFood estimates per-portion nutrition for a food name.
// POST /api/foods/suggest. Responds {"error": "unrecognized"} with 200 when
// the name is not a food.
func (h *Handler) suggestFood(c *gin.Context) {
	var req suggestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiError(c, http.StatusBadRequest, bindErrorMessage(err))
		return
	}
	if h.openAIKey == "" {
		apiError(c, http.StatusServiceUnavailable, "nutrition suggestions are not configured")
		return
	}

	content, err := callOpenAI(c.Request.Context(), h.openAIBaseURL, h.openAIKey, []openAIMessage{
		{Role: "system", Content: foodSystemPrompt},
		{Role: "user", Content: req.Name},
	})
	if err != nil {
		slog.ErrorContext(c, "openai request failed", "error", err)
		apiError(c, http.StatusInternalServerError, "openai request failed")
		return
	}

	s, ok, err := parseSuggestion(content)
	if err != nil {
		slog.ErrorContext(c, "openai response unusable", "error", err)
		apiError(c, http.StatusInternalServerError, "openai request failed")
		return
	}
	if !ok {
		c.JSON(http.StatusOK, gin.H{"error": "unrecognized"})
		return
	}
	c.JSON(http.StatusOK, s)
}
