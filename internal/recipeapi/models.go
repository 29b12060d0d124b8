package recipeapi

import (
	"fmt"
	"io"
	"strings"

	"github.com/tidwall/gjson"
)

// Recipe is a generated recipe as returned by the service
type Recipe struct {
	Title       string   `json:"title"`
	Ingredients []string `json:"ingredients"`
	Steps       []string `json:"steps"`
}

// Clone returns a deep copy so callers can hand recipes out without sharing
// the backing arrays.
func (r *Recipe) Clone() *Recipe {
	if r == nil {
		return nil
	}
	return &Recipe{
		Title:       r.Title,
		Ingredients: append([]string(nil), r.Ingredients...),
		Steps:       append([]string(nil), r.Steps...),
	}
}

// DetectResult is the body of a successful detect-ingredients call
type DetectResult struct {
	DetectedIngredients []string `json:"detected_ingredients"`
}

// ScanResult is the body of a successful scan-ingredients call
type ScanResult struct {
	DetectedIngredients []string `json:"detected_ingredients"`
	Recipe              *Recipe  `json:"recipe"`
}

// GenerateRequest is the JSON body sent to generate-recipe
type GenerateRequest struct {
	Ingredients []string `json:"ingredients"`
}

// ErrorResponse is the body the service sends with non-2xx statuses
type ErrorResponse struct {
	Error string `json:"error"`
}

// Image is anything that can be uploaded as the multipart "image" field.
// capture.Photo satisfies it.
type Image interface {
	Open() (io.ReadCloser, error)
}

// parseDetect validates and decodes a detect-ingredients body.
func parseDetect(body []byte) (*DetectResult, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("body is not valid JSON")
	}
	detected, err := stringArray(gjson.GetBytes(body, "detected_ingredients"), "detected_ingredients")
	if err != nil {
		return nil, err
	}
	return &DetectResult{DetectedIngredients: detected}, nil
}

// parseRecipe validates and decodes a recipe object.
func parseRecipe(obj gjson.Result, prefix string) (*Recipe, error) {
	if !obj.IsObject() {
		return nil, fmt.Errorf("%s is not an object", strings.TrimSuffix(prefix, "."))
	}

	title := obj.Get("title")
	if title.Type != gjson.String {
		return nil, fmt.Errorf("missing %stitle", prefix)
	}
	if strings.TrimSpace(title.Str) == "" {
		return nil, fmt.Errorf("empty %stitle", prefix)
	}

	ingredients, err := stringArray(obj.Get("ingredients"), prefix+"ingredients")
	if err != nil {
		return nil, err
	}
	steps, err := stringArray(obj.Get("steps"), prefix+"steps")
	if err != nil {
		return nil, err
	}

	return &Recipe{
		Title:       title.Str,
		Ingredients: ingredients,
		Steps:       steps,
	}, nil
}

// parseGenerate validates and decodes a generate-recipe body.
func parseGenerate(body []byte) (*Recipe, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("body is not valid JSON")
	}
	return parseRecipe(gjson.ParseBytes(body), "")
}

// parseScan validates and decodes a scan-ingredients body.
func parseScan(body []byte) (*ScanResult, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("body is not valid JSON")
	}
	root := gjson.ParseBytes(body)

	detected, err := stringArray(root.Get("detected_ingredients"), "detected_ingredients")
	if err != nil {
		return nil, err
	}
	recipe, err := parseRecipe(root.Get("recipe"), "recipe.")
	if err != nil {
		return nil, err
	}

	return &ScanResult{DetectedIngredients: detected, Recipe: recipe}, nil
}

// parseErrorMessage extracts the "error" field from a failure body, if any.
func parseErrorMessage(body []byte) string {
	if !gjson.ValidBytes(body) {
		return ""
	}
	msg := gjson.GetBytes(body, "error")
	if msg.Type != gjson.String {
		return ""
	}
	return strings.TrimSpace(msg.Str)
}

// stringArray requires r to be an array of strings.
func stringArray(r gjson.Result, field string) ([]string, error) {
	if !r.Exists() {
		return nil, fmt.Errorf("missing %s", field)
	}
	if !r.IsArray() {
		return nil, fmt.Errorf("%s is not an array", field)
	}

	items := r.Array()
	out := make([]string, 0, len(items))
	for i, item := range items {
		if item.Type != gjson.String {
			return nil, fmt.Errorf("%s[%d] is not a string", field, i)
		}
		out = append(out, item.Str)
	}
	return out, nil
}
