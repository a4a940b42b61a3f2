package assistant

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"google.golang.org/genai"
)

// CropRecommendation is one crop in a crop calendar reply.
type CropRecommendation struct {
	CropName         string   `json:"crop_name"`
	SowingTime       string   `json:"sowing_time"`
	HarvestingTime   string   `json:"harvesting_time"`
	KeyTips          []string `json:"key_tips"`
	MarketDemand     string   `json:"market_demand"`
	WaterRequirement string   `json:"water_requirement"`
	SoilSuitability  string   `json:"soil_suitability"`
}

// CropCalendar is the JSON reply for KindCropCalendar.
type CropCalendar struct {
	Summary         string               `json:"summary"`
	Recommendations []CropRecommendation `json:"recommendations"`
}

var cropRecommendationFields = []string{
	"crop_name", "sowing_time", "harvesting_time", "key_tips",
	"market_demand", "water_requirement", "soil_suitability",
}

var cropCalendarSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"summary": {
			Type:        genai.TypeString,
			Description: "A brief, encouraging summary (2-3 sentences) explaining why these crops are a good choice for the given location and season.",
		},
		"recommendations": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"crop_name":       {Type: genai.TypeString},
					"sowing_time":     {Type: genai.TypeString},
					"harvesting_time": {Type: genai.TypeString},
					"key_tips": {
						Type:  genai.TypeArray,
						Items: &genai.Schema{Type: genai.TypeString},
					},
					"market_demand":     {Type: genai.TypeString, Description: "Briefly describe the market demand."},
					"water_requirement": {Type: genai.TypeString, Description: "Describe the water needs (Low, Moderate, High)."},
					"soil_suitability":  {Type: genai.TypeString, Description: "Describe the best soil type."},
				},
				Required: cropRecommendationFields,
			},
		},
	},
	Required: []string{"summary", "recommendations"},
}

var codeFenceRe = regexp.MustCompile("(?s)^```(?:json)?\\s*(.*?)\\s*```$")

// StripCodeFence removes a surrounding ``` or ```json fence, if any.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if m := codeFenceRe.FindStringSubmatch(s); len(m) > 1 {
		return m[1]
	}
	return s
}

// ParseCropCalendar decodes and validates a crop calendar reply.
func ParseCropCalendar(raw string) (*CropCalendar, error) {
	text := StripCodeFence(raw)
	var cal CropCalendar
	if err := json.Unmarshal([]byte(text), &cal); err != nil {
		return nil, fmt.Errorf("parse crop calendar json: %w (raw: %s)", err, truncate(text, 200))
	}
	if err := ValidateCropCalendar(&cal); err != nil {
		return nil, err
	}
	return &cal, nil
}

// ValidateCropCalendar checks that every required field is present.
func ValidateCropCalendar(cal *CropCalendar) error {
	if cal == nil {
		return fmt.Errorf("crop calendar is nil")
	}
	if strings.TrimSpace(cal.Summary) == "" {
		return fmt.Errorf("crop calendar: missing summary")
	}
	if len(cal.Recommendations) == 0 {
		return fmt.Errorf("crop calendar: no recommendations")
	}
	for i, r := range cal.Recommendations {
		missing := ""
		switch {
		case strings.TrimSpace(r.CropName) == "":
			missing = "crop_name"
		case strings.TrimSpace(r.SowingTime) == "":
			missing = "sowing_time"
		case strings.TrimSpace(r.HarvestingTime) == "":
			missing = "harvesting_time"
		case len(r.KeyTips) == 0:
			missing = "key_tips"
		case strings.TrimSpace(r.MarketDemand) == "":
			missing = "market_demand"
		case strings.TrimSpace(r.WaterRequirement) == "":
			missing = "water_requirement"
		case strings.TrimSpace(r.SoilSuitability) == "":
			missing = "soil_suitability"
		}
		if missing != "" {
			return fmt.Errorf("crop calendar: recommendation %d: missing %s", i, missing)
		}
	}
	return nil
}
