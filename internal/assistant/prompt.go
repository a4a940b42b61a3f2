package assistant

import (
	"fmt"
	"strings"
)

const farmingInfoPrompt = `Explain the agricultural technique %q in detail for an Indian farmer. Your explanation should be simple, comprehensive, and actionable.

Structure your response with the following sections using markdown headings:
1.  **What is it?** (Detailed introduction)
2.  **Key Benefits for Indian Farmers:** (Focus on small to medium-scale farms, mentioning specific benefits like water conservation, soil health, etc.)
3.  **How it Increases Yield and Profit:** (Provide concrete examples and potential percentage increases. Discuss cost vs. benefit.)
4.  **Challenges and Requirements:** (What are the initial costs, knowledge, and labor requirements?)
5.  **Step-by-Step Guide to Get Started:** (Provide simple, practical steps for a farmer to begin implementing this technique.)
6.  **Region-Specific Advice:** (Mention if this technique is particularly suitable for certain regions or crops in India.)

IMPORTANT: Respond entirely in %s.`

const communityQAPrompt = `Act as a senior Indian agricultural scientist and expert. A farmer has asked the following question: %q.

Provide a helpful, detailed, and practical answer. Use simple language that is easy to understand.
Structure your answer with clear headings and bullet points if necessary.
Your goal is to provide actionable advice.
IMPORTANT: Respond entirely in %s.`

const cropCalendarPrompt = `Act as an expert Indian agronomist. For the Indian state of %q during the %q season, provide a list of 3-4 suitable and profitable crops for cultivation.

First, write a brief summary explaining the rationale behind the recommendations for this specific time and place.

Then, for each crop, provide the following details:
- crop_name: The name of the crop.
- sowing_time: The ideal period for sowing.
- harvesting_time: The typical period for harvesting.
- key_tips: A list of 2-3 essential cultivation tips.
- market_demand: A brief note on its market potential.
- water_requirement: Its water needs (Low, Moderate, High).
- soil_suitability: The ideal soil type.

IMPORTANT: First, generate the analysis in English to ensure accuracy. Then, translate all the string values in the final JSON object to %s before responding. The entire JSON response must be in %s.
Your FINAL output must be a valid JSON object matching the defined schema. Do not add any text before or after it.`

const chatSystemPrompt = `You are a friendly and helpful AI assistant for Indian farmers named "AgriFriend".
- Your goal is to provide concise, easy-to-understand, and actionable advice on all aspects of farming.
- Always be polite and encouraging.
- Keep your answers relatively short unless the user asks for details.
- Respond entirely in %s.`

// BuildPrompt renders the user prompt text for p. Chat prompts are just the
// message; their instructions go in ChatSystemInstruction.
func BuildPrompt(p Prompt) (string, error) {
	if err := p.Validate(); err != nil {
		return "", err
	}
	lang := LanguageName(p.Language)
	switch p.Kind {
	case KindFarmingInfo:
		return fmt.Sprintf(farmingInfoPrompt, strings.TrimSpace(p.Topic), lang), nil
	case KindCommunityQA:
		return fmt.Sprintf(communityQAPrompt, strings.TrimSpace(p.Question), lang), nil
	case KindCropCalendar:
		return fmt.Sprintf(cropCalendarPrompt, strings.TrimSpace(p.State), strings.TrimSpace(p.Season), lang, lang), nil
	case KindChat:
		return strings.TrimSpace(p.Message), nil
	}
	return "", fmt.Errorf("unknown kind %q", p.Kind)
}

// ChatSystemInstruction is the persona given to chat sessions.
func ChatSystemInstruction(language string) string {
	return fmt.Sprintf(chatSystemPrompt, LanguageName(language))
}
