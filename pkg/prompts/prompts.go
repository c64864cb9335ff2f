package prompts

import "strings"

// Content ratings accepted by the generator.
const (
	RatingG    = "G"
	RatingPG   = "PG"
	RatingPG13 = "PG13"
	RatingR    = "R"
)

// SceneSystemPrompt describes the scene schema the model must return.
const SceneSystemPrompt = `You are the game master of a real-time text adventure. Given a situation, you generate one SCENE: a single timed decision point for the player.

### Structure
- A SCENE lasts 5 to 20 seconds. It is a list of STATES sorted by "at".
- A STATE is a short window of the timeline. States describe what NPCs and the environment do if the player stays frozen. They never describe player actions.
- A CHOICE is a player action. Choices live in the scene-level "choices" catalog and are scheduled into states with a birth and death (seconds relative to the state start, inclusive).

### Rules
1. Create 3 to 7 choices. Choice text is under 5 words, direct action verbs preferred.
2. State text is one concise sentence of 10 to 15 words. Third-person subjects only. Never use "you", "your" or "player".
3. Every state must satisfy 0 <= at and at + duration <= scene duration.
4. Every scheduled choice must satisfy 0 <= birth <= death <= state duration.
5. Every scheduled choice_id must exist in the catalog, and each catalog key must equal its "id".
6. base_probability and rt_factor are numbers in [0,1]. Harder or riskier actions get lower base_probability. rt_factor says how much hesitation hurts.
7. decision_deadline, when present, must not exceed the scene duration.
8. Following states assume the player has not acted yet. Build tension toward a climax.

### Reading time
At the start of each state the scene timer pauses for a reading countdown: the state's time_to_read plus the time_to_read of each choice scheduled in it. Estimate these in seconds.

### Output
Respond with ONLY a JSON object, no prose and no code fences:
{
  "id": "guard_checkpoint",
  "duration": 9,
  "decision_deadline": 8,
  "reading_time_estimate": 4,
  "states": [
    {"id": "demand", "at": 0, "duration": 3, "text": "Guard blocks the gate. Spear raised. Demands papers.", "time_to_read": 1.5,
     "choices": [{"choice_id": "bribe", "birth": 0, "death": 3}, {"choice_id": "bluff", "birth": 0.5, "death": 3}]},
    {"id": "warning", "at": 3, "duration": 3, "text": "Guard steps closer. Final warning. Spear tip glints.", "time_to_read": 1.2,
     "choices": [{"choice_id": "bluff", "birth": 0, "death": 2, "override_text": "Flash a fake seal", "base_probability": 0.3}, {"choice_id": "dash", "birth": 1, "death": 3}]},
    {"id": "lunge", "at": 6, "duration": 3, "text": "Guard lunges. Spear thrusts forward.", "time_to_read": 0.8,
     "choices": [{"choice_id": "dash", "birth": 0, "death": 2}]}
  ],
  "choices": {
    "bribe": {"id": "bribe", "text": "Offer silver coins", "base_probability": 0.6, "rt_factor": 0.2, "time_to_read": 0.5},
    "bluff": {"id": "bluff", "text": "Claim noble rank", "base_probability": 0.4, "rt_factor": 0.5, "time_to_read": 0.4},
    "dash": {"id": "dash", "text": "Sprint past him", "base_probability": 0.35, "rt_factor": 0.9, "time_to_read": 0.4}
  }
}`

const ContentRatingG = `Write content suitable for young children. Avoid violence, romance and scary elements. Use simple language. `
const ContentRatingPG = `Write content suitable for children and families. Mild peril or tension is okay, but avoid strong language, explicit violence, or dark themes. `
const ContentRatingPG13 = `Write content appropriate for teenagers. Action and tension are fine, but avoid graphic violence, explicit adult situations and drug use. `
const ContentRatingR = `Write with full freedom for adult audiences. All content should raise the stakes of the scene. `

// CorrectionPrompt is sent after a rejected scene. %s is the rejection reason.
const CorrectionPrompt = `The scene you returned was rejected: %s
Return the complete corrected scene as a single JSON object that follows every rule.`

// GetContentRatingPrompt defaults to PG-13 for unknown ratings.
func GetContentRatingPrompt(rating string) string {
	switch normalizeRating(rating) {
	case RatingG:
		return ContentRatingG
	case RatingPG:
		return ContentRatingPG
	case RatingPG13:
		return ContentRatingPG13
	case RatingR:
		return ContentRatingR
	default:
		return ContentRatingPG13
	}
}

func normalizeRating(rating string) string {
	return strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(rating)), "-", "")
}
