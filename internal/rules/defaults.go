package rules

import "github.com/diegoclair/checkin-scheduler/internal/domain/entity"

const (
	msgDailyCheckin = "Good morning! ☀️ How was your sleep quality last night? And what's the plan for breakfast?"
	msgBodyCheck    = "Time for a body check-in. 🧘‍♀️\n1. How are your energy levels?\n2. Any soreness?\n3. Have you moved your body today?"
	msgBreakfast    = "Time for breakfast! 🍳 What are you having? Feel free to share a photo so I can check the nutrition balance."
	msgLunch        = "Lunch time! 🥗 What's on your plate today? Send me a pic and I'll give you feedback on the macros."
	msgDinner       = "Dinner time! 🍽️ Let's see what you're fueling your body with tonight. Share a photo for my analysis!"
	msgStretch      = "Time to move! 🧘‍♀️ You've been sitting for a while. Take 5 minutes to:\n• Stand up and stretch\n• Roll your shoulders\n• Walk around\n• Hydrate 💧\n\nYour body will thank you!"
	msgWindDown     = `Time to wind down for the night! 🌙

Let's recap today:
• What did you eat today? Any meals you're proud of?
• Did you get your movement/exercise in?

**Sleep prep tips:**
✨ Try 5 deep breaths (4-7-8 technique)
📱 Put your phone away in 10 minutes
🙏 Think of one thing you're grateful for today

Get ready for bed soon - quality sleep is the foundation of everything! 😴💤`
)

// Default returns the built-in rule table
func Default() []entity.TriggerRule {
	return []entity.TriggerRule{
		{Name: "daily-checkin", Kind: entity.KindFixedTime, Hour: 9, Minute: 0, Message: msgDailyCheckin},
		{Name: "body-check", Kind: entity.KindFixedTime, Hour: 9, Minute: 0, EveryNthDay: 3, Message: msgBodyCheck},
		{Name: "breakfast", Kind: entity.KindFixedTime, Hour: 9, Minute: 30, Message: msgBreakfast},
		{Name: "lunch", Kind: entity.KindFixedTime, Hour: 12, Minute: 30, Message: msgLunch},
		{Name: "dinner", Kind: entity.KindFixedTime, Hour: 18, Minute: 0, Message: msgDinner},
		{Name: "evening-winddown", Kind: entity.KindFixedTime, Hour: 22, Minute: 25, Message: msgWindDown},
		{Name: "stretch", Kind: entity.KindPeriodic, StartHour: 10, EndHour: 24, IntervalMinutes: 90, Message: msgStretch},
	}
}
