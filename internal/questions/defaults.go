package questions

// Defaults стартовый набор вопросов для пустого хранилища
var Defaults = map[Kind][]string{
	Truth: {
		"What's the most embarrassing thing you've ever done?",
		"If you could be invisible for a day, what would you do?",
		"What's your biggest fear?",
		"Who was your first crush?",
		"What's the worst lie you've ever told?",
		"If you could change one thing about yourself, what would it be?",
		"What's the most childish thing you still do?",
		"What's your most embarrassing nickname?",
		"What's the weirdest dream you've ever had?",
		"If you could ask anyone one question, who would it be and what would you ask?",
		"What's the most expensive thing you've ever broken?",
		"What's your most embarrassing social media post?",
		"What's the weirdest food combination you actually enjoy?",
		"What's the most ridiculous thing you've ever cried about?",
		"What's your most embarrassing autocorrect fail?",
	},
	Dare: {
		"Do 20 jumping jacks",
		"Sing your favorite song out loud",
		"Do your best impression of a celebrity",
		"Dance for 30 seconds without music",
		"Tell a joke and make everyone laugh",
		"Do 10 push-ups",
		"Speak in an accent for the next 3 rounds",
		"Do a cartwheel or handstand",
		"Call someone and sing 'Happy Birthday' to them",
		"Do your best animal impression",
		"Do 15 squats",
		"Sing the alphabet backwards",
		"Do a TikTok dance",
		"Speak only in rhymes for the next 2 rounds",
		"Do 10 burpees",
		"Imitate everyone in the room for 1 minute",
	},
}
