package pool

var DefaultJokes = []string{
	"I'm reading a book about anti-gravity. It's impossible to put down.",
	"Why don't skeletons fight each other? They don't have the guts.",
	"I used to hate facial hair, but then it grew on me.",
	"What do you call a fake noodle? An impasta.",
	"Why did the scarecrow win an award? Because he was outstanding in his field.",
	"I only know 25 letters of the alphabet. I don't know y.",
	"What do you call a bear with no teeth? A gummy bear.",
	"Why couldn't the bicycle stand up by itself? It was two tired.",
	"I'm on a seafood diet. I see food and I eat it.",
	"What did the ocean say to the beach? Nothing, it just waved.",
	"Why do cows wear bells? Because their horns don't work.",
	"I would tell you a construction joke, but I'm still working on it.",
	"What do you call cheese that isn't yours? Nacho cheese.",
	"Why did the math book look so sad? Because it had too many problems.",
	"How does a penguin build its house? Igloos it together.",
	"Did you hear about the restaurant on the moon? Great food, no atmosphere.",
	"Why don't eggs tell jokes? They'd crack each other up.",
	"What do you call a factory that makes okay products? A satisfactory.",
	"I ordered a chicken and an egg online. I'll let you know which comes first.",
	"Why did the coffee file a police report? It got mugged.",
}
