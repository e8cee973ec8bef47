package exam

import (
	"fmt"
	"math/rand"
	"time"
)

// math/rand starts from a fixed seed; unseeded, every restart would
// draw the same first paper.
func init() {
	rand.Seed(time.Now().UnixNano())
}

// builtinBank holds the built-in English question bank, keyed by kind
// then level. IDs are assigned deterministically in BankQuestions.
var builtinBank = map[string]map[string][]Question{
	KindGrammar: {
		LevelBeginner: {
			{Question: `Choose the correct verb: "I ___ a student"`, Options: []string{"am", "is", "are", "be"}, CorrectAnswer: []int{0}, Type: TypeSingle, Points: 2},
			{Question: `What is the plural of "book"?`, Options: []string{"books", "bookes", "book", "bookies"}, CorrectAnswer: []int{0}, Type: TypeSingle, Points: 2},
			{Question: `Choose the correct article: "___ apple"`, Options: []string{"a", "an", "the", "no article"}, CorrectAnswer: []int{1}, Type: TypeSingle, Points: 2},
			{Question: `Complete: "She ___ to school every day"`, Options: []string{"go", "goes", "going", "gone"}, CorrectAnswer: []int{1}, Type: TypeSingle, Points: 2},
			{Question: `Choose the correct pronoun: "___ is my friend"`, Options: []string{"He", "Him", "His", "Her"}, CorrectAnswer: []int{0}, Type: TypeSingle, Points: 2},
			{Question: `What is the past tense of "go"?`, Options: []string{"goed", "went", "gone", "going"}, CorrectAnswer: []int{1}, Type: TypeSingle, Points: 2},
			{Question: `Choose: "This is ___ book"`, Options: []string{"my", "me", "I", "mine"}, CorrectAnswer: []int{0}, Type: TypeSingle, Points: 2},
			{Question: `Complete: "They ___ happy"`, Options: []string{"am", "is", "are", "be"}, CorrectAnswer: []int{2}, Type: TypeSingle, Points: 2},
			{Question: `What is the opposite of "big"?`, Options: []string{"small", "large", "huge", "tall"}, CorrectAnswer: []int{0}, Type: TypeSingle, Points: 2},
			{Question: `Choose: "I ___ English"`, Options: []string{"speak", "speaks", "speaking", "spoke"}, CorrectAnswer: []int{0}, Type: TypeSingle, Points: 2},
			{Question: `Complete: "We ___ students"`, Options: []string{"am", "is", "are", "be"}, CorrectAnswer: []int{2}, Type: TypeSingle, Points: 2},
			{Question: `Choose: "___ name is John"`, Options: []string{"My", "Me", "I", "Mine"}, CorrectAnswer: []int{0}, Type: TypeSingle, Points: 2},
			{Question: `What is the plural of "child"?`, Options: []string{"childs", "children", "childes", "child"}, CorrectAnswer: []int{1}, Type: TypeSingle, Points: 2},
			{Question: `Complete: "She ___ a teacher"`, Options: []string{"am", "is", "are", "be"}, CorrectAnswer: []int{1}, Type: TypeSingle, Points: 2},
			{Question: `Choose: "I like ___"`, Options: []string{"apple", "apples", "an apple", "the apple"}, CorrectAnswer: []int{1}, Type: TypeSingle, Points: 2},
		},
		LevelIntermediate: {
			{Question: `Choose the correct tense: "I ___ English for 5 years"`, Options: []string{"learn", "am learning", "have been learning", "learned"}, CorrectAnswer: []int{2}, Type: TypeSingle, Points: 2},
			{Question: `Which sentence is in passive voice?`, Options: []string{"She writes a letter", "A letter is written by her", "She is writing a letter", "She has written a letter"}, CorrectAnswer: []int{1}, Type: TypeSingle, Points: 2},
			{Question: `Complete: "If I ___ you, I would go"`, Options: []string{"am", "was", "were", "be"}, CorrectAnswer: []int{2}, Type: TypeSingle, Points: 2},
			{Question: `Choose: "She has ___ finished her work"`, Options: []string{"yet", "already", "still", "never"}, CorrectAnswer: []int{1}, Type: TypeSingle, Points: 2},
			{Question: `Complete: "I wish I ___ rich"`, Options: []string{"am", "was", "were", "be"}, CorrectAnswer: []int{2}, Type: TypeSingle, Points: 2},
		},
		LevelAdvanced: {
			{Question: `Choose the correct conditional: "If I ___ you, I ___ accept the offer"`, Options: []string{"am, will", "were, would", "was, will", "be, would"}, CorrectAnswer: []int{1}, Type: TypeSingle, Points: 2},
			{Question: `Identify the subjunctive: "It is essential that he ___ on time"`, Options: []string{"is", "be", "was", "were"}, CorrectAnswer: []int{1}, Type: TypeSingle, Points: 2},
			{Question: `Choose the correct phrasal verb: "The meeting was ___ until next week"`, Options: []string{"put off", "put on", "put up", "put down"}, CorrectAnswer: []int{0}, Type: TypeSingle, Points: 2},
		},
	},
	KindReading: {
		LevelBeginner: {
			{Question: `Read: "My name is John. I am 20 years old." - How old is John?`, Options: []string{"10", "20", "30", "40"}, CorrectAnswer: []int{1}, Type: TypeSingle, Points: 2},
			{Question: `Read: "I have a cat. It is black." - What color is the cat?`, Options: []string{"White", "Black", "Brown", "Gray"}, CorrectAnswer: []int{1}, Type: TypeSingle, Points: 2},
			{Question: `Read: "She likes apples and oranges." - What does she like?`, Options: []string{"Only apples", "Only oranges", "Apples and oranges", "Bananas"}, CorrectAnswer: []int{2}, Type: TypeSingle, Points: 2},
			{Question: `Read: "The book is on the table." - Where is the book?`, Options: []string{"On the chair", "On the table", "On the floor", "In the bag"}, CorrectAnswer: []int{1}, Type: TypeSingle, Points: 2},
			{Question: `Read: "Tom goes to school by bus." - How does Tom go to school?`, Options: []string{"By car", "By bike", "By bus", "On foot"}, CorrectAnswer: []int{2}, Type: TypeSingle, Points: 2},
		},
		LevelIntermediate: {
			{Question: `Read: "Despite the rain, they decided to go hiking." - What does "despite" mean?`, Options: []string{"Because of", "In spite of", "Due to", "Thanks to"}, CorrectAnswer: []int{1}, Type: TypeSingle, Points: 2},
			{Question: `Read: "The company has been growing rapidly over the past year." - What is happening to the company?`, Options: []string{"Declining", "Growing fast", "Staying same", "Closing"}, CorrectAnswer: []int{1}, Type: TypeSingle, Points: 2},
		},
		LevelAdvanced: {
			{Question: `Read: "The protagonist's ambivalence towards the situation was palpable." - What does "ambivalence" mean?`, Options: []string{"Certainty", "Mixed feelings", "Happiness", "Anger"}, CorrectAnswer: []int{1}, Type: TypeSingle, Points: 2},
		},
	},
	KindListening: {
		LevelBeginner: {
			{Question: `Listen: "Hello, how are you?" - What is the speaker saying?`, Options: []string{"Hello, how are you?", "Goodbye", "Thank you", "Please"}, CorrectAnswer: []int{0}, Type: TypeSingle, Points: 2},
			{Question: `Listen: "My name is Sarah" - What is the speaker's name?`, Options: []string{"Mary", "Sarah", "Anna", "Lisa"}, CorrectAnswer: []int{1}, Type: TypeSingle, Points: 2},
			{Question: `Listen: "I am from London" - Where is the speaker from?`, Options: []string{"Paris", "London", "New York", "Tokyo"}, CorrectAnswer: []int{1}, Type: TypeSingle, Points: 2},
		},
		LevelIntermediate: {
			{Question: `Listen to the conversation. What time is the meeting?`, Options: []string{"2 PM", "3 PM", "4 PM", "5 PM"}, CorrectAnswer: []int{1}, Type: TypeSingle, Points: 2},
		},
		LevelAdvanced: {
			{Question: `Listen to the lecture. What is the main argument?`, Options: []string{"Economic growth", "Environmental protection", "Social equality", "Technological advancement"}, CorrectAnswer: []int{1}, Type: TypeSingle, Points: 2},
		},
	},
}

// BankQuestions returns all built-in questions of a kind, across levels,
// with stable IDs.
func BankQuestions(kind string) []Question {
	var out []Question
	for _, level := range AllLevels {
		for i, q := range builtinBank[kind][level] {
			q.ID = fmt.Sprintf("test-%s-%s-%d", kind, level, i+1)
			q.Level = level
			q.Kind = kind
			out = append(out, q)
		}
	}
	return out
}

// QuestionsFor draws up to count shuffled questions for a level and kind.
func QuestionsFor(level, kind string, count int) []Question {
	if count <= 0 {
		count = DefaultQuestionCount
	}
	var pool []Question
	for _, q := range BankQuestions(kind) {
		if q.Level == level {
			pool = append(pool, q)
		}
	}
	rand.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	if count > len(pool) {
		count = len(pool)
	}
	return pool[:count]
}
