package model

import "time"

// Emotion is the bucketed affect label reported by the vision producer.
type Emotion string

const (
	EmotionAngry    Emotion = "angry"
	EmotionFear     Emotion = "fear"
	EmotionDisgust  Emotion = "disgust"
	EmotionSad      Emotion = "sad"
	EmotionNeutral  Emotion = "neutral"
	EmotionHappy    Emotion = "happy"
	EmotionSurprise Emotion = "surprise"
	EmotionUnknown  Emotion = "unknown"
)

// NegativeEmotions is the set consulted by the acute emotion detection query (§4.B).
var NegativeEmotions = map[Emotion]bool{
	EmotionSad:     true,
	EmotionFear:    true,
	EmotionAngry:   true,
	EmotionDisgust: true,
}

// StressLevel is the bucketed stress label. It coexists with a numeric
// stress_score per spec Open Question 3: the acute check filters on this bucket,
// the chronic check averages the numeric score.
type StressLevel string

const (
	StressVeryLow  StressLevel = "muy bajo"
	StressLow      StressLevel = "bajo"
	StressMedium   StressLevel = "medio"
	StressHigh     StressLevel = "alto"
	StressVeryHigh StressLevel = "muy alto"
)

// EmotionSample is one vision-producer observation of a monitored user's affect.
type EmotionSample struct {
	UserID      string      `bun:"user_id"`
	Timestamp   time.Time   `bun:"timestamp"`
	Emotion     Emotion     `bun:"emotion"`
	StressLevel StressLevel `bun:"stress_level"`
	StressScore float64     `bun:"stress_score"`
}
