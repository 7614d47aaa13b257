package model

// ScoreMetadata is the optional catalog record looked up for a source score.
type ScoreMetadata struct {
	Title    string
	Composer string
	Year     uint
}
