package sentiment

import (
	"context"
	"html"
	"regexp"
	"strings"

	"github.com/jonreiter/govader"
	"github.com/russross/blackfriday/v2"
)

const (
	vaderPositiveLabel = "positive"
	vaderNegativeLabel = "negative"
)

var (
	linkPattern = regexp.MustCompile(`\[(.*?)\]\((https?:\/\/[^\s\)]+)\)`)
	urlPattern  = regexp.MustCompile(`https?://\S+|www\.\S+`)
	tagPattern  = regexp.MustCompile(`<[^>]*>`)
)

// VaderBackend scores English text with the VADER lexicon. It needs no model
// download, which makes it the backend of choice for local runs.
type VaderBackend struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

func NewVaderBackend() *VaderBackend {
	return &VaderBackend{analyzer: govader.NewSentimentIntensityAnalyzer()}
}

func RemoveLinks(input string) string {
	input = linkPattern.ReplaceAllString(input, "$1") // Keep only the text
	return urlPattern.ReplaceAllString(input, "")
}

func ConvertMarkdownToText(input string) string {
	output := blackfriday.Run([]byte(RemoveLinks(input)), blackfriday.WithNoExtensions())
	plainText := html.UnescapeString(tagPattern.ReplaceAllString(string(output), " "))

	return strings.Join(strings.Fields(plainText), " ")
}

// Predict labels the text by whichever polar mass dominates; the score is that
// side's share of the polar mass, 0.5 when the text carries no polar words.
func (v *VaderBackend) Predict(_ context.Context, text string) (Prediction, error) {
	scores := v.analyzer.PolarityScores(ConvertMarkdownToText(text))

	polar := scores.Positive + scores.Negative
	if polar == 0 {
		label := vaderNegativeLabel
		if scores.Compound >= 0 {
			label = vaderPositiveLabel
		}
		return Prediction{Label: label, Score: 0.5}, nil
	}

	if scores.Positive >= scores.Negative {
		return Prediction{Label: vaderPositiveLabel, Score: scores.Positive / polar}, nil
	}
	return Prediction{Label: vaderNegativeLabel, Score: scores.Negative / polar}, nil
}

func (v *VaderBackend) PositiveLabel() string {
	return vaderPositiveLabel
}

func (v *VaderBackend) Close() error {
	return nil
}
